package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskFlow/internal/app"
	"taskFlow/internal/config"
	"taskFlow/internal/logger"

	_ "time/tzdata"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "конфигурация:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "запуск:", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("App: Сервер остановлен с ошибкой", err)
		logger.Sync()
		os.Exit(1)
	}
}
