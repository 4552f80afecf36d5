package app

import (
	"context"
	"fmt"
	"time"

	"taskFlow/internal/config"
	"taskFlow/internal/logger"
	"taskFlow/internal/repository/local"
	"taskFlow/internal/repository/postgres"
	"taskFlow/internal/service"

	"go.uber.org/zap"
)

const defaultConnectTimeout = 5 * time.Second

// openStore выбирает бэкенд один раз при старте. В режиме auto недоступная
// или не настроенная база - это переход в офлайн, а не ошибка.
func openStore(ctx context.Context, cfg *config.Config) (service.Store, service.RepoType, error) {
	switch cfg.Repository.Type {
	case config.RepositoryRemote:
		store, err := openRemote(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		return store, service.RemoteType, nil

	case config.RepositoryLocal:
		store, err := openLocal(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		return store, service.LocalType, nil

	case config.RepositoryAuto:
		if cfg.Database.URL != "" {
			store, err := openRemote(ctx, cfg)
			if err == nil {
				return store, service.RemoteType, nil
			}
			logger.Warn("App: PostgreSQL недоступен, переходим в офлайн-режим", zap.Error(err))
		} else {
			logger.Warn("App: database.url не задан, работаем в офлайн-режиме")
		}
		store, err := openLocal(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		return store, service.LocalType, nil

	default:
		return nil, "", fmt.Errorf("неизвестный тип хранилища %q", cfg.Repository.Type)
	}
}

func openRemote(ctx context.Context, cfg *config.Config) (*postgres.Storage, error) {
	timeout := cfg.Database.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	storage, err := postgres.New(connectCtx, cfg.Database.URL, postgres.Options{
		MaxConns:        int32(cfg.Database.MaxConnections),
		MinConns:        int32(cfg.Database.MinConnections),
		MaxConnIdleTime: cfg.Database.IdleTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("подключение к PostgreSQL: %w", err)
	}
	if err := storage.Migrate(connectCtx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("миграции PostgreSQL: %w", err)
	}
	return storage, nil
}

func openLocal(ctx context.Context, cfg *config.Config) (*local.Store, error) {
	if cfg.Local.Path == "" {
		logger.Info("App: Локальное зеркало в памяти, данные не переживут перезапуск")
		return local.New(local.NewMemoryMirror()), nil
	}

	mirror, err := local.OpenSQLite(ctx, cfg.Local.Path)
	if err != nil {
		return nil, fmt.Errorf("открытие локального зеркала: %w", err)
	}
	logger.Info("App: Локальное зеркало SQLite", zap.String("path", cfg.Local.Path))
	return local.New(mirror), nil
}
