package worker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"taskFlow/internal/logger"
	"taskFlow/internal/models/performance"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type PerformanceSource interface {
	GetPerformanceHistory(ctx context.Context, days int) []performance.DailyPerformance
}

type InsightSource interface {
	Insight(ctx context.Context, history []performance.DailyPerformance) string
}

// Digest - итог одного прогона, его же пишет лог.
type Digest struct {
	Days        int
	AverageRate int
	Completed   int
	Total       int
	Insight     string
}

type DigestWorker struct {
	performance PerformanceSource
	insight     InsightSource
	days        int
	cron        *cron.Cron

	stopOnce sync.Once
	stopped  atomic.Bool
}

func NewDigestWorker(perf PerformanceSource, insight InsightSource, loc *time.Location, days *int) *DigestWorker {
	var daysToSet int
	if days == nil || *days <= 0 {
		daysToSet = 7
	} else {
		daysToSet = *days
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DigestWorker{
		performance: perf,
		insight:     insight,
		days:        daysToSet,
		cron:        cron.New(cron.WithLocation(loc)),
	}
}

// Start регистрирует ежедневный запуск в at (HH:MM) и возвращается сразу.
// ctx передаётся прогонам; остановка - только через Stop.
func (w *DigestWorker) Start(ctx context.Context, at string) error {
	spec, err := dailySpec(at)
	if err != nil {
		return err
	}
	if _, err := w.cron.AddFunc(spec, func() { w.Check(ctx) }); err != nil {
		return fmt.Errorf("регистрация задания дайджеста: %w", err)
	}
	w.cron.Start()
	logger.Info("Worker: Дайджест запланирован", zap.String("at", at), zap.Int("days", w.days))
	return nil
}

// Stop снимает расписание и ждёт идущий прогон. Повторный вызов ничего не делает.
func (w *DigestWorker) Stop() {
	w.stopOnce.Do(func() {
		done := w.cron.Stop()
		<-done.Done()
		w.stopped.Store(true)
		logger.Info("Worker: Дайджест остановлен")
	})
}

func (w *DigestWorker) Stopped() bool {
	return w.stopped.Load()
}

func (w *DigestWorker) Check(ctx context.Context) Digest {
	start := time.Now()
	logger.Info("Worker: Сборка дайджеста", zap.Time("started_at", start))

	history := w.performance.GetPerformanceHistory(ctx, w.days)

	digest := Digest{
		Days:        len(history),
		AverageRate: performance.AverageRate(performance.Series(history)),
	}
	for _, day := range history {
		digest.Completed += day.CompletedTasks
		digest.Total += day.TotalTasks
	}
	digest.Insight = w.insight.Insight(ctx, history)

	logger.Info(
		"Worker: Дайджест готов",
		zap.Duration("ms", time.Since(start)),
		zap.Int("days", digest.Days),
		zap.Int("average_rate", digest.AverageRate),
		zap.Int("completed", digest.Completed),
		zap.Int("total", digest.Total),
		zap.String("insight", digest.Insight),
	)
	return digest
}

// dailySpec переводит HH:MM в cron-выражение "M H * * *".
func dailySpec(at string) (string, error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("неверное время %q, ожидается HH:MM", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("неверный час в %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("неверные минуты в %q", at)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
