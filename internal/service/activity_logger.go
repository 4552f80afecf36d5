package service

import (
	"context"
	"sync"
	"time"

	"taskFlow/internal/identity"
	"taskFlow/internal/logger"
	"taskFlow/internal/metrics"
	"taskFlow/internal/models/activity"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

type ActivityConfig struct {
	QueueSize     int
	MaxRetries    int
	RetryInterval time.Duration
}

func (c ActivityConfig) withDefaults() ActivityConfig {
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 100 * time.Millisecond
	}
	return c
}

// ActivityLogger пишет журнал в фоне, не задерживая вызывающего.
//
// Политика потерь: запись ставится в очередь ограниченного размера; если очередь
// полна или логгер закрыт, запись отбрасывается сразу. Неудачная запись в хранилище
// повторяется MaxRetries раз с экспоненциальной паузой и затем отбрасывается.
// Каждая потеря попадает в лог (Warn) и в taskflow_activity_dropped_total.
type ActivityLogger struct {
	repo  ActivityRepository
	cfg   ActivityConfig
	queue chan logRequest
	wg    conc.WaitGroup

	mtx    sync.RWMutex
	closed bool

	settings
}

// logRequest с пустым entry - барьер для Flush.
type logRequest struct {
	entry *activity.Entry
	done  chan struct{}
}

func NewActivityLogger(repo ActivityRepository, cfg ActivityConfig, opts ...Option) *ActivityLogger {
	cfg = cfg.withDefaults()
	l := &ActivityLogger{
		repo:     repo,
		cfg:      cfg,
		queue:    make(chan logRequest, cfg.QueueSize),
		settings: newSettings(opts),
	}
	l.wg.Go(l.run)
	return l
}

// Log штампует запись (id, пользователь, время) сразу и отдаёт её воркеру.
func (l *ActivityLogger) Log(ctx context.Context, action activity.Action, target activity.TargetType, title string) {
	entry := &activity.Entry{
		ID:          uuid.New(),
		User:        identity.UserOr(ctx, identity.UnknownUser),
		Action:      action,
		TargetType:  target,
		TargetTitle: title,
		Timestamp:   l.now().UTC(),
	}

	l.mtx.RLock()
	defer l.mtx.RUnlock()

	if l.closed {
		l.drop(entry, metrics.DropClosed, nil)
		return
	}

	select {
	case l.queue <- logRequest{entry: entry}:
		metrics.ActivityQueueDepth.Inc()
	default:
		l.drop(entry, metrics.DropQueueFull, nil)
	}
}

// Flush ждёт, пока воркер обработает всё, что было поставлено в очередь до вызова.
func (l *ActivityLogger) Flush(ctx context.Context) error {
	barrier := logRequest{done: make(chan struct{})}

	l.mtx.RLock()
	if l.closed {
		l.mtx.RUnlock()
		return nil
	}
	select {
	case l.queue <- barrier:
	case <-ctx.Done():
		l.mtx.RUnlock()
		return ctx.Err()
	}
	l.mtx.RUnlock()

	select {
	case <-barrier.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetActivities - 50 последних записей, новые первыми. Сначала дожидается своей очереди.
func (l *ActivityLogger) GetActivities(ctx context.Context) []*activity.Entry {
	ctx, cancel := l.bounded(ctx)
	defer cancel()

	if err := l.Flush(ctx); err != nil {
		logger.Warn("Service: Журнал не успел записаться перед чтением", zap.Error(err))
	}

	entries, err := l.repo.RecentActivities(ctx, activity.RecentLimit)
	if err != nil {
		storeFailed("recent_activities", err)
		return []*activity.Entry{}
	}
	return entries
}

// Close дописывает очередь и останавливает воркер. Повторный вызов безопасен.
func (l *ActivityLogger) Close() {
	l.mtx.Lock()
	if l.closed {
		l.mtx.Unlock()
		return
	}
	l.closed = true
	close(l.queue)
	l.mtx.Unlock()

	l.wg.Wait()
	logger.Info("Service: Журнал действий остановлен")
}

func (l *ActivityLogger) run() {
	for req := range l.queue {
		if req.entry == nil {
			close(req.done)
			continue
		}
		metrics.ActivityQueueDepth.Dec()
		l.write(req.entry)
	}
}

func (l *ActivityLogger) write(entry *activity.Entry) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = l.cfg.RetryInterval
	policy.MaxElapsedTime = 0

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		// контекст запроса к этому моменту может быть уже отменён
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		return l.repo.AppendActivity(ctx, entry)
	}, backoff.WithMaxRetries(policy, uint64(l.cfg.MaxRetries)))

	if err != nil {
		l.drop(entry, metrics.DropAppendFailed, err, zap.Int("attempts", attempts))
	}
}

func (l *ActivityLogger) drop(entry *activity.Entry, reason string, err error, fields ...zap.Field) {
	metrics.ActivityDropped.WithLabelValues(reason).Inc()
	fields = append(fields,
		zap.String("reason", reason),
		zap.String("action", string(entry.Action)),
		zap.String("target_title", entry.TargetTitle),
	)
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Warn("Service: Запись журнала отброшена", fields...)
}
