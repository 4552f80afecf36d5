package service

import (
	"context"
	"time"

	"taskFlow/internal/logger"
	"taskFlow/internal/metrics"

	"go.uber.org/zap"
)

const DefaultOperationTimeout = 5 * time.Second

type settings struct {
	timeout time.Duration
	now     func() time.Time
}

type Option func(*settings)

// WithTimeout ограничивает каждый вызов хранилища. Ноль - значение по умолчанию.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock подменяет источник текущего времени (для тестов и дайджеста).
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		timeout: DefaultOperationTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

func (s settings) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// storeFailed - единая точка "логируем и глотаем" для ошибок хранилища.
func storeFailed(operation string, err error, fields ...zap.Field) {
	metrics.StoreErrors.WithLabelValues(operation).Inc()
	logger.Error("Service: Ошибка хранилища", err, append(fields, zap.String("operation", operation))...)
}
