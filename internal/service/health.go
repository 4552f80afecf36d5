package service

import (
	"context"
	"fmt"
)

type HealthChecker interface {
	HealthCheck(context.Context) error
}

type HealthService struct {
	store HealthChecker
	mode  RepoType
	settings
}

func NewHealthService(store HealthChecker, mode RepoType, opts ...Option) *HealthService {
	return &HealthService{store: store, mode: mode, settings: newSettings(opts)}
}

func (s *HealthService) Mode() RepoType {
	return s.mode
}

func (s *HealthService) HealthCheck(ctx context.Context) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}
