package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"taskFlow/internal/logger"
	"taskFlow/internal/models/activity"
)

// Store - офлайн-хранилище поверх Mirror с той же схемой записей, что и в
// удалённой базе. Каждая операция - чтение-изменение-запись целых коллекций
// под одним мьютексом, поэтому частичных перемежающихся записей не бывает.
// Две копии процесса на одном файле друг друга не видят: побеждает последняя запись.
type Store struct {
	mirror            Mirror
	mtx               *sync.Mutex
	activityRetention int
}

// DefaultActivityRetention - сколько последних записей журнала хранит зеркало.
// Выдача берёт только activity.RecentLimit, остальное - запас.
const DefaultActivityRetention = 500

type StoreOption func(*Store)

// WithActivityRetention задаёт предел журнала; значения меньше activity.RecentLimit поднимаются до него.
func WithActivityRetention(n int) StoreOption {
	return func(s *Store) {
		s.activityRetention = max(n, activity.RecentLimit)
	}
}

func New(mirror Mirror, opts ...StoreOption) *Store {
	s := &Store{
		mirror:            mirror,
		mtx:               &sync.Mutex{},
		activityRetention: DefaultActivityRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.mirror.Ping(ctx); err != nil {
		logger.Error("Repository: Локальное зеркало недоступно", err)
		return fmt.Errorf("проверка зеркала: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.mirror.Close()
}

func load[T any](ctx context.Context, m Mirror, collection string) ([]T, error) {
	data, err := m.Load(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("чтение %s: %w", collection, err)
	}
	items := []T{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("разбор %s: %w", collection, err)
	}
	return items, nil
}

// batch копит изменённые коллекции, чтобы записать их одним Save.
type batch map[string][]byte

func (b batch) put(collection string, items any) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("кодирование %s: %w", collection, err)
	}
	b[collection] = data
	return nil
}

func (s *Store) commit(ctx context.Context, b batch) error {
	if err := s.mirror.Save(ctx, b); err != nil {
		return fmt.Errorf("запись зеркала: %w", err)
	}
	return nil
}
