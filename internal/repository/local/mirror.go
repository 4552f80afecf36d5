package local

import (
	"context"
	"sync"
)

// Mirror - локальное хранилище целых коллекций: коллекция читается и
// записывается целиком как JSON-массив записей.
type Mirror interface {
	// Load возвращает nil, если коллекции ещё нет.
	Load(ctx context.Context, collection string) ([]byte, error)
	// Save записывает все переданные коллекции разом: либо все, либо ни одной.
	Save(ctx context.Context, batch map[string][]byte) error
	Ping(ctx context.Context) error
	Close() error
}

// MemoryMirror держит коллекции в памяти процесса.
type MemoryMirror struct {
	storage map[string][]byte
	mtx     *sync.RWMutex
}

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{
		storage: make(map[string][]byte),
		mtx:     &sync.RWMutex{},
	}
}

func (m *MemoryMirror) Load(ctx context.Context, collection string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	data, ok := m.storage[collection]
	if !ok {
		return nil, nil
	}
	res := make([]byte, len(data))
	copy(res, data)
	return res, nil
}

func (m *MemoryMirror) Save(ctx context.Context, batch map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()

	for name, data := range batch {
		stored := make([]byte, len(data))
		copy(stored, data)
		m.storage[name] = stored
	}
	return nil
}

func (m *MemoryMirror) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryMirror) Close() error {
	return nil
}
