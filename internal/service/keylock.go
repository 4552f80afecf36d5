package service

import "sync"

// KeyLock - мьютекс на ключ. Записи удаляются, когда ключ больше никто не держит.
type KeyLock struct {
	mtx   sync.Mutex
	locks map[string]*keyEntry
}

type keyEntry struct {
	mtx  sync.Mutex
	refs int
}

func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[string]*keyEntry)}
}

// Lock захватывает ключ и возвращает функцию освобождения.
func (k *KeyLock) Lock(key string) func() {
	k.mtx.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mtx.Unlock()

	e.mtx.Lock()

	return func() {
		e.mtx.Unlock()

		k.mtx.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mtx.Unlock()
	}
}

func (k *KeyLock) size() int {
	k.mtx.Lock()
	defer k.mtx.Unlock()
	return len(k.locks)
}
