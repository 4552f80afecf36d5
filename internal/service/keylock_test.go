package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	locks := NewKeyLock()

	var (
		wg      sync.WaitGroup
		mtx     sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("task|2026-10-19")
			defer unlock()

			mtx.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mtx.Unlock()

			time.Sleep(time.Millisecond)

			mtx.Lock()
			inside--
			mtx.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, locks.size(), "освобождённые ключи удаляются")
}

func TestKeyLock_DifferentKeysDoNotBlock(t *testing.T) {
	locks := NewKeyLock()

	unlockA := locks.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another key blocked")
	}
}
