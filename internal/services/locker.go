// internal/services/locker.go
package services

import (
	"sync"

	"github.com/google/uuid"
)

// recordLocker hands out one mutex per stock record id. Entries are dropped
// once no goroutine holds or waits on them.
type recordLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*recordLock
}

type recordLock struct {
	mu   sync.Mutex
	refs int
}

func newRecordLocker() *recordLocker {
	return &recordLocker{locks: make(map[uuid.UUID]*recordLock)}
}

func (l *recordLocker) Lock(id uuid.UUID) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &recordLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *recordLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
