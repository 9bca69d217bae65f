package usecase

import (
	"sync"

	"github.com/petroops-lab/derrick/pkg/domain/types"
)

// actionLocker serializes mutations per action ID so an update and a delete
// racing on the same action cannot interleave their action and task writes.
// Mutations on different actions proceed in parallel.
type actionLocker struct {
	mu    sync.Mutex
	locks map[types.ActionID]*sync.Mutex
}

func newActionLocker() *actionLocker {
	return &actionLocker{
		locks: make(map[types.ActionID]*sync.Mutex),
	}
}

// Lock acquires the mutex for the action and returns its unlock func
func (l *actionLocker) Lock(id types.ActionID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
