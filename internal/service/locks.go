package service

import "sync"

// groupLocks is a registry of per-group mutexes. The check-in flow holds a
// group's lock across validate, cooldown check, insert and score persist so
// two concurrent check-ins to the same group cannot both score against a
// stale history. Locks are never removed; the group ID space is small and
// a mutex is cheap.
type groupLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[uint]*sync.Mutex)}
}

// lock acquires the group's mutex and returns its unlock function.
func (g *groupLocks) lock(groupID uint) func() {
	g.mu.Lock()
	l, ok := g.locks[groupID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[groupID] = l
	}
	g.mu.Unlock()

	l.Lock()
	return l.Unlock
}
