package service

import (
	"bytes"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// LockSet serializes read-then-write operations per aggregate id. Every keyed
// lock also holds the shared side of a gate that a full dataset import takes
// exclusively.
//
// Keyed locks are always taken in ascending id order, so callers may pass ids
// in any order without risking deadlock. Never take the gate exclusively while
// holding a keyed lock.
type LockSet struct {
	gate  sync.RWMutex
	mu    sync.Mutex
	locks map[uuid.UUID]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func NewLockSet() *LockSet {
	return &LockSet{locks: make(map[uuid.UUID]*refMutex)}
}

// Lock acquires the locks for ids and returns a function releasing all of
// them. Duplicate and nil ids are skipped.
func (l *LockSet) Lock(ids ...uuid.UUID) (unlock func()) {
	held := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != uuid.Nil && !slices.Contains(held, id) {
			held = append(held, id)
		}
	}
	slices.SortFunc(held, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })

	l.gate.RLock()
	for _, id := range held {
		l.acquire(id)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.release(held[i])
		}
		l.gate.RUnlock()
	}
}

// Exclusive waits for every keyed lock to be released and blocks new ones
// until the returned function is called.
func (l *LockSet) Exclusive() (unlock func()) {
	l.gate.Lock()
	return l.gate.Unlock
}

func (l *LockSet) acquire(id uuid.UUID) {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &refMutex{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()
	m.Lock()
}

func (l *LockSet) release(id uuid.UUID) {
	l.mu.Lock()
	m := l.locks[id]
	m.refs--
	if m.refs == 0 {
		delete(l.locks, id)
	}
	l.mu.Unlock()
	m.Unlock()
}
