package service

import (
	"sync"

	"github.com/google/uuid"
)

// OpportunityLocks serializes mutations of one opportunity aggregate within
// the process. The database row lock taken inside each transaction covers
// multiple processes on PostgreSQL.
type OpportunityLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*opportunityLock
}

type opportunityLock struct {
	mu   sync.Mutex
	refs int
}

func NewOpportunityLocks() *OpportunityLocks {
	return &OpportunityLocks{locks: make(map[uuid.UUID]*opportunityLock)}
}

// Lock blocks until the opportunity is free and returns the release func
func (l *OpportunityLocks) Lock(id uuid.UUID) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &opportunityLock{}
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

func (l *OpportunityLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
