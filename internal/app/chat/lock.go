package chat

import "sync"

// WriterLock is the exclusivity flag for the single writer slot.
//
// Mutations happen only from the coordinator's event loop, so TryAcquire and
// Release are serialized with registry inserts and removals. The mutex exists so
// that Occupied can be read from other goroutines (admission) without a race.
type WriterLock struct {
	mu       sync.Mutex
	occupied bool
	holder   string
}

// NewWriterLock returns an unoccupied lock.
func NewWriterLock() *WriterLock {
	return &WriterLock{}
}

// TryAcquire takes the lock for owner if it is free. It never blocks and has no
// side effects on failure.
func (l *WriterLock) TryAcquire(owner string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.occupied {
		return false
	}

	l.occupied = true
	l.holder = owner
	return true
}

// Release frees the lock if owner currently holds it and reports whether it did.
func (l *WriterLock) Release(owner string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.occupied || l.holder != owner {
		return false
	}

	l.occupied = false
	l.holder = ""
	return true
}

// Occupied reports whether a writer session currently holds the lock.
func (l *WriterLock) Occupied() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.occupied
}

// Holder returns the session id holding the lock, if any.
func (l *WriterLock) Holder() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.holder, l.occupied
}
