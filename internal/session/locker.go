package session

import "sync"

// UserLocks serializes turns per user so two webhook deliveries for the same
// sender cannot interleave. Entries are reference counted and removed on
// release, so the map only holds users with a turn in flight.
type UserLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewUserLocks() *UserLocks {
	return &UserLocks{entries: map[string]*lockEntry{}}
}

// Lock acquires the lock for the given user id and returns its release
// function. Callers must pass an already normalized id; the 521 and 52
// spellings of one phone number must map to the same lock.
func (l *UserLocks) Lock(userID string) func() {
	l.mu.Lock()
	entry, ok := l.entries[userID]
	if !ok {
		entry = &lockEntry{}
		l.entries[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.entries, userID)
			}
			l.mu.Unlock()
		})
	}
}
