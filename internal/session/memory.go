package session

import (
	"context"
	"sync"
	"time"
)

// memoryStore keeps sessions in a process-local map. It backs tests and
// single-instance deployments without a Redis.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]*Record{}}
}

func memoryKey(appName, userID string) string {
	return appName + "/" + userID
}

func (m *memoryStore) Load(_ context.Context, appName, userID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[memoryKey(appName, userID)]
	if !ok {
		return nil, nil
	}
	return rec.clone(), nil
}

func (m *memoryStore) Create(_ context.Context, appName, userID string, state *State) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey(appName, userID)
	if _, ok := m.records[key]; ok {
		return nil, ErrAlreadyExists
	}

	rec := newRecord(appName, userID, state.Clone(), time.Now().UTC())
	m.records[key] = rec
	return rec.clone(), nil
}

func (m *memoryStore) Replace(_ context.Context, appName, userID, sessionID string, state *State, version int64) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[memoryKey(appName, userID)]
	if !ok || rec.ID != sessionID {
		return nil, ErrNotFound
	}
	if rec.Version != version {
		return nil, ErrVersionConflict
	}

	rec.State = state.Clone()
	rec.Version++
	rec.UpdatedAt = time.Now().UTC()
	return rec.clone(), nil
}

func (m *memoryStore) Reset(_ context.Context, appName, userID string, preserve []string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[memoryKey(appName, userID)]
	if !ok {
		return nil, ErrNotFound
	}

	fresh, err := resetState(rec.State, preserve)
	if err != nil {
		return nil, err
	}

	rec.State = fresh
	rec.Version++
	rec.UpdatedAt = time.Now().UTC()
	return rec.clone(), nil
}

func (m *memoryStore) Delete(_ context.Context, appName, userID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey(appName, userID)
	rec, ok := m.records[key]
	if !ok || rec.ID != sessionID {
		return ErrNotFound
	}

	delete(m.records, key)
	return nil
}

func (m *memoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = map[string]*Record{}
	return nil
}
