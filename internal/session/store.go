package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// ErrNotFound is returned when no session record exists for the ID.
var ErrNotFound = errors.New("session: not found")

// Record is the persisted shape of a session: the opaque upstream bearer token
// and the serialized profile snapshot. Both are written together and cleared
// together.
type Record struct {
	Token   string
	Profile json.RawMessage
}

// Store persists session records across restarts.
type Store interface {
	Save(ctx context.Context, sessionID string, rec Record) error
	Load(ctx context.Context, sessionID string) (Record, error)
	Delete(ctx context.Context, sessionID string) error
}

// InMemoryStore is a Store for tests and Redis-less development runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Record)}
}

// Save stores the record under the session ID.
func (s *InMemoryStore) Save(ctx context.Context, sessionID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[sessionID] = rec
	return nil
}

// Load returns the record for the session ID.
func (s *InMemoryStore) Load(ctx context.Context, sessionID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[sessionID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Delete removes the record. Deleting a missing record is not an error.
func (s *InMemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}
