package store

import (
	"context"
	"sync"

	"github.com/evenmoney/bookbot/internal/models"
)

// MemoryStore keeps the document in memory. Used in tests in place of a
// real backend; it round-trips through JSON so loads return independent
// copies, matching the file and Postgres backends.
type MemoryStore struct {
	mu       sync.Mutex
	doc      []byte
	defaults models.AppState
}

// NewMemoryStore creates an empty MemoryStore (fresh install).
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{defaults: models.DefaultState()}
}

// Load returns the stored document merged over defaults.
func (s *MemoryStore) Load(_ context.Context) models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return s.defaults
	}
	return decodeState(s.doc, s.defaults)
}

// Save overwrites the stored document.
func (s *MemoryStore) Save(_ context.Context, state models.AppState) {
	data := encodeState(state)
	if data == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = data
}

// Clear removes the stored document.
func (s *MemoryStore) Clear(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = nil
}
