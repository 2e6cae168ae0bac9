package stores

import (
	"context"
	"maps"
	"sync"

	"github.com/lonesomebyte537/lets/pkg/engine"
)

// MemoryStore keeps the settings document in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	doc   engine.SettingsDocument
	saves int
}

// NewMemoryStore creates a store preloaded with doc.
func NewMemoryStore(doc engine.SettingsDocument) *MemoryStore {
	return &MemoryStore{doc: cloneDocument(doc)}
}

// Load returns a copy of the stored document.
func (s *MemoryStore) Load(_ context.Context) (engine.SettingsDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDocument(s.doc), nil
}

// Save replaces the stored document.
func (s *MemoryStore) Save(_ context.Context, doc engine.SettingsDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = cloneDocument(doc)
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// cloneDocument copies the context maps. Values are shared; the engine never
// mutates the raw values it hands out or receives.
func cloneDocument(doc engine.SettingsDocument) engine.SettingsDocument {
	out := make(engine.SettingsDocument, len(doc))
	for scope, values := range doc {
		out[scope] = maps.Clone(values)
	}
	return out
}
