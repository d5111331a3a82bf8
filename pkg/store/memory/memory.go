// Package memory holds enrichment records in process memory, for tests
// and for running without a database.
package memory

import (
	"context"
	"sync"

	"github.com/tastemap/backend/pkg/place"
	"github.com/tastemap/backend/pkg/store"
)

// PlaceStore is an in-memory store.PlaceStore.
type PlaceStore struct {
	mu      sync.RWMutex
	records map[string]place.EnrichmentRecord
}

// NewPlaceStore creates an empty in-memory store.
func NewPlaceStore() *PlaceStore {
	return &PlaceStore{records: make(map[string]place.EnrichmentRecord)}
}

// Get returns the record for the key or store.ErrNotFound.
func (s *PlaceStore) Get(ctx context.Context, entityKey string) (*place.EnrichmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[entityKey]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &record, nil
}

// Upsert stores a copy of the record under its entity key.
func (s *PlaceStore) Upsert(ctx context.Context, record *place.EnrichmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.EntityKey] = *record
	return nil
}
