// Package store defines persistence for enrichment records.
package store

import (
	"context"
	"errors"

	"github.com/tastemap/backend/pkg/place"
)

// ErrNotFound is returned by Get when no record exists for the key.
var ErrNotFound = errors.New("store: record not found")

// PlaceStore persists enrichment records keyed by entity key. Upsert
// replaces any existing record for the same key; records otherwise never
// change once written.
type PlaceStore interface {
	Get(ctx context.Context, entityKey string) (*place.EnrichmentRecord, error)
	Upsert(ctx context.Context, record *place.EnrichmentRecord) error
}
