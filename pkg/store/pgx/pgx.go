// Package pgx persists enrichment records in PostgreSQL with pgvector
// embeddings.
package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/tastemap/backend/internal/util"
	"github.com/tastemap/backend/pkg/place"
	"github.com/tastemap/backend/pkg/store"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// PlaceStore implements store.PlaceStore on PostgreSQL. List fields are
// stored pipe-delimited; embeddings go into pgvector columns.
type PlaceStore struct {
	conn pgxIConn
}

// NewPlaceStoreParams configures a PlaceStore over an existing
// connection or pool.
type NewPlaceStoreParams struct {
	Conn pgxIConn
}

// NewPlaceStore creates a PostgreSQL-backed place store.
func NewPlaceStore(params NewPlaceStoreParams) *PlaceStore {
	return &PlaceStore{conn: params.Conn}
}

const getQuery = `
SELECT entity_key, pros, cons, keywords, signature_menu, phone, parking,
       price, hours, nearby_attractions, trust_score, embedding,
       image_embedding, created_at
FROM places
WHERE entity_key = $1`

// Get returns the record for the key or store.ErrNotFound.
func (s *PlaceStore) Get(ctx context.Context, entityKey string) (*place.EnrichmentRecord, error) {
	var (
		record         place.EnrichmentRecord
		pros           string
		cons           string
		keywords       string
		nearby         string
		embedding      *pgvector.Vector
		imageEmbedding *pgvector.Vector
	)

	err := s.conn.QueryRow(ctx, getQuery, entityKey).Scan(
		&record.EntityKey,
		&pros,
		&cons,
		&keywords,
		&record.SignatureMenu,
		&record.Phone,
		&record.Parking,
		&record.Price,
		&record.Hours,
		&nearby,
		&record.TrustScore,
		&embedding,
		&imageEmbedding,
		&record.CreatedAt,
	)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load place record: %w", err)
	}

	record.Pros = splitList(pros)
	record.Cons = splitList(cons)
	record.Keywords = splitList(keywords)
	record.NearbyAttractions = splitList(nearby)
	if embedding != nil {
		record.Embedding = embedding.Slice()
	}
	if imageEmbedding != nil {
		record.ImageEmbedding = imageEmbedding.Slice()
	}
	return &record, nil
}

const upsertQuery = `
INSERT INTO places (
	entity_key, pros, cons, keywords, signature_menu, phone, parking,
	price, hours, nearby_attractions, trust_score, embedding,
	image_embedding, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (entity_key) DO UPDATE SET
	pros = EXCLUDED.pros,
	cons = EXCLUDED.cons,
	keywords = EXCLUDED.keywords,
	signature_menu = EXCLUDED.signature_menu,
	phone = EXCLUDED.phone,
	parking = EXCLUDED.parking,
	price = EXCLUDED.price,
	hours = EXCLUDED.hours,
	nearby_attractions = EXCLUDED.nearby_attractions,
	trust_score = EXCLUDED.trust_score,
	embedding = EXCLUDED.embedding,
	image_embedding = EXCLUDED.image_embedding,
	created_at = EXCLUDED.created_at`

// Upsert writes the record, replacing any previous one for the key.
func (s *PlaceStore) Upsert(ctx context.Context, record *place.EnrichmentRecord) error {
	var embedding, imageEmbedding *pgvector.Vector
	if len(record.Embedding) > 0 {
		v := pgvector.NewVector(record.Embedding)
		embedding = &v
	}
	if len(record.ImageEmbedding) > 0 {
		v := pgvector.NewVector(record.ImageEmbedding)
		imageEmbedding = &v
	}

	_, err := s.conn.Exec(ctx, upsertQuery,
		record.EntityKey,
		joinList(record.Pros),
		joinList(record.Cons),
		joinList(record.Keywords),
		util.SanitizePostgresText(record.SignatureMenu),
		util.SanitizePostgresText(record.Phone),
		util.SanitizePostgresText(record.Parking),
		util.SanitizePostgresText(record.Price),
		util.SanitizePostgresText(record.Hours),
		joinList(record.NearbyAttractions),
		record.TrustScore,
		embedding,
		imageEmbedding,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert place record: %w", err)
	}
	return nil
}
