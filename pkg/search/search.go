// Package search defines the narrow interfaces upstream place-search
// providers are adapted to, and the coordinator that fans one logical
// query out across all of them.
package search

import (
	"context"

	"github.com/tastemap/backend/pkg/place"
)

// WebHit is one web or blog document returned by a provider's document
// search. Hits point at pages worth crawling for review content.
type WebHit struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	SourceTag   string `json:"source_tag"`
}

// LocalSearcher adapts one provider's place search. Implementations must
// never return an error: upstream failures, timeouts, and malformed
// payloads are logged and reported as an empty slice.
type LocalSearcher interface {
	// Tag identifies the provider on every candidate it produces.
	Tag() string
	SearchLocal(ctx context.Context, query string, limit int) []place.RawCandidate
}

// WebSearcher adapts one provider's web/blog document search under the
// same never-fail contract as LocalSearcher.
type WebSearcher interface {
	Tag() string
	SearchWeb(ctx context.Context, query string, limit int) []WebHit
}
