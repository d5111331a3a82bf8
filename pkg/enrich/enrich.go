// Package enrich computes and caches structured place enrichments from
// crawled review content.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tastemap/backend/pkg/ai"
	"github.com/tastemap/backend/pkg/crawl"
	"github.com/tastemap/backend/pkg/logger"
	"github.com/tastemap/backend/pkg/place"
	"github.com/tastemap/backend/pkg/search"
	"github.com/tastemap/backend/pkg/store"
	"github.com/tastemap/backend/pkg/trust"
)

// reviewQuerySuffixes are appended to the place name when discovering
// review pages.
var reviewQuerySuffixes = []string{"후기", "리뷰"}

// WebSearcher discovers candidate review pages. *search.Coordinator
// satisfies it.
type WebSearcher interface {
	SearchWeb(ctx context.Context, query string, perSourceLimit int) []search.WebHit
}

// PageFetcher loads the readable text of one page. *crawl.Crawler
// satisfies it.
type PageFetcher interface {
	PageText(ctx context.Context, pageURL string) string
}

// Enricher runs the crawl → score → summarize → embed chain behind a
// cache-aside store lookup. Concurrent requests for one entity share a
// single computation.
type Enricher struct {
	store      store.PlaceStore
	webSearch  WebSearcher
	fetcher    PageFetcher
	summarizer *Summarizer
	scorer     *trust.Scorer
	aiClient   ai.Client

	pagesPerSource int
	maxSnippets    int
	group          singleflight.Group
}

// NewEnricherParams configures an Enricher. PagesPerSource defaults to 3
// and MaxSnippets to 40.
type NewEnricherParams struct {
	Store          store.PlaceStore
	WebSearch      WebSearcher
	Fetcher        PageFetcher
	Summarizer     *Summarizer
	Scorer         *trust.Scorer
	AIClient       ai.Client
	PagesPerSource int
	MaxSnippets    int
}

// NewEnricher creates an Enricher.
func NewEnricher(params NewEnricherParams) *Enricher {
	pages := params.PagesPerSource
	if pages <= 0 {
		pages = 3
	}
	maxSnippets := params.MaxSnippets
	if maxSnippets <= 0 {
		maxSnippets = 40
	}
	return &Enricher{
		store:          params.Store,
		webSearch:      params.WebSearch,
		fetcher:        params.Fetcher,
		summarizer:     params.Summarizer,
		scorer:         params.Scorer,
		aiClient:       params.AIClient,
		pagesPerSource: pages,
		maxSnippets:    maxSnippets,
	}
}

// GetOrCompute returns the cached enrichment for the entity, computing
// and persisting it on a miss. A computation that finds no review
// snippets returns (nil, nil) and caches nothing, so a later call may
// succeed once content exists. Store read errors are returned as-is.
func (e *Enricher) GetOrCompute(ctx context.Context, entity place.Entity) (*place.EnrichmentRecord, error) {
	cached, err := e.store.Get(ctx, entity.Key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to read enrichment cache: %w", err)
	}

	record, err, _ := e.group.Do(entity.Key, func() (any, error) {
		// A concurrent flight may have filled the cache while this one
		// queued up.
		if cached, err := e.store.Get(ctx, entity.Key); err == nil {
			return cached, nil
		}
		return e.compute(ctx, entity)
	})
	if err != nil {
		return nil, err
	}
	return record.(*place.EnrichmentRecord), nil
}

// Recompute runs the full computation regardless of cache state and
// persists the result. Used by the re-enrichment worker.
func (e *Enricher) Recompute(ctx context.Context, entity place.Entity) (*place.EnrichmentRecord, error) {
	return e.compute(ctx, entity)
}

func (e *Enricher) compute(ctx context.Context, entity place.Entity) (*place.EnrichmentRecord, error) {
	snippets := e.mineSnippets(ctx, entity)
	if len(snippets) == 0 {
		logger.Info("[Enrich] no review content found", "entity", entity.Key)
		return (*place.EnrichmentRecord)(nil), nil
	}

	assessment := e.scorer.Assess(snippets)
	fields := e.summarizer.Summarize(ctx, entity, assessment.Snippets)

	record := &place.EnrichmentRecord{
		EntityKey:        entity.Key,
		EnrichmentFields: fields,
		TrustScore:       assessment.Score,
		CreatedAt:        time.Now().UTC(),
	}

	if embedding, err := e.aiClient.GenerateEmbedding(ctx, []byte(embeddingInput(entity, fields, assessment.Snippets))); err != nil {
		logger.Warn("[Enrich] embedding generation failed", "entity", entity.Key, "error", err)
	} else {
		record.Embedding = embedding
	}

	if err := e.store.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist enrichment: %w", err)
	}

	logger.Info("[Enrich] enrichment computed",
		"entity", entity.Key,
		"snippets", len(assessment.Snippets),
		"trust_score", assessment.Score,
	)
	return record, nil
}

// mineSnippets discovers review pages for the entity across all web
// sources and extracts review sentences from them.
func (e *Enricher) mineSnippets(ctx context.Context, entity place.Entity) []place.Snippet {
	seen := make(map[string]bool)
	snippets := make([]place.Snippet, 0)

	for _, suffix := range reviewQuerySuffixes {
		hits := e.webSearch.SearchWeb(ctx, entity.Name+" "+suffix, e.pagesPerSource)
		for _, hit := range hits {
			if seen[hit.URL] {
				continue
			}
			seen[hit.URL] = true

			text := e.fetcher.PageText(ctx, hit.URL)
			if text == "" {
				continue
			}
			for _, sentence := range crawl.CollectSnippets(text, e.maxSnippets-len(snippets)) {
				snippets = append(snippets, place.Snippet{
					Text:      sentence,
					SourceURL: hit.URL,
					SourceTag: hit.SourceTag,
				})
			}
			if len(snippets) >= e.maxSnippets {
				return snippets
			}
		}
	}
	return snippets
}

func embeddingInput(entity place.Entity, fields place.EnrichmentFields, snippets []place.Snippet) string {
	parts := make([]string, 0, len(snippets)+3)
	parts = append(parts, entity.Name, entity.Category)
	parts = append(parts, fields.Keywords...)
	for _, snippet := range snippets {
		parts = append(parts, snippet.Text)
	}
	return strings.Join(parts, "\n")
}
