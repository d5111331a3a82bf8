// Package pipeline wires search, reconciliation, enrichment, and ranking
// into the three operations the API exposes.
package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tastemap/backend/pkg/ai"
	"github.com/tastemap/backend/pkg/logger"
	"github.com/tastemap/backend/pkg/place"
	"github.com/tastemap/backend/pkg/rank"
	"github.com/tastemap/backend/pkg/reconcile"
)

// NoCandidatesMessage is shown when no provider returned anything usable.
const NoCandidatesMessage = "조건에 맞는 장소를 찾지 못했어요. 지역이나 검색어를 바꿔서 다시 시도해 보세요."

// LocalSearcher is the discovery entry point. *search.Coordinator
// satisfies it.
type LocalSearcher interface {
	SearchLocal(ctx context.Context, query string, perSourceLimit int) []place.RawCandidate
}

// Enricher computes or returns cached enrichments. *enrich.Enricher
// satisfies it.
type Enricher interface {
	GetOrCompute(ctx context.Context, entity place.Entity) (*place.EnrichmentRecord, error)
}

// Recommendation is the outcome of one recommendation request. Empty
// Results come with a user-facing Message explaining what to try next.
type Recommendation struct {
	Message string               `json:"message,omitempty"`
	Results []place.RankedResult `json:"results"`
}

// Pipeline runs the discovery → enrichment → ranking chain.
type Pipeline struct {
	localSearch LocalSearcher
	reconciler  *reconcile.Reconciler
	enricher    Enricher
	ranker      *rank.Ranker
	aiClient    ai.Client

	perSourceLimit int
	enrichLimit    int
	enrichWorkers  int
}

// NewPipelineParams configures a Pipeline. PerSourceLimit defaults to 10,
// EnrichLimit (entities enriched per recommendation) to 5, EnrichWorkers
// to 3.
type NewPipelineParams struct {
	LocalSearch    LocalSearcher
	Reconciler     *reconcile.Reconciler
	Enricher       Enricher
	Ranker         *rank.Ranker
	AIClient       ai.Client
	PerSourceLimit int
	EnrichLimit    int
	EnrichWorkers  int
}

// NewPipeline creates a Pipeline.
func NewPipeline(params NewPipelineParams) *Pipeline {
	perSource := params.PerSourceLimit
	if perSource <= 0 {
		perSource = 10
	}
	enrichLimit := params.EnrichLimit
	if enrichLimit <= 0 {
		enrichLimit = 5
	}
	workers := params.EnrichWorkers
	if workers <= 0 {
		workers = 3
	}
	return &Pipeline{
		localSearch:    params.LocalSearch,
		reconciler:     params.Reconciler,
		enricher:       params.Enricher,
		ranker:         params.Ranker,
		aiClient:       params.AIClient,
		perSourceLimit: perSource,
		enrichLimit:    enrichLimit,
		enrichWorkers:  workers,
	}
}

// Discover fans the query out to all providers and reconciles the raw
// candidates into entities. Provider failures shrink the result; an
// unreachable upstream never surfaces as an error.
func (p *Pipeline) Discover(ctx context.Context, query place.Query) []place.Entity {
	candidates := p.localSearch.SearchLocal(ctx, searchText(query, queryIntent{}), p.perSourceLimit)
	entities := p.reconciler.Reconcile(candidates)

	logger.Info("[Pipeline] discovery finished",
		"query", query.Text,
		"candidates", len(candidates),
		"entities", len(entities),
	)
	return entities
}

// Enrich returns the enrichment for one entity, computing it on a cache
// miss. A nil record with nil error means no review content exists yet.
func (p *Pipeline) Enrich(ctx context.Context, entity place.Entity) (*place.EnrichmentRecord, error) {
	return p.enricher.GetOrCompute(ctx, entity)
}

// Recommend runs the full chain: intent extraction, discovery,
// enrichment of the leading entities, profile embedding, and hybrid
// ranking. An empty candidate set is a valid outcome, not an error.
func (p *Pipeline) Recommend(ctx context.Context, query place.Query, profile place.Profile, topN int) (Recommendation, error) {
	intent := p.extractIntent(ctx, query.Text)
	if len(intent.Categories) > 0 {
		profile.PreferredCategories = append(profile.PreferredCategories, intent.Categories...)
	}

	candidates := p.localSearch.SearchLocal(ctx, searchText(query, intent), p.perSourceLimit)
	entities := p.reconciler.Reconcile(candidates)
	if len(entities) == 0 {
		return Recommendation{Message: NoCandidatesMessage, Results: []place.RankedResult{}}, nil
	}

	enrichments := p.enrichLeading(ctx, entities)

	if len(profile.Embedding) == 0 && len(profile.ReviewTexts) > 0 {
		profile.Embedding = p.profileEmbedding(ctx, profile.ReviewTexts)
	}

	results := p.ranker.Rank(entities, enrichments, profile, topN)
	return Recommendation{Results: results}, nil
}

// enrichLeading enriches the top entities of the reconciliation order
// concurrently. Entities beyond the limit stay unenriched and rank on
// the cold path, and so does any entity whose enrichment failed: a store
// or compute error degrades that one entity, never the recommendation.
func (p *Pipeline) enrichLeading(ctx context.Context, entities []place.Entity) map[string]*place.EnrichmentRecord {
	limit := p.enrichLimit
	if limit > len(entities) {
		limit = len(entities)
	}

	records := make([]*place.EnrichmentRecord, limit)
	var eg errgroup.Group
	eg.SetLimit(p.enrichWorkers)
	for i := range limit {
		eg.Go(func() error {
			record, err := p.enricher.GetOrCompute(ctx, entities[i])
			if err != nil {
				logger.Warn("[Pipeline] enrichment failed, ranking without it",
					"entity", entities[i].Key, "error", err)
				return nil
			}
			records[i] = record
			return nil
		})
	}
	_ = eg.Wait() // workers never return errors

	enrichments := make(map[string]*place.EnrichmentRecord, limit)
	for i, record := range records {
		if record != nil {
			enrichments[entities[i].Key] = record
		}
	}
	return enrichments
}

// profileEmbedding averages the embeddings of the user's past review
// texts. Embedding failures degrade to the cold-start path.
func (p *Pipeline) profileEmbedding(ctx context.Context, reviewTexts []string) []float32 {
	var sum []float32
	count := 0
	for _, text := range reviewTexts {
		embedding, err := p.aiClient.GenerateEmbedding(ctx, []byte(text))
		if err != nil {
			logger.Warn("[Pipeline] profile embedding failed", "error", err)
			continue
		}
		if sum == nil {
			sum = make([]float32, len(embedding))
		}
		if len(embedding) != len(sum) {
			continue
		}
		for i, v := range embedding {
			sum[i] += v
		}
		count++
	}
	if count == 0 {
		return nil
	}
	for i := range sum {
		sum[i] /= float32(count)
	}
	return sum
}
