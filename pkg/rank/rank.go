// Package rank orders reconciled entities by hybrid embedding similarity
// against a user profile.
package rank

import (
	"math"
	"sort"
	"strings"

	"github.com/tastemap/backend/pkg/place"
)

const (
	// DefaultTextWeight and DefaultImageWeight split the hybrid score
	// between the text and image embedding similarities.
	DefaultTextWeight  = 0.7
	DefaultImageWeight = 0.3

	// DefaultCategoryBonus is added when an entity's category matches one
	// of the profile's preferred categories.
	DefaultCategoryBonus = 0.1

	// coldStartScore ranks every entity equally when the profile has no
	// embedding, leaving the order to trust and reconciliation ranking.
	coldStartScore = 1.0
)

// Ranker computes hybrid scores and orders results.
type Ranker struct {
	textWeight    float64
	imageWeight   float64
	categoryBonus float64
}

// NewRankerParams configures a Ranker. Zero weights fall back to the
// 0.7/0.3 defaults, a zero bonus to 0.1.
type NewRankerParams struct {
	TextWeight    float64
	ImageWeight   float64
	CategoryBonus float64
}

// NewRanker creates a Ranker.
func NewRanker(params NewRankerParams) *Ranker {
	textWeight := params.TextWeight
	imageWeight := params.ImageWeight
	if textWeight <= 0 && imageWeight <= 0 {
		textWeight = DefaultTextWeight
		imageWeight = DefaultImageWeight
	}
	bonus := params.CategoryBonus
	if bonus <= 0 {
		bonus = DefaultCategoryBonus
	}
	return &Ranker{
		textWeight:    textWeight,
		imageWeight:   imageWeight,
		categoryBonus: bonus,
	}
}

// Rank scores the entities against the profile and returns at most topN
// results, best first. Enrichments are looked up by entity key and may be
// missing; a missing or embedding-less enrichment contributes zero
// similarity. With no profile embedding every entity gets the cold-start
// base score and ordering falls to trust and reconciliation rank.
//
// Ties are broken by trust score descending, then by the entities' input
// order (the reconciler's corroboration ranking).
func (r *Ranker) Rank(
	entities []place.Entity,
	enrichments map[string]*place.EnrichmentRecord,
	profile place.Profile,
	topN int,
) []place.RankedResult {
	results := make([]place.RankedResult, 0, len(entities))
	for _, entity := range entities {
		enrichment := enrichments[entity.Key]
		results = append(results, place.RankedResult{
			Entity:     entity,
			Enrichment: enrichment,
			Score:      r.score(entity, enrichment, profile),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return trustOf(results[i].Enrichment) > trustOf(results[j].Enrichment)
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results
}

func (r *Ranker) score(entity place.Entity, enrichment *place.EnrichmentRecord, profile place.Profile) float64 {
	score := coldStartScore
	if len(profile.Embedding) > 0 {
		score = 0
		if enrichment != nil {
			score = r.textWeight*Cosine(profile.Embedding, enrichment.Embedding) +
				r.imageWeight*Cosine(profile.Embedding, enrichment.ImageEmbedding)
		}
	}

	if matchesPreference(entity.Category, profile.PreferredCategories) {
		score += r.categoryBonus
	}
	return score
}

func trustOf(enrichment *place.EnrichmentRecord) int {
	if enrichment == nil {
		return -1
	}
	return enrichment.TrustScore
}

// matchesPreference does substring matching in both directions because
// provider categories are hierarchies like "음식점 > 한식" while
// preferences are single terms.
func matchesPreference(category string, preferred []string) bool {
	if category == "" {
		return false
	}
	for _, p := range preferred {
		if p == "" {
			continue
		}
		if strings.Contains(category, p) || strings.Contains(p, category) {
			return true
		}
	}
	return false
}

// Cosine is the cosine similarity of two vectors. Mismatched lengths,
// empty vectors, and zero norms all score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
