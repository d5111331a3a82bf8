// Package trust deduplicates mined review snippets and derives a
// heuristic confidence score from cross-source corroboration.
package trust

import (
	"regexp"

	"github.com/tastemap/backend/pkg/place"
)

// DefaultSimilarityThreshold is the ratio above which two snippets count
// as the same statement. Korean review sentences paraphrase heavily, so
// the threshold sits below exact-match territory.
const DefaultSimilarityThreshold = 0.72

// DefaultAdPenalty is subtracted from the score once per advertising
// disclosure found in the snippet texts.
const DefaultAdPenalty = 15

// adPatterns match the stock disclosure phrasing of sponsored Korean
// blog reviews.
var adPatterns = []*regexp.Regexp{
	regexp.MustCompile(`소정의\s*원고료`),
	regexp.MustCompile(`체험단`),
	regexp.MustCompile(`업체로부터\s*제공`),
	regexp.MustCompile(`광고\s*참고`),
	regexp.MustCompile(`협찬`),
}

// Assessment is the outcome of scoring one entity's snippets.
type Assessment struct {
	// Snippets is the deduplicated snippet set, first occurrence kept.
	Snippets []place.Snippet

	// Score is the trust score in [0,100]. More cross-source agreement
	// raises it; advertising disclosures lower it.
	Score int
}

// Scorer scores snippet sets. The zero threshold and penalty fall back
// to the package defaults.
type Scorer struct {
	threshold float64
	adPenalty int
}

// NewScorerParams configures a Scorer.
type NewScorerParams struct {
	SimilarityThreshold float64
	AdPenalty           int
}

// NewScorer creates a Scorer.
func NewScorer(params NewScorerParams) *Scorer {
	threshold := params.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	penalty := params.AdPenalty
	if penalty <= 0 {
		penalty = DefaultAdPenalty
	}
	return &Scorer{threshold: threshold, adPenalty: penalty}
}

// Assess deduplicates the snippets and computes the trust score.
//
// A snippet whose similarity to an already-kept snippet reaches the
// threshold is dropped. When the dropped snippet came from a different
// source than the kept one, the pair counts as corroboration: two
// providers surfaced the same statement independently. Duplicates within
// one source never corroborate anything.
func (s *Scorer) Assess(snippets []place.Snippet) Assessment {
	if len(snippets) == 0 {
		return Assessment{Snippets: []place.Snippet{}, Score: 0}
	}

	kept := make([]place.Snippet, 0, len(snippets))
	crossCount := 0

	for _, candidate := range snippets {
		duplicate := false
		for _, existing := range kept {
			if Similarity(candidate.Text, existing.Text) < s.threshold {
				continue
			}
			duplicate = true
			if candidate.SourceTag != existing.SourceTag {
				crossCount++
			}
			break
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}

	score := crossCount * 2 * 100 / len(kept)

	for _, snippet := range kept {
		for _, pattern := range adPatterns {
			if pattern.MatchString(snippet.Text) {
				score -= s.adPenalty
			}
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Assessment{Snippets: kept, Score: score}
}

// Similarity is the ratio of matching content between two strings on
// runes: 2*M/T, where M is the total length of the matching blocks and
// T the combined length. Equal strings score 1, disjoint strings 0.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	matches := matchingRunes(ra, rb)
	return 2 * float64(matches) / float64(total)
}

// matchingRunes sums the matching blocks found by recursively taking the
// longest common substring and matching what lies on either side of it.
func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:ai], b[:bi]) +
		matchingRunes(a[ai+size:], b[bi+size:])
}

func longestCommonBlock(a, b []rune) (ai, bi, size int) {
	// lengths[j] is the length of the common suffix ending at a[i], b[j-1]
	// from the previous row.
	lengths := make([]int, len(b)+1)
	for i := range a {
		prev := 0
		for j := range b {
			cur := lengths[j+1]
			if a[i] == b[j] {
				lengths[j+1] = prev + 1
				if lengths[j+1] > size {
					size = lengths[j+1]
					ai = i - size + 1
					bi = j - size + 1
				}
			} else {
				lengths[j+1] = 0
			}
			prev = cur
		}
	}
	return ai, bi, size
}
