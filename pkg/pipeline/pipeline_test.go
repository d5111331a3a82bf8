package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/tastemap/backend/pkg/ai"
	"github.com/tastemap/backend/pkg/place"
	"github.com/tastemap/backend/pkg/rank"
	"github.com/tastemap/backend/pkg/reconcile"
)

type stubLocalSearch struct {
	candidates []place.RawCandidate
	lastQuery  string
}

func (s *stubLocalSearch) SearchLocal(ctx context.Context, query string, perSourceLimit int) []place.RawCandidate {
	s.lastQuery = query
	return s.candidates
}

type stubEnricher struct {
	records map[string]*place.EnrichmentRecord
	err     error
}

func (s *stubEnricher) GetOrCompute(ctx context.Context, entity place.Entity) (*place.EnrichmentRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records[entity.Key], nil
}

type stubAI struct {
	intent       *queryIntent
	intentErr    error
	embedding    []float32
	embeddingErr error
}

func (s *stubAI) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", nil
}

func (s *stubAI) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	if s.intentErr != nil {
		return s.intentErr
	}
	if s.intent != nil {
		*out.(*queryIntent) = *s.intent
	}
	return nil
}

func (s *stubAI) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return s.embedding, s.embeddingErr
}

func (s *stubAI) ResetMetrics() {}

func (s *stubAI) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func newTestPipeline(local LocalSearcher, enricher Enricher, aiClient ai.Client) *Pipeline {
	return NewPipeline(NewPipelineParams{
		LocalSearch: local,
		Reconciler:  reconcile.NewReconciler(reconcile.NewReconcilerParams{}),
		Enricher:    enricher,
		Ranker:      rank.NewRanker(rank.NewRankerParams{}),
		AIClient:    aiClient,
	})
}

func TestRecommend_NoCandidatesIsNotAnError(t *testing.T) {
	p := newTestPipeline(&stubLocalSearch{}, &stubEnricher{}, &stubAI{})

	got, err := p.Recommend(context.Background(), place.Query{Text: "화성에서 브런치"}, place.Profile{}, 5)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(got.Results) != 0 {
		t.Fatalf("expected no results, got %d", len(got.Results))
	}
	if got.Message != NoCandidatesMessage {
		t.Fatalf("expected user-facing message, got %q", got.Message)
	}
}

func TestRecommend_RanksReconciledEntities(t *testing.T) {
	local := &stubLocalSearch{candidates: []place.RawCandidate{
		{Name: "A식당", Address: "서울 강남 1번지", SourceTag: "naver"},
		{Name: "A식당", Address: "서울 강남 1번지 2층", SourceTag: "kakao"},
		{Name: "B카페", Address: "서울 서초 3번지", SourceTag: "naver"},
	}}
	key := place.CanonicalKey("A식당", "서울 강남 1번지", place.DefaultKeyAddressPrefix)
	enricher := &stubEnricher{records: map[string]*place.EnrichmentRecord{
		key: {EntityKey: key, TrustScore: 80},
	}}

	got, err := newTestPipeline(local, enricher, &stubAI{}).
		Recommend(context.Background(), place.Query{Text: "강남 맛집"}, place.Profile{}, 5)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}

	if got.Message != "" {
		t.Errorf("unexpected message %q", got.Message)
	}
	if len(got.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got.Results))
	}
	first := got.Results[0]
	if first.Entity.Name != "A식당" || !first.Entity.Corroborated {
		t.Fatalf("expected corroborated entity first, got %+v", first.Entity)
	}
	if first.Enrichment == nil || first.Enrichment.TrustScore != 80 {
		t.Fatalf("expected enrichment attached, got %+v", first.Enrichment)
	}
}

func TestRecommend_IntentFailureFallsBackToRawQuery(t *testing.T) {
	local := &stubLocalSearch{}
	p := newTestPipeline(local, &stubEnricher{}, &stubAI{intentErr: errors.New("model offline")})

	_, err := p.Recommend(context.Background(), place.Query{Text: "강남 맛집"}, place.Profile{}, 5)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if local.lastQuery != "강남 맛집" {
		t.Fatalf("expected raw query, got %q", local.lastQuery)
	}
}

func TestRecommend_IntentRegionExtendsQuery(t *testing.T) {
	local := &stubLocalSearch{}
	p := newTestPipeline(local, &stubEnricher{}, &stubAI{intent: &queryIntent{Region: "강남"}})

	_, err := p.Recommend(context.Background(), place.Query{Text: "데이트 맛집"}, place.Profile{}, 5)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if local.lastQuery != "강남 데이트 맛집" {
		t.Fatalf("expected region-prefixed query, got %q", local.lastQuery)
	}
}

func TestRecommend_IntentCategoriesEarnBonus(t *testing.T) {
	local := &stubLocalSearch{candidates: []place.RawCandidate{
		{Name: "초밥집", Address: "주소 하나", Category: "음식점 > 일식", SourceTag: "naver"},
		{Name: "한식당", Address: "주소 둘", Category: "음식점 > 한식", SourceTag: "naver"},
	}}
	p := newTestPipeline(local, &stubEnricher{}, &stubAI{intent: &queryIntent{Categories: []string{"한식"}}})

	got, err := p.Recommend(context.Background(), place.Query{Text: "맛집"}, place.Profile{}, 5)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if got.Results[0].Entity.Name != "한식당" {
		t.Fatalf("expected preferred category first, got %q", got.Results[0].Entity.Name)
	}
}

func TestRecommend_EnrichmentFailureDegradesToUnenriched(t *testing.T) {
	local := &stubLocalSearch{candidates: []place.RawCandidate{
		{Name: "A식당", Address: "서울 강남 1번지", SourceTag: "naver"},
	}}
	p := newTestPipeline(local, &stubEnricher{err: errors.New("db down")}, &stubAI{})

	got, err := p.Recommend(context.Background(), place.Query{Text: "강남 맛집"}, place.Profile{}, 5)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(got.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got.Results))
	}
	if got.Results[0].Enrichment != nil {
		t.Fatalf("expected entity ranked without enrichment, got %+v", got.Results[0].Enrichment)
	}
}

func TestDiscover_ReconcilesCandidates(t *testing.T) {
	local := &stubLocalSearch{candidates: []place.RawCandidate{
		{Name: "A식당", Address: "서울 강남 1번지", SourceTag: "naver"},
		{Name: "A식당", Address: "서울 강남 1번지", SourceTag: "kakao"},
	}}
	p := newTestPipeline(local, &stubEnricher{}, &stubAI{})

	got := p.Discover(context.Background(), place.Query{Text: "강남 맛집"})

	if len(got) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(got))
	}
	if !got[0].Corroborated {
		t.Error("expected corroborated entity")
	}
}

func TestSearchText(t *testing.T) {
	tests := []struct {
		name   string
		query  place.Query
		intent queryIntent
		want   string
	}{
		{
			name:  "raw text only",
			query: place.Query{Text: "강남 맛집"},
			want:  "강남 맛집",
		},
		{
			name:   "region and theme prepended",
			query:  place.Query{Text: "맛집"},
			intent: queryIntent{Region: "강남", Theme: "데이트"},
			want:   "강남 데이트 맛집",
		},
		{
			name:   "region already in text not repeated",
			query:  place.Query{Text: "강남 맛집"},
			intent: queryIntent{Region: "강남"},
			want:   "강남 맛집",
		},
		{
			name:   "explicit query fields win over intent",
			query:  place.Query{Text: "맛집", Region: "서초"},
			intent: queryIntent{Region: "강남"},
			want:   "서초 맛집",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := searchText(tc.query, tc.intent); got != tc.want {
				t.Fatalf("searchText() = %q, want %q", got, tc.want)
			}
		})
	}
}
