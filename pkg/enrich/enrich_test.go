package enrich

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tastemap/backend/pkg/ai"
	"github.com/tastemap/backend/pkg/place"
	"github.com/tastemap/backend/pkg/search"
	"github.com/tastemap/backend/pkg/store/memory"
	"github.com/tastemap/backend/pkg/trust"
)

type stubAI struct {
	completion    string
	completionErr error
	embedding     []float32
	embeddingErr  error
}

func (s *stubAI) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return s.completion, s.completionErr
}

func (s *stubAI) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return s.completionErr
}

func (s *stubAI) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return s.embedding, s.embeddingErr
}

func (s *stubAI) ResetMetrics() {}

func (s *stubAI) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

type stubWebSearch struct {
	hits  []search.WebHit
	calls atomic.Int32
}

func (s *stubWebSearch) SearchWeb(ctx context.Context, query string, perSourceLimit int) []search.WebHit {
	s.calls.Add(1)
	return s.hits
}

type stubPages struct {
	texts map[string]string
}

func (s *stubPages) PageText(ctx context.Context, pageURL string) string {
	return s.texts[pageURL]
}

const reviewPage = `여기 파스타가 정말 맛있어서 또 오고 싶었어요.
주차 공간이 넓어서 차를 가져가도 전혀 불편하지 않았습니다.`

func newTestEnricher(store *memory.PlaceStore, webSearch WebSearcher, fetcher PageFetcher, aiClient ai.Client) *Enricher {
	return NewEnricher(NewEnricherParams{
		Store:      store,
		WebSearch:  webSearch,
		Fetcher:    fetcher,
		Summarizer: NewSummarizer(NewSummarizerParams{AIClient: aiClient}),
		Scorer:     trust.NewScorer(trust.NewScorerParams{}),
		AIClient:   aiClient,
	})
}

func TestGetOrCompute_MissComputesAndPersists(t *testing.T) {
	placeStore := memory.NewPlaceStore()
	webSearch := &stubWebSearch{hits: []search.WebHit{
		{URL: "https://blog.example/1", SourceTag: "naver"},
	}}
	pages := &stubPages{texts: map[string]string{"https://blog.example/1": reviewPage}}
	aiClient := &stubAI{
		completion: "here is the summary: ```json\n{\"pros\": [\"맛있는 파스타\"], \"keywords\": [\"파스타\"]}\n```",
		embedding:  []float32{0.1, 0.2},
	}

	e := newTestEnricher(placeStore, webSearch, pages, aiClient)
	entity := place.Entity{Key: "a식당_서울강남1번지", Name: "A식당"}

	record, err := e.GetOrCompute(context.Background(), entity)
	if err != nil {
		t.Fatalf("GetOrCompute() error: %v", err)
	}
	if record == nil {
		t.Fatal("expected a record")
	}
	if len(record.Pros) != 1 || record.Pros[0] != "맛있는 파스타" {
		t.Errorf("unexpected pros: %v", record.Pros)
	}
	if len(record.Embedding) != 2 {
		t.Errorf("expected embedding persisted, got %v", record.Embedding)
	}

	if _, err := placeStore.Get(context.Background(), entity.Key); err != nil {
		t.Fatalf("expected record persisted: %v", err)
	}
}

func TestGetOrCompute_HitSkipsComputation(t *testing.T) {
	placeStore := memory.NewPlaceStore()
	stored := &place.EnrichmentRecord{
		EntityKey: "a식당_서울강남1번지",
		EnrichmentFields: place.EnrichmentFields{
			Pros: []string{"cached"},
		},
		TrustScore: 80,
		CreatedAt:  time.Now().UTC(),
	}
	if err := placeStore.Upsert(context.Background(), stored); err != nil {
		t.Fatal(err)
	}

	webSearch := &stubWebSearch{}
	e := newTestEnricher(placeStore, webSearch, &stubPages{}, &stubAI{})

	record, err := e.GetOrCompute(context.Background(), place.Entity{Key: stored.EntityKey, Name: "A식당"})
	if err != nil {
		t.Fatalf("GetOrCompute() error: %v", err)
	}
	if record == nil || record.Pros[0] != "cached" {
		t.Fatalf("expected cached record, got %+v", record)
	}
	if webSearch.calls.Load() != 0 {
		t.Error("cache hit must not trigger a web search")
	}
}

func TestGetOrCompute_NoSnippetsCachesNothing(t *testing.T) {
	placeStore := memory.NewPlaceStore()
	webSearch := &stubWebSearch{hits: []search.WebHit{
		{URL: "https://blog.example/empty", SourceTag: "naver"},
	}}
	pages := &stubPages{texts: map[string]string{
		"https://blog.example/empty": "오늘 날씨가 참 좋네요",
	}}

	e := newTestEnricher(placeStore, webSearch, pages, &stubAI{})
	entity := place.Entity{Key: "b카페_서울서초3번지", Name: "B카페"}

	record, err := e.GetOrCompute(context.Background(), entity)
	if err != nil {
		t.Fatalf("GetOrCompute() error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record, got %+v", record)
	}

	// Nothing was cached, so the next call searches again.
	if _, err = e.GetOrCompute(context.Background(), entity); err != nil {
		t.Fatal(err)
	}
	if calls := webSearch.calls.Load(); calls < 3 {
		t.Errorf("expected a fresh search per call, got %d total searches", calls)
	}
}

func TestGetOrCompute_UnparseableSummaryKeepsRecord(t *testing.T) {
	placeStore := memory.NewPlaceStore()
	webSearch := &stubWebSearch{hits: []search.WebHit{
		{URL: "https://blog.example/1", SourceTag: "naver"},
	}}
	pages := &stubPages{texts: map[string]string{"https://blog.example/1": reviewPage}}
	aiClient := &stubAI{completion: "I cannot produce JSON today."}

	e := newTestEnricher(placeStore, webSearch, pages, aiClient)

	record, err := e.GetOrCompute(context.Background(), place.Entity{Key: "k", Name: "A식당"})
	if err != nil {
		t.Fatalf("GetOrCompute() error: %v", err)
	}
	if record == nil {
		t.Fatal("expected a record despite unparseable summary")
	}
	if len(record.Pros) != 0 || len(record.Keywords) != 0 {
		t.Errorf("expected zero-value fields, got %+v", record.EnrichmentFields)
	}
}

func TestRecompute_BypassesCache(t *testing.T) {
	placeStore := memory.NewPlaceStore()
	stored := &place.EnrichmentRecord{
		EntityKey:        "a식당_서울강남1번지",
		EnrichmentFields: place.EnrichmentFields{Pros: []string{"stale"}},
	}
	if err := placeStore.Upsert(context.Background(), stored); err != nil {
		t.Fatal(err)
	}

	webSearch := &stubWebSearch{hits: []search.WebHit{
		{URL: "https://blog.example/1", SourceTag: "naver"},
	}}
	pages := &stubPages{texts: map[string]string{"https://blog.example/1": reviewPage}}
	aiClient := &stubAI{completion: "```json\n{\"pros\": [\"fresh\"]}\n```"}

	e := newTestEnricher(placeStore, webSearch, pages, aiClient)

	record, err := e.Recompute(context.Background(), place.Entity{Key: stored.EntityKey, Name: "A식당"})
	if err != nil {
		t.Fatalf("Recompute() error: %v", err)
	}
	if record == nil || record.Pros[0] != "fresh" {
		t.Fatalf("expected recomputed record, got %+v", record)
	}

	reloaded, err := placeStore.Get(context.Background(), stored.EntityKey)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Pros[0] != "fresh" {
		t.Errorf("expected store updated, got %v", reloaded.Pros)
	}
	if webSearch.calls.Load() == 0 {
		t.Error("recompute must search even with a cached record")
	}
}
