// Package app constructs the shared dependency graph of the server and
// the worker from environment configuration.
package app

import (
	"github.com/tastemap/backend/internal/util"
	"github.com/tastemap/backend/pkg/ai"
	oai "github.com/tastemap/backend/pkg/ai/ollama"
	gai "github.com/tastemap/backend/pkg/ai/openai"
	"github.com/tastemap/backend/pkg/crawl"
	"github.com/tastemap/backend/pkg/enrich"
	"github.com/tastemap/backend/pkg/logger"
	"github.com/tastemap/backend/pkg/pipeline"
	"github.com/tastemap/backend/pkg/rank"
	"github.com/tastemap/backend/pkg/reconcile"
	"github.com/tastemap/backend/pkg/search"
	"github.com/tastemap/backend/pkg/search/kakao"
	"github.com/tastemap/backend/pkg/search/naver"
	"github.com/tastemap/backend/pkg/store"
	"github.com/tastemap/backend/pkg/trust"
)

// NewAIClient builds the configured AI adapter. AI_ADAPTER selects
// "ollama"; anything else gets the OpenAI-compatible client.
func NewAIClient() ai.Client {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewClient(oai.NewClientParams{
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewClient(gai.NewClientParams{
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),

			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),
			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
		})
	}
}

// NewSearchCoordinator builds the fan-out coordinator over the Naver and
// Kakao adapters.
func NewSearchCoordinator() *search.Coordinator {
	naverClient := naver.NewClient(naver.NewClientParams{
		ClientID:     util.GetEnv("NAVER_CLIENT_ID"),
		ClientSecret: util.GetEnv("NAVER_CLIENT_SECRET"),
	})
	kakaoClient := kakao.NewClient(kakao.NewClientParams{
		RESTKey: util.GetEnv("KAKAO_REST_KEY"),
	})

	return search.NewCoordinator(search.NewCoordinatorParams{
		Locals: []search.LocalSearcher{naverClient, kakaoClient},
		Webs:   []search.WebSearcher{naverClient, kakaoClient},
	})
}

// NewCrawler builds the page crawler. RENDER_API_URL enables the
// JavaScript rendering fallback; without it only direct fetches run.
func NewCrawler() *crawl.Crawler {
	var fallback crawl.Fetcher
	if renderURL := util.GetEnvString("RENDER_API_URL", ""); renderURL != "" {
		fallback = crawl.NewRenderFetcher(crawl.NewRenderFetcherParams{
			Endpoint: renderURL,
			APIKey:   util.GetEnv("RENDER_API_KEY"),
		})
	}

	return crawl.NewCrawler(crawl.NewCrawlerParams{
		Direct:   crawl.NewHTTPFetcher(crawl.NewHTTPFetcherParams{}),
		Fallback: fallback,
	})
}

// NewEnricher builds the enrichment chain on top of the given store.
func NewEnricher(placeStore store.PlaceStore, aiClient ai.Client, coordinator *search.Coordinator) *enrich.Enricher {
	return enrich.NewEnricher(enrich.NewEnricherParams{
		Store:      placeStore,
		WebSearch:  coordinator,
		Fetcher:    NewCrawler(),
		Summarizer: enrich.NewSummarizer(enrich.NewSummarizerParams{AIClient: aiClient}),
		// zero falls through to the scorer's default threshold
		Scorer: trust.NewScorer(trust.NewScorerParams{
			SimilarityThreshold: util.GetEnvNumeric("TRUST_SIMILARITY_THRESHOLD", 0),
		}),
		AIClient: aiClient,
	})
}

// NewPipeline builds the full request pipeline on top of the given store.
func NewPipeline(placeStore store.PlaceStore) *pipeline.Pipeline {
	aiClient := NewAIClient()
	coordinator := NewSearchCoordinator()

	return pipeline.NewPipeline(pipeline.NewPipelineParams{
		LocalSearch: coordinator,
		Reconciler:  reconcile.NewReconciler(reconcile.NewReconcilerParams{}),
		Enricher:    NewEnricher(placeStore, aiClient, coordinator),
		Ranker:      rank.NewRanker(rank.NewRankerParams{}),
		AIClient:    aiClient,
	})
}
