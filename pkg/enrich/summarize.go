package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/tastemap/backend/internal/util"
	"github.com/tastemap/backend/pkg/ai"
	"github.com/tastemap/backend/pkg/logger"
	"github.com/tastemap/backend/pkg/place"
)

const summarizePrompt = `
# Task Context
You are an assistant that distills visitor review sentences about one place into a structured summary. You will be given the place and a numbered list of review sentences collected from the web.

# Background Data
Place: %s (%s)
Review sentences:
%s

# Detailed Task Description & Rules
- Base every field strictly on the review sentences; never invent details.
- "pros" and "cons" are short phrases in the language of the reviews.
- "keywords" are single words or very short phrases characterizing the place.
- "signature_menu", "phone", "parking", "price", "hours" and "nearby_attractions" stay empty ("" or []) when the reviews do not mention them.
- Keep each list under 5 entries.

# Output Formatting
Return a JSON object with this structure:
{
  "pros": [string],
  "cons": [string],
  "keywords": [string],
  "signature_menu": string,
  "phone": string,
  "parking": string,
  "price": string,
  "hours": string,
  "nearby_attractions": [string]
}
Output must be valid JSON only (no commentary, no extra text).
`

const defaultMaxPromptTokens = 6000

// Summarizer turns mined review snippets into structured enrichment
// fields via the language model.
type Summarizer struct {
	aiClient        ai.Client
	maxPromptTokens int
}

// NewSummarizerParams configures a Summarizer. Zero MaxPromptTokens
// falls back to 6000.
type NewSummarizerParams struct {
	AIClient        ai.Client
	MaxPromptTokens int
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(params NewSummarizerParams) *Summarizer {
	maxTokens := params.MaxPromptTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxPromptTokens
	}
	return &Summarizer{
		aiClient:        params.AIClient,
		maxPromptTokens: maxTokens,
	}
}

// Summarize asks the model for a structured summary of the snippets. It
// never fails the enrichment: a model error or unparseable response is
// logged and yields zero-value fields.
func (s *Summarizer) Summarize(ctx context.Context, entity place.Entity, snippets []place.Snippet) place.EnrichmentFields {
	if len(snippets) == 0 {
		return place.EnrichmentFields{}
	}

	prompt := fmt.Sprintf(summarizePrompt, entity.Name, entity.Category, s.snippetList(snippets))

	response, err := util.RetryWithContext(ctx, 2, func(ctx context.Context) (string, error) {
		return s.aiClient.GenerateCompletion(ctx, prompt, ai.WithTemperature(0.1))
	})
	if err != nil {
		logger.Warn("[Enrich] summarization request failed", "entity", entity.Key, "error", err)
		return place.EnrichmentFields{}
	}

	var fields place.EnrichmentFields
	if err := ai.UnmarshalFlexible(ai.ExtractJSONBlock(response), &fields); err != nil {
		logger.Warn("[Enrich] summarization response unparseable", "entity", entity.Key, "error", err, "response", response)
		return place.EnrichmentFields{}
	}
	return fields
}

// snippetList renders the numbered snippet lines, dropping trailing
// snippets once the token budget is spent.
func (s *Summarizer) snippetList(snippets []place.Snippet) string {
	var b strings.Builder
	budget := s.maxPromptTokens

	enc, err := tiktoken.GetEncoding("o200k_base")
	for i, snippet := range snippets {
		line := fmt.Sprintf("%d. %s\n", i+1, snippet.Text)
		if err == nil {
			cost := len(enc.Encode(line, nil, nil))
			if cost > budget {
				break
			}
			budget -= cost
		}
		b.WriteString(line)
	}
	return b.String()
}
