package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/tastemap/backend/internal/util"
	"github.com/tastemap/backend/pkg/logger"
	"github.com/tastemap/backend/pkg/place"
)

const intentPrompt = `
# Task Context
You are an assistant that extracts structured search intent from a free-form place recommendation request, usually written in Korean.

# Background Data
User request: "%s"

# Detailed Task Description & Rules
- "region" is the place or neighborhood the user wants to search in ("" when absent).
- "theme" is the occasion or mood, like 데이트 or 가족 모임 ("" when absent).
- "categories" are the kinds of places the user asks for, like 한식 or 카페 ([] when absent).
- Never invent values the request does not state or clearly imply.

# Output Formatting
Return a JSON object with this structure:
{
  "region": string,
  "theme": string,
  "categories": [string]
}
Output must be valid JSON only (no commentary, no extra text).
`

// queryIntent is the structured reading of a free-form request.
type queryIntent struct {
	Region     string   `json:"region"`
	Theme      string   `json:"theme"`
	Categories []string `json:"categories"`
}

// extractIntent asks the model to structure the request. Any failure
// falls back to the zero intent, which leaves the raw query untouched.
func (p *Pipeline) extractIntent(ctx context.Context, rawQuery string) queryIntent {
	var intent queryIntent
	err := util.RetryErr(2, func() error {
		return p.aiClient.GenerateCompletionWithFormat(
			ctx,
			"query_intent",
			"Structured search intent extracted from a place recommendation request",
			fmt.Sprintf(intentPrompt, rawQuery),
			&intent,
		)
	})
	if err != nil {
		logger.Warn("[Pipeline] intent extraction failed, using raw query", "error", err)
		return queryIntent{}
	}
	return intent
}

// searchText composes the provider query from the request and the
// extracted intent, skipping parts already present in the raw text.
func searchText(query place.Query, intent queryIntent) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{firstNonEmpty(query.Region, intent.Region), firstNonEmpty(query.Theme, intent.Theme)} {
		if part != "" && !strings.Contains(query.Text, part) {
			parts = append(parts, part)
		}
	}
	parts = append(parts, query.Text)
	return strings.TrimSpace(strings.Join(parts, " "))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
