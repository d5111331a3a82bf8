// Package naver adapts the Naver open API local and blog searches.
package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/k3a/html2text"

	"github.com/tastemap/backend/pkg/logger"
	"github.com/tastemap/backend/pkg/place"
	"github.com/tastemap/backend/pkg/search"
)

// SourceTag marks every candidate and hit produced by this adapter.
const SourceTag = "naver"

const (
	defaultBaseURL = "https://openapi.naver.com"
	localPath      = "/v1/search/local.json"
	blogPath       = "/v1/search/blog.json"
)

// Client calls the Naver open API. The zero limit of the search methods
// falls back to 5 items, the API default.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewClientParams configures a Naver client. BaseURL is overridable for
// tests and defaults to the public endpoint.
type NewClientParams struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
}

// NewClient creates a Naver search client.
func NewClient(params NewClientParams) *Client {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:      baseURL,
		clientID:     params.ClientID,
		clientSecret: params.ClientSecret,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Tag implements search.LocalSearcher and search.WebSearcher.
func (c *Client) Tag() string { return SourceTag }

type localItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Telephone   string `json:"telephone"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress"`
	MapX        string `json:"mapx"`
	MapY        string `json:"mapy"`
}

type localResponse struct {
	Items []localItem `json:"items"`
}

// SearchLocal queries the Naver local search. Upstream failure of any
// kind yields an empty slice.
func (c *Client) SearchLocal(ctx context.Context, query string, limit int) []place.RawCandidate {
	body, err := c.get(ctx, localPath, query, limit)
	if err != nil {
		logger.Warn("[Naver] local search failed", "query", query, "error", err)
		return nil
	}

	var parsed localResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		logger.Warn("[Naver] local search returned malformed payload", "query", query, "error", err)
		return nil
	}

	candidates := make([]place.RawCandidate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		candidates = append(candidates, place.RawCandidate{
			Name:        html2text.HTML2Text(item.Title),
			Address:     item.Address,
			RoadAddress: item.RoadAddress,
			Category:    item.Category,
			Phone:       item.Telephone,
			Lon:         item.MapX,
			Lat:         item.MapY,
			SourceTag:   SourceTag,
			OriginURL:   item.Link,
		})
	}
	return candidates
}

type blogItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

type blogResponse struct {
	Items []blogItem `json:"items"`
}

// SearchWeb queries the Naver blog search for review pages.
func (c *Client) SearchWeb(ctx context.Context, query string, limit int) []search.WebHit {
	body, err := c.get(ctx, blogPath, query, limit)
	if err != nil {
		logger.Warn("[Naver] blog search failed", "query", query, "error", err)
		return nil
	}

	var parsed blogResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		logger.Warn("[Naver] blog search returned malformed payload", "query", query, "error", err)
		return nil
	}

	hits := make([]search.WebHit, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		hits = append(hits, search.WebHit{
			Title:       html2text.HTML2Text(item.Title),
			URL:         item.Link,
			Description: html2text.HTML2Text(item.Description),
			SourceTag:   SourceTag,
		})
	}
	return hits
}

func (c *Client) get(ctx context.Context, path, query string, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", fmt.Sprint(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
