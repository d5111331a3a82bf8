// Package kakao adapts the Kakao REST API local keyword and web searches.
package kakao

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
const SourceTag = "kakao"

const (
	defaultBaseURL = "https://dapi.kakao.com"
	localPath      = "/v2/local/search/keyword.json"
	webPath        = "/v2/search/web"
)

// Client calls the Kakao REST API with a single REST API key.
type Client struct {
	baseURL    string
	restKey    string
	httpClient *http.Client
}

// NewClientParams configures a Kakao client. BaseURL is overridable for
// tests and defaults to the public endpoint.
type NewClientParams struct {
	RESTKey string
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a Kakao search client.
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
		baseURL:    baseURL,
		restKey:    params.RESTKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Tag implements search.LocalSearcher and search.WebSearcher.
func (c *Client) Tag() string { return SourceTag }

type localDocument struct {
	PlaceName       string `json:"place_name"`
	AddressName     string `json:"address_name"`
	RoadAddressName string `json:"road_address_name"`
	Phone           string `json:"phone"`
	CategoryName    string `json:"category_name"`
	X               string `json:"x"`
	Y               string `json:"y"`
	PlaceURL        string `json:"place_url"`
}

type localResponse struct {
	Documents []localDocument `json:"documents"`
}

// SearchLocal queries the Kakao keyword place search. Upstream failure of
// any kind yields an empty slice.
func (c *Client) SearchLocal(ctx context.Context, query string, limit int) []place.RawCandidate {
	body, err := c.get(ctx, localPath, query, limit)
	if err != nil {
		logger.Warn("[Kakao] local search failed", "query", query, "error", err)
		return nil
	}

	var parsed localResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		logger.Warn("[Kakao] local search returned malformed payload", "query", query, "error", err)
		return nil
	}

	candidates := make([]place.RawCandidate, 0, len(parsed.Documents))
	for _, doc := range parsed.Documents {
		candidates = append(candidates, place.RawCandidate{
			Name:        doc.PlaceName,
			Address:     doc.AddressName,
			RoadAddress: doc.RoadAddressName,
			Category:    doc.CategoryName,
			Phone:       doc.Phone,
			Lon:         doc.X,
			Lat:         doc.Y,
			SourceTag:   SourceTag,
			OriginURL:   doc.PlaceURL,
		})
	}
	return candidates
}

type webDocument struct {
	Title    string `json:"title"`
	Contents string `json:"contents"`
	URL      string `json:"url"`
}

type webResponse struct {
	Documents []webDocument `json:"documents"`
}

// SearchWeb queries the Kakao web document search for review pages.
func (c *Client) SearchWeb(ctx context.Context, query string, limit int) []search.WebHit {
	body, err := c.get(ctx, webPath, query, limit)
	if err != nil {
		logger.Warn("[Kakao] web search failed", "query", query, "error", err)
		return nil
	}

	var parsed webResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		logger.Warn("[Kakao] web search returned malformed payload", "query", query, "error", err)
		return nil
	}

	hits := make([]search.WebHit, 0, len(parsed.Documents))
	for _, doc := range parsed.Documents {
		hits = append(hits, search.WebHit{
			Title:       html2text.HTML2Text(doc.Title),
			URL:         doc.URL,
			Description: html2text.HTML2Text(doc.Contents),
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
	params.Set("size", fmt.Sprint(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.restKey)

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
