// Package crawl fetches review pages and mines review sentences out of
// their readable text.
package crawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/sync/singleflight"

	"github.com/tastemap/backend/pkg/logger"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0 Safari/537.36"

// Fetcher retrieves one page and returns its readable text.
type Fetcher interface {
	FetchText(ctx context.Context, pageURL string) (string, error)
}

// HTTPFetcher fetches pages directly. Many blog platforms block obvious
// bots, so requests go out with a browser user agent.
type HTTPFetcher struct {
	userAgent  string
	httpClient *http.Client
}

// NewHTTPFetcherParams configures an HTTPFetcher. Zero Timeout means 5s.
type NewHTTPFetcherParams struct {
	UserAgent string
	Timeout   time.Duration
}

// NewHTTPFetcher creates a plain HTTP fetcher.
func NewHTTPFetcher(params NewHTTPFetcherParams) *HTTPFetcher {
	ua := params.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPFetcher{
		userAgent:  ua,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchText fetches the page and runs the readability pass over it.
func (f *HTTPFetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return extractReadable(resp.Body, pageURL)
}

// RenderFetcher fetches pages through a JavaScript rendering service,
// for pages whose content only exists after client-side rendering.
type RenderFetcher struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewRenderFetcherParams configures a RenderFetcher. Endpoint is the
// rendering service base URL; the target page and key are passed as
// query parameters.
type NewRenderFetcherParams struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// NewRenderFetcher creates a rendering-service fetcher.
func NewRenderFetcher(params NewRenderFetcherParams) *RenderFetcher {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &RenderFetcher{
		endpoint:   params.Endpoint,
		apiKey:     params.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchText renders the page remotely and runs the readability pass over
// the returned HTML.
func (f *RenderFetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	params := url.Values{}
	params.Set("api_key", f.apiKey)
	params.Set("url", pageURL)
	params.Set("render_js", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected render status %d", resp.StatusCode)
	}

	return extractReadable(resp.Body, pageURL)
}

func extractReadable(r io.Reader, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}

	article, err := readability.FromReader(r, parsed)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	var builder strings.Builder
	if err := article.RenderText(&builder); err != nil {
		return "", fmt.Errorf("failed to render article text: %w", err)
	}
	return builder.String(), nil
}

// Crawler fetches review pages with a direct attempt first and an
// optional rendering fallback. Page text is cached per URL for the
// crawler's lifetime; concurrent requests for one URL share one fetch.
type Crawler struct {
	direct   Fetcher
	fallback Fetcher

	cache   map[string]string
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewCrawlerParams configures a Crawler. Fallback may be nil when no
// rendering service is configured.
type NewCrawlerParams struct {
	Direct   Fetcher
	Fallback Fetcher
}

// NewCrawler creates a Crawler.
func NewCrawler(params NewCrawlerParams) *Crawler {
	return &Crawler{
		direct:   params.Direct,
		fallback: params.Fallback,
		cache:    make(map[string]string),
	}
}

// PageText returns the readable text of the page, or an empty string
// when the direct fetch and the fallback both fail. It never errors:
// an unreachable page just contributes nothing.
func (c *Crawler) PageText(ctx context.Context, pageURL string) string {
	c.cacheMu.RLock()
	if cached, ok := c.cache[pageURL]; ok {
		c.cacheMu.RUnlock()
		return cached
	}
	c.cacheMu.RUnlock()

	text, _, _ := c.group.Do(pageURL, func() (any, error) {
		text, err := c.direct.FetchText(ctx, pageURL)
		if err != nil && c.fallback != nil {
			logger.Debug("[Crawl] direct fetch failed, trying render fallback", "url", pageURL, "error", err)
			text, err = c.fallback.FetchText(ctx, pageURL)
		}
		if err != nil {
			logger.Warn("[Crawl] page unreachable", "url", pageURL, "error", err)
			text = ""
		}

		c.cacheMu.Lock()
		c.cache[pageURL] = text
		c.cacheMu.Unlock()
		return text, nil
	})
	return text.(string)
}
