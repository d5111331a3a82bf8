package crawl

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jarcoal/httpmock"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>후기</title></head>
<body>
<nav>홈 | 카테고리 | 로그인</nav>
<article>
<h1>A식당 방문 후기</h1>
<p>여기 파스타가 정말 맛있어서 다음에 또 오고 싶었어요. 면 삶기가 완벽했고
소스도 진해서 만족스러웠습니다. 전반적으로 분위기가 아늑해서 데이트 코스로
추천하고 싶어요. 주차 공간이 넓어서 차를 가져가도 전혀 불편하지 않았습니다.</p>
</article>
</body></html>`

func TestHTTPFetcher_ExtractsArticleText(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://blog.example/post/1",
		func(req *http.Request) (*http.Response, error) {
			if ua := req.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
				t.Errorf("expected browser user agent, got %q", ua)
			}
			resp := httpmock.NewStringResponse(http.StatusOK, articleHTML)
			resp.Header.Set("Content-Type", "text/html; charset=utf-8")
			return resp, nil
		})

	f := NewHTTPFetcher(NewHTTPFetcherParams{})

	text, err := f.FetchText(context.Background(), "https://blog.example/post/1")
	if err != nil {
		t.Fatalf("FetchText() error: %v", err)
	}
	if !strings.Contains(text, "맛있어서") {
		t.Errorf("expected article body in text, got %q", text)
	}
	if strings.Contains(text, "로그인") {
		t.Errorf("expected navigation to be stripped, got %q", text)
	}
}

func TestHTTPFetcher_NonOKStatusErrors(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://blog.example/gone",
		httpmock.NewStringResponder(http.StatusForbidden, "blocked"))

	f := NewHTTPFetcher(NewHTTPFetcherParams{})

	if _, err := f.FetchText(context.Background(), "https://blog.example/gone"); err == nil {
		t.Fatal("expected error on 403")
	}
}

type stubFetcher struct {
	text  string
	err   error
	calls atomic.Int32
}

func (s *stubFetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	s.calls.Add(1)
	return s.text, s.err
}

func TestCrawler_FallsBackToRenderer(t *testing.T) {
	direct := &stubFetcher{err: errors.New("blocked")}
	fallback := &stubFetcher{text: "rendered text"}

	c := NewCrawler(NewCrawlerParams{Direct: direct, Fallback: fallback})
	got := c.PageText(context.Background(), "https://blog.example/js")

	if got != "rendered text" {
		t.Fatalf("expected fallback text, got %q", got)
	}
}

func TestCrawler_BothFailYieldsEmpty(t *testing.T) {
	direct := &stubFetcher{err: errors.New("blocked")}
	fallback := &stubFetcher{err: errors.New("render quota exceeded")}

	c := NewCrawler(NewCrawlerParams{Direct: direct, Fallback: fallback})
	if got := c.PageText(context.Background(), "https://blog.example/js"); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestCrawler_CachesPerURL(t *testing.T) {
	direct := &stubFetcher{text: "page text"}

	c := NewCrawler(NewCrawlerParams{Direct: direct})
	_ = c.PageText(context.Background(), "https://blog.example/post/1")
	_ = c.PageText(context.Background(), "https://blog.example/post/1")

	if calls := direct.calls.Load(); calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", calls)
	}
}
