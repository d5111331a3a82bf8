package kakao

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
)

func newTestClient() *Client {
	return NewClient(NewClientParams{
		RESTKey: "rest-key",
		BaseURL: "https://dapi.kakao.test",
	})
}

func TestSearchLocal_ParsesDocuments(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://dapi.kakao.test/v2/local/search/keyword.json",
		func(req *http.Request) (*http.Response, error) {
			if got := req.Header.Get("Authorization"); got != "KakaoAK rest-key" {
				t.Errorf("unexpected Authorization header %q", got)
			}
			return httpmock.NewStringResponse(http.StatusOK, `{
				"documents": [
					{
						"place_name": "A식당",
						"address_name": "서울 강남 1번지 2층",
						"road_address_name": "서울 강남대로 1",
						"phone": "02-123-4567",
						"category_name": "음식점 > 한식",
						"x": "127.000",
						"y": "37.500",
						"place_url": "https://place.map.kakao.test/1"
					}
				]
			}`), nil
		})

	got := newTestClient().SearchLocal(context.Background(), "강남 한식", 5)

	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	c := got[0]
	if c.Name != "A식당" || c.Address != "서울 강남 1번지 2층" {
		t.Errorf("unexpected candidate: %+v", c)
	}
	if c.SourceTag != SourceTag {
		t.Errorf("expected source tag %q, got %q", SourceTag, c.SourceTag)
	}
}

func TestSearchLocal_UpstreamFailureYieldsEmpty(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://dapi.kakao.test/v2/local/search/keyword.json",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"msg":"wrong key"}`))

	got := newTestClient().SearchLocal(context.Background(), "q", 5)
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d candidates", len(got))
	}
}

func TestSearchWeb_ParsesAndStripsMarkup(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://dapi.kakao.test/v2/search/web",
		httpmock.NewStringResponder(http.StatusOK, `{
			"documents": [
				{
					"title": "<b>A식당</b> 리뷰",
					"contents": "파스타가 <b>맛있</b>어요",
					"url": "https://blog.example/post/2"
				}
			]
		}`))

	got := newTestClient().SearchWeb(context.Background(), "A식당 리뷰", 5)

	if len(got) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(got))
	}
	if got[0].Title != "A식당 리뷰" {
		t.Errorf("expected markup-free title, got %q", got[0].Title)
	}
	if got[0].Description != "파스타가 맛있어요" {
		t.Errorf("expected markup-free description, got %q", got[0].Description)
	}
}
