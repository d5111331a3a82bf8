package crawl

import (
	"slices"
	"testing"
)

const samplePage = `블로그 홈. 로그인.
여기 파스타가 정말 맛있어서 다음에 또 오고 싶었어요!
메뉴.
주차 공간이 넓어서 차를 가져가도 전혀 불편하지 않았습니다.
짧은 문장 맛있다.
오늘 날씨가 맑고 화창해서 산책하기 좋은 하루였습니다.
전반적으로 분위기가 아늑해서 데이트 코스로 추천하고 싶어요.`

func TestMineSnippets_FiltersByLengthAndKeyword(t *testing.T) {
	got := slices.Collect(MineSnippets(samplePage))

	want := []string{
		"여기 파스타가 정말 맛있어서 다음에 또 오고 싶었어요",
		"주차 공간이 넓어서 차를 가져가도 전혀 불편하지 않았습니다",
		"전반적으로 분위기가 아늑해서 데이트 코스로 추천하고 싶어요",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("mined snippets = %#v, want %#v", got, want)
	}
}

func TestMineSnippets_Restartable(t *testing.T) {
	seq := MineSnippets(samplePage)

	first := slices.Collect(seq)
	second := slices.Collect(seq)

	if !slices.Equal(first, second) {
		t.Fatalf("second pass differs: %v vs %v", first, second)
	}
}

func TestMineSnippets_EarlyStop(t *testing.T) {
	var got []string
	for snippet := range MineSnippets(samplePage) {
		got = append(got, snippet)
		break
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 snippet after early break, got %d", len(got))
	}
}

func TestCollectSnippets_Caps(t *testing.T) {
	got := CollectSnippets(samplePage, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(got))
	}
}

func TestMineSnippets_EmptyText(t *testing.T) {
	if got := slices.Collect(MineSnippets("")); len(got) != 0 {
		t.Fatalf("expected no snippets from empty text, got %v", got)
	}
}
