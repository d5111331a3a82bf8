package crawl

import (
	"iter"
	"strings"
)

// MinSnippetLength is the minimum rune length of a mined sentence. Very
// short fragments carry no usable opinion.
const MinSnippetLength = 20

// reviewKeywords are the markers a sentence must contain to count as
// review content rather than navigation, boilerplate, or filler.
var reviewKeywords = []string{
	"맛있", "맛집", "추천", "별로", "최고", "친절",
	"분위기", "가성비", "웨이팅", "주차", "재방문",
	"서비스", "메뉴", "가격", "좋았", "아쉬",
}

// MineSnippets lazily yields review sentences from page text: the text is
// split into sentences, and a sentence qualifies when it is at least
// MinSnippetLength runes long and mentions a review keyword. The sequence
// is finite and can be ranged over more than once.
func MineSnippets(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for sentence := range sentences(text) {
			if !isReviewSentence(sentence) {
				continue
			}
			if !yield(sentence) {
				return
			}
		}
	}
}

// CollectSnippets materializes at most maxCount mined snippets.
func CollectSnippets(text string, maxCount int) []string {
	out := make([]string, 0, maxCount)
	for snippet := range MineSnippets(text) {
		out = append(out, snippet)
		if len(out) >= maxCount {
			break
		}
	}
	return out
}

func sentences(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		var b strings.Builder
		flush := func() bool {
			sentence := strings.TrimSpace(b.String())
			b.Reset()
			if sentence == "" {
				return true
			}
			return yield(sentence)
		}

		for _, r := range text {
			switch r {
			case '.', '。', '!', '?', '\n':
				if !flush() {
					return
				}
			default:
				b.WriteRune(r)
			}
		}
		flush()
	}
}

func isReviewSentence(sentence string) bool {
	if len([]rune(sentence)) < MinSnippetLength {
		return false
	}
	for _, keyword := range reviewKeywords {
		if strings.Contains(sentence, keyword) {
			return true
		}
	}
	return false
}
