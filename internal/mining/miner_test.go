package mining

import (
	"strings"
	"testing"

	"commentpulse/internal/types"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// fieldTokenizer splits on spaces; tests control token boundaries exactly.
type fieldTokenizer struct{}

func (fieldTokenizer) Tokens(text string) []string {
	return strings.Fields(text)
}

func comments(texts ...string) []types.Comment {
	out := make([]types.Comment, len(texts))
	for i, t := range texts {
		out[i] = types.Comment{Author: "u", Content: t}
	}
	return out
}

func TestAnalyze(t *testing.T) {
	m := NewMiner(fieldTokenizer{})

	result := m.Analyze(comments(
		"画面 好看",
		"画面 音乐 好看",
		"音乐",
	), 2)

	assert.Equal(t, 6, result.TotalWords)
	assert.Equal(t, 3, result.UniqueWords)

	want := []WordCount{
		{Word: "好看", Count: 2},
		{Word: "画面", Count: 2},
	}
	if diff := cmp.Diff(want, result.TopWords); diff != "" {
		t.Errorf("TopWords mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 2, result.AllCounts["音乐"])
}

func TestAnalyze_TieBreaksLexicographic(t *testing.T) {
	m := NewMiner(fieldTokenizer{})

	result := m.Analyze(comments("b a c"), 0)

	want := []WordCount{{Word: "a", Count: 1}, {Word: "b", Count: 1}, {Word: "c", Count: 1}}
	if diff := cmp.Diff(want, result.TopWords); diff != "" {
		t.Errorf("TopWords mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	m := NewMiner(fieldTokenizer{})
	result := m.Analyze(nil, 10)

	assert.Zero(t, result.TotalWords)
	assert.Zero(t, result.UniqueWords)
	assert.Empty(t, result.TopWords)
}

func TestHotTopics(t *testing.T) {
	m := NewMiner(fieldTokenizer{})

	cs := comments(
		"画面 不错",
		"画面 很棒",
		"画面 一般",
		"画面 太好",
		"音乐 好听",
	)

	topics := m.HotTopics(cs, 3)

	assert.Len(t, topics, 1)
	topic := topics[0]
	assert.Equal(t, "画面", topic.Keyword)
	assert.Equal(t, 4, topic.Count)
	assert.Equal(t, 4, topic.RelatedComments)
	// At most 3 examples even when more comments match
	assert.Len(t, topic.Examples, 3)
	assert.Equal(t, "画面 不错", topic.Examples[0])
}

func TestHotTopics_NoneAboveThreshold(t *testing.T) {
	m := NewMiner(fieldTokenizer{})
	topics := m.HotTopics(comments("画面", "音乐"), 5)
	assert.Empty(t, topics)
}

func TestWordcloudData(t *testing.T) {
	m := NewMiner(fieldTokenizer{})

	cloud := m.WordcloudData(comments("画面 画面 音乐", "好看"))

	// Singletons are excluded
	assert.Equal(t, map[string]int{"画面": 2}, cloud)
}
