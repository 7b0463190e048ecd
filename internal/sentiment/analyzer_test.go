package sentiment

import (
	"math"
	"strings"
	"testing"

	"commentpulse/internal/types"

	"github.com/stretchr/testify/assert"
)

// spaceTokenizer splits on spaces so tests control token boundaries exactly.
type spaceTokenizer struct{}

func (spaceTokenizer) Cut(text string) []string {
	return strings.Fields(text)
}

func TestScore_Basic(t *testing.T) {
	a := NewAnalyzer(spaceTokenizer{})

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"single positive", "好", 1.0},
		{"single negative", "差", -1.0},
		{"no sentiment words", "今天 天气", 0},
		{"empty", "", 0},
		{"mixed cancels", "好 差", 0},
		{"diluted by neutral words", "好 今天 天气 晴朗", 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Score(tt.text)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestScore_Negation(t *testing.T) {
	a := NewAnalyzer(spaceTokenizer{})

	// "不 好" flips positive to negative: -1 / 2 tokens
	assert.InDelta(t, -0.5, a.Score("不 好"), 1e-9)

	// Negation only flips the next polarity word
	assert.InDelta(t, 0.0, a.Score("不 好 好"), 1e-9) // (-1 + 1) / 2... tokens=3 -> 0

	// Double negation on separate words
	assert.InDelta(t, 0.0, a.Score("不 差 不 好"), 1e-9)
}

func TestScore_Intensity(t *testing.T) {
	a := NewAnalyzer(spaceTokenizer{})

	// Degree adverb scales the next polarity word: 1.5 / 2 tokens
	assert.InDelta(t, 0.75, a.Score("非常 好"), 1e-9)

	// Weak adverb dampens: -0.8 / 2 tokens
	assert.InDelta(t, -0.4, a.Score("有点 差"), 1e-9)

	// Negation then adverb then word: -(1*1.3)/3
	assert.InDelta(t, -1.3/3, a.Score("不 很 好"), 1e-9)
}

func TestScore_Clamp(t *testing.T) {
	a := NewAnalyzer(spaceTokenizer{})
	// One token scoring 1.5 would exceed 1 after normalization
	got := a.Score("非常")
	assert.InDelta(t, 0, got, 1e-9) // adverb alone scores nothing

	got = a.Score("超赞")
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestClassify(t *testing.T) {
	a := NewAnalyzer(spaceTokenizer{})

	tests := []struct {
		score float64
		want  string
	}{
		{0.5, LabelPositive},
		{0.11, LabelPositive},
		{0.1, LabelNeutral},
		{0.0, LabelNeutral},
		{-0.1, LabelNeutral},
		{-0.11, LabelNegative},
		{-0.9, LabelNegative},
	}
	for _, tt := range tests {
		if got := a.Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestClassify_CustomThresholds(t *testing.T) {
	a := NewAnalyzer(spaceTokenizer{}, WithThresholds(0.5, -0.5))
	assert.Equal(t, LabelNeutral, a.Classify(0.3))
	assert.Equal(t, LabelPositive, a.Classify(0.6))
}

func TestAnalyzeComments(t *testing.T) {
	a := NewAnalyzer(spaceTokenizer{})

	comments := []types.Comment{
		{Author: "a", Content: "非常 好"},
		{Author: "b", Content: "太差了"},
		{Author: "c", Content: "今天 天气"},
	}

	counts := a.AnalyzeComments(comments)

	assert.Equal(t, 1, counts[LabelPositive])
	assert.Equal(t, 1, counts[LabelNegative])
	assert.Equal(t, 1, counts[LabelNeutral])

	// Comments are annotated in place
	assert.Equal(t, LabelPositive, comments[0].SentimentLabel)
	assert.InDelta(t, 0.75, comments[0].SentimentScore, 1e-9)
	assert.Equal(t, LabelNegative, comments[1].SentimentLabel)
	assert.Equal(t, LabelNeutral, comments[2].SentimentLabel)
	assert.Zero(t, comments[2].SentimentScore)
}

func TestSummarize(t *testing.T) {
	comments := []types.Comment{
		{SentimentScore: 0.5, SentimentLabel: LabelPositive},
		{SentimentScore: -0.5, SentimentLabel: LabelNegative},
		{SentimentScore: 0, SentimentLabel: LabelNeutral},
		{SentimentScore: 0, SentimentLabel: LabelNeutral},
	}

	s := Summarize(comments)
	assert.Equal(t, 1, s.Positive)
	assert.Equal(t, 1, s.Negative)
	assert.Equal(t, 2, s.Neutral)
	assert.InDelta(t, 0.0, s.MeanScore, 1e-9)
	assert.InDelta(t, 0.125, s.Variance, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Positive)
	assert.Zero(t, s.MeanScore)
}

func TestLoadLexiconFile(t *testing.T) {
	lex := DefaultLexicon()

	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, lex.LoadLexiconFile("/nonexistent/lexicon.yaml"))
	})

	t.Run("empty path is ignored", func(t *testing.T) {
		assert.NoError(t, lex.LoadLexiconFile(""))
	})
}
