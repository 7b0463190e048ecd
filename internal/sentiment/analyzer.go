// Package sentiment implements lexicon-based sentiment scoring for comment
// text. Scoring walks the token stream once: negation words flip the next
// polarity hit, degree adverbs scale it, and the summed score is normalized
// by token count into [-1, 1].
package sentiment

import (
	"commentpulse/internal/logging"
	"commentpulse/internal/types"
)

// Label values for classified comments.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Tokenizer segments text into words. *segment.Segmenter satisfies this.
type Tokenizer interface {
	Cut(text string) []string
}

// Analyzer scores and classifies comment text.
type Analyzer struct {
	lexicon   *Lexicon
	tokenizer Tokenizer

	positiveThreshold float64
	negativeThreshold float64
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithThresholds overrides the classification cut points.
func WithThresholds(positive, negative float64) Option {
	return func(a *Analyzer) {
		a.positiveThreshold = positive
		a.negativeThreshold = negative
	}
}

// WithLexicon replaces the default vocabulary.
func WithLexicon(lex *Lexicon) Option {
	return func(a *Analyzer) {
		a.lexicon = lex
	}
}

// NewAnalyzer builds an analyzer around the given tokenizer.
func NewAnalyzer(tokenizer Tokenizer, opts ...Option) *Analyzer {
	a := &Analyzer{
		lexicon:           DefaultLexicon(),
		tokenizer:         tokenizer,
		positiveThreshold: 0.1,
		negativeThreshold: -0.1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Score computes the sentiment score of a single sentence in [-1, 1].
func (a *Analyzer) Score(text string) float64 {
	words := a.tokenizer.Cut(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	negation := false
	intensity := 1.0

	for _, word := range words {
		if _, ok := a.lexicon.Negation[word]; ok {
			negation = true
			continue
		}
		// Degree adverbs scale the next polarity word.
		if w, ok := a.lexicon.Intensity[word]; ok {
			intensity = w
			continue
		}

		var wordScore float64
		if _, ok := a.lexicon.Positive[word]; ok {
			wordScore = 1
		} else if _, ok := a.lexicon.Negative[word]; ok {
			wordScore = -1
		} else {
			continue
		}

		if negation {
			wordScore = -wordScore
			negation = false
		}

		score += wordScore * intensity
		intensity = 1.0
	}

	// Normalize by token count and clamp to [-1, 1]
	score /= float64(len(words))
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

// Classify maps a score to a label using the configured thresholds.
func (a *Analyzer) Classify(score float64) string {
	switch {
	case score > a.positiveThreshold:
		return LabelPositive
	case score < a.negativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// AnalyzeComments scores every comment in place and returns label counts.
func (a *Analyzer) AnalyzeComments(comments []types.Comment) map[string]int {
	timer := logging.StartTimer(logging.CategorySentiment, "AnalyzeComments")
	defer timer.Stop()

	counts := map[string]int{
		LabelPositive: 0,
		LabelNegative: 0,
		LabelNeutral:  0,
	}

	for i := range comments {
		score := a.Score(comments[i].Content)
		label := a.Classify(score)
		comments[i].SentimentScore = score
		comments[i].SentimentLabel = label
		counts[label]++
	}

	logging.Get(logging.CategorySentiment).Info(
		"analyzed %d comments: %d positive, %d negative, %d neutral",
		len(comments), counts[LabelPositive], counts[LabelNegative], counts[LabelNeutral])

	return counts
}

// Summary aggregates sentiment statistics over analyzed comments.
type Summary struct {
	Positive  int     `json:"positive"`
	Negative  int     `json:"negative"`
	Neutral   int     `json:"neutral"`
	MeanScore float64 `json:"mean_score"`
	Variance  float64 `json:"variance"`
}

// Summarize computes the sentiment summary for analyzed comments.
func Summarize(comments []types.Comment) Summary {
	var s Summary
	if len(comments) == 0 {
		return s
	}

	var sum float64
	for _, c := range comments {
		sum += c.SentimentScore
		switch c.SentimentLabel {
		case LabelPositive:
			s.Positive++
		case LabelNegative:
			s.Negative++
		case LabelNeutral:
			s.Neutral++
		}
	}
	s.MeanScore = sum / float64(len(comments))

	var sq float64
	for _, c := range comments {
		d := c.SentimentScore - s.MeanScore
		sq += d * d
	}
	s.Variance = sq / float64(len(comments))

	return s
}
