// Package mining extracts word frequencies, top terms, hot topics, and
// wordcloud data from comment text.
package mining

import (
	"sort"
	"strings"

	"commentpulse/internal/logging"
	"commentpulse/internal/types"
)

// Tokenizer produces filtered tokens for frequency counting.
// *segment.Segmenter satisfies this.
type Tokenizer interface {
	Tokens(text string) []string
}

// WordCount is one term and its occurrence count.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Result holds the output of a mining pass.
type Result struct {
	TopWords    []WordCount    `json:"top_words"`
	TotalWords  int            `json:"total_words"`
	UniqueWords int            `json:"unique_words"`
	AllCounts   map[string]int `json:"-"`
}

// HotTopic is a frequently occurring term with example comments.
type HotTopic struct {
	Keyword         string   `json:"keyword"`
	Count           int      `json:"count"`
	RelatedComments int      `json:"related_comments"`
	Examples        []string `json:"examples"`
}

// Miner computes word statistics over comment sets.
type Miner struct {
	tokenizer Tokenizer
}

// NewMiner builds a miner around the given tokenizer.
func NewMiner(tokenizer Tokenizer) *Miner {
	return &Miner{tokenizer: tokenizer}
}

// Analyze counts token frequencies across all comments and returns the topN
// terms by count. Ties break lexicographically for deterministic output.
func (m *Miner) Analyze(comments []types.Comment, topN int) *Result {
	timer := logging.StartTimer(logging.CategoryMining, "Analyze")
	defer timer.Stop()

	counts := make(map[string]int)
	total := 0
	for _, c := range comments {
		for _, w := range m.tokenizer.Tokens(c.Content) {
			counts[w]++
			total++
		}
	}

	result := &Result{
		TotalWords:  total,
		UniqueWords: len(counts),
		AllCounts:   counts,
		TopWords:    topWords(counts, topN),
	}

	logging.Get(logging.CategoryMining).Info("mined %d comments: %d tokens, %d unique",
		len(comments), total, len(counts))

	return result
}

func topWords(counts map[string]int, n int) []WordCount {
	all := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		all = append(all, WordCount{Word: w, Count: c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Word < all[j].Word
	})
	if n > 0 && n < len(all) {
		all = all[:n]
	}
	return all
}

// HotTopics finds top terms occurring at least minCount times and collects up
// to 3 example comments containing each.
func (m *Miner) HotTopics(comments []types.Comment, minCount int) []HotTopic {
	result := m.Analyze(comments, 50)

	var topics []HotTopic
	for _, wc := range result.TopWords {
		if wc.Count < minCount {
			continue
		}

		related := 0
		var examples []string
		for _, c := range comments {
			if !strings.Contains(c.Content, wc.Word) {
				continue
			}
			related++
			if len(examples) < 3 {
				examples = append(examples, c.Content)
			}
		}

		topics = append(topics, HotTopic{
			Keyword:         wc.Word,
			Count:           wc.Count,
			RelatedComments: related,
			Examples:        examples,
		})
	}

	return topics
}

// WordcloudData returns terms occurring at least twice, for cloud rendering.
func (m *Miner) WordcloudData(comments []types.Comment) map[string]int {
	result := m.Analyze(comments, 0)

	cloud := make(map[string]int)
	for w, c := range result.AllCounts {
		if c >= 2 {
			cloud[w] = c
		}
	}
	return cloud
}
