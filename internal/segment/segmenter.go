// Package segment wraps gse to provide Chinese word segmentation for the
// sentiment analyzer and the text miner, plus the shared text normalization
// used before tokenizing.
package segment

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-ego/gse"
	"golang.org/x/text/width"
)

// baseStopwords are always filtered regardless of any stopword file.
var baseStopwords = map[string]struct{}{
	"的": {}, "了": {}, "在": {}, "是": {}, "我": {}, "有": {}, "和": {}, "就": {},
	"不": {}, "人": {}, "都": {}, "一": {}, "一个": {}, "上": {}, "也": {}, "很": {},
	"到": {}, "说": {}, "要": {}, "去": {}, "你": {}, "会": {}, "着": {}, "没有": {},
	"看": {}, "好": {}, "自己": {}, "这": {}, "这个": {},
}

// nonWordPattern matches everything that is neither a word character nor a
// CJK ideograph; emoji and punctuation are stripped by it.
var nonWordPattern = regexp.MustCompile(`[^\w\x{4e00}-\x{9fff}\s]`)

var spacePattern = regexp.MustCompile(`\s+`)

// Segmenter tokenizes comment text. Safe for concurrent use once built.
type Segmenter struct {
	seg       gse.Segmenter
	stopwords map[string]struct{}
	mu        sync.RWMutex
}

// New builds a segmenter with the embedded default dictionary.
func New() (*Segmenter, error) {
	var seg gse.Segmenter
	if err := seg.LoadDict(); err != nil {
		return nil, fmt.Errorf("load segmentation dictionary: %w", err)
	}

	stop := make(map[string]struct{}, len(baseStopwords))
	for w := range baseStopwords {
		stop[w] = struct{}{}
	}

	return &Segmenter{seg: seg, stopwords: stop}, nil
}

// LoadStopwords merges additional stopwords from a file, one word per line.
// Missing files are ignored; malformed lines are skipped.
func (s *Segmenter) LoadStopwords(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open stopwords file: %w", err)
	}
	defer f.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			s.stopwords[word] = struct{}{}
		}
	}
	return scanner.Err()
}

// AddStopwords adds stopwords programmatically.
func (s *Segmenter) AddStopwords(words ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range words {
		if w != "" {
			s.stopwords[w] = struct{}{}
		}
	}
}

// IsStopword reports whether a token is filtered.
func (s *Segmenter) IsStopword(word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.stopwords[word]
	return ok
}

// Clean normalizes text before tokenization: full-width forms are folded to
// half-width, emoji and punctuation are removed, whitespace is collapsed.
func Clean(text string) string {
	text = width.Narrow.String(text)
	text = nonWordPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Cut segments text into raw tokens with HMM enabled for unknown words.
func (s *Segmenter) Cut(text string) []string {
	if text == "" {
		return nil
	}
	return s.seg.Cut(text, true)
}

// Tokens segments cleaned text and filters the result the way the miner
// needs: tokens of at least 2 runes, not stopwords, not pure digits.
func (s *Segmenter) Tokens(text string) []string {
	words := s.Cut(Clean(text))

	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if len([]rune(w)) < 2 {
			continue
		}
		if s.IsStopword(w) {
			continue
		}
		if isAllDigits(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
