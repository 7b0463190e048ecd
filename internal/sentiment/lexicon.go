package sentiment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon holds the polarity vocabulary, degree adverb weights, and negation
// words used by the analyzer.
type Lexicon struct {
	Positive  map[string]struct{}
	Negative  map[string]struct{}
	Intensity map[string]float64
	Negation  map[string]struct{}
}

// DefaultLexicon returns the built-in vocabulary for short-video comments.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Positive: toSet(
			"好", "棒", "赞", "优秀", "漂亮", "美", "可爱", "喜欢", "爱",
			"棒棒", "厉害", "强大", "精彩", "完美", "超赞", "太棒了",
			"支持", "加油", "棒棒哒", "美美哒", "喜欢喜欢", "赞赞赞",
		),
		Negative: toSet(
			"差", "烂", "垃圾", "差劲", "恶心", "讨厌", "无聊", "难看",
			"失望", "无语", "不行", "不好", "糟糕", "差评", "差差差",
			"恶评", "太差了", "不好看", "没意思", "不喜欢",
		),
		Intensity: map[string]float64{
			"非常": 1.5, "极其": 1.5, "十分": 1.5, "超级": 1.5, "特别": 1.5,
			"很": 1.3, "挺": 1.2, "比较": 1.1,
			"有点": 0.8, "稍微": 0.8, "略微": 0.8,
		},
		Negation: toSet("不", "没", "无", "非", "莫", "勿", "未"),
	}
}

// lexiconFile is the YAML layout for user-supplied lexicon extensions.
type lexiconFile struct {
	Positive  []string           `yaml:"positive"`
	Negative  []string           `yaml:"negative"`
	Intensity map[string]float64 `yaml:"intensity"`
	Negation  []string           `yaml:"negation"`
}

// LoadLexiconFile merges words from a YAML file into the lexicon.
// Missing files are ignored so the default vocabulary always works.
func (l *Lexicon) LoadLexiconFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read lexicon file: %w", err)
	}

	var lf lexiconFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return fmt.Errorf("parse lexicon file: %w", err)
	}

	for _, w := range lf.Positive {
		l.Positive[w] = struct{}{}
	}
	for _, w := range lf.Negative {
		l.Negative[w] = struct{}{}
	}
	for w, weight := range lf.Intensity {
		l.Intensity[w] = weight
	}
	for _, w := range lf.Negation {
		l.Negation[w] = struct{}{}
	}
	return nil
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
