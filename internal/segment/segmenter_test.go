package segment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "今天天气不错", "今天天气不错"},
		{"strips punctuation", "太棒了！！！", "太棒了"},
		{"strips emoji", "好看😀😀", "好看"},
		{"collapses whitespace", "a   b\t\nc", "a b c"},
		{"folds full-width", "ｈｅｌｌｏ", "hello"},
		{"empty", "", ""},
		{"only punctuation", "。。。！？", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestStopwords(t *testing.T) {
	s := &Segmenter{stopwords: map[string]struct{}{"的": {}}}

	assert.True(t, s.IsStopword("的"))
	assert.False(t, s.IsStopword("画面"))

	s.AddStopwords("画面", "")
	assert.True(t, s.IsStopword("画面"))
	assert.False(t, s.IsStopword(""))
}

func TestLoadStopwords(t *testing.T) {
	s := &Segmenter{stopwords: map[string]struct{}{}}

	t.Run("missing file is ignored", func(t *testing.T) {
		require.NoError(t, s.LoadStopwords(filepath.Join(t.TempDir(), "nope.txt")))
	})

	t.Run("empty path is ignored", func(t *testing.T) {
		require.NoError(t, s.LoadStopwords(""))
	})

	t.Run("loads one word per line", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stop.txt")
		require.NoError(t, os.WriteFile(path, []byte("哈哈\n\n  呵呵  \n"), 0644))

		require.NoError(t, s.LoadStopwords(path))
		assert.True(t, s.IsStopword("哈哈"))
		assert.True(t, s.IsStopword("呵呵"))
	})
}

func TestIsAllDigits(t *testing.T) {
	assert.True(t, isAllDigits("123"))
	assert.False(t, isAllDigits("12a"))
	assert.False(t, isAllDigits("一二"))
	assert.False(t, isAllDigits(""))
}

// TestTokens exercises the full gse pipeline; the dictionary load makes it
// comparatively slow, so everything shares one segmenter.
func TestTokens(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping dictionary load in short mode")
	}

	s, err := New()
	require.NoError(t, err)

	t.Run("filters short tokens and digits", func(t *testing.T) {
		tokens := s.Tokens("画面真好看 123")
		for _, tok := range tokens {
			assert.GreaterOrEqual(t, len([]rune(tok)), 2)
			assert.NotEqual(t, "123", tok)
		}
	})

	t.Run("filters stopwords", func(t *testing.T) {
		s.AddStopwords("测试")
		for _, tok := range s.Tokens("这是一个测试") {
			assert.NotEqual(t, "测试", tok)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, s.Tokens(""))
		assert.Empty(t, s.Cut(""))
	})
}
