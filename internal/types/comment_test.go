package types

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLikeCount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"", 0, false},
		{" 15 ", 15, false},
		{"1.2万", 12000, false},
		{"3万", 30000, false},
		{"1亿", 100_000_000, false},
		{"2.5w", 25000, false},
		{"2.5W", 25000, false},
		{"abc", 0, true},
		{"万", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseLikeCount(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLikeCount(%q): expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLikeCount(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLikeCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestComment_UnmarshalNative(t *testing.T) {
	data := `{"author":"alice","content":"不错","likes":12,"posted_at":"2024-01-01"}`

	var c Comment
	require.NoError(t, json.Unmarshal([]byte(data), &c))
	assert.Equal(t, "alice", c.Author)
	assert.Equal(t, "不错", c.Content)
	assert.Equal(t, int64(12), c.Likes)
	assert.Equal(t, "2024-01-01", c.PostedAt)
}

func TestComment_UnmarshalLegacyKeys(t *testing.T) {
	t.Run("numeric likes", func(t *testing.T) {
		data := `{"用户":"小明","内容":"太棒了","点赞数":88,"时间":"3天前"}`

		var c Comment
		require.NoError(t, json.Unmarshal([]byte(data), &c))
		assert.Equal(t, "小明", c.Author)
		assert.Equal(t, "太棒了", c.Content)
		assert.Equal(t, int64(88), c.Likes)
		assert.Equal(t, "3天前", c.PostedAt)
	})

	t.Run("abbreviated likes string", func(t *testing.T) {
		data := `{"用户":"小红","内容":"好看","点赞数":"1.2万"}`

		var c Comment
		require.NoError(t, json.Unmarshal([]byte(data), &c))
		assert.Equal(t, int64(12000), c.Likes)
	})

	t.Run("unparseable likes default to zero", func(t *testing.T) {
		data := `{"用户":"u","内容":"x","点赞数":"???"}`

		var c Comment
		require.NoError(t, json.Unmarshal([]byte(data), &c))
		assert.Zero(t, c.Likes)
	})
}

func TestDataset_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dump.json")

	ds := &Dataset{
		VideoInfo: VideoInfo{VideoID: "7123", Title: "test video"},
		Comments: []Comment{
			{Author: "a", Content: "好", Likes: 5},
			{Author: "b", Content: "差", Likes: 1},
		},
	}
	require.NoError(t, ds.Save(path))

	loaded, err := LoadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, "7123", loaded.VideoInfo.VideoID)
	require.Len(t, loaded.Comments, 2)
	assert.Equal(t, "好", loaded.Comments[0].Content)
}

func TestLoadDataset_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadDataset(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("missing comments array", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		ds := &Dataset{VideoInfo: VideoInfo{VideoID: "x"}}
		require.NoError(t, ds.Save(path))

		// Save wrote "comments": null
		_, err := LoadDataset(path)
		assert.Error(t, err)
	})
}

func TestDataset_TopByLikes(t *testing.T) {
	ds := &Dataset{Comments: []Comment{
		{Author: "a", Likes: 1},
		{Author: "b", Likes: 10},
		{Author: "c", Likes: 5},
	}}

	top := ds.TopByLikes(2)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].Author)
	assert.Equal(t, "c", top[1].Author)

	// n beyond length returns everything
	assert.Len(t, ds.TopByLikes(100), 3)

	// receiver untouched
	assert.Equal(t, "a", ds.Comments[0].Author)
}

func TestDataset_UniqueAuthors(t *testing.T) {
	ds := &Dataset{Comments: []Comment{
		{Author: "a"}, {Author: "b"}, {Author: "a"},
	}}
	assert.Equal(t, 2, ds.UniqueAuthors())
}

func TestTimestampedFilename(t *testing.T) {
	name := TimestampedFilename("comments_7123", "json")
	assert.True(t, strings.HasPrefix(name, "comments_7123_"))
	assert.True(t, strings.HasSuffix(name, ".json"))
	// base_YYYYMMDD_HHMMSS.json
	assert.Len(t, name, len("comments_7123_")+15+len(".json"))
}
