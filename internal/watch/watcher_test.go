package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within 5s")
}

func TestWatcher_HandlesNewDump(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var handled []string
	handler := func(ctx context.Context, path string) error {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, path)
		return nil
	}

	w, err := New(dir, 20*time.Millisecond, handler)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	path := filepath.Join(dir, "dump.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"comments":[]}`), 0644))

	waitFor(t, func() bool {
		return w.GetStats().FilesHandled >= 1
	})

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, handled)
	assert.Equal(t, path, handled[0])
}

func TestWatcher_IgnoresNonJSON(t *testing.T) {
	dir := t.TempDir()

	handler := func(ctx context.Context, path string) error {
		t.Errorf("handler called for %s", path)
		return nil
	}

	w, err := New(dir, 10*time.Millisecond, handler)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	// Give fsnotify a moment to deliver (nothing should arrive)
	time.Sleep(200 * time.Millisecond)
	w.Stop()

	assert.Zero(t, w.GetStats().FilesSeen)
}

func TestWatcher_HandlerErrorCounted(t *testing.T) {
	dir := t.TempDir()

	handler := func(ctx context.Context, path string) error {
		return errors.New("boom")
	}

	w, err := New(dir, 10*time.Millisecond, handler)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0644))

	waitFor(t, func() bool {
		return w.GetStats().Errors >= 1
	})
	assert.Zero(t, w.GetStats().FilesHandled)
}

func TestWatcher_StartIdempotent(t *testing.T) {
	w, err := New(t.TempDir(), 10*time.Millisecond, func(context.Context, string) error { return nil })
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx)) // second start is a no-op
	w.Stop()
	w.Stop() // second stop is a no-op
}
