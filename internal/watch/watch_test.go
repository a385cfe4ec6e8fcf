package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func startWatcher(t *testing.T, paths []string) <-chan []string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan []string, 4)
	w := New(paths, func(_ context.Context, changed []string) {
		changes <- changed
	}, zerolog.Nop()).WithDebounce(50 * time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})

	// give the watcher time to register before the test writes
	time.Sleep(100 * time.Millisecond)
	return changes
}

func waitChange(t *testing.T, changes <-chan []string) []string {
	t.Helper()
	select {
	case changed := <-changes:
		return changed
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
		return nil
	}
}

func TestWatchFile(t *testing.T) {
	dir := tempDir(t)
	book := filepath.Join(dir, "disorders.xlsx")
	require.NoError(t, os.WriteFile(book, []byte("v1"), 0o644))

	changes := startWatcher(t, []string{book})

	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$disorders.xlsx"), []byte("lock"), 0o644))
	require.NoError(t, os.WriteFile(book, []byte("v2"), 0o644))
	require.NoError(t, os.WriteFile(book, []byte("v3"), 0o644))

	assert.Equal(t, []string{book}, waitChange(t, changes))
}

func TestWatchCSVDirectory(t *testing.T) {
	dir := tempDir(t)
	changes := startWatcher(t, []string{dir})

	sheet := filepath.Join(dir, "disorders.csv")
	require.NoError(t, os.WriteFile(sheet, []byte("index,disorder\n1,panic\n"), 0o644))

	assert.Equal(t, []string{sheet}, waitChange(t, changes))
}

func TestRelevant(t *testing.T) {
	files := map[string]bool{"/data/states.xlsx": true}
	dirs := map[string]bool{"/data/csv": true}

	assert.True(t, relevant("/data/states.xlsx", files, dirs))
	assert.True(t, relevant("/data/csv/sensors.CSV", files, dirs))
	assert.False(t, relevant("/data/csv/readme.md", files, dirs))
	assert.False(t, relevant("/data/.states.xlsx.123.tmp", files, dirs))
	assert.False(t, relevant("/data/other.xlsx", files, dirs))
}
