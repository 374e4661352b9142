package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	w, err := NewDirectoryWatcher(50 * time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	w.Sync([]string{dir})
	require.True(t, w.Watching(dir))
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte{byte(i)}, 0o644))
	}

	select {
	case got := <-w.Notify():
		assert.Equal(t, dir, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	// The burst produced one notification.
	select {
	case got := <-w.Notify():
		t.Fatalf("unexpected second notification for %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestDirectoryWatcherSync(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	w, err := NewDirectoryWatcher(0)
	require.NoError(t, err)
	defer w.Close()

	w.Sync([]string{a, b})
	assert.True(t, w.Watching(a))
	assert.True(t, w.Watching(b))

	w.Sync([]string{b, filepath.Join(a, "missing")})
	assert.False(t, w.Watching(a))
	assert.True(t, w.Watching(b))
	assert.False(t, w.Watching(filepath.Join(a, "missing")))

	w.Sync(nil)
	assert.False(t, w.Watching(b))
}
