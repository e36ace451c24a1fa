package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherFiresOnAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "index.dlvi")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0o600))

	fired := make(chan struct{}, 1)
	w, err := New([]string{target}, 20*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	// Replace via rename, the way a rebuild swaps artifacts in.
	tmp := filepath.Join(dir, "index.dlvi.tmp-1")
	require.NoError(t, os.WriteFile(tmp, []byte("v2"), 0o600))
	require.NoError(t, os.Rename(tmp, target))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not fire after atomic replace")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "index.dlvi")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0o600))

	fired := make(chan struct{}, 1)
	w, err := New([]string{target}, 20*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o600))

	select {
	case <-fired:
		t.Fatal("watcher fired for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherDebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.dlvi")
	manifest := filepath.Join(dir, "chunks.json")
	require.NoError(t, os.WriteFile(index, []byte("v1"), 0o600))
	require.NoError(t, os.WriteFile(manifest, []byte("{}"), 0o600))

	var calls atomic.Int32
	done := make(chan struct{})
	w, err := New([]string{index, manifest}, 100*time.Millisecond, func() {
		calls.Add(1)
		select {
		case done <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	// Both artifacts replaced back to back, as one rebuild does.
	require.NoError(t, os.WriteFile(index, []byte("v2"), 0o600))
	require.NoError(t, os.WriteFile(manifest, []byte("{}"), 0o600))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not fire")
	}
	// Allow any stray second callback to land before asserting.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcherClose(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "index.dlvi")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0o600))

	w, err := New([]string{target}, 20*time.Millisecond, func() {})
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}
