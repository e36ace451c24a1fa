package artifacts

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclens/doclens-cli/internal/adapters/driven/vectorindex"
	"github.com/doclens/doclens-cli/internal/core/domain"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(filepath.Join(dir, "index.dlvi"), filepath.Join(dir, "chunks.json"))
}

func buildIndex(t *testing.T, vectors [][]float32) *vectorindex.Flat {
	t.Helper()
	idx, err := vectorindex.NewFlat(len(vectors[0]))
	require.NoError(t, err)
	require.NoError(t, idx.Add(vectors))
	return idx
}

func TestWriteLoadRoundTrip(t *testing.T) {
	store := newStore(t)
	idx := buildIndex(t, [][]float32{{1, 0}, {0, 1}})
	chunks := []domain.Chunk{
		{ID: "1_chunk_0", DocumentID: 1, Title: "A", Category: "Power Apps", Content: "alpha"},
		{ID: "2_chunk_0", DocumentID: 2, Title: "B", Category: "Azure", Content: "beta"},
	}

	_, err := store.Write(idx, "build-1", "all-minilm", chunks)
	require.NoError(t, err)

	loadedIdx, ledger, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, loadedIdx.NTotal())
	assert.Equal(t, 2, ledger.Len())

	ch, ok := ledger.At(1)
	require.True(t, ok)
	assert.Equal(t, "B", ch.Title)

	vec, err := loadedIdx.Reconstruct(0)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
}

func TestLoadMissingArtifacts(t *testing.T) {
	store := newStore(t)
	_, _, err := store.Load()
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestWriteRejectsSizeMismatch(t *testing.T) {
	store := newStore(t)
	idx := buildIndex(t, [][]float32{{1, 0}, {0, 1}})

	_, err := store.Write(idx, "build-1", "all-minilm", []domain.Chunk{{ID: "1_chunk_0", DocumentID: 1}})
	assert.ErrorIs(t, err, domain.ErrDataInconsistency)
}

func TestLoadRejectsTornPair(t *testing.T) {
	store := newStore(t)
	idx := buildIndex(t, [][]float32{{1, 0}})
	chunks := []domain.Chunk{{ID: "1_chunk_0", DocumentID: 1}}

	_, err := store.Write(idx, "build-1", "all-minilm", chunks)
	require.NoError(t, err)

	// Replace just the index, simulating a load racing a rebuild between
	// the two renames.
	bigger := buildIndex(t, [][]float32{{1, 0}, {0, 1}, {0.6, 0.8}})
	require.NoError(t, bigger.Save(store.IndexPath()))

	_, _, err = store.Load()
	assert.ErrorIs(t, err, domain.ErrDataInconsistency)
}

func TestWriteIsRepeatable(t *testing.T) {
	store := newStore(t)
	chunks := []domain.Chunk{{ID: "1_chunk_0", DocumentID: 1, Category: "Azure"}}

	for i := 0; i < 2; i++ {
		idx := buildIndex(t, [][]float32{{0, 1}})
		_, err := store.Write(idx, "build", "m", chunks)
		require.NoError(t, err)
	}

	_, ledger, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.Len())

	// No temp files left behind.
	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(store.IndexPath()), "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}
