package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclens/doclens-cli/internal/core/domain"
)

func sampleChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "1_chunk_0", DocumentID: 1, Title: "A", Category: "azure", Content: "alpha", Index: 0, Total: 2},
		{ID: "1_chunk_1", DocumentID: 1, Title: "A", Category: "azure", Content: "beta", Index: 1, Total: 2},
		{ID: "2_chunk_0", DocumentID: 2, Title: "B", Category: "teams", Content: "gamma", Index: 0, Total: 1},
	}
}

func TestNewAssignsOrdinals(t *testing.T) {
	m := New("build-1", "all-MiniLM-L6-v2", 384, sampleChunks())

	require.Equal(t, 3, m.Len())
	for i := 0; i < m.Len(); i++ {
		ch, ok := m.At(i)
		require.True(t, ok)
		assert.Equal(t, i, ch.Ordinal)
	}
}

func TestAtOutOfRange(t *testing.T) {
	m := New("b", "m", 4, sampleChunks())

	_, ok := m.At(-1)
	assert.False(t, ok)
	_, ok = m.At(3)
	assert.False(t, ok)
}

func TestByDocument(t *testing.T) {
	m := New("b", "m", 4, sampleChunks())

	chunks := m.ByDocument(1)
	require.Len(t, chunks, 2)
	assert.Equal(t, "alpha", chunks[0].Content)
	assert.Equal(t, "beta", chunks[1].Content)
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, 1, chunks[1].Ordinal)

	assert.Empty(t, m.ByDocument(99))
}

func TestCategories(t *testing.T) {
	m := New("b", "m", 4, sampleChunks())

	assert.Equal(t, map[string]int{"azure": 2, "teams": 1}, m.Categories())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunks.json")

	m := New("build-42", "all-MiniLM-L6-v2", 384, sampleChunks())
	require.NoError(t, m.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.BuildID, loaded.BuildID)
	assert.Equal(t, m.Model, loaded.Model)
	assert.Equal(t, m.Dimensions, loaded.Dimensions)
	assert.Equal(t, m.Chunks, loaded.Chunks)

	// Lookup structures are rebuilt on load.
	assert.Len(t, loaded.ByDocument(1), 2)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir() + "/absent.json")
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}
