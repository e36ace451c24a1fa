package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCorpus creates a corpus database with the schema the ingestion
// pipeline produces.
func newTestCorpus(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "corpus.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE documents (
			id INTEGER PRIMARY KEY,
			url TEXT,
			title TEXT,
			content TEXT,
			category TEXT,
			word_count INTEGER
		)`)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO documents (id, url, title, content, category, word_count) VALUES
		(1, 'https://learn/powerapps', 'Create a Power App', 'canvas apps let makers build line of business apps quickly', 'powerapps-overview', 60),
		(2, 'https://learn/azure-ad', 'Azure Active Directory', 'identity management for cloud applications and single sign on', 'active-directory', 55),
		(3, 'https://learn/teams', 'Set up Teams', 'collaboration hub for chat meetings and files', 'teams', 80),
		(4, 'https://learn/empty', 'Empty Page', '', 'teams', 0),
		(5, 'https://learn/stub', 'Tiny Stub', 'too short', 'teams', 2),
		(6, NULL, NULL, 'page with missing metadata columns resolved at the boundary', NULL, NULL)`)
	require.NoError(t, err)

	return path
}

func TestListDocumentsFilters(t *testing.T) {
	store, err := NewCorpusStore(newTestCorpus(t))
	require.NoError(t, err)
	defer store.Close()

	docs, err := store.ListDocuments(context.Background(), 50)
	require.NoError(t, err)

	// Empty content and low word counts are excluded; the NULL word_count
	// row falls back to the character-length estimate and misses the
	// threshold too.
	require.Len(t, docs, 3)
	assert.Equal(t, int64(1), docs[0].ID)
	assert.Equal(t, int64(2), docs[1].ID)
	assert.Equal(t, int64(3), docs[2].ID)
}

func TestListDocumentsStableOrder(t *testing.T) {
	store, err := NewCorpusStore(newTestCorpus(t))
	require.NoError(t, err)
	defer store.Close()

	first, err := store.ListDocuments(context.Background(), 0)
	require.NoError(t, err)
	second, err := store.ListDocuments(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListDocumentsResolvesOptionalColumns(t *testing.T) {
	store, err := NewCorpusStore(newTestCorpus(t))
	require.NoError(t, err)
	defer store.Close()

	docs, err := store.ListDocuments(context.Background(), 0)
	require.NoError(t, err)

	var found bool
	for _, d := range docs {
		if d.ID == 6 {
			found = true
			assert.Equal(t, "Untitled", d.Title)
			assert.Empty(t, d.Category)
			assert.Equal(t, 9, d.WordCount) // derived from content
		}
	}
	assert.True(t, found)
}

func TestListByCategories(t *testing.T) {
	store, err := NewCorpusStore(newTestCorpus(t))
	require.NoError(t, err)
	defer store.Close()

	docs, err := store.ListByCategories(context.Background(), []string{"teams", "active-directory"})
	require.NoError(t, err)

	// Row 4 has empty content and is excluded even though its category matches.
	require.Len(t, docs, 3)
	assert.Equal(t, int64(2), docs[0].ID)
	assert.Equal(t, int64(3), docs[1].ID)
	assert.Equal(t, int64(5), docs[2].ID)
}

func TestListByCategoriesEmptySet(t *testing.T) {
	store, err := NewCorpusStore(newTestCorpus(t))
	require.NoError(t, err)
	defer store.Close()

	docs, err := store.ListByCategories(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestCountDocuments(t *testing.T) {
	store, err := NewCorpusStore(newTestCorpus(t))
	require.NoError(t, err)
	defer store.Close()

	count, err := store.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestNewCorpusStoreRequiresPath(t *testing.T) {
	_, err := NewCorpusStore("")
	assert.Error(t, err)
}
