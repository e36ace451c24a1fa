// Package sqlite provides read-only access to the cleaned document corpus.
// The corpus database is produced by an external scraping/cleaning pipeline;
// this adapter only ever reads it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/doclens/doclens-cli/internal/core/domain"
	"github.com/doclens/doclens-cli/internal/core/ports/driven"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// CorpusStore reads documents from a SQLite corpus database.
type CorpusStore struct {
	db   *sql.DB
	path string
}

// NewCorpusStore opens the corpus database at path. The connection is
// read-only; the engine never mutates the corpus.
func NewCorpusStore(path string) (*CorpusStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: corpus path is required")
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening corpus database: %w", err)
	}

	return &CorpusStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *CorpusStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *CorpusStore) Path() string {
	return s.path
}

// ListDocuments returns every document with non-empty content and at least
// minWordCount words, ordered by id. Optional columns (url, category,
// word_count) are resolved here, once, into the fixed Document schema.
// Rows without a word count fall back to a character-length estimate of
// five characters per word.
func (s *CorpusStore) ListDocuments(ctx context.Context, minWordCount int) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, title, content, category, word_count
		FROM documents
		WHERE content IS NOT NULL AND content != ''
		  AND (word_count >= ? OR (word_count IS NULL AND LENGTH(content) >= ? * 5))
		ORDER BY id`, minWordCount, minWordCount)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// ListByCategories returns documents whose category is in the given set,
// ordered by id.
func (s *CorpusStore) ListByCategories(ctx context.Context, categories []string) ([]domain.Document, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(categories)-1) + "?"
	args := make([]any, len(categories))
	for i, c := range categories {
		args[i] = c
	}

	//nolint:gosec // placeholders are "?" repetitions, values are bound.
	query := fmt.Sprintf(`
		SELECT id, url, title, content, category, word_count
		FROM documents
		WHERE category IN (%s) AND content IS NOT NULL AND content != ''
		ORDER BY id`, placeholders)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents by category: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// CountDocuments returns the total number of corpus documents.
func (s *CorpusStore) CountDocuments(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

func scanDocuments(rows *sql.Rows) ([]domain.Document, error) {
	var docs []domain.Document
	for rows.Next() {
		var (
			doc       domain.Document
			url       sql.NullString
			title     sql.NullString
			category  sql.NullString
			wordCount sql.NullInt64
		)
		if err := rows.Scan(&doc.ID, &url, &title, &doc.Content, &category, &wordCount); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		doc.URL = url.String
		doc.Title = title.String
		if doc.Title == "" {
			doc.Title = "Untitled"
		}
		doc.Category = category.String
		if wordCount.Valid {
			doc.WordCount = int(wordCount.Int64)
		} else {
			doc.WordCount = len(strings.Fields(doc.Content))
		}

		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}
