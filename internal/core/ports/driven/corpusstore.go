package driven

import (
	"context"

	"github.com/doclens/doclens-cli/internal/core/domain"
)

// CorpusStore reads the cleaned document corpus. The store is written by an
// external ingestion pipeline; the retrieval engine never writes to it.
type CorpusStore interface {
	// ListDocuments returns every document with non-empty content and at
	// least minWordCount words, in stable corpus order.
	ListDocuments(ctx context.Context, minWordCount int) ([]domain.Document, error)

	// ListByCategories returns documents whose category is in the given
	// set, in stable corpus order. An empty set returns no documents.
	ListByCategories(ctx context.Context, categories []string) ([]domain.Document, error)

	// CountDocuments returns the total number of documents.
	CountDocuments(ctx context.Context) (int, error)

	// Close releases the underlying connection.
	Close() error
}
