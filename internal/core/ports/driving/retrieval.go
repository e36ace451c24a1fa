package driving

import (
	"context"

	"github.com/doclens/doclens-cli/internal/core/domain"
)

// RetrievalService answers free-text queries with ranked passages.
type RetrievalService interface {
	// Retrieve returns at most k results ordered by descending
	// similarity, rank starting at 1. An empty result is a valid answer,
	// not an error.
	Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error)

	// Reload re-opens the index artifacts from disk. Used after an
	// atomic rebuild swap.
	Reload() error

	// Close releases held resources.
	Close() error
}

// IndexBuilder turns the corpus into a persisted vector index.
type IndexBuilder interface {
	// Build chunks, embeds and indexes the full corpus, then atomically
	// replaces the index artifacts.
	Build(ctx context.Context) (*BuildReport, error)
}

// BuildReport summarises one index build.
type BuildReport struct {
	// BuildID uniquely identifies the build run.
	BuildID string

	// Documents is the number of eligible corpus documents.
	Documents int

	// Chunks is the number of vectors in the built index.
	Chunks int

	// Dimensions is the embedding dimension.
	Dimensions int

	// IndexKind is "flat" or "ivf".
	IndexKind string

	// Categories counts chunks per category.
	Categories map[string]int

	// AvgWordsPerChunk is the mean chunk length in words.
	AvgWordsPerChunk float64
}
