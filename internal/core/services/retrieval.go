package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/doclens/doclens-cli/internal/core/domain"
	"github.com/doclens/doclens-cli/internal/core/ports/driven"
	"github.com/doclens/doclens-cli/internal/core/ports/driving"
	"github.com/doclens/doclens-cli/internal/core/routing"
	"github.com/doclens/doclens-cli/internal/logger"
)

// Ensure Engine implements the interface.
var _ driving.RetrievalService = (*Engine)(nil)

// DefaultConfidenceThreshold is the minimum best similarity a
// category-scoped result set needs to be kept over general search.
const DefaultConfidenceThreshold = 0.4

// scoredDoc is a per-document candidate before hydration into a result.
type scoredDoc struct {
	chunk domain.Chunk
	score float64
}

// Engine answers queries in two passes: a category-scoped scan over the
// documents the router selected, then, when the scoped scan is empty or its
// best hit falls below the confidence threshold, a general index search
// over the whole corpus.
type Engine struct {
	embedder  driven.EmbeddingService
	corpus    driven.CorpusStore
	store     driven.ArtifactStore
	router    *routing.Router
	threshold float64

	// mu guards the artifact snapshot. Reload swaps both fields together
	// so every query sees one consistent build.
	mu     sync.RWMutex
	index  driven.VectorIndex
	ledger driven.ChunkLedger
}

// NewEngine loads the current artifacts and validates them against the
// embedding backend. A dimension disagreement between index and embedder
// means the artifacts were built with a different model; that is a
// configuration fault, not something to paper over at query time.
//
// A threshold of zero or below selects DefaultConfidenceThreshold; the
// fallback gate cannot be disabled.
func NewEngine(
	embedder driven.EmbeddingService,
	corpus driven.CorpusStore,
	store driven.ArtifactStore,
	router *routing.Router,
	threshold float64,
) (*Engine, error) {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}

	e := &Engine{
		embedder:  embedder,
		corpus:    corpus,
		store:     store,
		router:    router,
		threshold: threshold,
	}
	if err := e.Reload(); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload re-opens the artifacts from disk and swaps them in. Safe to call
// while queries are in flight; in-flight queries finish on the old
// snapshot.
func (e *Engine) Reload() error {
	index, ledger, err := e.store.Load()
	if err != nil {
		return err
	}
	if index.Dimensions() != e.embedder.Dimensions() {
		return fmt.Errorf("index dimension %d but embedding model %q produces %d: %w",
			index.Dimensions(), e.embedder.ModelName(), e.embedder.Dimensions(),
			domain.ErrDimensionMismatch)
	}

	e.mu.Lock()
	e.index = index
	e.ledger = ledger
	e.mu.Unlock()

	logger.Debug("Loaded index snapshot: %d vectors, dimension %d", index.NTotal(), index.Dimensions())
	return nil
}

// Retrieve answers a free-text query with at most k ranked passages.
func (e *Engine) Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" || k <= 0 {
		logger.Debug("Empty query or non-positive k, returning no results")
		return []domain.SearchResult{}, nil
	}

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	domain.Normalize(vec)

	e.mu.RLock()
	index, ledger := e.index, e.ledger
	e.mu.RUnlock()

	if categories := e.router.Route(query); len(categories) > 0 {
		logger.Info("Routed to %d categories: %v", len(categories), categories)

		scoped, err := e.scopedSearch(ctx, index, ledger, vec, categories, k)
		if err != nil {
			return nil, err
		}
		if len(scoped) > 0 && scoped[0].Similarity >= e.threshold {
			logger.Info("Scoped search kept: best similarity %.3f", scoped[0].Similarity)
			return scoped, nil
		}
		if len(scoped) > 0 {
			logger.Info("Scoped best %.3f below threshold %.2f, falling back to general search",
				scoped[0].Similarity, e.threshold)
		} else {
			logger.Info("Scoped search empty, falling back to general search")
		}
	} else {
		logger.Debug("No category matched, using general search")
	}

	return e.generalSearch(ctx, index, ledger, vec, k)
}

// scopedSearch scores every chunk of every document in the routed
// categories and keeps the best chunk per document. The candidate set is
// small (one category group), so an exhaustive reconstruct-and-score scan
// is cheaper than a filtered index query.
func (e *Engine) scopedSearch(
	ctx context.Context,
	index driven.VectorIndex,
	ledger driven.ChunkLedger,
	query []float32,
	categories []string,
	k int,
) ([]domain.SearchResult, error) {
	docs, err := e.corpus.ListByCategories(ctx, categories)
	if err != nil {
		return nil, fmt.Errorf("list documents by category: %w", err)
	}
	logger.Debug("Scoped scan over %d documents", len(docs))

	candidates := make([]scoredDoc, 0, len(docs))
	for _, doc := range docs {
		best, ok := e.bestChunk(index, ledger, query, doc.ID)
		if !ok {
			continue
		}
		candidates = append(candidates, best)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].chunk.Ordinal < candidates[j].chunk.Ordinal
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return hydrate(candidates), nil
}

// bestChunk scores one document's chunks against the query and returns the
// highest. Chunks whose vector cannot be reconstructed are skipped with a
// warning; a stale ledger entry must not fail the whole query.
func (e *Engine) bestChunk(
	index driven.VectorIndex,
	ledger driven.ChunkLedger,
	query []float32,
	documentID int64,
) (scoredDoc, bool) {
	var best scoredDoc
	found := false

	for _, chunk := range ledger.ByDocument(documentID) {
		vec, err := index.Reconstruct(chunk.Ordinal)
		if err != nil {
			logger.Warn("Skipping chunk %s: reconstruct ordinal %d: %v", chunk.ID, chunk.Ordinal, err)
			continue
		}
		score := domain.Dot(query, vec)
		if !found || score > best.score {
			best = scoredDoc{chunk: chunk, score: score}
			found = true
		}
	}
	return best, found
}

// generalSearch queries the whole index and deduplicates hits per source
// document, keeping each document's best chunk.
func (e *Engine) generalSearch(
	ctx context.Context,
	index driven.VectorIndex,
	ledger driven.ChunkLedger,
	query []float32,
	k int,
) ([]domain.SearchResult, error) {
	// Ask for headroom so per-document deduplication can still fill k.
	hits, err := index.Search(ctx, query, k*3)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	seen := make(map[int64]struct{})
	candidates := make([]scoredDoc, 0, k)
	for _, hit := range hits {
		if hit.Ordinal < 0 {
			break // padding, no further matches
		}
		chunk, ok := ledger.At(hit.Ordinal)
		if !ok {
			logger.Warn("Skipping ordinal %d: no chunk record", hit.Ordinal)
			continue
		}
		if _, dup := seen[chunk.DocumentID]; dup {
			continue // hits arrive best-first, keep the first per document
		}
		seen[chunk.DocumentID] = struct{}{}

		candidates = append(candidates, scoredDoc{chunk: chunk, score: float64(hit.Score)})
		if len(candidates) == k {
			break
		}
	}
	return hydrate(candidates), nil
}

// hydrate turns ranked candidates into results, rank starting at 1.
func hydrate(candidates []scoredDoc) []domain.SearchResult {
	results := make([]domain.SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = domain.SearchResult{
			Title:      c.chunk.Title,
			Category:   c.chunk.Category,
			Content:    c.chunk.Content,
			Similarity: c.score,
			Rank:       i + 1,
		}
	}
	return results
}

// Close releases the engine's backends.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.embedder.Close(); err != nil {
		firstErr = err
	}
	if err := e.corpus.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
