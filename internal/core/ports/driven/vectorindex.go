package driven

import "context"

// VectorIndex stores L2-normalized vectors in insertion order and answers
// top-k inner-product queries. The ordinal position of a vector is its
// 0-based insertion slot; it is the permanent binding between index hits
// and chunk records and must never be permuted without a full rebuild.
type VectorIndex interface {
	// Train prepares the index for Add. Flat indexes accept vectors
	// immediately and treat Train as a no-op; partitioned indexes must be
	// trained on a representative sample (the full corpus, if small)
	// before any Add.
	Train(ctx context.Context, vectors [][]float32) error

	// Add appends vectors in the given order. The resulting ordinal
	// positions are len-before, len-before+1, ...
	Add(vectors [][]float32) error

	// Search returns the k best hits sorted by descending score, ties
	// broken by ascending ordinal. When fewer than k vectors exist the
	// result is padded with hits whose Ordinal is -1; callers must filter
	// those out.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Reconstruct returns the stored vector at the given ordinal
	// position. Fails with domain.ErrOutOfRange for invalid positions.
	// Callers must not mutate the returned slice.
	Reconstruct(ordinal int) ([]float32, error)

	// NTotal returns the number of stored vectors.
	NTotal() int

	// Dimensions returns the vector dimension.
	Dimensions() int

	// Save persists the index to path. The write is atomic: a temp file
	// in the same directory is renamed over the target, so a concurrent
	// reader never observes a partially written artifact.
	Save(path string) error
}

// VectorHit is a single nearest-neighbour result.
type VectorHit struct {
	// Ordinal is the matched vector's slot, or -1 for a padding entry.
	Ordinal int

	// Score is the inner product with the query. For unit vectors this
	// equals cosine similarity.
	Score float32
}
