package domain

import "errors"

// Domain errors represent retrieval failures. These are distinct from
// infrastructure errors and are matched with errors.Is.
var (
	// ErrModelUnavailable indicates the embedding backend cannot be
	// reached or failed to answer. A query that hits this error fails as
	// a whole; the engine never returns partial results for it.
	ErrModelUnavailable = errors.New("embedding model unavailable")

	// ErrIndexUnavailable indicates the vector index artifact cannot be
	// read or is missing.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrOutOfRange indicates a reconstruct request for an ordinal
	// position outside the index.
	ErrOutOfRange = errors.New("ordinal position out of range")

	// ErrDataInconsistency indicates an index ordinal with no matching
	// chunk record. Recoverable: the entry is skipped with a warning and
	// retrieval continues with fewer results.
	ErrDataInconsistency = errors.New("index and corpus are inconsistent")

	// ErrDimensionMismatch indicates the index dimension does not match
	// the embedding model output. Fatal at startup.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyCorpus indicates an index build was requested over a corpus
	// with no eligible documents. Fatal at startup.
	ErrEmptyCorpus = errors.New("corpus contains no eligible documents")

	// ErrNotTrained indicates vectors were added to or searched in a
	// partitioned index before training.
	ErrNotTrained = errors.New("index is not trained")
)
