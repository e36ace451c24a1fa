package driven

import "github.com/doclens/doclens-cli/internal/core/domain"

// ChunkLedger maps vector ordinals back to chunk records. Entry i describes
// the vector stored at ordinal position i of the paired index.
type ChunkLedger interface {
	// Len returns the number of chunk records.
	Len() int

	// At returns the chunk at the given ordinal position. The second
	// return is false when no record exists for that position, which
	// signals an index/ledger mismatch the caller should skip over.
	At(ordinal int) (domain.Chunk, bool)

	// ByDocument returns the chunks of one source document in chunk
	// order.
	ByDocument(documentID int64) []domain.Chunk

	// Categories counts chunks per category.
	Categories() map[string]int
}

// ArtifactStore persists and reopens the paired build artifacts: the vector
// index and the chunk ledger describing its ordinals. The pair is always
// written and read together so the ordinal binding stays intact.
type ArtifactStore interface {
	// Load opens the current artifacts. Fails with
	// domain.ErrIndexUnavailable when no build exists yet and with
	// domain.ErrDataInconsistency when index and ledger disagree in size.
	Load() (VectorIndex, ChunkLedger, error)

	// Write atomically replaces both artifacts and returns the ledger
	// for the new build.
	Write(index VectorIndex, buildID, model string, chunks []domain.Chunk) (ChunkLedger, error)
}

// IndexFactory creates an empty index sized for a corpus of expectedCount
// vectors. The factory decides the index kind; partitioned implementations
// use expectedCount to pick a partition count.
type IndexFactory func(dimensions, expectedCount int) (VectorIndex, error)
