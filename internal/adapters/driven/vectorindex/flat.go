package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/doclens/doclens-cli/internal/core/domain"
	"github.com/doclens/doclens-cli/internal/core/ports/driven"
)

// Index kind identifiers, stored in the artifact header.
const (
	KindFlat = "flat"
	KindIVF  = "ivf"
)

// Ensure Flat implements the interface.
var _ driven.VectorIndex = (*Flat)(nil)

// Flat is an exact inner-product index: search compares the query against
// every stored vector. No training step; Add is accepted immediately.
type Flat struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
}

// NewFlat creates an empty flat index of the given dimension.
func NewFlat(dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("flat: dimension must be positive, got %d", dim)
	}
	return &Flat{dim: dim}, nil
}

// Train is a no-op for flat indexes beyond dimension validation.
func (f *Flat) Train(_ context.Context, vectors [][]float32) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return checkDimensions(vectors, f.dim)
}

// Add appends vectors in the given order.
func (f *Flat) Add(vectors [][]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := checkDimensions(vectors, f.dim); err != nil {
		return err
	}
	for _, v := range vectors {
		f.vectors = append(f.vectors, cloneVector(v))
	}
	return nil
}

// Search returns the k best hits by inner product, padded with ordinal -1
// when fewer than k vectors exist.
func (f *Flat) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(query) != f.dim {
		return nil, fmt.Errorf("flat: query has dimension %d, index has %d: %w",
			len(query), f.dim, domain.ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, fmt.Errorf("flat: k must be positive, got %d", k)
	}

	hits := make([]driven.VectorHit, 0, len(f.vectors))
	for i, v := range f.vectors {
		hits = append(hits, driven.VectorHit{
			Ordinal: i,
			Score:   float32(domain.Dot(query, v)),
		})
	}
	return rankHits(hits, k), nil
}

// Reconstruct returns the stored vector at the given ordinal position.
func (f *Flat) Reconstruct(ordinal int) ([]float32, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if ordinal < 0 || ordinal >= len(f.vectors) {
		return nil, fmt.Errorf("flat: ordinal %d with %d vectors: %w",
			ordinal, len(f.vectors), domain.ErrOutOfRange)
	}
	return f.vectors[ordinal], nil
}

// NTotal returns the number of stored vectors.
func (f *Flat) NTotal() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

// Dimensions returns the vector dimension.
func (f *Flat) Dimensions() int {
	return f.dim
}

// --- shared helpers ---

func checkDimensions(vectors [][]float32, dim int) error {
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, index has %d: %w",
				i, len(v), dim, domain.ErrDimensionMismatch)
		}
	}
	return nil
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

// rankHits sorts hits by descending score, ties by ascending ordinal, then
// truncates or pads the result to exactly k entries. Padding entries carry
// ordinal -1 and must be filtered by the caller.
func rankHits(hits []driven.VectorHit, k int) []driven.VectorHit {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Ordinal < hits[j].Ordinal
	})
	if len(hits) > k {
		return hits[:k]
	}
	for len(hits) < k {
		hits = append(hits, driven.VectorHit{Ordinal: -1, Score: float32(math.Inf(-1))})
	}
	return hits
}
