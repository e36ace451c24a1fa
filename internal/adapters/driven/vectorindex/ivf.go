package vectorindex

import (
	"context"
	"fmt"
	"sync"

	"github.com/doclens/doclens-cli/internal/core/domain"
	"github.com/doclens/doclens-cli/internal/core/ports/driven"
)

// Default IVF parameters.
const (
	// DefaultPartitionCap bounds the partition count regardless of corpus
	// size.
	DefaultPartitionCap = 100

	// DefaultNProbe is the number of partitions scanned per query.
	DefaultNProbe = 8

	// kmeansIterations bounds the Lloyd iterations during training.
	kmeansIterations = 20
)

// Ensure IVF implements the interface.
var _ driven.VectorIndex = (*IVF)(nil)

// IVF is an approximate inner-product index. Training partitions the vector
// space with k-means; Add assigns each vector to its nearest partition;
// Search scans only the nprobe partitions whose centroids are closest to
// the query. Recall is traded for speed at scale.
type IVF struct {
	mu        sync.RWMutex
	dim       int
	nprobe    int
	trained   bool
	centroids [][]float32
	lists     [][]int // member ordinals per partition
	vectors   [][]float32
}

// PartitionCount chooses the partition count for n vectors: n/10 capped at
// cap, and at least 1. Small corpora get very few partitions, which is an
// accepted accuracy/speed trade-off, not an error.
func PartitionCount(n, cap int) int {
	nlist := n / 10
	if nlist > cap {
		nlist = cap
	}
	if nlist < 1 {
		nlist = 1
	}
	return nlist
}

// NewIVF creates an untrained IVF index. nlist is the partition count;
// nprobe <= 0 selects DefaultNProbe.
func NewIVF(dim, nlist, nprobe int) (*IVF, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("ivf: dimension must be positive, got %d", dim)
	}
	if nlist <= 0 {
		return nil, fmt.Errorf("ivf: nlist must be positive, got %d", nlist)
	}
	if nprobe <= 0 {
		nprobe = DefaultNProbe
	}
	return &IVF{
		dim:       dim,
		nprobe:    nprobe,
		centroids: make([][]float32, nlist),
		lists:     make([][]int, nlist),
	}, nil
}

// Train runs deterministic k-means over the sample. Centroids are seeded
// from evenly spaced sample positions so that two builds over the same
// chunk sequence produce identical indexes. When the sample is smaller than
// nlist the partition count shrinks to the sample size.
func (iv *IVF) Train(ctx context.Context, sample [][]float32) error {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if len(sample) == 0 {
		return fmt.Errorf("ivf: training sample is empty")
	}
	if err := checkDimensions(sample, iv.dim); err != nil {
		return err
	}

	nlist := len(iv.centroids)
	if nlist > len(sample) {
		nlist = len(sample)
		iv.centroids = make([][]float32, nlist)
		iv.lists = make([][]int, nlist)
	}

	for c := 0; c < nlist; c++ {
		iv.centroids[c] = cloneVector(sample[c*len(sample)/nlist])
	}

	assign := make([]int, len(sample))
	for iter := 0; iter < kmeansIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		changed := false
		for i, v := range sample {
			best := nearestCentroid(iv.centroids, v)
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		sums := make([][]float64, nlist)
		counts := make([]int, nlist)
		for c := range sums {
			sums[c] = make([]float64, iv.dim)
		}
		for i, v := range sample {
			c := assign[i]
			counts[c]++
			for d, x := range v {
				sums[c][d] += float64(x)
			}
		}
		for c := 0; c < nlist; c++ {
			if counts[c] == 0 {
				// Empty partition keeps its previous centroid.
				continue
			}
			for d := 0; d < iv.dim; d++ {
				iv.centroids[c][d] = float32(sums[c][d] / float64(counts[c]))
			}
		}
	}

	iv.trained = true
	return nil
}

// Add assigns each vector to its nearest partition and appends it. Fails
// with domain.ErrNotTrained before Train.
func (iv *IVF) Add(vectors [][]float32) error {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if !iv.trained {
		return fmt.Errorf("ivf: add before train: %w", domain.ErrNotTrained)
	}
	if err := checkDimensions(vectors, iv.dim); err != nil {
		return err
	}

	for _, v := range vectors {
		ordinal := len(iv.vectors)
		iv.vectors = append(iv.vectors, cloneVector(v))
		c := nearestCentroid(iv.centroids, v)
		iv.lists[c] = append(iv.lists[c], ordinal)
	}
	return nil
}

// Search scans the nprobe partitions nearest to the query and ranks their
// members by inner product.
func (iv *IVF) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iv.mu.RLock()
	defer iv.mu.RUnlock()

	if !iv.trained {
		return nil, fmt.Errorf("ivf: search before train: %w", domain.ErrNotTrained)
	}
	if len(query) != iv.dim {
		return nil, fmt.Errorf("ivf: query has dimension %d, index has %d: %w",
			len(query), iv.dim, domain.ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, fmt.Errorf("ivf: k must be positive, got %d", k)
	}

	probes := iv.nprobe
	if probes > len(iv.centroids) {
		probes = len(iv.centroids)
	}

	centroidHits := make([]driven.VectorHit, len(iv.centroids))
	for c, centroid := range iv.centroids {
		centroidHits[c] = driven.VectorHit{
			Ordinal: c,
			Score:   float32(domain.Dot(query, centroid)),
		}
	}
	centroidHits = rankHits(centroidHits, probes)

	var hits []driven.VectorHit
	for _, ch := range centroidHits {
		if ch.Ordinal < 0 {
			continue
		}
		for _, ordinal := range iv.lists[ch.Ordinal] {
			hits = append(hits, driven.VectorHit{
				Ordinal: ordinal,
				Score:   float32(domain.Dot(query, iv.vectors[ordinal])),
			})
		}
	}
	return rankHits(hits, k), nil
}

// Reconstruct returns the stored vector at the given ordinal position.
func (iv *IVF) Reconstruct(ordinal int) ([]float32, error) {
	iv.mu.RLock()
	defer iv.mu.RUnlock()

	if ordinal < 0 || ordinal >= len(iv.vectors) {
		return nil, fmt.Errorf("ivf: ordinal %d with %d vectors: %w",
			ordinal, len(iv.vectors), domain.ErrOutOfRange)
	}
	return iv.vectors[ordinal], nil
}

// NTotal returns the number of stored vectors.
func (iv *IVF) NTotal() int {
	iv.mu.RLock()
	defer iv.mu.RUnlock()
	return len(iv.vectors)
}

// Dimensions returns the vector dimension.
func (iv *IVF) Dimensions() int {
	return iv.dim
}

func nearestCentroid(centroids [][]float32, v []float32) int {
	best := 0
	bestScore := domain.Dot(v, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if score := domain.Dot(v, centroids[c]); score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}
