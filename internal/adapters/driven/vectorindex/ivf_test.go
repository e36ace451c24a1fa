package vectorindex

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclens/doclens-cli/internal/core/domain"
)

// clusteredVectors builds normalized vectors grouped around axis-aligned
// directions, deterministic across calls.
func clusteredVectors(dim, perAxis int) [][]float32 {
	var vecs [][]float32
	for axis := 0; axis < dim; axis++ {
		for i := 0; i < perAxis; i++ {
			v := make([]float32, dim)
			v[axis] = 1
			v[(axis+1)%dim] = float32(i) * 0.01
			vecs = append(vecs, domain.Normalize(v))
		}
	}
	return vecs
}

func TestPartitionCount(t *testing.T) {
	assert.Equal(t, 1, PartitionCount(0, 100))
	assert.Equal(t, 1, PartitionCount(9, 100))
	assert.Equal(t, 5, PartitionCount(50, 100))
	assert.Equal(t, 100, PartitionCount(5000, 100))
	assert.Equal(t, 20, PartitionCount(5000, 20))
}

func TestIVFRequiresTraining(t *testing.T) {
	idx, err := NewIVF(2, 2, 0)
	require.NoError(t, err)

	err = idx.Add([][]float32{unit(2, 0)})
	assert.ErrorIs(t, err, domain.ErrNotTrained)

	_, err = idx.Search(context.Background(), unit(2, 0), 1)
	assert.ErrorIs(t, err, domain.ErrNotTrained)

	err = idx.Save(t.TempDir() + "/untrained.dlvi")
	assert.ErrorIs(t, err, domain.ErrNotTrained)
}

func TestIVFTrainAddSearch(t *testing.T) {
	dim := 4
	vecs := clusteredVectors(dim, 20)

	idx, err := NewIVF(dim, PartitionCount(len(vecs), DefaultPartitionCap), 0)
	require.NoError(t, err)
	require.NoError(t, idx.Train(context.Background(), vecs))
	require.NoError(t, idx.Add(vecs))
	assert.Equal(t, len(vecs), idx.NTotal())

	// Querying with a stored vector must return it as the top hit.
	for probe := 0; probe < len(vecs); probe += 7 {
		hits, err := idx.Search(context.Background(), vecs[probe], 3)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, probe, hits[0].Ordinal)
		assert.InDelta(t, 1.0, float64(hits[0].Score), 1e-5)
	}
}

func TestIVFTrainShrinksToSampleSize(t *testing.T) {
	idx, err := NewIVF(2, 10, 0)
	require.NoError(t, err)

	sample := [][]float32{unit(2, 0), unit(2, 1)}
	require.NoError(t, idx.Train(context.Background(), sample))
	require.NoError(t, idx.Add(sample))

	hits, err := idx.Search(context.Background(), unit(2, 1), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, hits[0].Ordinal)
}

func TestIVFTrainDeterministic(t *testing.T) {
	dim := 3
	vecs := clusteredVectors(dim, 15)
	query := domain.Normalize([]float32{0.9, 0.1, 0})

	build := func() []int {
		idx, err := NewIVF(dim, PartitionCount(len(vecs), DefaultPartitionCap), 0)
		require.NoError(t, err)
		require.NoError(t, idx.Train(context.Background(), vecs))
		require.NoError(t, idx.Add(vecs))
		hits, err := idx.Search(context.Background(), query, 5)
		require.NoError(t, err)
		ordinals := make([]int, len(hits))
		for i, h := range hits {
			ordinals[i] = h.Ordinal
		}
		return ordinals
	}

	assert.Equal(t, build(), build())
}

func TestIVFReconstruct(t *testing.T) {
	vecs := clusteredVectors(3, 10)
	idx, err := NewIVF(3, 2, 0)
	require.NoError(t, err)
	require.NoError(t, idx.Train(context.Background(), vecs))
	require.NoError(t, idx.Add(vecs))

	for i, want := range vecs {
		got, err := idx.Reconstruct(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.InDelta(t, 1.0, domain.Norm(got), 1e-5)
	}

	_, err = idx.Reconstruct(len(vecs))
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}

func TestIVFSaveLoadRoundTrip(t *testing.T) {
	dim := 4
	vecs := clusteredVectors(dim, 25)

	idx, err := NewIVF(dim, PartitionCount(len(vecs), DefaultPartitionCap), 4)
	require.NoError(t, err)
	require.NoError(t, idx.Train(context.Background(), vecs))
	require.NoError(t, idx.Add(vecs))

	path := t.TempDir() + "/ivf.dlvi"
	require.NoError(t, idx.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, idx.NTotal(), loaded.NTotal())
	assert.Equal(t, dim, loaded.Dimensions())

	probes := [][]float32{
		vecs[0],
		vecs[len(vecs)/2],
		domain.Normalize([]float32{1, 1, 0, 0}),
	}
	for _, probe := range probes {
		want, err := idx.Search(context.Background(), probe, 5)
		require.NoError(t, err)
		got, err := loaded.Search(context.Background(), probe, 5)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// Round-trip preserves reconstruction.
	for i := 0; i < len(vecs); i += 9 {
		want, err := idx.Reconstruct(i)
		require.NoError(t, err)
		got, err := loaded.Reconstruct(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestIVFSearchPadsWhenSmall(t *testing.T) {
	idx, err := NewIVF(2, 1, 0)
	require.NoError(t, err)
	sample := [][]float32{unit(2, 0)}
	require.NoError(t, idx.Train(context.Background(), sample))
	require.NoError(t, idx.Add(sample))

	hits, err := idx.Search(context.Background(), unit(2, 0), 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, 0, hits[0].Ordinal)
	assert.Equal(t, -1, hits[1].Ordinal)
	assert.True(t, math.IsInf(float64(hits[1].Score), -1))
}
