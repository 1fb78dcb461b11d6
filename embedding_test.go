package umloss

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// clusteredEmbedding draws numObjects Gaussian blobs of perObject points in
// dims dimensions and labels them 1..numObjects.
func clusteredEmbedding(rng *rand.Rand, numObjects, perObject, dims int, spread float64) (*mat.Dense, []int64) {
	n := numObjects * perObject
	data := mat.NewDense(n, dims, nil)
	labels := make([]int64, n)
	for o := 0; o < numObjects; o++ {
		center := make([]float64, dims)
		for j := range center {
			center[j] = rng.Float64() * 10
		}
		for p := 0; p < perObject; p++ {
			i := o*perObject + p
			labels[i] = int64(o + 1)
			for j := 0; j < dims; j++ {
				data.Set(i, j, center[j]+rng.NormFloat64()*spread)
			}
		}
	}
	return data, labels
}

func TestEmbeddingLoss_MatchesKernel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	data, labels := clusteredEmbedding(rng, 3, 5, 2, 1.5)
	labels[0] = Background

	cfg := DefaultConfig()
	cfg.Alpha = 1
	res, err := EmbeddingLoss(data, labels, cfg)
	require.NoError(t, err)

	want, err := LossAndGradient(SpanningTree(data, EuclideanMetric{}), labels, 1)
	require.NoError(t, err)

	assert.InDelta(t, want.Loss, res.Loss, floatTolerance)
	assert.InDeltaSlice(t, want.Gradients, res.Gradients, floatTolerance)
	assert.Len(t, res.MST, 14)

	r, c := res.EmbeddingGradient.Dims()
	assert.Equal(t, 15, r)
	assert.Equal(t, 2, c)
}

func TestEmbeddingLoss_NumericalGradient(t *testing.T) {
	tests := []struct {
		name   string
		metric DistanceMetric
		alpha  float64
	}{
		{"squared_euclidean", SquaredEuclideanMetric{}, 20},
		{"euclidean", EuclideanMetric{}, 5},
		{"cosine", CosineMetric{}, 1},
		{"minkowski_3", MinkowskiMetric{P: 3}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(8))
			data, labels := clusteredEmbedding(rng, 3, 4, 2, 2)

			cfg := DefaultConfig()
			cfg.Alpha = tt.alpha
			cfg.Metric = tt.metric

			res, err := EmbeddingLoss(data, labels, cfg)
			require.NoError(t, err)
			require.Greater(t, res.Loss, 0.0, "the margin should be violated somewhere")

			const eps = 1e-6
			n, dims := data.Dims()
			for i := 0; i < n; i++ {
				for j := 0; j < dims; j++ {
					orig := data.At(i, j)

					data.Set(i, j, orig+eps)
					up, err := EmbeddingLoss(data, labels, cfg)
					require.NoError(t, err)

					data.Set(i, j, orig-eps)
					down, err := EmbeddingLoss(data, labels, cfg)
					require.NoError(t, err)

					data.Set(i, j, orig)

					numeric := (up.Loss - down.Loss) / (2 * eps)
					assert.InDelta(t, numeric, res.EmbeddingGradient.At(i, j), 1e-4,
						"node %d coordinate %d", i, j)
				}
			}
		})
	}
}

func TestEmbeddingLoss_GradientSumsToZero(t *testing.T) {
	// Every edge pushes its endpoints with equal and opposite force, so the
	// gradient is translation invariant.
	rng := rand.New(rand.NewSource(4))
	data, labels := clusteredEmbedding(rng, 4, 6, 3, 2)

	res, err := EmbeddingLoss(data, labels, DefaultConfig())
	require.NoError(t, err)

	_, dims := data.Dims()
	for j := 0; j < dims; j++ {
		assert.InDelta(t, 0, mat.Sum(res.EmbeddingGradient.ColView(j)), 1e-9)
	}
}

func TestEmbeddingLoss_Errors(t *testing.T) {
	data := mat.NewDense(3, 2, []float64{0, 0, 1, 1, 2, 2})

	_, err := EmbeddingLoss(data, []int64{1, 1}, DefaultConfig())
	assert.ErrorIs(t, err, ErrLabelCount)
	assert.NotErrorIs(t, err, ErrLengthMismatch)

	cfg := DefaultConfig()
	cfg.Alpha = -1
	_, err = EmbeddingLoss(data, []int64{1, 1, 2}, cfg)
	assert.ErrorIs(t, err, ErrInvalidAlpha)

	for _, p := range []float64{0.5, 0, math.NaN()} {
		cfg = DefaultConfig()
		cfg.Metric = MinkowskiMetric{P: p}
		_, err = EmbeddingLoss(data, []int64{1, 1, 2}, cfg)
		assert.ErrorIs(t, err, ErrInvalidMetric, "P=%g", p)
	}
}

func TestEmbeddingLoss_SingleNode(t *testing.T) {
	data := mat.NewDense(1, 3, []float64{1, 2, 3})

	res, err := EmbeddingLoss(data, []int64{1}, DefaultConfig())
	require.NoError(t, err)
	assert.Zero(t, res.Loss)
	assert.Empty(t, res.MST)
	assert.Equal(t, 0.0, mat.Sum(res.EmbeddingGradient))
}
