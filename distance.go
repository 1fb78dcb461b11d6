package umloss

import "math"

// DistanceMetric measures the distance between two embedding vectors and
// provides its derivative, so that edge gradients can be pushed back onto
// the embeddings.
type DistanceMetric interface {
	Distance(a, b []float64) float64

	// Gradient adds scale·∂Distance(a, b)/∂a to dst. Distance is symmetric,
	// so the derivative with respect to b is Gradient(dst, b, a, scale).
	Gradient(dst, a, b []float64, scale float64)
}

// DistanceFunc adapts a plain symmetric function f(a, b) into a
// DistanceMetric. Gradient uses central differences.
type DistanceFunc func(a, b []float64) float64

const finiteDifferenceStep = 1e-6

func (f DistanceFunc) Distance(a, b []float64) float64 { return f(a, b) }

func (f DistanceFunc) Gradient(dst, a, b []float64, scale float64) {
	shifted := make([]float64, len(a))
	copy(shifted, a)
	for i := range a {
		shifted[i] = a[i] + finiteDifferenceStep
		up := f(shifted, b)
		shifted[i] = a[i] - finiteDifferenceStep
		down := f(shifted, b)
		shifted[i] = a[i]
		dst[i] += scale * (up - down) / (2 * finiteDifferenceStep)
	}
}

// EuclideanMetric computes the Euclidean (L2) distance.
// Its gradient at a == b is taken to be zero.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 {
	return math.Sqrt(euclideanSumOfSquares(a, b))
}

func (EuclideanMetric) Gradient(dst, a, b []float64, scale float64) {
	d := math.Sqrt(euclideanSumOfSquares(a, b))
	if d == 0 {
		return
	}
	for i := range a {
		dst[i] += scale * (a[i] - b[i]) / d
	}
}

// SquaredEuclideanMetric computes the squared Euclidean distance. It is not
// a metric in the strict sense but yields the same MST as EuclideanMetric
// and has a gradient everywhere.
type SquaredEuclideanMetric struct{}

func (SquaredEuclideanMetric) Distance(a, b []float64) float64 {
	return euclideanSumOfSquares(a, b)
}

func (SquaredEuclideanMetric) Gradient(dst, a, b []float64, scale float64) {
	for i := range a {
		dst[i] += 2 * scale * (a[i] - b[i])
	}
}

func euclideanSumOfSquares(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// ManhattanMetric computes the Manhattan (L1 / city-block) distance.
// Coordinates where a and b agree contribute a zero subgradient.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

func (ManhattanMetric) Gradient(dst, a, b []float64, scale float64) {
	for i := range a {
		switch {
		case a[i] > b[i]:
			dst[i] += scale
		case a[i] < b[i]:
			dst[i] -= scale
		}
	}
}

// CosineMetric computes the cosine distance: 1 - cosine_similarity.
// For a zero vector the distance is NaN (0/0) and the gradient is zero.
type CosineMetric struct{}

func (CosineMetric) Distance(a, b []float64) float64 {
	dot, normA, normB := cosineTerms(a, b)
	return 1.0 - dot/math.Sqrt(normA*normB)
}

// Gradient applies the quotient rule to -dot/(|a|·|b|):
// ∂/∂a_i = dot·a_i/(|a|³·|b|) - b_i/(|a|·|b|).
func (CosineMetric) Gradient(dst, a, b []float64, scale float64) {
	dot, normA, normB := cosineTerms(a, b)
	if normA == 0 || normB == 0 {
		return
	}
	lenA := math.Sqrt(normA)
	lenAB := lenA * math.Sqrt(normB)
	for i := range a {
		dst[i] += scale * (dot*a[i]/(normA*lenAB) - b[i]/lenAB)
	}
}

func cosineTerms(a, b []float64) (dot, normA, normB float64) {
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	return dot, normA, normB
}

// ChebyshevMetric computes the Chebyshev (L-infinity) distance.
// The subgradient puts all weight on the first coordinate of largest
// absolute difference.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 {
	_, maxVal := chebyshevArgmax(a, b)
	return maxVal
}

func (ChebyshevMetric) Gradient(dst, a, b []float64, scale float64) {
	k, maxVal := chebyshevArgmax(a, b)
	if maxVal == 0 {
		return
	}
	if a[k] > b[k] {
		dst[k] += scale
	} else {
		dst[k] -= scale
	}
}

func chebyshevArgmax(a, b []float64) (int, float64) {
	k := -1
	var maxVal float64
	for i := range a {
		if v := math.Abs(a[i] - b[i]); v > maxVal {
			k, maxVal = i, v
		}
	}
	return k, maxVal
}

// MinkowskiMetric computes the Minkowski distance parameterized by P.
// P must be >= 1; EmbeddingLoss rejects smaller values with ErrInvalidMetric.
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 {
	return math.Pow(m.rawSum(a, b), 1.0/m.P)
}

// Gradient is sign(Δ_i)·|Δ_i|^(P-1) / D^(P-1) with Δ = a - b.
func (m MinkowskiMetric) Gradient(dst, a, b []float64, scale float64) {
	d := m.Distance(a, b)
	if d == 0 {
		return
	}
	norm := math.Pow(d, m.P-1)
	for i := range a {
		diff := a[i] - b[i]
		if diff == 0 {
			continue
		}
		g := math.Pow(math.Abs(diff), m.P-1) / norm
		if diff < 0 {
			g = -g
		}
		dst[i] += scale * g
	}
}

func (m MinkowskiMetric) rawSum(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Pow(math.Abs(a[i]-b[i]), m.P)
	}
	return sum
}
