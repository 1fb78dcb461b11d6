package umloss

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// EmbeddingResult is the ultrametric loss of an embedding together with the
// gradient of that loss with respect to every embedding coordinate.
type EmbeddingResult struct {
	Result

	// MST is the spanning tree the loss was computed on, sorted by distance.
	MST [][3]float64

	// EmbeddingGradient has the same shape as the input embedding.
	EmbeddingGradient *mat.Dense
}

// EmbeddingLoss computes the ultrametric loss of an embedding: each row of
// data is the embedding of one node, labels holds the nodes' ground-truth
// ids. The minimum spanning tree under cfg.Metric is built with SpanningTree,
// the loss is evaluated with margin cfg.Alpha, and the per-edge gradients
// are propagated through the metric onto both endpoints of each edge. The
// tree itself is treated as constant, which is exact almost everywhere.
func EmbeddingLoss(data mat.Matrix, labels []int64, cfg Config) (*EmbeddingResult, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	n, dims := data.Dims()
	if n != len(labels) {
		return nil, fmt.Errorf("%w: %d embedding rows, %d labels", ErrLabelCount, n, len(labels))
	}

	mst := SpanningTree(data, cfg.Metric)
	res, err := LossAndGradient(mst, labels, cfg.Alpha)
	if err != nil {
		return nil, err
	}

	out := &EmbeddingResult{
		Result: *res,
		MST:    mst,
	}
	if n == 0 || dims == 0 {
		return out, nil
	}

	grad := mat.NewDense(n, dims, nil)
	rowU := make([]float64, dims)
	rowV := make([]float64, dims)
	for i, edge := range mst {
		g := res.Gradients[i]
		if g == 0 {
			continue
		}
		u, v := int(edge[0]), int(edge[1])
		mat.Row(rowU, u, data)
		mat.Row(rowV, v, data)
		cfg.Metric.Gradient(grad.RawRowView(u), rowU, rowV, g)
		cfg.Metric.Gradient(grad.RawRowView(v), rowV, rowU, g)
	}
	out.EmbeddingGradient = grad

	return out, nil
}
