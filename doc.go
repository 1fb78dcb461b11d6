// Package umloss computes the ultrametric loss of a labelled minimum spanning
// tree and its gradient with respect to the tree's edge distances.
//
// The merge distance of two nodes is the distance of the MST edge at which
// they first end up in the same cluster when edges are merged in increasing
// order. Given ground-truth labels (>= 1 for objects, 0 for background, -1
// for ambiguous), pairs of nodes are positive (same object) or negative
// (different objects, or background against anything else). The loss
// penalizes, with a squared hinge of margin alpha, every negative pair that
// merges less than alpha after a positive pair. Although there are
// quadratically many pairs, loss and gradient are computed exactly in linear
// time.
//
// Basic usage:
//
//	mst := umloss.SortEdges(edges) // [][3]float64{u, v, distance}
//	res, err := umloss.LossAndGradient(mst, labels, 0.1)
//	// res.Loss is the scalar loss
//	// res.Gradients[i] is ∂Loss/∂distance of edge i
//	// res.RatioPos / res.RatioNeg are the pair shares merged by each edge
//
// For embeddings, EmbeddingLoss builds the MST with SpanningTree and
// propagates the gradient back onto the embedding:
//
//	cfg := umloss.DefaultConfig()
//	cfg.Alpha = 0.5
//	res, err := umloss.EmbeddingLoss(embedding, labels, cfg)
//	// res.EmbeddingGradient has the shape of embedding
//
// PruneForest reduces an MST to the edges that join distinct, pre-merged
// components.
//
// # Errors
//
// Inputs that are not spanning trees are programmer errors. They are
// reported as errors wrapping ErrNotTree, ErrEdgeCount, ErrNodeIndex or
// ErrUnsorted (or ErrComponentCount and friends for PruneForest) and never
// produce partial results.
package umloss
