package umloss

import (
	"errors"
	"fmt"
	"math"
	"runtime"
)

var (
	// ErrNotTree is returned when an MST edge joins two nodes that an earlier
	// edge already connected, i.e. the input contains a cycle.
	ErrNotTree = errors.New("umloss: MST edge endpoints are already connected")

	// ErrEdgeCount is returned when the MST does not have numNodes-1 edges.
	ErrEdgeCount = errors.New("umloss: MST must have numNodes-1 edges")

	// ErrNodeIndex is returned when an edge endpoint is not an integer in [0, numNodes).
	ErrNodeIndex = errors.New("umloss: MST edge endpoint out of range")

	// ErrUnsorted is returned when MST distances are NaN or decrease.
	ErrUnsorted = errors.New("umloss: MST edges must be sorted by non-decreasing distance")

	// ErrInvalidAlpha is returned for a negative or non-finite margin.
	ErrInvalidAlpha = errors.New("umloss: alpha must be finite and >= 0")

	// ErrLengthMismatch is returned when per-edge arrays disagree in length.
	ErrLengthMismatch = errors.New("umloss: per-edge array length does not match MST")

	// ErrLabelCount is returned when an embedding and its labels disagree on
	// the number of nodes.
	ErrLabelCount = errors.New("umloss: number of embedding rows does not match number of labels")

	// ErrInvalidMetric is returned for a metric with invalid parameters,
	// such as a MinkowskiMetric with P < 1.
	ErrInvalidMetric = errors.New("umloss: invalid distance metric")
)

// Config controls the helpers built around the loss kernel (embedding loss
// and batch evaluation). Start with [DefaultConfig] and override the fields
// you need.
type Config struct {
	// Alpha is the margin by which every negative pair should merge later
	// than every positive pair. Must be finite and >= 0. Default: 0.1.
	Alpha float64

	// Metric measures distances between embedding rows in EmbeddingLoss.
	// Default: EuclideanMetric.
	Metric DistanceMetric

	// Workers is the number of goroutines used by LossBatch.
	// 0 means use runtime.NumCPU(). Default: 0 (auto).
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Alpha:  0.1,
		Metric: EuclideanMetric{},
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
// Alpha is left alone since zero is a legal margin.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if err := validateAlpha(cfg.Alpha); err != nil {
		return err
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("umloss: Workers must be >= 0 (0 means runtime.NumCPU()), got %d", cfg.Workers)
	}
	if m, ok := cfg.Metric.(MinkowskiMetric); ok && !(m.P >= 1) {
		return fmt.Errorf("%w: Minkowski P must be >= 1, got %g", ErrInvalidMetric, m.P)
	}
	return nil
}

func validateAlpha(alpha float64) error {
	if alpha < 0 || math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return fmt.Errorf("%w, got %g", ErrInvalidAlpha, alpha)
	}
	return nil
}

// Result holds the ultrametric loss of one MST and everything computed on
// the way to it.
type Result struct {
	// Loss is the margin loss summed over all (positive, negative) pair
	// combinations, normalized by the pair totals. Always >= 0.
	Loss float64

	// Gradients[i] is the derivative of Loss with respect to the distance
	// of MST edge i.
	Gradients []float64

	// RatioPos[i] and RatioNeg[i] are the fractions of all positive and
	// negative pairs that first become connected through edge i.
	RatioPos []float64
	RatioNeg []float64

	// TotalPairsPos and TotalPairsNeg are the unnormalized pair counts.
	TotalPairsPos float64
	TotalPairsNeg float64
}

func emptyResult() *Result {
	return &Result{
		Gradients: []float64{},
		RatioPos:  []float64{},
		RatioNeg:  []float64{},
	}
}

// LossAndGradient computes the ultrametric margin loss of a labelled MST and
// its gradient with respect to each edge distance.
//
// mst holds numNodes-1 edges [u, v, distance] sorted by non-decreasing
// distance, where numNodes = len(labels). labels[i] is the ground-truth id of
// node i: >= 1 for foreground objects, 0 for background, -1 for ambiguous.
// alpha is the margin and must be finite and >= 0.
//
// Runs in O(numNodes) time and memory, up to the number of distinct labels
// met per merge. Malformed trees are reported via ErrNotTree, ErrEdgeCount,
// ErrNodeIndex or ErrUnsorted.
func LossAndGradient(mst [][3]float64, labels []int64, alpha float64) (*Result, error) {
	if err := validateAlpha(alpha); err != nil {
		return nil, err
	}
	if err := validateEdges(mst, len(labels), true); err != nil {
		return nil, err
	}
	if len(mst) == 0 {
		return emptyResult(), nil
	}

	// The edges are validated once above; the cores below trust them.
	counts, err := replayMerges(mst, labels)
	if err != nil {
		return nil, err
	}

	loss, gradients := marginLoss(mst, counts.RatioPos, counts.RatioNeg, alpha)

	return &Result{
		Loss:          loss,
		Gradients:     gradients,
		RatioPos:      counts.RatioPos,
		RatioNeg:      counts.RatioNeg,
		TotalPairsPos: counts.TotalPos,
		TotalPairsNeg: counts.TotalNeg,
	}, nil
}

// validateEdges checks that mst is shaped like a spanning tree over n nodes:
// n-1 edges (none for n <= 1) whose endpoints are integral indices in [0, n).
// With sorted set, distances must also be non-NaN and non-decreasing.
// Cycles are detected later, while merging.
func validateEdges(mst [][3]float64, n int, sorted bool) error {
	if n < 0 {
		return fmt.Errorf("%w: negative node count %d", ErrEdgeCount, n)
	}
	want := max(n-1, 0)
	if len(mst) != want {
		return fmt.Errorf("%w: got %d edges for %d nodes", ErrEdgeCount, len(mst), n)
	}
	for i, e := range mst {
		if _, ok := nodeIndex(e[0], n); !ok {
			return fmt.Errorf("%w: edge %d has endpoint %g (numNodes=%d)", ErrNodeIndex, i, e[0], n)
		}
		if _, ok := nodeIndex(e[1], n); !ok {
			return fmt.Errorf("%w: edge %d has endpoint %g (numNodes=%d)", ErrNodeIndex, i, e[1], n)
		}
	}
	if sorted {
		return validateSorted(mst)
	}
	return nil
}

// validateSorted checks that mst distances are non-NaN and non-decreasing.
func validateSorted(mst [][3]float64) error {
	for i, e := range mst {
		if math.IsNaN(e[2]) {
			return fmt.Errorf("%w: edge %d has NaN distance", ErrUnsorted, i)
		}
		if i > 0 && e[2] < mst[i-1][2] {
			return fmt.Errorf("%w: edge %d distance %g < edge %d distance %g",
				ErrUnsorted, i, e[2], i-1, mst[i-1][2])
		}
	}
	return nil
}

// nodeIndex converts a float64 endpoint into a node index in [0, n).
func nodeIndex(v float64, n int) (int, bool) {
	if v < 0 || v >= float64(n) {
		return 0, false
	}
	i := int(v)
	return i, float64(i) == v
}
