package umloss

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDisconnected is returned when a graph has no spanning tree.
	ErrDisconnected = errors.New("umloss: graph is disconnected")

	// ErrNodeID is returned when graph node IDs are not exactly 0..n-1.
	ErrNodeID = errors.New("umloss: graph node IDs must be 0..n-1")
)

// SortEdges returns a copy of mst sorted by ascending distance. Edges with
// equal distance keep their relative order.
func SortEdges(mst [][3]float64) [][3]float64 {
	sorted := make([][3]float64, len(mst))
	copy(sorted, mst)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i][2] < sorted[j][2]
	})
	return sorted
}

// SpanningTree computes a minimum spanning tree over the rows of data, one
// node per row, using Prim's algorithm with distances computed on the fly
// (O(n²) time, O(n) memory). Returns (n-1) edges [from, to, distance] sorted
// by ascending distance, ready for LossAndGradient. "from" is the tree node
// the new node was attached to.
//
// Logs a warning if any edge distance is +Inf or NaN.
func SpanningTree(data mat.Matrix, metric DistanceMetric) [][3]float64 {
	n, _ := data.Dims()
	if n <= 1 {
		return [][3]float64{}
	}
	if metric == nil {
		metric = EuclideanMetric{}
	}

	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, data)
	}

	inTree := make([]bool, n)
	currentDistances := make([]float64, n)
	currentSources := make([]int, n)
	for j := range currentDistances {
		currentDistances[j] = math.Inf(1)
	}

	currentNode := 0
	edges := make([][3]float64, 0, n-1)
	nonFinite := false

	for i := 1; i < n; i++ {
		inTree[currentNode] = true

		newNode := -1
		newDistance := math.Inf(1)
		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}

			// Relax the distance to j through the node added last.
			if d := metric.Distance(rows[currentNode], rows[j]); d < currentDistances[j] {
				currentDistances[j] = d
				currentSources[j] = currentNode
			}
			if newNode == -1 || currentDistances[j] < newDistance {
				newDistance = currentDistances[j]
				newNode = j
			}
		}

		if math.IsInf(newDistance, 1) || math.IsNaN(newDistance) {
			nonFinite = true
		}

		edges = append(edges, [3]float64{
			float64(currentSources[newNode]),
			float64(newNode),
			newDistance,
		})
		currentNode = newNode
	}

	if nonFinite {
		log.Printf("umloss: spanning tree contains edge(s) with +Inf or NaN distance")
	}

	return SortEdges(edges)
}

// GraphSpanningTree computes a minimum spanning tree of a weighted undirected
// graph with Kruskal's algorithm. Node IDs must be exactly 0..n-1; they become
// the node indices of the returned edges, which are sorted by ascending
// weight.
//
// Returns ErrNodeID for sparse or negative IDs and ErrDisconnected if the
// graph has more than one connected component.
func GraphSpanningTree(g path.UndirectedWeightLister) ([][3]float64, error) {
	nodes := graph.NodesOf(g.Nodes())
	n := len(nodes)
	for _, node := range nodes {
		if id := node.ID(); id < 0 || id >= int64(n) {
			return nil, fmt.Errorf("%w: got ID %d for %d nodes", ErrNodeID, id, n)
		}
	}

	dst := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	path.Kruskal(dst, g)

	treeEdges := graph.WeightedEdgesOf(dst.WeightedEdges())
	if len(treeEdges) != max(n-1, 0) {
		return nil, fmt.Errorf("%w: spanning forest has %d edges for %d nodes", ErrDisconnected, len(treeEdges), n)
	}

	mst := make([][3]float64, len(treeEdges))
	for i, e := range treeEdges {
		mst[i] = [3]float64{float64(e.From().ID()), float64(e.To().ID()), e.Weight()}
	}
	return SortEdges(mst), nil
}
