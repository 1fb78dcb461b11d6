package umloss

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// PairCounts holds, per MST edge, the share of positive and negative node
// pairs that the edge's merge connects for the first time.
type PairCounts struct {
	// RatioPos[i] is the number of positive pairs merged by edge i divided by
	// TotalPos (0 everywhere if TotalPos is 0). Likewise for RatioNeg.
	RatioPos []float64
	RatioNeg []float64

	TotalPos float64
	TotalNeg float64
}

// CountPairs replays the MST merges in order and counts the positive and
// negative pairs each merge brings together. mst must hold len(labels)-1
// edges; they are processed in the given order.
//
// Each cluster keeps an overlap histogram of the ground-truth labels of its
// nodes. Merging clusters U and V creates countU*countV pairs for every
// label combination, classified by classifyPair. The histogram of the
// absorbed cluster is folded into the surviving representative.
//
// Returns ErrNotTree if an edge joins two nodes that are already connected.
func CountPairs(mst [][3]float64, labels []int64) (*PairCounts, error) {
	n := len(labels)
	if err := validateEdges(mst, n, false); err != nil {
		return nil, err
	}
	return replayMerges(mst, labels)
}

// replayMerges is CountPairs on edges already checked by validateEdges.
func replayMerges(mst [][3]float64, labels []int64) (*PairCounts, error) {
	n := len(labels)
	numEdges := len(mst)
	counts := &PairCounts{
		RatioPos: make([]float64, numEdges),
		RatioNeg: make([]float64, numEdges),
	}

	clusters := NewUnionFind(n)
	overlaps := make([]overlap, n)
	for i, label := range labels {
		overlaps[i] = overlap{label: 1}
	}

	for i, edge := range mst {
		u, _ := nodeIndex(edge[0], n)
		v, _ := nodeIndex(edge[1], n)
		clusterU := clusters.Find(u)
		clusterV := clusters.Find(v)
		if clusterU == clusterV {
			return nil, fmt.Errorf("%w: edge %d (%d, %d)", ErrNotTree, i, u, v)
		}

		pos, neg := countPairs(overlaps[clusterU], overlaps[clusterV])
		counts.RatioPos[i] = pos
		counts.RatioNeg[i] = neg

		root := clusters.Union(clusterU, clusterV)
		absorbed := clusterV
		if root == clusterV {
			absorbed = clusterU
		}
		overlaps[root].absorb(overlaps[absorbed])
		overlaps[absorbed] = nil

		// For now the ratios are plain counts.
		counts.TotalPos += pos
		counts.TotalNeg += neg
	}

	if n > 0 && clusters.Count() != 1 {
		return nil, fmt.Errorf("%w: %d clusters left after all merges", ErrNotTree, clusters.Count())
	}

	if counts.TotalPos > 0 {
		floats.Scale(1/counts.TotalPos, counts.RatioPos)
	}
	if counts.TotalNeg > 0 {
		floats.Scale(1/counts.TotalNeg, counts.RatioNeg)
	}

	return counts, nil
}
