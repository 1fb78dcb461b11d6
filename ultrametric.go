package umloss

import "fmt"

// Ultrametric returns the merge distance between every pair of the n nodes
// spanned by mst: the distance of the edge at which the two nodes first end
// up in the same cluster when edges are merged in increasing order. The
// result is a flat []float64 of length n*n in row-major order with zeros on
// the diagonal.
//
// mst need not be sorted; it is sorted by distance first. Requires O(n²)
// memory, so it is meant for inspection and for checking the linear-time
// loss on small inputs.
func Ultrametric(mst [][3]float64, n int) ([]float64, error) {
	if err := validateEdges(mst, n, false); err != nil {
		return nil, err
	}

	result := make([]float64, n*n)
	uf := NewUnionFind(n)

	members := make([][]int, n)
	for i := range members {
		members[i] = []int{i}
	}

	for k, edge := range SortEdges(mst) {
		a, _ := nodeIndex(edge[0], n)
		b, _ := nodeIndex(edge[1], n)
		aa := uf.Find(a)
		bb := uf.Find(b)
		if aa == bb {
			return nil, fmt.Errorf("%w: edge %d (%d, %d)", ErrNotTree, k, a, b)
		}

		weight := edge[2]
		for _, p := range members[aa] {
			for _, q := range members[bb] {
				result[p*n+q] = weight
				result[q*n+p] = weight
			}
		}

		root := uf.Union(aa, bb)
		other := bb
		if root == bb {
			other = aa
		}
		merged := make([]int, 0, uf.Size(root))
		merged = append(merged, members[root]...)
		members[root] = append(merged, members[other]...)
		members[other] = nil
	}

	return result, nil
}
