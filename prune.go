package umloss

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownComponent is returned when an MST endpoint's label is not
	// one of the components passed to PruneForest.
	ErrUnknownComponent = errors.New("umloss: node label is not a known component")

	// ErrDuplicateComponent is returned when a component label is listed twice.
	ErrDuplicateComponent = errors.New("umloss: duplicate component label")

	// ErrComponentCount is returned when the pruned forest does not have
	// exactly numComponents-1 edges, i.e. the MST does not connect all
	// components.
	ErrComponentCount = errors.New("umloss: pruned forest must have numComponents-1 edges")
)

// PruneForest reduces an MST to the edges that connect distinct components.
//
// labels maps each node to its component label and components lists the
// distinct component labels. Edges are visited in input order; an edge is
// kept unless its endpoints' components were already joined by a previously
// kept edge. The result has exactly len(components)-1 edges and connects all
// components.
//
// mst must hold len(labels)-1 edges. It need not be sorted, but the kept
// edges preserve its order.
func PruneForest(mst [][3]float64, labels []int64, components []int64) ([][3]float64, error) {
	n := len(labels)
	if err := validateEdges(mst, n, false); err != nil {
		return nil, err
	}

	slots := make(map[int64]int, len(components))
	for i, c := range components {
		if _, ok := slots[c]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateComponent, c)
		}
		slots[c] = i
	}

	// Every node of a tree with edges is an endpoint, so all labels must be
	// known even if the walk below stops early.
	if len(mst) > 0 {
		for node, label := range labels {
			if _, ok := slots[label]; !ok {
				return nil, fmt.Errorf("%w: node %d has label %d", ErrUnknownComponent, node, label)
			}
		}
	}

	want := max(len(components)-1, 0)
	sets := NewUnionFind(len(components))
	pruned := make([][3]float64, 0, want)

	for _, edge := range mst {
		if len(pruned) == want {
			break
		}

		u, _ := nodeIndex(edge[0], n)
		v, _ := nodeIndex(edge[1], n)
		componentU := slots[labels[u]]
		componentV := slots[labels[v]]
		if sets.Connected(componentU, componentV) {
			continue
		}
		pruned = append(pruned, edge)
		sets.Union(componentU, componentV)
	}

	// Kept edges never close a cycle, so one set remains exactly when all
	// components are joined.
	if sets.Count() != min(len(components), 1) {
		return nil, fmt.Errorf("%w: kept %d edges for %d components", ErrComponentCount, len(pruned), len(components))
	}
	return pruned, nil
}
