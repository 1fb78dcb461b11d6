package umloss

// Ground-truth label classes. Foreground ids are >= 1.
const (
	Background int64 = 0
	Ambiguous  int64 = -1
)

// overlap counts, per ground-truth label, how many original nodes of a
// cluster carry that label. Counts always sum to the cluster's size.
type overlap map[int64]int

type pairKind int

const (
	pairIgnored pairKind = iota
	pairPositive
	pairNegative
)

// classifyPair decides how a pair of nodes with labels a and b counts:
//
//	(n, n)   positive
//	(n, m)   negative
//	(n, 0)   negative
//	(0, -1)  negative
//
// (n, -1), (0, 0) and (-1, -1) count as neither.
func classifyPair(a, b int64) pairKind {
	if a >= 1 && b >= 1 {
		if a == b {
			return pairPositive
		}
		return pairNegative
	}
	if (a == Background) != (b == Background) {
		return pairNegative
	}
	return pairIgnored
}

// countPairs returns the number of positive and negative node pairs formed by
// joining the clusters described by u and v.
func countPairs(u, v overlap) (pos, neg float64) {
	for labelU, countU := range u {
		for labelV, countV := range v {
			switch classifyPair(labelU, labelV) {
			case pairPositive:
				pos += float64(countU * countV)
			case pairNegative:
				neg += float64(countU * countV)
			}
		}
	}
	return pos, neg
}

// absorb moves every count of src into dst and empties src.
func (dst overlap) absorb(src overlap) {
	for label, count := range src {
		dst[label] += count
		delete(src, label)
	}
}
