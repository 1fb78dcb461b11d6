package umloss

import "fmt"

// MarginLoss computes the squared-hinge margin loss between positive and
// negative pair weights placed on sorted MST edges, and its gradient with
// respect to each edge distance:
//
//	loss = Σ_i ratioPos[i] · Σ_{j : d_j <= d_i+alpha} ratioNeg[j] · (d_i + alpha - d_j)²
//
// mst must be sorted by non-decreasing distance; only the distance column is
// read. Expanding the square turns the inner sum into
//
//	(d_i+alpha)²·A_i - 2(d_i+alpha)·B_i + C_i
//
// where A, B, C are the 0th, 1st and 2nd moments of ratioNeg over the window
// d_j <= d_i+alpha. A forward sweep with a trailing pointer collects them, and
// a mirrored backward sweep collects the moments D, E of ratioPos over
// d_j >= d_i-alpha, which the gradient needs when edge i acts as the negative
// side. Both sweeps are linear because the window bounds only ever move in
// one direction.
func MarginLoss(mst [][3]float64, ratioPos, ratioNeg []float64, alpha float64) (float64, []float64, error) {
	if err := validateAlpha(alpha); err != nil {
		return 0, nil, err
	}
	numEdges := len(mst)
	if len(ratioPos) != numEdges || len(ratioNeg) != numEdges {
		return 0, nil, fmt.Errorf("%w: %d edges, %d positive ratios, %d negative ratios",
			ErrLengthMismatch, numEdges, len(ratioPos), len(ratioNeg))
	}
	if err := validateSorted(mst); err != nil {
		return 0, nil, err
	}

	loss, gradients := marginLoss(mst, ratioPos, ratioNeg, alpha)
	return loss, gradients, nil
}

// marginLoss is MarginLoss on input that is already known to be valid.
func marginLoss(mst [][3]float64, ratioPos, ratioNeg []float64, alpha float64) (float64, []float64) {
	numEdges := len(mst)
	if numEdges == 0 {
		return 0, []float64{}
	}

	distances := make([]float64, numEdges)
	for i, e := range mst {
		distances[i] = e[2]
	}

	scoresA, scoresB, scoresC := forwardMoments(distances, ratioNeg, alpha)

	var loss float64
	for i, d := range distances {
		shifted := d + alpha
		loss += ratioPos[i] * (shifted*shifted*scoresA[i] - 2*shifted*scoresB[i] + scoresC[i])
	}

	scoresD, scoresE := backwardMoments(distances, ratioPos, alpha)

	// An edge is never compared against itself, so its own weight is taken
	// out of the window moments before combining.
	gradients := make([]float64, numEdges)
	for i, d := range distances {
		rp, rn := ratioPos[i], ratioNeg[i]
		gradients[i] = 2*rp*((alpha+d)*(scoresA[i]-rn)-(scoresB[i]-d*rn)) -
			2*rn*((alpha-d)*(scoresD[i]-rp)+(scoresE[i]-d*rp))
	}

	return loss, gradients
}

// forwardMoments returns, for every edge j, the moments Σ w_k, Σ d_k·w_k and
// Σ d_k²·w_k over all edges k with d_k <= d_j + alpha.
func forwardMoments(distances, weights []float64, alpha float64) (a, b, c []float64) {
	n := len(distances)
	a = make([]float64, n)
	b = make([]float64, n)
	c = make([]float64, n)

	var scoreA, scoreB, scoreC float64

	// Trailing edge j lags i while d_j < d_i - alpha. Once i passes that
	// point, every edge that can still fall inside j's window has been
	// accumulated and j's moments are final.
	j := 0
	for i, d := range distances {
		for distances[j] < d-alpha {
			a[j], b[j], c[j] = scoreA, scoreB, scoreC
			j++
		}
		scoreA += weights[i]
		scoreB += d * weights[i]
		scoreC += d * d * weights[i]
	}
	for ; j < n; j++ {
		a[j], b[j], c[j] = scoreA, scoreB, scoreC
	}
	return a, b, c
}

// backwardMoments returns, for every edge j, the moments Σ w_k and Σ d_k·w_k
// over all edges k with d_k >= d_j - alpha.
func backwardMoments(distances, weights []float64, alpha float64) (d, e []float64) {
	n := len(distances)
	d = make([]float64, n)
	e = make([]float64, n)

	var scoreD, scoreE float64

	// Mirror image of forwardMoments: j trails i from the top while
	// d_j > d_i + alpha.
	j := n - 1
	for i := n - 1; i >= 0; i-- {
		dist := distances[i]
		for distances[j] > dist+alpha {
			d[j], e[j] = scoreD, scoreE
			j--
		}
		scoreD += weights[i]
		scoreE += dist * weights[i]
	}
	for ; j >= 0; j-- {
		d[j], e[j] = scoreD, scoreE
	}
	return d, e
}
