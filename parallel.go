package umloss

import (
	"fmt"
	"sync"
)

// Sample is one labelled MST, e.g. one image of a training batch.
type Sample struct {
	MST    [][3]float64
	Labels []int64
}

// LossBatch computes LossAndGradient with margin cfg.Alpha for every sample
// using cfg.Workers goroutines. Results are returned in input order. If any
// sample fails, no results are returned and the error of the lowest-indexed
// failing sample is reported.
//
// Samples are independent and each call allocates its own buffers, so the
// result is identical to evaluating the samples one after another.
func LossBatch(samples []Sample, cfg Config) ([]*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	n := len(samples)
	results := make([]*Result, n)
	errs := make([]error, n)

	numWorkers := min(cfg.Workers, n)
	if numWorkers <= 1 {
		for i, s := range samples {
			results[i], errs[i] = LossAndGradient(s.MST, s.Labels, cfg.Alpha)
		}
		return collect(results, errs)
	}

	// Split samples across workers. Each worker handles a contiguous range,
	// so writes to results and errs never overlap.
	var wg sync.WaitGroup

	perWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		start := w * perWorker
		end := min(start+perWorker, n)
		if start >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				results[i], errs[i] = LossAndGradient(samples[i].MST, samples[i].Labels, cfg.Alpha)
			}
		}(start, end)
	}

	wg.Wait()
	return collect(results, errs)
}

// collect returns results unless some sample failed; there are no partial
// batches.
func collect(results []*Result, errs []error) ([]*Result, error) {
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("umloss: sample %d: %w", i, err)
		}
	}
	return results, nil
}
