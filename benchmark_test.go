package umloss

import (
	"math/rand"
	"testing"
)

func generateBenchTree(n int) ([][3]float64, []int64) {
	rng := rand.New(rand.NewSource(42))
	mst := make([][3]float64, 0, n-1)
	for i := 1; i < n; i++ {
		mst = append(mst, [3]float64{float64(rng.Intn(i)), float64(i), rng.Float64() * 100})
	}
	return SortEdges(mst), randomLabels(rng, n, 20)
}

// --- Loss kernel ---

func benchLossAndGradient(b *testing.B, n int) {
	b.Helper()
	mst, labels := generateBenchTree(n)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LossAndGradient(mst, labels, 0.5); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLossAndGradient_1000(b *testing.B)   { benchLossAndGradient(b, 1000) }
func BenchmarkLossAndGradient_10000(b *testing.B)  { benchLossAndGradient(b, 10000) }
func BenchmarkLossAndGradient_100000(b *testing.B) { benchLossAndGradient(b, 100000) }

func benchMarginLoss(b *testing.B, n int) {
	b.Helper()
	mst, labels := generateBenchTree(n)
	counts, err := CountPairs(mst, labels)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := MarginLoss(mst, counts.RatioPos, counts.RatioNeg, 0.5); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMarginLoss_10000(b *testing.B)  { benchMarginLoss(b, 10000) }
func BenchmarkMarginLoss_100000(b *testing.B) { benchMarginLoss(b, 100000) }

// --- Forest pruning ---

func BenchmarkPruneForest_10000(b *testing.B) {
	mst, _ := generateBenchTree(10000)
	labels := make([]int64, 10000)
	for i := range labels {
		labels[i] = int64(i / 100)
	}
	components := make([]int64, 100)
	for i := range components {
		components[i] = int64(i)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := PruneForest(mst, labels, components); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Batches and embeddings ---

func BenchmarkLossBatch_64x1000(b *testing.B) {
	samples := randomSamples(rand.New(rand.NewSource(42)), 64)
	for i := range samples {
		samples[i].MST, samples[i].Labels = generateBenchTree(1000)
	}
	cfg := DefaultConfig()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LossBatch(samples, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEmbeddingLoss_500(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	data, labels := clusteredEmbedding(rng, 10, 50, 3, 2)
	cfg := DefaultConfig()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := EmbeddingLoss(data, labels, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
