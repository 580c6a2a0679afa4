// Package scoring holds the pure numeric primitives the analytics aggregator
// composes. All functions are stateless and define empty-input behavior
// instead of erroring: a zero result means "no data" and callers are expected
// to treat it contextually, not as a real zero score.
package scoring

import (
	"fmt"
	"sort"
)

// Mean returns the arithmetic mean of xs, 0 for empty input.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Median returns the median of xs, 0 for empty input. For even-length input
// it averages the two middle elements. The input slice is not mutated.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Percentage returns numerator/denominator*100, guarding division by zero.
func Percentage(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator * 100
}

// GrowthRate returns recent/current*100, 0 when current is 0. Used for
// monthly-growth style metrics.
func GrowthRate(current, recent float64) float64 {
	if current == 0 {
		return 0
	}
	return recent / current * 100
}

// Bucket assigns score to a half-open bucket given ascending edges, returning
// the bucket index in [0, len(edges)]. A score exactly on an edge belongs to
// the higher bucket.
func Bucket(score float64, edges []float64) int {
	for i, edge := range edges {
		if score < edge {
			return i
		}
	}
	return len(edges)
}

// BucketLabels produces stable histogram keys for edges on a bounded score
// scale, e.g. edges [60,70,80,90] with upper 100 yield
// "<60", "60-69", "70-79", "80-89", "90-100".
func BucketLabels(edges []float64, upper float64) []string {
	if len(edges) == 0 {
		return nil
	}

	labels := make([]string, 0, len(edges)+1)
	labels = append(labels, fmt.Sprintf("<%g", edges[0]))
	for i := 0; i < len(edges)-1; i++ {
		labels = append(labels, fmt.Sprintf("%g-%g", edges[i], edges[i+1]-1))
	}
	labels = append(labels, fmt.Sprintf("%g-%g", edges[len(edges)-1], upper))
	return labels
}

// Histogram buckets scores over edges and returns a zero-filled distribution
// keyed by BucketLabels.
func Histogram(scores []float64, edges []float64, upper float64) map[string]int {
	labels := BucketLabels(edges, upper)
	dist := make(map[string]int, len(labels))
	for _, label := range labels {
		dist[label] = 0
	}
	for _, score := range scores {
		dist[labels[Bucket(score, edges)]]++
	}
	return dist
}
