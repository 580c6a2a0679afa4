package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/procurex/procurement-backend/internal/scoring"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"empty returns zero", nil, 0},
		{"single element", []float64{42}, 42},
		{"several elements", []float64{55, 65, 75, 85, 95}, 75},
		{"negative values", []float64{-2, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoring.Mean(tt.xs))
		})
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"empty returns zero", nil, 0},
		{"single element", []float64{4}, 4},
		{"even length averages middle pair", []float64{1, 3}, 2},
		{"odd length", []float64{1, 2, 3}, 2},
		{"unsorted input", []float64{95, 55, 75, 85, 65}, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoring.Median(tt.xs))
		})
	}
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	xs := []float64{3, 1, 2}
	scoring.Median(xs)
	assert.Equal(t, []float64{3, 1, 2}, xs)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, float64(0), scoring.Percentage(0, 0))
	assert.Equal(t, float64(0), scoring.Percentage(3, 0))
	assert.Equal(t, float64(75), scoring.Percentage(3, 4))
	assert.Equal(t, float64(100), scoring.Percentage(5, 5))
}

func TestGrowthRate(t *testing.T) {
	assert.Equal(t, float64(0), scoring.GrowthRate(0, 10))
	assert.Equal(t, float64(50), scoring.GrowthRate(20, 10))
	assert.Equal(t, float64(100), scoring.GrowthRate(10, 10))
}

func TestBucket(t *testing.T) {
	edges := []float64{60, 70, 80, 90}

	tests := []struct {
		score float64
		want  int
	}{
		{0, 0},
		{59.9, 0},
		{60, 1}, // boundary belongs to the higher bucket
		{69.9, 1},
		{70, 2},
		{80, 3},
		{90, 4},
		{100, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, scoring.Bucket(tt.score, edges), "score %v", tt.score)
	}
}

func TestBucketLabels(t *testing.T) {
	labels := scoring.BucketLabels([]float64{60, 70, 80, 90}, 100)
	assert.Equal(t, []string{"<60", "60-69", "70-79", "80-89", "90-100"}, labels)
}

func TestHistogram(t *testing.T) {
	edges := []float64{60, 70, 80, 90}

	t.Run("one score per bucket", func(t *testing.T) {
		dist := scoring.Histogram([]float64{55, 65, 75, 85, 95}, edges, 100)
		assert.Equal(t, map[string]int{
			"<60":    1,
			"60-69":  1,
			"70-79":  1,
			"80-89":  1,
			"90-100": 1,
		}, dist)
	})

	t.Run("empty input yields zero-filled buckets", func(t *testing.T) {
		dist := scoring.Histogram(nil, edges, 100)
		assert.Len(t, dist, 5)
		for label, count := range dist {
			assert.Zero(t, count, "bucket %s", label)
		}
	})
}
