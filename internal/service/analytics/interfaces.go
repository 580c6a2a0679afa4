package analytics

import (
	"context"
	"time"

	"github.com/procurex/procurement-backend/internal/domain/compliance"
	"github.com/procurex/procurement-backend/internal/domain/evaluation"
)

// Service produces point-in-time and windowed statistics over the entity
// store. Every operation is read-only and deterministic for a fixed snapshot;
// the reference time for windows is always passed in, never sampled inside.
type Service interface {
	VendorScoreSummary(ctx context.Context) (*VendorScoreSummary, error)
	ComplianceSummary(ctx context.Context) (*ComplianceSummary, error)
	WindowedPerformance(ctx context.Context, period string, now time.Time) (*WindowedPerformance, error)
	VendorGrowth(ctx context.Context, now time.Time) (*GrowthStats, error)
}

// VendorScores is one scored vendor's row as the aggregator consumes it.
type VendorScores struct {
	Overall    float64
	Financial  float64
	Technical  float64
	Compliance float64
	Experience float64
}

// VendorStatsRepository reads vendor data for aggregation. ListScores returns
// only vendors with a non-null overall score.
type VendorStatsRepository interface {
	ListScores(ctx context.Context) ([]VendorScores, error)
	CountByRiskLevel(ctx context.Context) (map[string]int64, error)
	Count(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// ComplianceStatsRepository reads compliance checks for aggregation.
type ComplianceStatsRepository interface {
	CountByResult(ctx context.Context) (map[compliance.Result]int64, error)
	ListInWindow(ctx context.Context, from, to time.Time) ([]*compliance.Check, error)
}

// EvaluationStatsRepository reads oracle evaluation snapshots. Bounds are
// inclusive.
type EvaluationStatsRepository interface {
	ListInWindow(ctx context.Context, kind evaluation.Kind, from, to time.Time) ([]*evaluation.Evaluation, error)
}

// Cache holds recent summary results. A nil or failing cache degrades to
// direct computation, never to an error.
type Cache interface {
	Get(ctx context.Context, key string, v interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}

// VendorScoreSummary is the point-in-time vendor score picture.
type VendorScoreSummary struct {
	TotalScored   int                      `json:"total_scored"`
	OverallMean   float64                  `json:"overall_mean"`
	OverallMedian float64                  `json:"overall_median"`
	Categories    map[string]CategoryStats `json:"categories"`
	Distribution  map[string]int           `json:"distribution"`
	RiskCounts    map[string]int64         `json:"risk_counts"`
}

type CategoryStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// ComplianceSummary is the point-in-time compliance picture.
type ComplianceSummary struct {
	TotalChecks     int64            `json:"total_checks"`
	ResultCounts    map[string]int64 `json:"result_counts"`
	ComplianceScore float64          `json:"compliance_score"`
}

// WindowedPerformance holds statistics over a bounded recent range.
type WindowedPerformance struct {
	Period      string    `json:"period"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	WindowDays  int       `json:"window_days"`

	VendorScoreMean     float64 `json:"vendor_score_mean"`
	BidScoreMean        float64 `json:"bid_score_mean"`
	ComplianceScoreMean float64 `json:"compliance_score_mean"`

	EvaluationCounts map[string]int `json:"evaluation_counts"`
	Throughput       float64        `json:"throughput"`
	SuccessRate      float64        `json:"success_rate"`
}

// GrowthStats is a monthly-growth style vendor metric.
type GrowthStats struct {
	TotalVendors  int64   `json:"total_vendors"`
	RecentVendors int64   `json:"recent_vendors"`
	MonthlyGrowth float64 `json:"monthly_growth"`
}
