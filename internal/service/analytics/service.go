package analytics

import (
	"context"
	"time"

	"github.com/procurex/procurement-backend/internal/domain/compliance"
	"github.com/procurex/procurement-backend/internal/domain/errors"
	"github.com/procurex/procurement-backend/internal/domain/evaluation"
	"github.com/procurex/procurement-backend/internal/scoring"
)

// scoreBucketEdges are the histogram edges for vendor overall scores.
var scoreBucketEdges = []float64{60, 70, 80, 90}

const (
	scoreScaleUpper = 100
	cacheTTL        = 5 * time.Minute

	cacheKeyVendorSummary     = "analytics:vendor_score_summary"
	cacheKeyComplianceSummary = "analytics:compliance_summary"
)

// windowDays resolves a period tag to its window length. Unrecognized
// periods fall back to 30 days.
var windowDays = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
	"1y":  365,
}

const defaultWindowDays = 30

// service implements the Service interface
type service struct {
	vendors     VendorStatsRepository
	checks      ComplianceStatsRepository
	evaluations EvaluationStatsRepository
	cache       Cache
}

// NewService creates a new analytics service. The cache may be nil.
func NewService(
	vendors VendorStatsRepository,
	checks ComplianceStatsRepository,
	evaluations EvaluationStatsRepository,
	cache Cache,
) Service {
	return &service{
		vendors:     vendors,
		checks:      checks,
		evaluations: evaluations,
		cache:       cache,
	}
}

// VendorScoreSummary computes the point-in-time score distribution across all
// scored vendors. Vendors without an overall score are excluded, not zeroed.
func (s *service) VendorScoreSummary(ctx context.Context) (*VendorScoreSummary, error) {
	var cached VendorScoreSummary
	if s.cacheGet(ctx, cacheKeyVendorSummary, &cached) {
		return &cached, nil
	}

	rows, err := s.vendors.ListScores(ctx)
	if err != nil {
		return nil, errors.NewDataUnavailableError("list vendor scores", err)
	}

	riskCounts, err := s.vendors.CountByRiskLevel(ctx)
	if err != nil {
		return nil, errors.NewDataUnavailableError("count vendors by risk level", err)
	}

	overall := make([]float64, 0, len(rows))
	categories := map[string][]float64{
		"financial":  make([]float64, 0, len(rows)),
		"technical":  make([]float64, 0, len(rows)),
		"compliance": make([]float64, 0, len(rows)),
		"experience": make([]float64, 0, len(rows)),
	}
	for _, row := range rows {
		overall = append(overall, row.Overall)
		categories["financial"] = append(categories["financial"], row.Financial)
		categories["technical"] = append(categories["technical"], row.Technical)
		categories["compliance"] = append(categories["compliance"], row.Compliance)
		categories["experience"] = append(categories["experience"], row.Experience)
	}

	categoryStats := make(map[string]CategoryStats, len(categories))
	for name, scores := range categories {
		categoryStats[name] = CategoryStats{
			Mean:   scoring.Mean(scores),
			Median: scoring.Median(scores),
		}
	}

	summary := &VendorScoreSummary{
		TotalScored:   len(rows),
		OverallMean:   scoring.Mean(overall),
		OverallMedian: scoring.Median(overall),
		Categories:    categoryStats,
		Distribution:  scoring.Histogram(overall, scoreBucketEdges, scoreScaleUpper),
		RiskCounts:    zeroFilledRiskCounts(riskCounts),
	}

	s.cacheSet(ctx, cacheKeyVendorSummary, summary)
	return summary, nil
}

// ComplianceSummary computes totals and the compliant share across all
// recorded checks.
func (s *service) ComplianceSummary(ctx context.Context) (*ComplianceSummary, error) {
	var cached ComplianceSummary
	if s.cacheGet(ctx, cacheKeyComplianceSummary, &cached) {
		return &cached, nil
	}

	byResult, err := s.checks.CountByResult(ctx)
	if err != nil {
		return nil, errors.NewDataUnavailableError("count checks by result", err)
	}

	counts := make(map[string]int64, len(compliance.Results()))
	var total int64
	for _, r := range compliance.Results() {
		counts[r.String()] = byResult[r]
		total += byResult[r]
	}

	summary := &ComplianceSummary{
		TotalChecks:     total,
		ResultCounts:    counts,
		ComplianceScore: scoring.Percentage(float64(byResult[compliance.ResultCompliant]), float64(total)),
	}

	s.cacheSet(ctx, cacheKeyComplianceSummary, summary)
	return summary, nil
}

// WindowedPerformance computes per-kind mean scores, throughput and the
// compliance success rate over [now-period, now], bounds inclusive.
func (s *service) WindowedPerformance(ctx context.Context, period string, now time.Time) (*WindowedPerformance, error) {
	days, ok := windowDays[period]
	if !ok {
		period = "30d"
		days = defaultWindowDays
	}
	from := now.AddDate(0, 0, -days)

	kinds := []evaluation.Kind{evaluation.KindVendor, evaluation.KindBid, evaluation.KindCompliance}
	means := make(map[evaluation.Kind]float64, len(kinds))
	counts := make(map[string]int, len(kinds))
	totalEvaluations := 0
	for _, kind := range kinds {
		evals, err := s.evaluations.ListInWindow(ctx, kind, from, now)
		if err != nil {
			return nil, errors.NewDataUnavailableError("list evaluations", err)
		}
		scores := make([]float64, 0, len(evals))
		for _, e := range evals {
			scores = append(scores, e.OverallScore)
		}
		means[kind] = scoring.Mean(scores)
		counts[string(kind)] = len(evals)
		totalEvaluations += len(evals)
	}

	windowChecks, err := s.checks.ListInWindow(ctx, from, now)
	if err != nil {
		return nil, errors.NewDataUnavailableError("list checks in window", err)
	}
	var compliant int
	for _, c := range windowChecks {
		if c.Result == compliance.ResultCompliant {
			compliant++
		}
	}

	return &WindowedPerformance{
		Period:              period,
		WindowStart:         from,
		WindowEnd:           now,
		WindowDays:          days,
		VendorScoreMean:     means[evaluation.KindVendor],
		BidScoreMean:        means[evaluation.KindBid],
		ComplianceScoreMean: means[evaluation.KindCompliance],
		EvaluationCounts:    counts,
		Throughput:          float64(totalEvaluations) / float64(days),
		SuccessRate:         scoring.Percentage(float64(compliant), float64(len(windowChecks))),
	}, nil
}

// VendorGrowth compares the vendor population against the slice registered in
// the last 30 days.
func (s *service) VendorGrowth(ctx context.Context, now time.Time) (*GrowthStats, error) {
	total, err := s.vendors.Count(ctx)
	if err != nil {
		return nil, errors.NewDataUnavailableError("count vendors", err)
	}

	recent, err := s.vendors.CountCreatedSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, errors.NewDataUnavailableError("count recent vendors", err)
	}

	return &GrowthStats{
		TotalVendors:  total,
		RecentVendors: recent,
		MonthlyGrowth: scoring.GrowthRate(float64(total), float64(recent)),
	}, nil
}

func zeroFilledRiskCounts(counts map[string]int64) map[string]int64 {
	out := map[string]int64{"low": 0, "medium": 0, "high": 0}
	for level, n := range counts {
		out[level] = n
	}
	return out
}

// cacheGet and cacheSet treat the cache as best-effort; failures never
// surface to callers.
func (s *service) cacheGet(ctx context.Context, key string, v interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, v)
	return err == nil && hit
}

func (s *service) cacheSet(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, v, cacheTTL)
}
