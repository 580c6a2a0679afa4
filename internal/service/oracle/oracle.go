package oracle

import (
	"context"
)

// Kind selects the assessment template the oracle is asked to fill.
type Kind string

const (
	KindVendorAnalysis  Kind = "vendor-analysis"
	KindBidAnalysis     Kind = "bid-analysis"
	KindComplianceCheck Kind = "compliance-check"
)

// Assessment is the structured verdict returned by the scoring oracle. Scores
// are on a 0-100 scale; RiskLevel is one of low, medium, high.
type Assessment struct {
	OverallScore    float64            `json:"overall_score"`
	CategoryScores  map[string]float64 `json:"category_scores"`
	RiskLevel       string             `json:"risk_level"`
	Recommendations []string           `json:"recommendations"`
	Summary         string             `json:"summary"`
}

// Oracle scores an entity payload. Implementations must return an assessment
// that already passed structural validation, or an error; callers never see a
// partially valid verdict.
type Oracle interface {
	Score(ctx context.Context, kind Kind, payload interface{}) (*Assessment, error)
}
