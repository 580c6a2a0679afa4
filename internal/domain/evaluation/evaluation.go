package evaluation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Evaluation is an append-only scoring snapshot produced by the external
// scoring oracle. It is never mutated after creation; trend analysis depends
// on the history staying intact.
type Evaluation struct {
	ID        uuid.UUID `json:"id"`
	Kind      Kind      `json:"kind"`
	SubjectID uuid.UUID `json:"subject_id"`

	OverallScore    float64            `json:"overall_score"`
	CategoryScores  map[string]float64 `json:"category_scores,omitempty"`
	RiskLevel       string             `json:"risk_level"`
	Recommendations []string           `json:"recommendations,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Kind string

const (
	KindVendor     Kind = "vendor"
	KindBid        Kind = "bid"
	KindCompliance Kind = "compliance"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindVendor:
		return KindVendor, nil
	case KindBid:
		return KindBid, nil
	case KindCompliance:
		return KindCompliance, nil
	default:
		return "", fmt.Errorf("unknown evaluation kind: %q", s)
	}
}

func New(kind Kind, subjectID uuid.UUID, overallScore float64, categoryScores map[string]float64, riskLevel string, recommendations []string) (*Evaluation, error) {
	if subjectID == uuid.Nil {
		return nil, fmt.Errorf("subject ID cannot be nil")
	}
	if overallScore < 0 || overallScore > 100 {
		return nil, fmt.Errorf("overall score %v out of range [0,100]", overallScore)
	}

	return &Evaluation{
		ID:              uuid.New(),
		Kind:            kind,
		SubjectID:       subjectID,
		OverallScore:    overallScore,
		CategoryScores:  categoryScores,
		RiskLevel:       riskLevel,
		Recommendations: recommendations,
		CreatedAt:       time.Now().UTC(),
	}, nil
}
