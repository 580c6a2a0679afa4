package compliance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Check is an immutable compliance snapshot for a vendor, optionally tied to
// a specific bid.
type Check struct {
	ID       uuid.UUID  `json:"id"`
	VendorID uuid.UUID  `json:"vendor_id"`
	BidID    *uuid.UUID `json:"bid_id,omitempty"`

	Result Result  `json:"result"`
	Score  float64 `json:"score"`
	Notes  string  `json:"notes,omitempty"`

	CheckedAt time.Time `json:"checked_at"`
}

type Result int

const (
	ResultPending Result = iota
	ResultCompliant
	ResultNonCompliant
	ResultRequiresReview
)

func (r Result) String() string {
	switch r {
	case ResultPending:
		return "pending"
	case ResultCompliant:
		return "compliant"
	case ResultNonCompliant:
		return "non_compliant"
	case ResultRequiresReview:
		return "requires_review"
	default:
		return "unknown"
	}
}

func ParseResult(s string) (Result, error) {
	switch strings.ToLower(s) {
	case "pending":
		return ResultPending, nil
	case "compliant":
		return ResultCompliant, nil
	case "non_compliant":
		return ResultNonCompliant, nil
	case "requires_review":
		return ResultRequiresReview, nil
	default:
		return ResultPending, fmt.Errorf("unknown compliance result: %q", s)
	}
}

// Results lists every result value, in a stable order, for zero-filled
// aggregate counts.
func Results() []Result {
	return []Result{ResultPending, ResultCompliant, ResultNonCompliant, ResultRequiresReview}
}

func NewCheck(vendorID uuid.UUID, bidID *uuid.UUID, result Result, score float64, notes string) (*Check, error) {
	if vendorID == uuid.Nil {
		return nil, fmt.Errorf("vendor ID cannot be nil")
	}
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("compliance score %v out of range [0,100]", score)
	}

	return &Check{
		ID:        uuid.New(),
		VendorID:  vendorID,
		BidID:     bidID,
		Result:    result,
		Score:     score,
		Notes:     notes,
		CheckedAt: time.Now().UTC(),
	}, nil
}
