package bid

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/procurex/procurement-backend/internal/domain/values"
)

// Bid is a vendor's priced proposal against a specific product. It references
// exactly one vendor and one product; a bid with no product is invalid and is
// rejected at creation.
type Bid struct {
	ID        uuid.UUID    `json:"id"`
	VendorID  uuid.UUID    `json:"vendor_id"`
	ProductID uuid.UUID    `json:"product_id"`
	Amount    values.Money `json:"amount"`

	Title       string `json:"title"`
	Description string `json:"description"`

	Status Status `json:"status"`

	// PriorStatus is recorded when a counter-offer is opened so a rejected
	// counter-offer can restore the exact status it interrupted.
	PriorStatus *Status `json:"prior_status,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`

	// Version backs the optimistic concurrency check; racing transitions on
	// the same bid lose with a conflict, never a silent overwrite.
	Version int `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Status int

const (
	StatusDraft Status = iota
	StatusSubmitted
	StatusUnderEvaluation
	StatusEvaluated
	StatusAwarded
	StatusRejected
	StatusWithdrawn
	StatusCounterOffered
)

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusSubmitted:
		return "submitted"
	case StatusUnderEvaluation:
		return "under_evaluation"
	case StatusEvaluated:
		return "evaluated"
	case StatusAwarded:
		return "awarded"
	case StatusRejected:
		return "rejected"
	case StatusWithdrawn:
		return "withdrawn"
	case StatusCounterOffered:
		return "counter_offered"
	default:
		return "unknown"
	}
}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "draft":
		return StatusDraft, nil
	case "submitted":
		return StatusSubmitted, nil
	case "under_evaluation":
		return StatusUnderEvaluation, nil
	case "evaluated":
		return StatusEvaluated, nil
	case "awarded":
		return StatusAwarded, nil
	case "rejected":
		return StatusRejected, nil
	case "withdrawn":
		return StatusWithdrawn, nil
	case "counter_offered":
		return StatusCounterOffered, nil
	default:
		return StatusDraft, fmt.Errorf("unknown bid status: %q", s)
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusAwarded, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// successors is the lifecycle graph. WITHDRAWN is reachable from every
// non-terminal status; COUNTER_OFFERED only while the bid is negotiable.
var successors = map[Status][]Status{
	StatusDraft:           {StatusSubmitted, StatusWithdrawn},
	StatusSubmitted:       {StatusUnderEvaluation, StatusCounterOffered, StatusWithdrawn},
	StatusUnderEvaluation: {StatusEvaluated, StatusCounterOffered, StatusWithdrawn},
	StatusCounterOffered:  {StatusUnderEvaluation, StatusSubmitted, StatusWithdrawn},
	StatusEvaluated:       {StatusAwarded, StatusRejected, StatusWithdrawn},
	StatusAwarded:         {},
	StatusRejected:        {},
	StatusWithdrawn:       {},
}

// Successors returns the statuses legally reachable from s.
func Successors(s Status) []Status {
	next := successors[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo reports whether target is in the successor set of s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range successors[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NewBid creates a bid in SUBMITTED. Validation failures create no record.
func NewBid(vendorID, productID uuid.UUID, amount values.Money, title, description string) (*Bid, error) {
	if vendorID == uuid.Nil {
		return nil, fmt.Errorf("vendor ID cannot be nil")
	}
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product ID cannot be nil")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("title is required")
	}

	now := time.Now().UTC()
	return &Bid{
		ID:          uuid.New(),
		VendorID:    vendorID,
		ProductID:   productID,
		Amount:      amount,
		Title:       title,
		Description: description,
		Status:      StatusSubmitted,
		SubmittedAt: now,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// TransitionTo applies a status change, enforcing the lifecycle graph.
// No other field changes as a side effect.
func (b *Bid) TransitionTo(target Status) error {
	if !b.Status.CanTransitionTo(target) {
		return &TransitionError{From: b.Status, To: target}
	}
	b.Status = target
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkCounterOffered moves the bid into COUNTER_OFFERED and records the
// status being interrupted.
func (b *Bid) MarkCounterOffered() error {
	if b.Status != StatusSubmitted && b.Status != StatusUnderEvaluation {
		return fmt.Errorf("counter offer not allowed while bid is %s", b.Status)
	}
	prior := b.Status
	b.PriorStatus = &prior
	b.Status = StatusCounterOffered
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// ApplyCounterOffer accepts the negotiated amount and moves the bid to
// UNDER_EVALUATION.
func (b *Bid) ApplyCounterOffer(amount values.Money) error {
	if b.Status != StatusCounterOffered {
		return fmt.Errorf("bid is not counter offered")
	}
	b.Amount = amount
	b.Status = StatusUnderEvaluation
	b.PriorStatus = nil
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// RevertCounterOffer restores the status recorded when the counter-offer was
// opened.
func (b *Bid) RevertCounterOffer() error {
	if b.Status != StatusCounterOffered {
		return fmt.Errorf("bid is not counter offered")
	}
	if b.PriorStatus == nil {
		return fmt.Errorf("no prior status recorded")
	}
	b.Status = *b.PriorStatus
	b.PriorStatus = nil
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// TransitionError reports an illegal lifecycle move.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}
