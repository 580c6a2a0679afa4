package bid

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/procurex/procurement-backend/internal/domain/values"
)

// CounterOffer is a negotiated amendment to a bid's terms. Once terminal it
// is immutable.
type CounterOffer struct {
	ID    uuid.UUID    `json:"id"`
	BidID uuid.UUID    `json:"bid_id"`

	Amount        values.Money `json:"amount"`
	TimelineDays  int          `json:"timeline_days"`
	Modifications string       `json:"modifications"`
	Justification string       `json:"justification"`

	Status CounterOfferStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

type CounterOfferStatus int

const (
	CounterOfferPending CounterOfferStatus = iota
	CounterOfferUnderReview
	CounterOfferAccepted
	CounterOfferRejected
	CounterOfferExpired
)

func (s CounterOfferStatus) String() string {
	switch s {
	case CounterOfferPending:
		return "pending"
	case CounterOfferUnderReview:
		return "under_review"
	case CounterOfferAccepted:
		return "accepted"
	case CounterOfferRejected:
		return "rejected"
	case CounterOfferExpired:
		return "expired"
	default:
		return "unknown"
	}
}

func ParseCounterOfferStatus(s string) (CounterOfferStatus, error) {
	switch strings.ToLower(s) {
	case "pending":
		return CounterOfferPending, nil
	case "under_review":
		return CounterOfferUnderReview, nil
	case "accepted":
		return CounterOfferAccepted, nil
	case "rejected":
		return CounterOfferRejected, nil
	case "expired":
		return CounterOfferExpired, nil
	default:
		return CounterOfferPending, fmt.Errorf("unknown counter-offer status: %q", s)
	}
}

func (s CounterOfferStatus) IsTerminal() bool {
	switch s {
	case CounterOfferAccepted, CounterOfferRejected, CounterOfferExpired:
		return true
	default:
		return false
	}
}

// NewCounterOffer creates a PENDING counter-offer. The ttl guarantees
// ExpiresAt > CreatedAt.
func NewCounterOffer(bidID uuid.UUID, amount values.Money, timelineDays int, modifications, justification string, ttl time.Duration) (*CounterOffer, error) {
	if bidID == uuid.Nil {
		return nil, fmt.Errorf("bid ID cannot be nil")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if timelineDays < 0 {
		return nil, fmt.Errorf("timeline cannot be negative")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("expiry must be after creation")
	}

	now := time.Now().UTC()
	return &CounterOffer{
		ID:            uuid.New(),
		BidID:         bidID,
		Amount:        amount,
		TimelineDays:  timelineDays,
		Modifications: modifications,
		Justification: justification,
		Status:        CounterOfferPending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}, nil
}

// BeginReview moves a pending counter-offer under review.
func (c *CounterOffer) BeginReview() error {
	if c.Status != CounterOfferPending {
		return fmt.Errorf("counter offer is %s, not pending", c.Status)
	}
	c.Status = CounterOfferUnderReview
	return nil
}

// Accept resolves the counter-offer. Fails if already terminal.
func (c *CounterOffer) Accept(now time.Time) error {
	if c.Status.IsTerminal() {
		return fmt.Errorf("counter offer already resolved as %s", c.Status)
	}
	c.Status = CounterOfferAccepted
	c.RespondedAt = &now
	return nil
}

// Reject resolves the counter-offer. Fails if already terminal.
func (c *CounterOffer) Reject(now time.Time) error {
	if c.Status.IsTerminal() {
		return fmt.Errorf("counter offer already resolved as %s", c.Status)
	}
	c.Status = CounterOfferRejected
	c.RespondedAt = &now
	return nil
}

// IsStale reports whether the counter-offer should expire at now.
func (c *CounterOffer) IsStale(now time.Time) bool {
	return !c.Status.IsTerminal() && c.ExpiresAt.Before(now)
}

// Expire marks a stale counter-offer EXPIRED. A no-op error on terminal
// offers keeps the sweep idempotent at the domain level too.
func (c *CounterOffer) Expire(now time.Time) error {
	if c.Status.IsTerminal() {
		return fmt.Errorf("counter offer already resolved as %s", c.Status)
	}
	if !c.ExpiresAt.Before(now) {
		return fmt.Errorf("counter offer does not expire until %s", c.ExpiresAt)
	}
	c.Status = CounterOfferExpired
	return nil
}
