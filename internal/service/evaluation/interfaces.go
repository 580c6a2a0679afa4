package evaluation

import (
	"context"

	"github.com/google/uuid"

	"github.com/procurex/procurement-backend/internal/domain/bid"
	"github.com/procurex/procurement-backend/internal/domain/compliance"
	"github.com/procurex/procurement-backend/internal/domain/evaluation"
	"github.com/procurex/procurement-backend/internal/domain/vendor"
)

// Service drives oracle assessments and persists their results. Synchronous
// operations return the stored record; Enqueue variants hand the work to the
// task queue and return the task ID for polling.
type Service interface {
	EvaluateVendor(ctx context.Context, vendorID uuid.UUID) (*evaluation.Evaluation, error)
	EvaluateBid(ctx context.Context, bidID uuid.UUID) (*evaluation.Evaluation, error)
	RunComplianceCheck(ctx context.Context, vendorID uuid.UUID, bidID *uuid.UUID) (*compliance.Check, error)

	EnqueueVendorEvaluation(vendorID uuid.UUID) (uuid.UUID, error)
	EnqueueBidEvaluation(bidID uuid.UUID) (uuid.UUID, error)

	History(ctx context.Context, subjectID uuid.UUID) ([]*evaluation.Evaluation, error)
}

// EvaluationRepository persists append-only evaluation snapshots.
type EvaluationRepository interface {
	Create(ctx context.Context, e *evaluation.Evaluation) error
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*evaluation.Evaluation, error)
}

// ComplianceRepository persists compliance checks.
type ComplianceRepository interface {
	Create(ctx context.Context, c *compliance.Check) error
}

// VendorRepository reads vendors and writes back their assessed scores.
type VendorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
	Update(ctx context.Context, v *vendor.Vendor) error
}

// BidReader resolves bids for assessment payloads.
type BidReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*bid.Bid, error)
}
