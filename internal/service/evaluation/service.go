package evaluation

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/procurex/procurement-backend/internal/domain/bid"
	"github.com/procurex/procurement-backend/internal/domain/compliance"
	"github.com/procurex/procurement-backend/internal/domain/errors"
	"github.com/procurex/procurement-backend/internal/domain/evaluation"
	"github.com/procurex/procurement-backend/internal/domain/vendor"
	"github.com/procurex/procurement-backend/internal/service/oracle"
	"github.com/procurex/procurement-backend/internal/store"
	"github.com/procurex/procurement-backend/internal/taskqueue"
)

// Compliance result thresholds on the oracle's 0-100 scale.
const (
	compliantThreshold = 80.0
	reviewThreshold    = 50.0
)

type service struct {
	scorer      oracle.Oracle
	evaluations EvaluationRepository
	checks      ComplianceRepository
	vendors     VendorRepository
	bids        BidReader
	queue       *taskqueue.Queue
	logger      *zap.Logger
}

// NewService creates the evaluation service. The queue may be nil when async
// scheduling is not needed, the logger may be nil.
func NewService(
	scorer oracle.Oracle,
	evaluations EvaluationRepository,
	checks ComplianceRepository,
	vendors VendorRepository,
	bids BidReader,
	queue *taskqueue.Queue,
	logger *zap.Logger,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		scorer:      scorer,
		evaluations: evaluations,
		checks:      checks,
		vendors:     vendors,
		bids:        bids,
		queue:       queue,
		logger:      logger,
	}
}

// score guards against a missing oracle so deployments without an API key
// fail these operations cleanly instead of panicking.
func (s *service) score(ctx context.Context, kind oracle.Kind, payload interface{}) (*oracle.Assessment, error) {
	if s.scorer == nil {
		return nil, errors.NewOracleUnavailableError("scoring oracle is not configured", nil)
	}
	return s.scorer.Score(ctx, kind, payload)
}

// EvaluateVendor scores one vendor through the oracle, stores the snapshot
// and writes the scores back onto the vendor record. The oracle failing
// leaves the vendor unscored; it never poisons anything beyond this call.
func (s *service) EvaluateVendor(ctx context.Context, vendorID uuid.UUID) (*evaluation.Evaluation, error) {
	v, err := s.vendors.GetByID(ctx, vendorID)
	if err != nil {
		return nil, translateLookup(err, errors.ErrVendorNotFound, "get vendor")
	}

	assessment, err := s.score(ctx, oracle.KindVendorAnalysis, vendorPayload(v))
	if err != nil {
		return nil, err
	}

	record, err := s.persistEvaluation(ctx, evaluation.KindVendor, v.ID, assessment)
	if err != nil {
		return nil, err
	}

	if err := s.applyVendorScores(ctx, v, assessment); err != nil {
		// the snapshot is already durable; score write-back is best effort
		s.logger.Warn("vendor score write-back failed",
			zap.String("vendor_id", v.ID.String()),
			zap.Error(err))
	}

	return record, nil
}

// EvaluateBid scores one bid through the oracle and stores the snapshot.
func (s *service) EvaluateBid(ctx context.Context, bidID uuid.UUID) (*evaluation.Evaluation, error) {
	b, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		return nil, translateLookup(err, errors.ErrBidNotFound, "get bid")
	}

	assessment, err := s.score(ctx, oracle.KindBidAnalysis, bidPayload(b))
	if err != nil {
		return nil, err
	}

	return s.persistEvaluation(ctx, evaluation.KindBid, b.ID, assessment)
}

// RunComplianceCheck assesses a vendor (optionally in the context of one bid)
// and records both the compliance verdict and the raw evaluation snapshot.
func (s *service) RunComplianceCheck(ctx context.Context, vendorID uuid.UUID, bidID *uuid.UUID) (*compliance.Check, error) {
	v, err := s.vendors.GetByID(ctx, vendorID)
	if err != nil {
		return nil, translateLookup(err, errors.ErrVendorNotFound, "get vendor")
	}

	payload := map[string]interface{}{"vendor": vendorPayload(v)}
	if bidID != nil {
		b, err := s.bids.GetByID(ctx, *bidID)
		if err != nil {
			return nil, translateLookup(err, errors.ErrBidNotFound, "get bid")
		}
		payload["bid"] = bidPayload(b)
	}

	assessment, err := s.score(ctx, oracle.KindComplianceCheck, payload)
	if err != nil {
		return nil, err
	}

	check, err := compliance.NewCheck(v.ID, bidID, resultForScore(assessment.OverallScore), assessment.OverallScore, assessment.Summary)
	if err != nil {
		return nil, fmt.Errorf("build compliance check: %w", err)
	}
	if err := s.checks.Create(ctx, check); err != nil {
		return nil, errors.NewDataUnavailableError("store compliance check", err)
	}

	if _, err := s.persistEvaluation(ctx, evaluation.KindCompliance, v.ID, assessment); err != nil {
		s.logger.Warn("compliance snapshot write failed",
			zap.String("vendor_id", v.ID.String()),
			zap.Error(err))
	}

	return check, nil
}

// EnqueueVendorEvaluation schedules an async vendor evaluation.
func (s *service) EnqueueVendorEvaluation(vendorID uuid.UUID) (uuid.UUID, error) {
	return s.enqueue("vendor-evaluation", func(ctx context.Context) (interface{}, error) {
		return s.EvaluateVendor(ctx, vendorID)
	})
}

// EnqueueBidEvaluation schedules an async bid evaluation.
func (s *service) EnqueueBidEvaluation(bidID uuid.UUID) (uuid.UUID, error) {
	return s.enqueue("bid-evaluation", func(ctx context.Context) (interface{}, error) {
		return s.EvaluateBid(ctx, bidID)
	})
}

// History lists all stored snapshots for a subject, newest first.
func (s *service) History(ctx context.Context, subjectID uuid.UUID) ([]*evaluation.Evaluation, error) {
	records, err := s.evaluations.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, errors.NewDataUnavailableError("list evaluations", err)
	}
	return records, nil
}

func (s *service) enqueue(kind string, handler taskqueue.Handler) (uuid.UUID, error) {
	if s.queue == nil {
		return uuid.Nil, fmt.Errorf("async evaluation is not configured")
	}
	return s.queue.Enqueue(kind, handler)
}

func (s *service) persistEvaluation(ctx context.Context, kind evaluation.Kind, subjectID uuid.UUID, a *oracle.Assessment) (*evaluation.Evaluation, error) {
	record, err := evaluation.New(kind, subjectID, a.OverallScore, a.CategoryScores, a.RiskLevel, a.Recommendations)
	if err != nil {
		return nil, fmt.Errorf("build evaluation: %w", err)
	}
	if err := s.evaluations.Create(ctx, record); err != nil {
		return nil, errors.NewDataUnavailableError("store evaluation", err)
	}
	return record, nil
}

// applyVendorScores copies the assessment onto the vendor record. Categories
// the oracle omitted fall back to the overall score.
func (s *service) applyVendorScores(ctx context.Context, v *vendor.Vendor, a *oracle.Assessment) error {
	risk, err := vendor.ParseRiskLevel(a.RiskLevel)
	if err != nil {
		return err
	}

	scores := vendor.CategoryScores{
		Financial:  categoryOrDefault(a.CategoryScores, "financial", a.OverallScore),
		Technical:  categoryOrDefault(a.CategoryScores, "technical", a.OverallScore),
		Compliance: categoryOrDefault(a.CategoryScores, "compliance", a.OverallScore),
		Experience: categoryOrDefault(a.CategoryScores, "experience", a.OverallScore),
	}
	if err := v.SetScores(scores, a.OverallScore, risk); err != nil {
		return err
	}
	return s.vendors.Update(ctx, v)
}

func categoryOrDefault(scores map[string]float64, name string, fallback float64) float64 {
	if score, ok := scores[name]; ok {
		return score
	}
	return fallback
}

func resultForScore(score float64) compliance.Result {
	switch {
	case score >= compliantThreshold:
		return compliance.ResultCompliant
	case score >= reviewThreshold:
		return compliance.ResultRequiresReview
	default:
		return compliance.ResultNonCompliant
	}
}

func translateLookup(err error, notFound error, operation string) error {
	if stderrors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return errors.NewDataUnavailableError(operation, err)
}

func vendorPayload(v *vendor.Vendor) map[string]interface{} {
	return map[string]interface{}{
		"name":                v.Name,
		"registration_number": v.RegistrationNumber,
		"status":              v.Status.String(),
		"risk_level":          v.RiskLevel.String(),
		"active":              v.Active,
		"scored":              v.IsScored(),
	}
}

func bidPayload(b *bid.Bid) map[string]interface{} {
	return map[string]interface{}{
		"title":       b.Title,
		"description": b.Description,
		"amount":      b.Amount.String(),
		"status":      b.Status.String(),
		"vendor_id":   b.VendorID.String(),
		"product_id":  b.ProductID.String(),
	}
}
