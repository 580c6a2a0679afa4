package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/procurex/procurement-backend/internal/domain/bid"
	"github.com/procurex/procurement-backend/internal/domain/compliance"
	"github.com/procurex/procurement-backend/internal/domain/evaluation"
	"github.com/procurex/procurement-backend/internal/domain/vendor"
	"github.com/procurex/procurement-backend/internal/service/analytics"
	"github.com/procurex/procurement-backend/internal/service/oracle"
)

// VendorStatsRepository mock
type VendorStatsRepository struct {
	mock.Mock
}

func (m *VendorStatsRepository) ListScores(ctx context.Context) ([]analytics.VendorScores, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.VendorScores), args.Error(1)
}

func (m *VendorStatsRepository) CountByRiskLevel(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *VendorStatsRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *VendorStatsRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

// ComplianceStatsRepository mock
type ComplianceStatsRepository struct {
	mock.Mock
}

func (m *ComplianceStatsRepository) CountByResult(ctx context.Context) (map[compliance.Result]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[compliance.Result]int64), args.Error(1)
}

func (m *ComplianceStatsRepository) ListInWindow(ctx context.Context, from, to time.Time) ([]*compliance.Check, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*compliance.Check), args.Error(1)
}

// EvaluationStatsRepository mock
type EvaluationStatsRepository struct {
	mock.Mock
}

func (m *EvaluationStatsRepository) ListInWindow(ctx context.Context, kind evaluation.Kind, from, to time.Time) ([]*evaluation.Evaluation, error) {
	args := m.Called(ctx, kind, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*evaluation.Evaluation), args.Error(1)
}

// EvaluationRepository mock
type EvaluationRepository struct {
	mock.Mock
}

func (m *EvaluationRepository) Create(ctx context.Context, e *evaluation.Evaluation) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *EvaluationRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*evaluation.Evaluation, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*evaluation.Evaluation), args.Error(1)
}

// ComplianceRepository mock
type ComplianceRepository struct {
	mock.Mock
}

func (m *ComplianceRepository) Create(ctx context.Context, c *compliance.Check) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// VendorRepository mock
type VendorRepository struct {
	mock.Mock
}

func (m *VendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vendor.Vendor), args.Error(1)
}

func (m *VendorRepository) Update(ctx context.Context, v *vendor.Vendor) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

// BidReader mock
type BidReader struct {
	mock.Mock
}

func (m *BidReader) GetByID(ctx context.Context, id uuid.UUID) (*bid.Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bid.Bid), args.Error(1)
}

// Oracle mock
type Oracle struct {
	mock.Mock
}

func (m *Oracle) Score(ctx context.Context, kind oracle.Kind, payload interface{}) (*oracle.Assessment, error) {
	args := m.Called(ctx, kind, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oracle.Assessment), args.Error(1)
}
