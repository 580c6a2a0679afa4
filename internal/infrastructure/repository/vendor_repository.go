package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/procurex/procurement-backend/internal/domain/vendor"
	"github.com/procurex/procurement-backend/internal/service/analytics"
	"github.com/procurex/procurement-backend/internal/store"
)

// VendorRepository persists vendors and serves the analytics stats queries.
type VendorRepository struct {
	db *pgxpool.Pool
}

func NewVendorRepository(db *pgxpool.Pool) *VendorRepository {
	return &VendorRepository{db: db}
}

const vendorColumns = `
	id, name, registration_number, status, risk_level,
	score_financial, score_technical, score_compliance, score_experience,
	overall_score, active, created_by, created_at, updated_at`

func (r *VendorRepository) Create(ctx context.Context, v *vendor.Vendor) error {
	query := `
		INSERT INTO vendors (` + vendorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(ctx, query,
		v.ID, v.Name, v.RegistrationNumber, v.Status.String(), v.RiskLevel.String(),
		v.CategoryScores.Financial, v.CategoryScores.Technical,
		v.CategoryScores.Compliance, v.CategoryScores.Experience,
		v.OverallScore, v.Active, v.CreatedBy, v.CreatedAt, v.UpdatedAt,
	)
	return wrapError(err, "create vendor")
}

func (r *VendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = $1`
	return scanVendor(r.db.QueryRow(ctx, query, id))
}

func (r *VendorRepository) Update(ctx context.Context, v *vendor.Vendor) error {
	query := `
		UPDATE vendors SET
			name = $1, status = $2, risk_level = $3,
			score_financial = $4, score_technical = $5,
			score_compliance = $6, score_experience = $7,
			overall_score = $8, active = $9, updated_at = $10
		WHERE id = $11`

	tag, err := r.db.Exec(ctx, query,
		v.Name, v.Status.String(), v.RiskLevel.String(),
		v.CategoryScores.Financial, v.CategoryScores.Technical,
		v.CategoryScores.Compliance, v.CategoryScores.Experience,
		v.OverallScore, v.Active, v.UpdatedAt, v.ID,
	)
	if err != nil {
		return wrapError(err, "update vendor")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *VendorRepository) List(ctx context.Context) ([]*vendor.Vendor, error) {
	rows, err := r.db.Query(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrapError(err, "list vendors")
	}
	defer rows.Close()

	var vendors []*vendor.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, wrapError(rows.Err(), "list vendors")
}

// ListScores returns the score rows for every scored vendor; unscored
// vendors are excluded here, not zeroed into the aggregates.
func (r *VendorRepository) ListScores(ctx context.Context) ([]analytics.VendorScores, error) {
	query := `
		SELECT overall_score, score_financial, score_technical,
		       score_compliance, score_experience
		FROM vendors
		WHERE overall_score IS NOT NULL`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, wrapError(err, "list vendor scores")
	}
	defer rows.Close()

	var scores []analytics.VendorScores
	for rows.Next() {
		var s analytics.VendorScores
		if err := rows.Scan(&s.Overall, &s.Financial, &s.Technical, &s.Compliance, &s.Experience); err != nil {
			return nil, wrapError(err, "scan vendor scores")
		}
		scores = append(scores, s)
	}
	return scores, wrapError(rows.Err(), "list vendor scores")
}

func (r *VendorRepository) CountByRiskLevel(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT risk_level, COUNT(*) FROM vendors GROUP BY risk_level`)
	if err != nil {
		return nil, wrapError(err, "count vendors by risk level")
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			level string
			n     int64
		)
		if err := rows.Scan(&level, &n); err != nil {
			return nil, wrapError(err, "scan risk level count")
		}
		counts[level] = n
	}
	return counts, wrapError(rows.Err(), "count vendors by risk level")
}

func (r *VendorRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM vendors`).Scan(&n)
	return n, wrapError(err, "count vendors")
}

func (r *VendorRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM vendors WHERE created_at >= $1`, since).Scan(&n)
	return n, wrapError(err, "count recent vendors")
}

// HasLiveBids reports whether the vendor still owns bids in a non-terminal
// status; such vendors cannot be deactivated.
func (r *VendorRepository) HasLiveBids(ctx context.Context, vendorID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bids
			WHERE vendor_id = $1
			  AND status NOT IN ('awarded', 'rejected', 'withdrawn')
		)`

	var exists bool
	err := r.db.QueryRow(ctx, query, vendorID).Scan(&exists)
	return exists, wrapError(err, "check live bids")
}

func scanVendor(row rowScanner) (*vendor.Vendor, error) {
	var (
		v      vendor.Vendor
		status string
		risk   string
	)

	err := row.Scan(
		&v.ID, &v.Name, &v.RegistrationNumber, &status, &risk,
		&v.CategoryScores.Financial, &v.CategoryScores.Technical,
		&v.CategoryScores.Compliance, &v.CategoryScores.Experience,
		&v.OverallScore, &v.Active, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError(err, "scan vendor")
	}

	v.Status, err = vendor.ParseQualificationStatus(status)
	if err != nil {
		return nil, fmt.Errorf("stored vendor status: %w", err)
	}
	v.RiskLevel, err = vendor.ParseRiskLevel(risk)
	if err != nil {
		return nil, fmt.Errorf("stored vendor risk level: %w", err)
	}

	return &v, nil
}
