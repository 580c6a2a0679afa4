package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/procurex/procurement-backend/internal/domain/compliance"
)

// ComplianceRepository stores checks and serves the aggregate count queries.
// Checks are append-only, so there is no update path.
type ComplianceRepository struct {
	db *pgxpool.Pool
}

func NewComplianceRepository(db *pgxpool.Pool) *ComplianceRepository {
	return &ComplianceRepository{db: db}
}

func (r *ComplianceRepository) Create(ctx context.Context, c *compliance.Check) error {
	query := `
		INSERT INTO compliance_checks (id, vendor_id, bid_id, result, score, notes, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		c.ID, c.VendorID, c.BidID, c.Result.String(), c.Score, c.Notes, c.CheckedAt,
	)
	return wrapError(err, "create compliance check")
}

func (r *ComplianceRepository) CountByResult(ctx context.Context) (map[compliance.Result]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT result, COUNT(*) FROM compliance_checks GROUP BY result`)
	if err != nil {
		return nil, wrapError(err, "count checks by result")
	}
	defer rows.Close()

	counts := make(map[compliance.Result]int64)
	for rows.Next() {
		var (
			raw string
			n   int64
		)
		if err := rows.Scan(&raw, &n); err != nil {
			return nil, wrapError(err, "scan result count")
		}
		result, err := compliance.ParseResult(raw)
		if err != nil {
			return nil, fmt.Errorf("stored check result: %w", err)
		}
		counts[result] = n
	}
	return counts, wrapError(rows.Err(), "count checks by result")
}

func (r *ComplianceRepository) ListInWindow(ctx context.Context, from, to time.Time) ([]*compliance.Check, error) {
	query := `
		SELECT id, vendor_id, bid_id, result, score, notes, checked_at
		FROM compliance_checks
		WHERE checked_at >= $1 AND checked_at <= $2
		ORDER BY checked_at DESC`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, wrapError(err, "list checks in window")
	}
	defer rows.Close()

	var checks []*compliance.Check
	for rows.Next() {
		var (
			c   compliance.Check
			raw string
		)
		if err := rows.Scan(&c.ID, &c.VendorID, &c.BidID, &raw, &c.Score, &c.Notes, &c.CheckedAt); err != nil {
			return nil, wrapError(err, "scan compliance check")
		}
		result, err := compliance.ParseResult(raw)
		if err != nil {
			return nil, fmt.Errorf("stored check result: %w", err)
		}
		c.Result = result
		checks = append(checks, &c)
	}
	return checks, wrapError(rows.Err(), "list checks in window")
}
