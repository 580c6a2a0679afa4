package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/procurex/procurement-backend/internal/domain/bid"
	"github.com/procurex/procurement-backend/internal/domain/values"
	"github.com/procurex/procurement-backend/internal/service/bidding"
	"github.com/procurex/procurement-backend/internal/store"
)

// bidRepository implements bidding.BidRepository on PostgreSQL. Updates are
// version-checked; a lost race surfaces as store.ErrVersionConflict.
type bidRepository struct {
	db *pgxpool.Pool
}

func NewBidRepository(db *pgxpool.Pool) bidding.BidRepository {
	return &bidRepository{db: db}
}

const bidColumns = `
	id, vendor_id, product_id, amount, currency, title, description,
	status, prior_status, submitted_at, version, created_at, updated_at`

func (r *bidRepository) Create(ctx context.Context, b *bid.Bid) error {
	query := `
		INSERT INTO bids (` + bidColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		b.ID, b.VendorID, b.ProductID, b.Amount.Amount(), b.Amount.Currency(),
		b.Title, b.Description, b.Status.String(), priorStatusValue(b.PriorStatus),
		b.SubmittedAt, b.Version, b.CreatedAt, b.UpdatedAt,
	)
	return wrapError(err, "create bid")
}

func (r *bidRepository) GetByID(ctx context.Context, id uuid.UUID) (*bid.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	return scanBid(r.db.QueryRow(ctx, query, id))
}

// Update writes the bid back only if the stored version still matches the
// version the caller read, then bumps it.
func (r *bidRepository) Update(ctx context.Context, b *bid.Bid) error {
	return updateBid(ctx, r.db, b)
}

// updateBid runs the version-checked write on either the pool or an open
// transaction, so negotiation writes can share it.
func updateBid(ctx context.Context, q querier, b *bid.Bid) error {
	query := `
		UPDATE bids SET
			amount = $1, currency = $2, title = $3, description = $4,
			status = $5, prior_status = $6, version = version + 1, updated_at = $7
		WHERE id = $8 AND version = $9`

	tag, err := q.Exec(ctx, query,
		b.Amount.Amount(), b.Amount.Currency(), b.Title, b.Description,
		b.Status.String(), priorStatusValue(b.PriorStatus), b.UpdatedAt,
		b.ID, b.Version,
	)
	if err != nil {
		return wrapError(err, "update bid")
	}
	if tag.RowsAffected() == 0 {
		// the row is either gone or a concurrent writer bumped the version
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bids WHERE id = $1)`, b.ID).Scan(&exists); err != nil {
			return wrapError(err, "update bid")
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrVersionConflict
	}
	b.Version++
	return nil
}

func (r *bidRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bids WHERE id = $1`, id)
	if err != nil {
		return wrapError(err, "delete bid")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *bidRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*bid.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE vendor_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, vendorID)
	if err != nil {
		return nil, wrapError(err, "list bids by vendor")
	}
	defer rows.Close()

	var bids []*bid.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, wrapError(rows.Err(), "list bids by vendor")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBid(row rowScanner) (*bid.Bid, error) {
	var (
		b           bid.Bid
		amount      decimal.Decimal
		currency    string
		status      string
		priorStatus *string
	)

	err := row.Scan(
		&b.ID, &b.VendorID, &b.ProductID, &amount, &currency,
		&b.Title, &b.Description, &status, &priorStatus,
		&b.SubmittedAt, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError(err, "scan bid")
	}

	b.Amount, err = values.NewMoney(amount, currency)
	if err != nil {
		return nil, fmt.Errorf("stored bid amount: %w", err)
	}

	b.Status, err = bid.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("stored bid status: %w", err)
	}
	if priorStatus != nil {
		prior, err := bid.ParseStatus(*priorStatus)
		if err != nil {
			return nil, fmt.Errorf("stored prior status: %w", err)
		}
		b.PriorStatus = &prior
	}

	return &b, nil
}

func priorStatusValue(prior *bid.Status) interface{} {
	if prior == nil {
		return nil
	}
	return prior.String()
}
