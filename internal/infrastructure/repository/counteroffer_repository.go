package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/procurex/procurement-backend/internal/domain/bid"
	"github.com/procurex/procurement-backend/internal/domain/values"
	"github.com/procurex/procurement-backend/internal/service/bidding"
	"github.com/procurex/procurement-backend/internal/store"
)

type counterOfferRepository struct {
	db *pgxpool.Pool
}

func NewCounterOfferRepository(db *pgxpool.Pool) bidding.CounterOfferRepository {
	return &counterOfferRepository{db: db}
}

const counterOfferColumns = `
	id, bid_id, amount, currency, timeline_days, modifications,
	justification, status, created_at, responded_at, expires_at`

func (r *counterOfferRepository) Create(ctx context.Context, c *bid.CounterOffer) error {
	return insertCounterOffer(ctx, r.db, c)
}

func insertCounterOffer(ctx context.Context, q querier, c *bid.CounterOffer) error {
	query := `
		INSERT INTO counter_offers (` + counterOfferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := q.Exec(ctx, query,
		c.ID, c.BidID, c.Amount.Amount(), c.Amount.Currency(), c.TimelineDays,
		c.Modifications, c.Justification, c.Status.String(),
		c.CreatedAt, c.RespondedAt, c.ExpiresAt,
	)
	return wrapError(err, "create counter-offer")
}

func (r *counterOfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*bid.CounterOffer, error) {
	query := `SELECT ` + counterOfferColumns + ` FROM counter_offers WHERE id = $1`
	return scanCounterOffer(r.db.QueryRow(ctx, query, id))
}

func (r *counterOfferRepository) Update(ctx context.Context, c *bid.CounterOffer) error {
	return updateCounterOffer(ctx, r.db, c)
}

func updateCounterOffer(ctx context.Context, q querier, c *bid.CounterOffer) error {
	query := `
		UPDATE counter_offers SET
			status = $1, responded_at = $2
		WHERE id = $3`

	tag, err := q.Exec(ctx, query, c.Status.String(), c.RespondedAt, c.ID)
	if err != nil {
		return wrapError(err, "update counter-offer")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CreateWithBid persists a new counter-offer and its parent bid's status
// change in one transaction; neither write lands without the other.
func (r *counterOfferRepository) CreateWithBid(ctx context.Context, c *bid.CounterOffer, b *bid.Bid) error {
	return r.inTx(ctx, b, func(tx pgx.Tx) error {
		if err := updateBid(ctx, tx, b); err != nil {
			return err
		}
		return insertCounterOffer(ctx, tx, c)
	})
}

// UpdateWithBid persists a counter-offer resolution and the parent bid in
// one transaction.
func (r *counterOfferRepository) UpdateWithBid(ctx context.Context, c *bid.CounterOffer, b *bid.Bid) error {
	return r.inTx(ctx, b, func(tx pgx.Tx) error {
		if err := updateBid(ctx, tx, b); err != nil {
			return err
		}
		return updateCounterOffer(ctx, tx, c)
	})
}

func (r *counterOfferRepository) inTx(ctx context.Context, b *bid.Bid, fn func(pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return wrapError(err, "begin negotiation")
	}
	defer tx.Rollback(ctx)

	// updateBid bumps the caller's version on success; undo it if the
	// transaction does not commit so a retry reads fresh state cleanly.
	before := b.Version
	if err := fn(tx); err != nil {
		b.Version = before
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		b.Version = before
		return wrapError(err, "commit negotiation")
	}
	return nil
}

func (r *counterOfferRepository) ListByBid(ctx context.Context, bidID uuid.UUID) ([]*bid.CounterOffer, error) {
	query := `SELECT ` + counterOfferColumns + ` FROM counter_offers WHERE bid_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, bidID)
	if err != nil {
		return nil, wrapError(err, "list counter-offers by bid")
	}
	defer rows.Close()

	var offers []*bid.CounterOffer
	for rows.Next() {
		c, err := scanCounterOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, c)
	}
	return offers, wrapError(rows.Err(), "list counter-offers by bid")
}

// ExpireStale flips every overdue, still-open offer in one status-predicated
// update; repeated or concurrent sweeps each claim disjoint rows, so the
// sweep is idempotent.
func (r *counterOfferRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE counter_offers SET
			status = 'expired', responded_at = $1
		WHERE expires_at < $1 AND status IN ('pending', 'under_review')`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, wrapError(err, "expire stale counter-offers")
	}
	return tag.RowsAffected(), nil
}

func scanCounterOffer(row rowScanner) (*bid.CounterOffer, error) {
	var (
		c        bid.CounterOffer
		amount   decimal.Decimal
		currency string
		status   string
	)

	err := row.Scan(
		&c.ID, &c.BidID, &amount, &currency, &c.TimelineDays,
		&c.Modifications, &c.Justification, &status,
		&c.CreatedAt, &c.RespondedAt, &c.ExpiresAt,
	)
	if err != nil {
		return nil, wrapError(err, "scan counter-offer")
	}

	c.Amount, err = values.NewMoney(amount, currency)
	if err != nil {
		return nil, fmt.Errorf("stored counter-offer amount: %w", err)
	}
	c.Status, err = bid.ParseCounterOfferStatus(status)
	if err != nil {
		return nil, fmt.Errorf("stored counter-offer status: %w", err)
	}

	return &c, nil
}
