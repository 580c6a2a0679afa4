package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/procurex/procurement-backend/internal/store"
)

// Postgres error codes the repositories care about.
const (
	pgCodeUniqueViolation     = "23505"
	pgCodeForeignKeyViolation = "23503"
)

// querier is the statement surface shared by *pgxpool.Pool and pgx.Tx, so
// the same write helpers serve both direct and transactional paths.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IsForeignKeyViolation reports whether err is a foreign key constraint
// violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCodeForeignKeyViolation
}

// wrapError translates driver errors into the shared store sentinels so the
// service layer stays free of pgx imports.
func wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation {
		return store.ErrDuplicateKey
	}

	return fmt.Errorf("%s: %w", operation, err)
}
