package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gperojohn83-art/Construction/internal/models"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

var (
	_ querier = (*pgxpool.Pool)(nil)
	_ querier = (pgx.Tx)(nil)
)

// inTx runs fn in a transaction, committing on nil and rolling back otherwise.
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	if err := pgx.BeginFunc(ctx, pool, fn); err != nil {
		return err
	}
	return nil
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// lockOrganization takes a row lock on the organization for the rest of the
// transaction so concurrent quota checks for it are serialized.
func lockOrganization(ctx context.Context, tx pgx.Tx, organizationID string) (models.Organization, error) {
	const query = `
		SELECT id, name, slug, plan, plan_expires_at, created_at, updated_at
		FROM organizations
		WHERE id = $1
		FOR UPDATE
	`
	org, err := scanOrganization(tx.QueryRow(ctx, query, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Organization{}, ErrOrganizationNotFound
		}
		return models.Organization{}, fmt.Errorf("lock organization: %w", err)
	}
	return org, nil
}
