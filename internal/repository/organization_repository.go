package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gperojohn83-art/Construction/internal/models"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrSlugTaken            = errors.New("organization slug already taken")
)

const organizationColumns = `id, name, slug, plan, plan_expires_at, created_at, updated_at`

type OrganizationRepository struct {
	pool *pgxpool.Pool
}

func NewOrganizationRepository(pool *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

func scanOrganization(row rowScanner) (models.Organization, error) {
	var org models.Organization
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.Plan,
		&org.PlanExpiresAt,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	return org, err
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`

	org, err := scanOrganization(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Organization{}, ErrOrganizationNotFound
		}
		return models.Organization{}, fmt.Errorf("get organization: %w", err)
	}
	return org, nil
}

func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE slug = $1`

	org, err := scanOrganization(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Organization{}, ErrOrganizationNotFound
		}
		return models.Organization{}, fmt.Errorf("get organization by slug: %w", err)
	}
	return org, nil
}

func (r *OrganizationRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM organizations WHERE slug = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateWithOwner inserts the organization and the owner's membership in one
// transaction. It fails with ErrAlreadyMember when the owner already belongs
// to an organization.
func (r *OrganizationRepository) CreateWithOwner(ctx context.Context, org models.Organization, owner models.Membership) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := ensureNoMembership(ctx, tx, owner.UserID); err != nil {
			return err
		}

		const insertOrg = `
			INSERT INTO organizations (id, name, slug, plan, plan_expires_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		`
		if _, err := tx.Exec(ctx, insertOrg, org.ID, org.Name, org.Slug, org.Plan, org.PlanExpiresAt); err != nil {
			if isUniqueViolation(err) {
				return ErrSlugTaken
			}
			return fmt.Errorf("insert organization: %w", err)
		}
		if err := insertMembership(ctx, tx, owner); err != nil {
			return err
		}
		return nil
	})
}

// DowngradeExpired moves every paid organization whose plan ran out back to
// FREE and returns the organizations it changed.
func (r *OrganizationRepository) DowngradeExpired(ctx context.Context, now time.Time) ([]models.Organization, error) {
	query := `
		UPDATE organizations
		SET plan = 'FREE', plan_expires_at = NULL, updated_at = NOW()
		WHERE plan <> 'FREE' AND plan_expires_at IS NOT NULL AND plan_expires_at < $1
		RETURNING ` + organizationColumns

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func (r *OrganizationRepository) UpdatePlan(ctx context.Context, id string, plan models.Plan, expiresAt *time.Time) error {
	const query = `
		UPDATE organizations SET plan = $2, plan_expires_at = $3, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, plan, expiresAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}
