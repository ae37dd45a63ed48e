package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gperojohn83-art/Construction/internal/models"
)

var ErrProjectNotFound = errors.New("project not found")

const projectColumns = `id, organization_id, name, description, client, address, status, start_date, end_date, budget, color, created_at, updated_at`

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func scanProject(row rowScanner) (models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID,
		&p.OrganizationID,
		&p.Name,
		&p.Description,
		&p.Client,
		&p.Address,
		&p.Status,
		&p.StartDate,
		&p.EndDate,
		&p.Budget,
		&p.Color,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func insertProject(ctx context.Context, q querier, p models.Project) error {
	const query = `
		INSERT INTO projects (
			id, organization_id, name, description, client, address, status, start_date, end_date, budget, color, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()
		)
	`
	_, err := q.Exec(ctx, query,
		p.ID,
		p.OrganizationID,
		p.Name,
		p.Description,
		p.Client,
		p.Address,
		p.Status,
		p.StartDate,
		p.EndDate,
		p.Budget,
		p.Color,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) ListByOrganization(ctx context.Context, organizationID string) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE organization_id = $1 ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) GetByID(ctx context.Context, organizationID, id string) (models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE organization_id = $1 AND id = $2`

	p, err := scanProject(r.pool.QueryRow(ctx, query, organizationID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Project{}, ErrProjectNotFound
		}
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// CreateWithinQuota inserts the project only if check accepts the current
// project count, evaluated while the organization row is locked.
func (r *ProjectRepository) CreateWithinQuota(ctx context.Context, p models.Project, check QuotaCheck) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		org, err := lockOrganization(ctx, tx, p.OrganizationID)
		if err != nil {
			return err
		}

		const countQuery = `SELECT COUNT(*) FROM projects WHERE organization_id = $1`
		var current int
		if err := tx.QueryRow(ctx, countQuery, org.ID).Scan(&current); err != nil {
			return fmt.Errorf("count projects: %w", err)
		}
		if err := check(org, current); err != nil {
			return err
		}

		return insertProject(ctx, tx, p)
	})
}

// Create inserts without a quota check; used by seeding.
func (r *ProjectRepository) Create(ctx context.Context, p models.Project) error {
	return insertProject(ctx, r.pool, p)
}
