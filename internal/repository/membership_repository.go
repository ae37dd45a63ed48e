package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gperojohn83-art/Construction/internal/models"
)

var (
	ErrMembershipNotFound = errors.New("membership not found")
	// ErrAlreadyMember covers both a duplicate membership and a user who
	// already belongs to another organization.
	ErrAlreadyMember      = errors.New("user is already a member")
)

type MembershipRepository struct {
	pool *pgxpool.Pool
}

func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

// ensureNoMembership locks the user row for the rest of the transaction and
// fails when the user already belongs to an organization, so two concurrent
// joins for one user cannot both pass.
func ensureNoMembership(ctx context.Context, tx pgx.Tx, userID string) error {
	var locked string
	if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lock user: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM memberships WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if exists {
		return ErrAlreadyMember
	}
	return nil
}

func insertMembership(ctx context.Context, q querier, m models.Membership) error {
	const query = `
		INSERT INTO memberships (id, organization_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	if _, err := q.Exec(ctx, query, m.ID, m.OrganizationID, m.UserID, m.Role); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyMember
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func countMembers(ctx context.Context, q querier, organizationID string) (int, error) {
	const query = `SELECT COUNT(*) FROM memberships WHERE organization_id = $1`
	var count int
	if err := q.QueryRow(ctx, query, organizationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

func scanMembership(row rowScanner) (models.Membership, error) {
	var m models.Membership
	err := row.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt)
	return m, err
}

// FindFirstByUser returns the user's earliest membership. Ties on created_at
// are broken by id so the answer is stable.
func (r *MembershipRepository) FindFirstByUser(ctx context.Context, userID string) (models.Membership, error) {
	const query = `
		SELECT id, organization_id, user_id, role, created_at
		FROM memberships
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`

	m, err := scanMembership(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Membership{}, ErrMembershipNotFound
		}
		return models.Membership{}, fmt.Errorf("find membership: %w", err)
	}
	return m, nil
}

func (r *MembershipRepository) FindByOrgAndUser(ctx context.Context, organizationID, userID string) (models.Membership, error) {
	const query = `
		SELECT id, organization_id, user_id, role, created_at
		FROM memberships
		WHERE organization_id = $1 AND user_id = $2
	`

	m, err := scanMembership(r.pool.QueryRow(ctx, query, organizationID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Membership{}, ErrMembershipNotFound
		}
		return models.Membership{}, fmt.Errorf("find membership: %w", err)
	}
	return m, nil
}

func (r *MembershipRepository) CountByOrganization(ctx context.Context, organizationID string) (int, error) {
	return countMembers(ctx, r.pool, organizationID)
}

func (r *MembershipRepository) ListMembers(ctx context.Context, organizationID string) ([]models.Member, error) {
	const query = `
		SELECT m.id, m.organization_id, m.user_id, m.role, m.created_at, u.email, u.name
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`

	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var member models.Member
		if err := rows.Scan(
			&member.ID,
			&member.OrganizationID,
			&member.UserID,
			&member.Role,
			&member.CreatedAt,
			&member.Email,
			&member.Name,
		); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *MembershipRepository) UpdateRole(ctx context.Context, organizationID, userID string, role models.Role) error {
	const query = `UPDATE memberships SET role = $3 WHERE organization_id = $1 AND user_id = $2`
	cmd, err := r.pool.Exec(ctx, query, organizationID, userID, role)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// AdminIDs lists the users holding the ADMIN role in the organization.
func (r *MembershipRepository) AdminIDs(ctx context.Context, organizationID string) ([]string, error) {
	const query = `
		SELECT user_id FROM memberships
		WHERE organization_id = $1 AND role = 'ADMIN'
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
