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
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationNotPending = errors.New("invitation is no longer pending")
)

const invitationColumns = `id, organization_id, email, role, inviter_id, token, status, expires_at, accepted_by, created_at`

// QuotaCheck decides, under the organization row lock, whether one more
// row may be added given the organization and its current count.
type QuotaCheck func(org models.Organization, current int) error

type InvitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{pool: pool}
}

func scanInvitation(row rowScanner) (models.Invitation, error) {
	var inv models.Invitation
	err := row.Scan(
		&inv.ID,
		&inv.OrganizationID,
		&inv.Email,
		&inv.Role,
		&inv.InviterID,
		&inv.Token,
		&inv.Status,
		&inv.ExpiresAt,
		&inv.AcceptedBy,
		&inv.CreatedAt,
	)
	return inv, err
}

func (r *InvitationRepository) Create(ctx context.Context, inv models.Invitation) error {
	const query = `
		INSERT INTO invitations (
			id, organization_id, email, role, inviter_id, token, status, expires_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		inv.ID,
		inv.OrganizationID,
		inv.Email,
		inv.Role,
		inv.InviterID,
		inv.Token,
		inv.Status,
		inv.ExpiresAt,
	)
	return err
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`

	inv, err := scanInvitation(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Invitation{}, ErrInvitationNotFound
		}
		return models.Invitation{}, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

// Accept turns a pending invitation into a membership. The organization row
// is locked while members are counted, so check sees a count no concurrent
// acceptance can invalidate.
func (r *InvitationRepository) Accept(ctx context.Context, inv models.Invitation, membership models.Membership, check QuotaCheck) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		org, err := lockOrganization(ctx, tx, inv.OrganizationID)
		if err != nil {
			return err
		}

		current, err := countMembers(ctx, tx, org.ID)
		if err != nil {
			return err
		}
		if err := check(org, current); err != nil {
			return err
		}
		if err := ensureNoMembership(ctx, tx, membership.UserID); err != nil {
			return err
		}

		const markAccepted = `
			UPDATE invitations SET status = 'ACCEPTED', accepted_by = $2
			WHERE id = $1 AND status = 'PENDING'
		`
		cmd, err := tx.Exec(ctx, markAccepted, inv.ID, membership.UserID)
		if err != nil {
			return fmt.Errorf("mark invitation accepted: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrInvitationNotPending
		}

		return insertMembership(ctx, tx, membership)
	})
}

func (r *InvitationRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	const query = `UPDATE invitations SET status = 'EXPIRED' WHERE status = 'PENDING' AND expires_at < $1`
	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
