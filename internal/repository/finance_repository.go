package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gperojohn83-art/Construction/internal/models"
)

// FinanceRepository reads and writes payments, invoices and change requests.
type FinanceRepository struct {
	pool *pgxpool.Pool
}

func NewFinanceRepository(pool *pgxpool.Pool) *FinanceRepository {
	return &FinanceRepository{pool: pool}
}

// PaymentsBetween returns the organization's payments with paid_at in [from, to).
func (r *FinanceRepository) PaymentsBetween(ctx context.Context, organizationID string, from, to time.Time) ([]models.Payment, error) {
	const query = `
		SELECT p.id, p.project_id, p.title, p.amount, p.type, p.paid_at, p.created_at
		FROM payments p
		JOIN projects pr ON pr.id = p.project_id
		WHERE pr.organization_id = $1 AND p.paid_at >= $2 AND p.paid_at < $3
		ORDER BY p.paid_at DESC
	`

	rows, err := r.pool.Query(ctx, query, organizationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Title, &p.Amount, &p.Type, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *FinanceRepository) CreatePayment(ctx context.Context, p models.Payment) error {
	const query = `
		INSERT INTO payments (id, project_id, title, amount, type, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.pool.Exec(ctx, query, p.ID, p.ProjectID, p.Title, p.Amount, p.Type, p.PaidAt)
	return err
}

func (r *FinanceRepository) ListInvoices(ctx context.Context, organizationID string) ([]models.Invoice, error) {
	const query = `
		SELECT id, organization_id, project_id, number, client, issue_date, due_date,
		       subtotal, vat_rate, vat_amount, total, status, created_at
		FROM invoices
		WHERE organization_id = $1
		ORDER BY issue_date DESC, number DESC
	`

	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(
			&inv.ID,
			&inv.OrganizationID,
			&inv.ProjectID,
			&inv.Number,
			&inv.Client,
			&inv.IssueDate,
			&inv.DueDate,
			&inv.Subtotal,
			&inv.VATRate,
			&inv.VATAmount,
			&inv.Total,
			&inv.Status,
			&inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *FinanceRepository) CreateInvoice(ctx context.Context, inv models.Invoice) error {
	const query = `
		INSERT INTO invoices (
			id, organization_id, project_id, number, client, issue_date, due_date,
			subtotal, vat_rate, vat_amount, total, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW()
		)
		ON CONFLICT (organization_id, number) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		inv.ID,
		inv.OrganizationID,
		inv.ProjectID,
		inv.Number,
		inv.Client,
		inv.IssueDate,
		inv.DueDate,
		inv.Subtotal,
		inv.VATRate,
		inv.VATAmount,
		inv.Total,
		inv.Status,
	)
	return err
}

// MarkOverdue flags sent invoices whose due date has passed.
func (r *FinanceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		UPDATE invoices SET status = 'OVERDUE'
		WHERE status = 'SENT' AND due_date IS NOT NULL AND due_date < $1
	`
	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *FinanceRepository) PendingChanges(ctx context.Context, organizationID string) ([]models.Change, error) {
	const query = `
		SELECT c.id, c.project_id, c.title, c.amount, c.status, c.requested_at
		FROM changes c
		JOIN projects pr ON pr.id = c.project_id
		WHERE pr.organization_id = $1 AND c.status = 'PENDING'
		ORDER BY c.requested_at DESC
	`

	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []models.Change
	for rows.Next() {
		var c models.Change
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Title, &c.Amount, &c.Status, &c.RequestedAt); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func (r *FinanceRepository) CreateChange(ctx context.Context, c models.Change) error {
	const query = `
		INSERT INTO changes (id, project_id, title, amount, status, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query, c.ID, c.ProjectID, c.Title, c.Amount, c.Status, c.RequestedAt)
	return err
}
