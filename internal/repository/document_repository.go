package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gperojohn83-art/Construction/internal/models"
)

var ErrDocumentNotFound = errors.New("document not found")

const documentColumns = `id, organization_id, project_id, uploaded_by, bucket, object_key, name, format, size_bytes, checksum, signature, created_at`

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func scanDocument(row rowScanner) (models.Document, error) {
	var d models.Document
	err := row.Scan(
		&d.ID,
		&d.OrganizationID,
		&d.ProjectID,
		&d.UploadedBy,
		&d.Bucket,
		&d.ObjectKey,
		&d.Name,
		&d.Format,
		&d.SizeBytes,
		&d.Checksum,
		&d.Signature,
		&d.CreatedAt,
	)
	return d, err
}

func (r *DocumentRepository) Create(ctx context.Context, d models.Document) error {
	const query = `
		INSERT INTO documents (
			id, organization_id, project_id, uploaded_by, bucket, object_key, name, format, size_bytes, checksum, signature, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		d.ID,
		d.OrganizationID,
		d.ProjectID,
		d.UploadedBy,
		d.Bucket,
		d.ObjectKey,
		d.Name,
		d.Format,
		d.SizeBytes,
		d.Checksum,
		d.Signature,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, organizationID, id string) (models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE organization_id = $1 AND id = $2`

	d, err := scanDocument(r.pool.QueryRow(ctx, query, organizationID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Document{}, ErrDocumentNotFound
		}
		return models.Document{}, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (r *DocumentRepository) ListByProject(ctx context.Context, organizationID, projectID string) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE organization_id = $1 AND project_id = $2
		ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query, organizationID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Usage returns the document count and total stored bytes of the organization.
func (r *DocumentRepository) Usage(ctx context.Context, organizationID string) (int, int64, error) {
	const query = `SELECT COUNT(*), COALESCE(SUM(size_bytes), 0) FROM documents WHERE organization_id = $1`
	var (
		count int
		total int64
	)
	if err := r.pool.QueryRow(ctx, query, organizationID).Scan(&count, &total); err != nil {
		return 0, 0, err
	}
	return count, total, nil
}
