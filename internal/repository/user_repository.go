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
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const userColumns = `id, email, name, password_hash, locale, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanIdentity(row rowScanner) (models.Identity, error) {
	var identity models.Identity
	err := row.Scan(
		&identity.ID,
		&identity.Email,
		&identity.Name,
		&identity.PasswordHash,
		&identity.Locale,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	return identity, err
}

func (r *UserRepository) Create(ctx context.Context, identity models.Identity) error {
	const query = `
		INSERT INTO users (
			id, email, name, password_hash, locale, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		identity.ID,
		identity.Email,
		identity.Name,
		identity.PasswordHash,
		identity.Locale,
	)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// FindByEmail matches the stored, already normalized address exactly.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.Identity, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	identity, err := scanIdentity(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Identity{}, ErrUserNotFound
		}
		return models.Identity{}, fmt.Errorf("find user by email: %w", err)
	}
	return identity, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.Identity, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	identity, err := scanIdentity(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Identity{}, ErrUserNotFound
		}
		return models.Identity{}, fmt.Errorf("get user: %w", err)
	}
	return identity, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	const query = `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, hash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
