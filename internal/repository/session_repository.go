package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gperojohn83-art/Construction/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionColumns = `id, user_id, device_id, device_name, refresh_token_hash, ip_address, user_agent, created_at, last_seen_at, expires_at`

// SessionRepository stores device sessions, one refresh token per user device.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func scanDeviceSession(row rowScanner) (models.DeviceSession, error) {
	var session models.DeviceSession
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.DeviceID,
		&session.DeviceName,
		&session.RefreshTokenHash,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
		&session.LastSeenAt,
		&session.ExpiresAt,
	)
	return session, err
}

// Upsert creates the session for the device or replaces its refresh token.
func (r *SessionRepository) Upsert(ctx context.Context, session models.DeviceSession) error {
	const query = `
		INSERT INTO user_sessions (
			id, user_id, device_id, device_name, refresh_token_hash, ip_address, user_agent, created_at, last_seen_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW(), $8
		)
		ON CONFLICT (user_id, device_id)
		DO UPDATE SET
			id = EXCLUDED.id,
			device_name = EXCLUDED.device_name,
			refresh_token_hash = EXCLUDED.refresh_token_hash,
			ip_address = EXCLUDED.ip_address,
			user_agent = EXCLUDED.user_agent,
			last_seen_at = NOW(),
			expires_at = EXCLUDED.expires_at
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.DeviceID,
		session.DeviceName,
		session.RefreshTokenHash,
		session.IPAddress,
		session.UserAgent,
		session.ExpiresAt,
	)
	return err
}

func (r *SessionRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM user_sessions WHERE user_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SessionRepository) DeleteOldestSessions(ctx context.Context, userID string, keepLatest int) error {
	const query = `
		DELETE FROM user_sessions
		WHERE id IN (
			SELECT id FROM user_sessions
			WHERE user_id = $1
			ORDER BY last_seen_at DESC
			OFFSET $2
		)
	`
	_, err := r.pool.Exec(ctx, query, userID, keepLatest)
	return err
}

func (r *SessionRepository) FindByDevice(ctx context.Context, userID, deviceID string) (models.DeviceSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE user_id = $1 AND device_id = $2`

	session, err := scanDeviceSession(r.pool.QueryRow(ctx, query, userID, deviceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DeviceSession{}, ErrSessionNotFound
		}
		return models.DeviceSession{}, err
	}
	return session, nil
}

func (r *SessionRepository) DeleteByDevice(ctx context.Context, userID, deviceID string) error {
	const query = `DELETE FROM user_sessions WHERE user_id = $1 AND device_id = $2`
	cmd, err := r.pool.Exec(ctx, query, userID, deviceID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]models.DeviceSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE user_id = $1 ORDER BY last_seen_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.DeviceSession
	for rows.Next() {
		session, err := scanDeviceSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Rotate swaps the refresh token only if the presented hash is still current,
// so a token can be redeemed once.
func (r *SessionRepository) Rotate(ctx context.Context, sessionID string, currentHash, nextHash []byte, expiresAt time.Time, ip, userAgent string) error {
	const query = `
		UPDATE user_sessions
		SET refresh_token_hash = $3,
		    expires_at = $4,
		    last_seen_at = NOW(),
		    ip_address = COALESCE(NULLIF($5, ''), ip_address),
		    user_agent = COALESCE(NULLIF($6, ''), user_agent)
		WHERE id = $1 AND refresh_token_hash = $2
	`
	cmd, err := r.pool.Exec(ctx, query, sessionID, currentHash, nextHash, expiresAt, ip, userAgent)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM user_sessions WHERE expires_at < $1`
	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
