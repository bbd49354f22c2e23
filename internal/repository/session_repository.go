package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-service/internal/domain"
)

// SessionRepository persists one row per active refresh-token lineage, keyed
// by the digest of the current secret. It is a dumb store: reads return
// revoked and expired rows too, validity is enforced by the caller.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	// Rotate swaps token hash and expiry in a single conditional update.
	// The WHERE predicate is the compare-and-swap: of two concurrent
	// rotations against the same predecessor hash at most one can return
	// rowsAffected=1.
	Rotate(ctx context.Context, oldHash, newHash string, newExpiresAt time.Time) (int64, error)
	Revoke(ctx context.Context, tokenHash string) (int64, error)
	PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a Postgres-backed implementation.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	const query = `
        INSERT INTO sessions (uuid, subject_id, subject_type, token_hash, user_agent, ip_address, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		session.UUID,
		session.SubjectID,
		session.SubjectType,
		session.TokenHash,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
	).Scan(&session.CreatedAt)
}

func (r *sessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	const query = `
        SELECT uuid, subject_id, subject_type, token_hash, user_agent, ip_address, expires_at, created_at, revoked_at
        FROM sessions WHERE token_hash=$1`

	var session domain.Session
	if err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&session.UUID,
		&session.SubjectID,
		&session.SubjectType,
		&session.TokenHash,
		&session.UserAgent,
		&session.IPAddress,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.RevokedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Rotate(ctx context.Context, oldHash, newHash string, newExpiresAt time.Time) (int64, error) {
	const query = `
        UPDATE sessions SET token_hash=$1, expires_at=$2
        WHERE token_hash=$3 AND revoked_at IS NULL`

	cmd, err := r.pool.Exec(ctx, query, newHash, newExpiresAt, oldHash)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *sessionRepository) Revoke(ctx context.Context, tokenHash string) (int64, error) {
	const query = `
        UPDATE sessions SET revoked_at=NOW()
        WHERE token_hash=$1 AND revoked_at IS NULL`

	cmd, err := r.pool.Exec(ctx, query, tokenHash)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *sessionRepository) PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at < $1`

	cmd, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
