package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-service/internal/domain"
)

// PasswordResetRepository manages reset-request persistence. Single use is
// enforced by deletion: a consumed or superseded request leaves no row.
type PasswordResetRepository interface {
	// Replace deletes any prior request for the email and inserts the new
	// one, so at most one active request exists per email.
	Replace(ctx context.Context, request *domain.PasswordResetRequest) error
	GetByEncryptedToken(ctx context.Context, encryptedToken string) (*domain.PasswordResetRequest, error)
	Delete(ctx context.Context, uuid string) error
}

type passwordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository constructs repository.
func NewPasswordResetRepository(pool *pgxpool.Pool) PasswordResetRepository {
	return &passwordResetRepository{pool: pool}
}

func (r *passwordResetRepository) Replace(ctx context.Context, request *domain.PasswordResetRequest) error {
	const deleteQuery = `DELETE FROM password_reset_requests WHERE email=$1`
	if _, err := r.pool.Exec(ctx, deleteQuery, request.Email); err != nil {
		return err
	}

	const insertQuery = `
        INSERT INTO password_reset_requests (uuid, email, encrypted_token)
        VALUES ($1, $2, $3)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, insertQuery,
		request.UUID,
		request.Email,
		request.EncryptedToken,
	).Scan(&request.CreatedAt)
}

func (r *passwordResetRepository) GetByEncryptedToken(ctx context.Context, encryptedToken string) (*domain.PasswordResetRequest, error) {
	const query = `
        SELECT uuid, email, encrypted_token, created_at
        FROM password_reset_requests WHERE encrypted_token=$1`

	var request domain.PasswordResetRequest
	if err := r.pool.QueryRow(ctx, query, encryptedToken).Scan(
		&request.UUID,
		&request.Email,
		&request.EncryptedToken,
		&request.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *passwordResetRepository) Delete(ctx context.Context, uuid string) error {
	const query = `DELETE FROM password_reset_requests WHERE uuid=$1`
	_, err := r.pool.Exec(ctx, query, uuid)
	return err
}
