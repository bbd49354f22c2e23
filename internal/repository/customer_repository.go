package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-service/internal/crypto/fieldcipher"
	"github.com/spec-kit/hr-service/internal/domain"
)

// CustomerRepository defines directory access for customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	TouchLastActivity(ctx context.Context, id string) error
}

type customerRepository struct {
	pool   *pgxpool.Pool
	cipher *fieldcipher.Cipher
}

// NewCustomerRepository returns a Postgres-backed implementation. PII fields
// pass through the field cipher on the way in and out.
func NewCustomerRepository(pool *pgxpool.Pool, cipher *fieldcipher.Cipher) CustomerRepository {
	return &customerRepository{pool: pool, cipher: cipher}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	phone, err := r.cipher.EncryptPtr(customer.Phone)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO customers (name, email, phone, password_hash, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		customer.Name,
		customer.Email,
		phone,
		customer.PasswordHash,
		customer.Status,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const query = `
        SELECT id, name, email, phone, password_hash, status, last_activity_at, created_at, updated_at
        FROM customers WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const query = `
        SELECT id, name, email, phone, password_hash, status, last_activity_at, created_at, updated_at
        FROM customers WHERE email=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *customerRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
        UPDATE customers SET password_hash=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepository) TouchLastActivity(ctx context.Context, id string) error {
	const query = `
        UPDATE customers SET last_activity_at=NOW(), updated_at=NOW()
        WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *customerRepository) scanOne(row pgx.Row) (*domain.Customer, error) {
	var customer domain.Customer
	if err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&customer.PasswordHash,
		&customer.Status,
		&customer.LastActivityAt,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	customer.Phone = r.cipher.DecryptPtr(customer.Phone)
	return &customer, nil
}
