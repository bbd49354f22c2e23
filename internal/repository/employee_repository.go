package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-service/internal/crypto/fieldcipher"
	"github.com/spec-kit/hr-service/internal/domain"
)

// EmployeeRepository defines directory access for employees.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	TouchLastLogin(ctx context.Context, id string) error
}

type employeeRepository struct {
	pool   *pgxpool.Pool
	cipher *fieldcipher.Cipher
}

// NewEmployeeRepository returns a Postgres-backed implementation. PII fields
// pass through the field cipher on the way in and out.
func NewEmployeeRepository(pool *pgxpool.Pool, cipher *fieldcipher.Cipher) EmployeeRepository {
	return &employeeRepository{pool: pool, cipher: cipher}
}

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	phone, err := r.cipher.EncryptPtr(employee.Phone)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO employees (name, email, phone, password_hash, role, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		employee.Name,
		employee.Email,
		phone,
		employee.PasswordHash,
		employee.Role,
		employee.Status,
	).Scan(&employee.ID, &employee.CreatedAt, &employee.UpdatedAt)
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	const query = `
        SELECT id, name, email, phone, password_hash, role, status, last_login_at, created_at, updated_at
        FROM employees WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	const query = `
        SELECT id, name, email, phone, password_hash, role, status, last_login_at, created_at, updated_at
        FROM employees WHERE email=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *employeeRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
        UPDATE employees SET password_hash=$1, updated_at=NOW()
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

func (r *employeeRepository) TouchLastLogin(ctx context.Context, id string) error {
	const query = `
        UPDATE employees SET last_login_at=NOW(), updated_at=NOW()
        WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *employeeRepository) scanOne(row pgx.Row) (*domain.Employee, error) {
	var employee domain.Employee
	if err := row.Scan(
		&employee.ID,
		&employee.Name,
		&employee.Email,
		&employee.Phone,
		&employee.PasswordHash,
		&employee.Role,
		&employee.Status,
		&employee.LastLoginAt,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	); err != nil {
		return nil, err
	}
	employee.Phone = r.cipher.DecryptPtr(employee.Phone)
	return &employee, nil
}
