package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

// VerifiedSubject is the outcome of a successful password verification.
type VerifiedSubject struct {
	Ref  domain.SubjectRef
	Name string
	Role *domain.EmployeeRole
}

// Account is a resolved directory entry, enough for the reset flow to act on.
type Account struct {
	Ref    domain.SubjectRef
	Email  string
	Status domain.AccountStatus
}

// CredentialStore verifies passwords and writes password hashes for both
// subject kinds. It never returns or logs hash material.
type CredentialStore struct {
	employees  repository.EmployeeRepository
	customers  repository.CustomerRepository
	bcryptCost int
}

// NewCredentialStore builds the store.
func NewCredentialStore(employees repository.EmployeeRepository, customers repository.CustomerRepository, bcryptCost int) *CredentialStore {
	return &CredentialStore{employees: employees, customers: customers, bcryptCost: bcryptCost}
}

// VerifyByEmail resolves the subject by trying the employee directory first,
// then the customer directory, and verifies the candidate password. Unknown
// email, wrong password, and non-active status all collapse into
// ErrInvalidCredentials; the unknown-email path still burns a hash
// comparison so the two cases cost the same.
//
// Precondition: employee and customer email namespaces do not overlap; the
// first directory hit wins.
func (s *CredentialStore) VerifyByEmail(ctx context.Context, email, password string) (*VerifiedSubject, error) {
	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("employee lookup: %w", err)
	}
	if employee != nil {
		return s.verifyEmployee(employee, password)
	}

	customer, err := s.customers.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("customer lookup: %w", err)
	}
	if customer != nil {
		return s.verifyCustomer(customer, password)
	}

	auth.DummyCompare(password)
	return nil, ErrInvalidCredentials
}

// Verify checks a candidate password for a known subject type.
func (s *CredentialStore) Verify(ctx context.Context, subjectType domain.SubjectType, email, password string) (*VerifiedSubject, error) {
	switch subjectType {
	case domain.SubjectTypeEmployee:
		employee, err := s.employees.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				auth.DummyCompare(password)
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("employee lookup: %w", err)
		}
		return s.verifyEmployee(employee, password)
	case domain.SubjectTypeCustomer:
		customer, err := s.customers.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				auth.DummyCompare(password)
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("customer lookup: %w", err)
		}
		return s.verifyCustomer(customer, password)
	default:
		return nil, fmt.Errorf("unknown subject type %q", subjectType)
	}
}

// ResolveByEmail finds the account behind an email without touching the
// password. Returns nil when neither directory knows the address.
func (s *CredentialStore) ResolveByEmail(ctx context.Context, email string) (*Account, error) {
	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("employee lookup: %w", err)
	}
	if employee != nil {
		return &Account{
			Ref:    domain.SubjectRef{Type: domain.SubjectTypeEmployee, ID: employee.ID},
			Email:  employee.Email,
			Status: employee.Status,
		}, nil
	}

	customer, err := s.customers.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("customer lookup: %w", err)
	}
	if customer != nil {
		return &Account{
			Ref:    domain.SubjectRef{Type: domain.SubjectTypeCustomer, ID: customer.ID},
			Email:  customer.Email,
			Status: customer.Status,
		}, nil
	}

	return nil, nil
}

// SetPassword writes a new hash through the correct directory.
func (s *CredentialStore) SetPassword(ctx context.Context, ref domain.SubjectRef, passwordHash string) error {
	switch ref.Type {
	case domain.SubjectTypeEmployee:
		return s.employees.UpdatePassword(ctx, ref.ID, passwordHash)
	case domain.SubjectTypeCustomer:
		return s.customers.UpdatePassword(ctx, ref.ID, passwordHash)
	default:
		return fmt.Errorf("unknown subject type %q", ref.Type)
	}
}

// ChangePassword verifies the current password before writing the new hash.
func (s *CredentialStore) ChangePassword(ctx context.Context, ref domain.SubjectRef, currentPassword, newPassword string) error {
	var storedHash string

	switch ref.Type {
	case domain.SubjectTypeEmployee:
		employee, err := s.employees.GetByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvalidCredentials
			}
			return fmt.Errorf("employee lookup: %w", err)
		}
		storedHash = employee.PasswordHash
	case domain.SubjectTypeCustomer:
		customer, err := s.customers.GetByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvalidCredentials
			}
			return fmt.Errorf("customer lookup: %w", err)
		}
		storedHash = customer.PasswordHash
	default:
		return fmt.Errorf("unknown subject type %q", ref.Type)
	}

	if err := auth.ComparePassword(storedHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.SetPassword(ctx, ref, hash)
}

// HashPassword hashes a plaintext password with the configured cost.
func (s *CredentialStore) HashPassword(password string) (string, error) {
	return auth.HashPassword(password, s.bcryptCost)
}

func (s *CredentialStore) verifyEmployee(employee *domain.Employee, password string) (*VerifiedSubject, error) {
	if employee.Status != domain.AccountStatusActive {
		auth.DummyCompare(password)
		return nil, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(employee.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	role := employee.Role
	return &VerifiedSubject{
		Ref:  domain.SubjectRef{Type: domain.SubjectTypeEmployee, ID: employee.ID},
		Name: employee.Name,
		Role: &role,
	}, nil
}

func (s *CredentialStore) verifyCustomer(customer *domain.Customer, password string) (*VerifiedSubject, error) {
	if customer.Status != domain.AccountStatusActive {
		auth.DummyCompare(password)
		return nil, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(customer.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &VerifiedSubject{
		Ref:  domain.SubjectRef{Type: domain.SubjectTypeCustomer, ID: customer.ID},
		Name: customer.Name,
	}, nil
}
