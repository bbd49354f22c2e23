package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/events"
	"github.com/spec-kit/hr-service/internal/presence"
)

type sessionFixture struct {
	svc       *SessionService
	creds     *CredentialStore
	employees *fakeEmployeeRepo
	customers *fakeCustomerRepo
	sessions  *fakeSessionRepo
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	employees := newFakeEmployeeRepo()
	customers := newFakeCustomerRepo()
	sessions := newFakeSessionRepo()
	creds := NewCredentialStore(employees, customers, bcrypt.MinCost)
	logger := zap.NewNop()

	svc := NewSessionService(SessionDependencies{
		Credentials: creds,
		SessionRepo: sessions,
		Employees:   employees,
		Customers:   customers,
		Presence:    presence.NewStore(nil),
		Tokens:      auth.NewTokenManager("test-secret", 15*time.Minute),
		Dispatcher:  events.NewInMemoryDispatcher(logger),
	}, 7*24*time.Hour, logger)

	return &sessionFixture{svc: svc, creds: creds, employees: employees, customers: customers, sessions: sessions}
}

func (f *sessionFixture) seedEmployee(t *testing.T, email, password string) *domain.Employee {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	employee := &domain.Employee{
		ID:           "emp-" + email,
		Name:         "Test Employee",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.EmployeeRoleStaff,
		Status:       domain.AccountStatusActive,
	}
	require.NoError(t, f.employees.Create(context.Background(), employee))
	return employee
}

func (f *sessionFixture) seedCustomer(t *testing.T, email, password string) *domain.Customer {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	customer := &domain.Customer{
		ID:           "cus-" + email,
		Name:         "Test Customer",
		Email:        email,
		PasswordHash: hash,
		Status:       domain.AccountStatusActive,
	}
	require.NoError(t, f.customers.Create(context.Background(), customer))
	return customer
}

func TestLogin_EmployeeSucceeds(t *testing.T) {
	f := newSessionFixture(t)
	employee := f.seedEmployee(t, "official@co.com", "Secret123!")

	result, err := f.svc.Login(context.Background(), LoginInput{
		Email:     "official@co.com",
		Password:  "Secret123!",
		UserAgent: "go-test",
		IPAddress: "127.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeEmployee, result.Subject.Type)
	assert.Equal(t, employee.ID, result.Subject.ID)
	require.NotNil(t, result.Role)
	assert.Equal(t, domain.EmployeeRoleStaff, *result.Role)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshSecret)

	stored, err := f.sessions.GetByTokenHash(context.Background(), auth.HashSecret(result.RefreshSecret))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "go-test", stored.UserAgent)
	assert.Equal(t, "127.0.0.1", stored.IPAddress)
	assert.Equal(t, 1, f.employees.lastLogin[employee.ID])
}

func TestLogin_CustomerSucceeds(t *testing.T) {
	f := newSessionFixture(t)
	customer := f.seedCustomer(t, "client@corp.com", "Hunter2!!")

	result, err := f.svc.Login(context.Background(), LoginInput{Email: "client@corp.com", Password: "Hunter2!!"})
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeCustomer, result.Subject.Type)
	assert.Nil(t, result.Role)
	assert.Equal(t, 1, f.customers.lastActivity[customer.ID])
}

func TestLogin_UniformRejection(t *testing.T) {
	f := newSessionFixture(t)
	f.seedEmployee(t, "official@co.com", "Secret123!")

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "ghost@nowhere.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), LoginInput{Email: "official@co.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_DeactivatedEmployeeRejected(t *testing.T) {
	f := newSessionFixture(t)
	employee := f.seedEmployee(t, "former@co.com", "Secret123!")
	employee.Status = domain.AccountStatusDeactivated
	require.NoError(t, f.employees.Create(context.Background(), employee))

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "former@co.com", Password: "Secret123!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestExtendSession_RotatesExactlyOnce(t *testing.T) {
	f := newSessionFixture(t)
	f.seedEmployee(t, "official@co.com", "Secret123!")

	login, err := f.svc.Login(context.Background(), LoginInput{Email: "official@co.com", Password: "Secret123!"})
	require.NoError(t, err)
	r1 := login.RefreshSecret

	first, err := f.svc.ExtendSession(context.Background(), r1)
	require.NoError(t, err)
	r2 := first.RefreshSecret
	assert.NotEqual(t, r1, r2)
	assert.NotEmpty(t, first.AccessToken)

	// The rotated-away secret is dead.
	_, err = f.svc.ExtendSession(context.Background(), r1)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// The successor still works.
	second, err := f.svc.ExtendSession(context.Background(), r2)
	require.NoError(t, err)
	assert.NotEqual(t, r2, second.RefreshSecret)
}

func TestExtendSession_ConcurrentRotationSingleWinner(t *testing.T) {
	f := newSessionFixture(t)
	f.seedEmployee(t, "official@co.com", "Secret123!")

	login, err := f.svc.Login(context.Background(), LoginInput{Email: "official@co.com", Password: "Secret123!"})
	require.NoError(t, err)

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.ExtendSession(context.Background(), login.RefreshSecret)
		}(i)
	}
	wg.Wait()

	var succeeded, denied int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case err == ErrSessionNotFound:
			denied++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, denied)
}

func TestExtendSession_UnknownExpiredRevoked(t *testing.T) {
	f := newSessionFixture(t)
	f.seedEmployee(t, "official@co.com", "Secret123!")
	ctx := context.Background()

	_, err := f.svc.ExtendSession(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.ExtendSession(ctx, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Expiry is checked at read time.
	expired := &domain.Session{
		UUID:        "sess-expired",
		SubjectID:   "emp-official@co.com",
		SubjectType: domain.SubjectTypeEmployee,
		TokenHash:   auth.HashSecret("expired-secret"),
		ExpiresAt:   time.Now().Add(-time.Minute),
	}
	require.NoError(t, f.sessions.Create(ctx, expired))
	_, err = f.svc.ExtendSession(ctx, "expired-secret")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Revocation is terminal.
	login, err := f.svc.Login(ctx, LoginInput{Email: "official@co.com", Password: "Secret123!"})
	require.NoError(t, err)
	f.svc.Logout(ctx, login.RefreshSecret)
	_, err = f.svc.ExtendSession(ctx, login.RefreshSecret)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLogout_Idempotent(t *testing.T) {
	f := newSessionFixture(t)
	f.seedEmployee(t, "official@co.com", "Secret123!")
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginInput{Email: "official@co.com", Password: "Secret123!"})
	require.NoError(t, err)

	f.svc.Logout(ctx, login.RefreshSecret)
	session, err := f.sessions.GetByTokenHash(ctx, auth.HashSecret(login.RefreshSecret))
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.True(t, session.Revoked())

	// Second logout with the now-revoked secret is a no-op, as is a logout
	// with a secret that never existed.
	f.svc.Logout(ctx, login.RefreshSecret)
	f.svc.Logout(ctx, "never-issued")
	f.svc.Logout(ctx, "")
}

func TestLogout_CustomerTouchesActivity(t *testing.T) {
	f := newSessionFixture(t)
	customer := f.seedCustomer(t, "client@corp.com", "Hunter2!!")
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginInput{Email: "client@corp.com", Password: "Hunter2!!"})
	require.NoError(t, err)
	f.svc.Logout(ctx, login.RefreshSecret)

	// Once on login, once on logout.
	assert.Equal(t, 2, f.customers.lastActivity[customer.ID])
}
