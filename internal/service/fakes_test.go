package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hr-service/internal/domain"
)

// In-memory repository fakes. The session fake mirrors the store contract:
// reads return revoked/expired rows, Rotate is a compare-and-swap on the
// current token hash.

type fakeEmployeeRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Employee
	lastLogin map[string]int
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{byID: make(map[string]*domain.Employee), lastLogin: make(map[string]int)}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, employee *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *employee
	r.byID[employee.ID] = &copied
	return nil
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	employee, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *employee
	return &copied, nil
}

func (r *fakeEmployeeRepo) GetByEmail(_ context.Context, email string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, employee := range r.byID {
		if employee.Email == email {
			copied := *employee
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEmployeeRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	employee, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	employee.PasswordHash = passwordHash
	return nil
}

func (r *fakeEmployeeRepo) TouchLastLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLogin[id]++
	return nil
}

type fakeCustomerRepo struct {
	mu           sync.Mutex
	byID         map[string]*domain.Customer
	lastActivity map[string]int
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{byID: make(map[string]*domain.Customer), lastActivity: make(map[string]int)}
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *customer
	r.byID[customer.ID] = &copied
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	customer, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *customer
	return &copied, nil
}

func (r *fakeCustomerRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, customer := range r.byID {
		if customer.Email == email {
			copied := *customer
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCustomerRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	customer, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	customer.PasswordHash = passwordHash
	return nil
}

func (r *fakeCustomerRepo) TouchLastActivity(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActivity[id]++
	return nil
}

type fakeSessionRepo struct {
	mu     sync.Mutex
	byHash map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byHash: make(map[string]*domain.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.CreatedAt = time.Now()
	copied := *session
	r.byHash[session.TokenHash] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.byHash[tokenHash]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) Rotate(_ context.Context, oldHash, newHash string, newExpiresAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.byHash[oldHash]
	if !ok || session.RevokedAt != nil {
		return 0, nil
	}
	delete(r.byHash, oldHash)
	session.TokenHash = newHash
	session.ExpiresAt = newExpiresAt
	r.byHash[newHash] = session
	return 1, nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, tokenHash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.byHash[tokenHash]
	if !ok || session.RevokedAt != nil {
		return 0, nil
	}
	now := time.Now()
	session.RevokedAt = &now
	return 1, nil
}

func (r *fakeSessionRepo) PurgeExpired(_ context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for hash, session := range r.byHash {
		if session.ExpiresAt.Before(olderThan) {
			delete(r.byHash, hash)
			purged++
		}
	}
	return purged, nil
}

type fakeResetRepo struct {
	mu      sync.Mutex
	byToken map[string]*domain.PasswordResetRequest
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{byToken: make(map[string]*domain.PasswordResetRequest)}
}

func (r *fakeResetRepo) Replace(_ context.Context, request *domain.PasswordResetRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, existing := range r.byToken {
		if existing.Email == request.Email {
			delete(r.byToken, token)
		}
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	copied := *request
	r.byToken[request.EncryptedToken] = &copied
	return nil
}

func (r *fakeResetRepo) GetByEncryptedToken(_ context.Context, encryptedToken string) (*domain.PasswordResetRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.byToken[encryptedToken]
	if !ok {
		return nil, nil
	}
	copied := *request
	return &copied, nil
}

func (r *fakeResetRepo) Delete(_ context.Context, uuid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, request := range r.byToken {
		if request.UUID == uuid {
			delete(r.byToken, token)
		}
	}
	return nil
}

func (r *fakeResetRepo) backdate(encryptedToken string, age time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if request, ok := r.byToken[encryptedToken]; ok {
		request.CreatedAt = time.Now().Add(-age)
	}
}

func (r *fakeResetRepo) tokenForEmail(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, request := range r.byToken {
		if request.Email == email {
			return token
		}
	}
	return ""
}
