package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/events"
	"github.com/spec-kit/hr-service/internal/presence"
	"github.com/spec-kit/hr-service/internal/repository"
)

// LoginInput carries the credentials and client metadata for a login attempt.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// TokenPair is the issued credential set: a signed access token and the raw
// refresh secret destined for the cookie.
type TokenPair struct {
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshSecret   string
}

// LoginResult bundles the token pair with the verified subject.
type LoginResult struct {
	TokenPair
	Subject domain.SubjectRef
	Name    string
	Role    *domain.EmployeeRole
	Session *domain.Session
}

// SessionService orchestrates login, rotation, and revocation. Each session
// moves ACTIVE -> (rotated in place) -> REVOKED, or lazily to EXPIRED at
// read time; revocation is terminal.
type SessionService struct {
	creds      *CredentialStore
	sessions   repository.SessionRepository
	employees  repository.EmployeeRepository
	customers  repository.CustomerRepository
	presence   *presence.Store
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	sessionTTL time.Duration
}

// SessionDependencies encapsulates collaborator requirements.
type SessionDependencies struct {
	Credentials *CredentialStore
	SessionRepo repository.SessionRepository
	Employees   repository.EmployeeRepository
	Customers   repository.CustomerRepository
	Presence    *presence.Store
	Tokens      *auth.TokenManager
	Dispatcher  events.Dispatcher
}

// NewSessionService builds the service.
func NewSessionService(deps SessionDependencies, sessionTTL time.Duration, logger *zap.Logger) *SessionService {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &SessionService{
		creds:      deps.Credentials,
		sessions:   deps.SessionRepo,
		employees:  deps.Employees,
		customers:  deps.Customers,
		presence:   deps.Presence,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		sessionTTL: sessionTTL,
	}
}

// Login verifies credentials, creates a session keyed by the digest of a
// fresh refresh secret, and issues an access token. Last-login and presence
// side effects are best-effort and never fail the response.
func (s *SessionService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	verified, err := s.creds.VerifyByEmail(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.logger.Info("login rejected", zap.String("email", input.Email))
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("login verification failed", zap.String("email", input.Email), zap.Error(err))
		return nil, err
	}

	accessToken, accessExp, err := s.tokens.IssueAccessToken(verified.Ref.ID, verified.Ref.Type, verified.Role)
	if err != nil {
		s.logger.Error("access token issuance failed", zap.Error(err))
		return nil, err
	}

	refreshSecret, err := auth.NewOpaqueSecret()
	if err != nil {
		s.logger.Error("refresh secret generation failed", zap.Error(err))
		return nil, err
	}

	session := &domain.Session{
		UUID:        uuid.NewString(),
		SubjectID:   verified.Ref.ID,
		SubjectType: verified.Ref.Type,
		TokenHash:   auth.HashSecret(refreshSecret),
		UserAgent:   input.UserAgent,
		IPAddress:   input.IPAddress,
		ExpiresAt:   time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		s.logger.Error("session create failed", zap.Error(err))
		return nil, err
	}

	s.loginSideEffects(ctx, verified.Ref)
	s.publish(ctx, events.EventSessionCreated, verified.Ref, events.SessionCreatedPayload{
		SessionUUID: session.UUID,
		UserAgent:   input.UserAgent,
		IPAddress:   input.IPAddress,
	})

	s.logger.Info("login succeeded",
		zap.String("subject_type", string(verified.Ref.Type)),
		zap.String("subject_id", verified.Ref.ID),
		zap.String("session_uuid", session.UUID))

	return &LoginResult{
		TokenPair: TokenPair{
			AccessToken:     accessToken,
			AccessExpiresAt: accessExp,
			RefreshSecret:   refreshSecret,
		},
		Subject: verified.Ref,
		Name:    verified.Name,
		Role:    verified.Role,
		Session: session,
	}, nil
}

// ExtendSession exchanges a valid refresh secret for a fresh token pair,
// rotating the session row atomically. Missing, revoked, expired, and
// already-rotated secrets all yield ErrSessionNotFound: losing the
// compare-and-swap means someone else rotated this lineage first and the
// caller must re-authenticate.
func (s *SessionService) ExtendSession(ctx context.Context, refreshSecret string) (*LoginResult, error) {
	if refreshSecret == "" {
		return nil, ErrSessionNotFound
	}

	oldHash := auth.HashSecret(refreshSecret)
	session, err := s.sessions.GetByTokenHash(ctx, oldHash)
	if err != nil {
		s.logger.Error("session lookup failed", zap.String("token_hash_preview", preview(oldHash)), zap.Error(err))
		return nil, err
	}
	if session == nil || !session.Usable(time.Now()) {
		return nil, ErrSessionNotFound
	}

	newSecret, err := auth.NewOpaqueSecret()
	if err != nil {
		s.logger.Error("refresh secret generation failed", zap.Error(err))
		return nil, err
	}
	newHash := auth.HashSecret(newSecret)
	newExpiry := time.Now().Add(s.sessionTTL)

	rows, err := s.sessions.Rotate(ctx, oldHash, newHash, newExpiry)
	if err != nil {
		s.logger.Error("session rotation failed", zap.String("session_uuid", session.UUID), zap.Error(err))
		return nil, err
	}
	if rows == 0 {
		s.logger.Info("session rotation lost race", zap.String("session_uuid", session.UUID))
		return nil, ErrSessionNotFound
	}

	ref := domain.SubjectRef{Type: session.SubjectType, ID: session.SubjectID}
	name, role, err := s.subjectProfile(ctx, ref)
	if err != nil {
		return nil, err
	}

	accessToken, accessExp, err := s.tokens.IssueAccessToken(ref.ID, ref.Type, role)
	if err != nil {
		s.logger.Error("access token issuance failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("session rotated",
		zap.String("session_uuid", session.UUID),
		zap.String("subject_type", string(ref.Type)))

	return &LoginResult{
		TokenPair: TokenPair{
			AccessToken:     accessToken,
			AccessExpiresAt: accessExp,
			RefreshSecret:   newSecret,
		},
		Subject: ref,
		Name:    name,
		Role:    role,
		Session: session,
	}, nil
}

// Logout revokes the session behind the presented secret if one exists.
// It is best-effort and idempotent: the user-visible contract is "you are
// logged out", so store failures and unknown secrets never surface.
func (s *SessionService) Logout(ctx context.Context, refreshSecret string) {
	if refreshSecret == "" {
		return
	}

	hash := auth.HashSecret(refreshSecret)
	session, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		s.logger.Warn("logout session lookup failed", zap.String("token_hash_preview", preview(hash)), zap.Error(err))
		return
	}
	if session == nil {
		return
	}

	if !session.Revoked() {
		if _, err := s.sessions.Revoke(ctx, hash); err != nil {
			s.logger.Warn("session revoke failed", zap.String("session_uuid", session.UUID), zap.Error(err))
			return
		}
	}

	ref := domain.SubjectRef{Type: session.SubjectType, ID: session.SubjectID}
	s.logoutSideEffects(ctx, ref)
	s.publish(ctx, events.EventSessionRevoked, ref, events.SessionRevokedPayload{SessionUUID: session.UUID})

	s.logger.Info("logout", zap.String("session_uuid", session.UUID))
}

func (s *SessionService) loginSideEffects(ctx context.Context, ref domain.SubjectRef) {
	switch ref.Type {
	case domain.SubjectTypeEmployee:
		if err := s.employees.TouchLastLogin(ctx, ref.ID); err != nil {
			s.logger.Warn("last-login update failed", zap.String("employee_id", ref.ID), zap.Error(err))
		}
		if err := s.presence.SetOnline(ctx, ref.ID); err != nil {
			s.logger.Warn("presence online update failed", zap.String("employee_id", ref.ID), zap.Error(err))
		}
	case domain.SubjectTypeCustomer:
		if err := s.customers.TouchLastActivity(ctx, ref.ID); err != nil {
			s.logger.Warn("last-activity update failed", zap.String("customer_id", ref.ID), zap.Error(err))
		}
	}
}

func (s *SessionService) logoutSideEffects(ctx context.Context, ref domain.SubjectRef) {
	switch ref.Type {
	case domain.SubjectTypeEmployee:
		if err := s.presence.SetOffline(ctx, ref.ID); err != nil {
			s.logger.Warn("presence offline update failed", zap.String("employee_id", ref.ID), zap.Error(err))
		}
	case domain.SubjectTypeCustomer:
		if err := s.customers.TouchLastActivity(ctx, ref.ID); err != nil {
			s.logger.Warn("last-activity update failed", zap.String("customer_id", ref.ID), zap.Error(err))
		}
	}
}

// subjectProfile reloads name and role so rotated access tokens reflect the
// current directory state rather than the login-time snapshot.
func (s *SessionService) subjectProfile(ctx context.Context, ref domain.SubjectRef) (string, *domain.EmployeeRole, error) {
	switch ref.Type {
	case domain.SubjectTypeEmployee:
		employee, err := s.employees.GetByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return "", nil, ErrSessionNotFound
			}
			s.logger.Error("employee lookup failed", zap.String("employee_id", ref.ID), zap.Error(err))
			return "", nil, err
		}
		role := employee.Role
		return employee.Name, &role, nil
	case domain.SubjectTypeCustomer:
		customer, err := s.customers.GetByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return "", nil, ErrSessionNotFound
			}
			s.logger.Error("customer lookup failed", zap.String("customer_id", ref.ID), zap.Error(err))
			return "", nil, err
		}
		return customer.Name, nil, nil
	default:
		return "", nil, fmt.Errorf("unknown subject type %q", ref.Type)
	}
}

func (s *SessionService) publish(ctx context.Context, eventType events.EventType, ref domain.SubjectRef, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     &events.Actor{Type: ref.Type, SubjectID: ref.ID},
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// preview truncates token-hash material for log fields.
func preview(value string) string {
	const n = 8
	if len(value) <= n {
		return value
	}
	return value[:n] + "..."
}
