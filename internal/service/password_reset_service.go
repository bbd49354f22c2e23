package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/crypto/fieldcipher"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/events"
	"github.com/spec-kit/hr-service/internal/repository"
)

// PasswordResetService issues and consumes single-use, time-boxed reset
// tokens. The flow is session-independent: request -> validate -> complete,
// each stage taking only the token it needs.
type PasswordResetService struct {
	creds      *CredentialStore
	resets     repository.PasswordResetRepository
	cipher     *fieldcipher.Cipher
	dispatcher events.Dispatcher
	logger     *zap.Logger
	ttl        time.Duration
}

// NewPasswordResetService builds the service.
func NewPasswordResetService(creds *CredentialStore, resets repository.PasswordResetRepository, cipher *fieldcipher.Cipher, dispatcher events.Dispatcher, ttl time.Duration, logger *zap.Logger) *PasswordResetService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &PasswordResetService{
		creds:      creds,
		resets:     resets,
		cipher:     cipher,
		dispatcher: dispatcher,
		logger:     logger,
		ttl:        ttl,
	}
}

// RequestReset issues a reset token for the email. Unknown addresses return
// nil so the caller's response is indistinguishable from a real account; a
// deactivated account is the one case with a disclosed reason. A new request
// supersedes any prior one for the same email.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	account, err := s.creds.ResolveByEmail(ctx, email)
	if err != nil {
		s.logger.Error("reset request resolution failed", zap.String("email", email), zap.Error(err))
		return err
	}
	if account == nil {
		s.logger.Info("reset requested for unknown email", zap.String("email", email))
		return nil
	}
	if account.Status == domain.AccountStatusDeactivated {
		return ErrDeactivatedAccount
	}

	secret, err := auth.NewOpaqueSecret()
	if err != nil {
		s.logger.Error("reset secret generation failed", zap.Error(err))
		return err
	}
	encryptedToken, err := s.cipher.Encrypt(secret)
	if err != nil {
		s.logger.Error("reset token encryption failed", zap.Error(err))
		return err
	}

	request := &domain.PasswordResetRequest{
		UUID:           uuid.NewString(),
		Email:          account.Email,
		EncryptedToken: encryptedToken,
	}
	if err := s.resets.Replace(ctx, request); err != nil {
		s.logger.Error("reset request persist failed", zap.String("email", email), zap.Error(err))
		return err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventPasswordResetRequested,
			Timestamp: time.Now(),
			Payload: events.PasswordResetRequestedPayload{
				Email: account.Email,
				Token: encryptedToken,
			},
		})
	}

	s.logger.Info("reset requested",
		zap.String("subject_type", string(account.Ref.Type)),
		zap.String("subject_id", account.Ref.ID))
	return nil
}

// Validate resolves a presented token to its email. Expired tokens are
// indistinguishable from absent ones.
func (s *PasswordResetService) Validate(ctx context.Context, presentedToken string) (string, error) {
	request, err := s.lookup(ctx, presentedToken)
	if err != nil {
		return "", err
	}
	return request.Email, nil
}

// Complete consumes the token: re-validate, write the new password hash
// through the credential store, and delete the request (single use).
func (s *PasswordResetService) Complete(ctx context.Context, presentedToken, newPassword string) error {
	request, err := s.lookup(ctx, presentedToken)
	if err != nil {
		return err
	}

	account, err := s.creds.ResolveByEmail(ctx, request.Email)
	if err != nil {
		s.logger.Error("reset completion resolution failed", zap.String("email", request.Email), zap.Error(err))
		return err
	}
	if account == nil {
		return ErrResetTokenInvalid
	}

	hash, err := s.creds.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.creds.SetPassword(ctx, account.Ref, hash); err != nil {
		s.logger.Error("reset password write failed", zap.String("subject_id", account.Ref.ID), zap.Error(err))
		return err
	}

	if err := s.resets.Delete(ctx, request.UUID); err != nil {
		s.logger.Error("reset request delete failed", zap.String("uuid", request.UUID), zap.Error(err))
		return err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventPasswordChanged,
			Actor:     &events.Actor{Type: account.Ref.Type, SubjectID: account.Ref.ID},
			Timestamp: time.Now(),
			Payload:   events.PasswordChangedPayload{Email: account.Email},
		})
	}

	s.logger.Info("password reset completed",
		zap.String("subject_type", string(account.Ref.Type)),
		zap.String("subject_id", account.Ref.ID))
	return nil
}

func (s *PasswordResetService) lookup(ctx context.Context, presentedToken string) (*domain.PasswordResetRequest, error) {
	if presentedToken == "" {
		return nil, ErrResetTokenInvalid
	}

	request, err := s.resets.GetByEncryptedToken(ctx, presentedToken)
	if err != nil {
		s.logger.Error("reset token lookup failed", zap.Error(err))
		return nil, err
	}
	if request == nil || request.Expired(time.Now(), s.ttl) {
		return nil, ErrResetTokenInvalid
	}
	return request, nil
}
