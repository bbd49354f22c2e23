package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/config"
	"github.com/spec-kit/hr-service/internal/events"
	"github.com/spec-kit/hr-service/internal/mail"
)

// NotificationService turns domain events into outbound mail and audit log
// lines. Delivery is fire-and-forget: failures are logged, never propagated.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     mail.Sender
	logger     *zap.Logger
	baseURL    string
}

// NewNotificationService creates the service. Sender may be nil, in which
// case notifications degrade to log lines.
func NewNotificationService(dispatcher events.Dispatcher, sender mail.Sender, cfg config.AppConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
		baseURL:    cfg.BaseURL,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventPasswordChanged, n.handlePasswordChanged)
	n.dispatcher.Subscribe(events.EventSessionCreated, n.handleSessionCreated)
	n.dispatcher.Subscribe(events.EventSessionRevoked, n.handleSessionRevoked)
}

func (n *NotificationService) handlePasswordResetRequested(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return nil
	}

	if n.sender == nil {
		n.logger.Info("reset email skipped, no sender configured", zap.String("email", payload.Email))
		return nil
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", n.baseURL, payload.Token)
	body := fmt.Sprintf(
		"<p>A password reset was requested for your account.</p>"+
			"<p><a href=%q>Reset your password</a></p>"+
			"<p>The link expires in 15 minutes. If you did not request this, ignore this email.</p>",
		link,
	)

	if err := n.sender.Send(payload.Email, "Password reset", body); err != nil {
		n.logger.Warn("reset email delivery failed", zap.String("email", payload.Email), zap.Error(err))
	}
	return nil
}

func (n *NotificationService) handlePasswordChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordChangedPayload)
	if !ok {
		return nil
	}

	n.logger.Info("password changed", zap.String("email", payload.Email))

	if n.sender != nil {
		body := "<p>Your password was changed. If this was not you, contact support immediately.</p>"
		if err := n.sender.Send(payload.Email, "Password changed", body); err != nil {
			n.logger.Warn("password-changed email delivery failed", zap.String("email", payload.Email), zap.Error(err))
		}
	}
	return nil
}

func (n *NotificationService) handleSessionCreated(_ context.Context, event events.Event) error {
	n.logger.Info("SessionCreated", zap.Any("actor", event.Actor), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleSessionRevoked(_ context.Context, event events.Event) error {
	n.logger.Info("SessionRevoked", zap.Any("actor", event.Actor), zap.Any("payload", event.Payload))
	return nil
}
