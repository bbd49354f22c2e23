package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hr-service/internal/api/dto"
	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/observability"
	"github.com/spec-kit/hr-service/internal/service"
	apperrors "github.com/spec-kit/hr-service/pkg/util"
)

// PasswordHandler exposes the reset and change-password endpoints.
type PasswordHandler struct {
	resets  *service.PasswordResetService
	creds   *service.CredentialStore
	metrics *observability.Metrics
}

// NewPasswordHandler constructs handler.
func NewPasswordHandler(resets *service.PasswordResetService, creds *service.CredentialStore, metrics *observability.Metrics) *PasswordHandler {
	return &PasswordHandler{resets: resets, creds: creds, metrics: metrics}
}

// RequestReset handles POST /auth/password/reset/request. The response is
// uniform whether or not the account exists; a deactivated account is the
// one disclosed reason.
func (h *PasswordHandler) RequestReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	if err := h.resets.RequestReset(c.UserContext(), req.Email); err != nil {
		if errors.Is(err, service.ErrDeactivatedAccount) {
			return apperrors.NewAccountDeactivated()
		}
		return apperrors.NewInternalError(err)
	}

	h.metrics.RecordAuthEvent("reset_requested")
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"status": "accepted"},
	})
}

// ConfirmReset handles POST /auth/password/reset/confirm.
func (h *PasswordHandler) ConfirmReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("token and new password required", nil)
	}

	if err := h.resets.Complete(c.UserContext(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrResetTokenInvalid) {
			return apperrors.NewResetTokenInvalid()
		}
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_reset"}})
}

// ChangePassword handles POST /auth/password/change.
func (h *PasswordHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}

	ref := domain.SubjectRef{Type: principal.SubjectType, ID: principal.SubjectID}
	if err := h.creds.ChangePassword(c.UserContext(), ref, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewInvalidCredentials()
		}
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_changed"}})
}
