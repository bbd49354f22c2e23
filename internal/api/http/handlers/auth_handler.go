package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hr-service/internal/api/dto"
	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/config"
	"github.com/spec-kit/hr-service/internal/observability"
	"github.com/spec-kit/hr-service/internal/service"
	apperrors "github.com/spec-kit/hr-service/pkg/util"
)

// AuthHandler exposes the session lifecycle endpoints.
type AuthHandler struct {
	sessions *service.SessionService
	cfg      *config.Config
	metrics  *observability.Metrics
}

// NewAuthHandler constructs handler.
func NewAuthHandler(sessions *service.SessionService, cfg *config.Config, metrics *observability.Metrics) *AuthHandler {
	return &AuthHandler{sessions: sessions, cfg: cfg, metrics: metrics}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.sessions.Login(c.UserContext(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Get("User-Agent"),
		IPAddress: c.IP(),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.metrics.RecordAuthEvent("login_rejected")
			return apperrors.NewInvalidCredentials()
		}
		return apperrors.NewInternalError(err)
	}

	h.metrics.RecordAuthEvent("login_ok")
	c.Cookie(RefreshCookie(h.cfg, result.RefreshSecret, h.cfg.Auth.SessionTTL()))

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"subject": subjectResponse(result),
			"auth": dto.AuthResponse{
				AccessToken: result.AccessToken,
				ExpiresAt:   result.AccessExpiresAt,
			},
		},
	})
}

// Refresh handles POST /auth/refresh: exchange the refresh cookie for a new
// access token, rotating the cookie.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	secret := h.refreshSecret(c)
	if secret == "" {
		return apperrors.NewSessionNotFound()
	}

	result, err := h.sessions.ExtendSession(c.UserContext(), secret)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			h.metrics.RecordAuthEvent("session_rotation_denied")
			c.Cookie(ClearRefreshCookie(h.cfg))
			return apperrors.NewSessionNotFound()
		}
		return apperrors.NewInternalError(err)
	}

	h.metrics.RecordAuthEvent("session_rotated")
	c.Cookie(RefreshCookie(h.cfg, result.RefreshSecret, h.cfg.Auth.SessionTTL()))

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"subject": subjectResponse(result),
			"auth": dto.AuthResponse{
				AccessToken: result.AccessToken,
				ExpiresAt:   result.AccessExpiresAt,
			},
		},
	})
}

// Logout handles POST /auth/logout. It always succeeds and always clears the
// cookie, whether or not a matching server-side session existed.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if secret := h.refreshSecret(c); secret != "" {
		h.sessions.Logout(c.UserContext(), secret)
	}

	h.metrics.RecordAuthEvent("logout")
	c.Cookie(ClearRefreshCookie(h.cfg))

	return c.JSON(fiber.Map{"data": fiber.Map{"status": "logged_out"}})
}

// Me handles GET /auth/me, echoing the verified principal.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	resp := dto.SubjectResponse{
		ID:   principal.SubjectID,
		Type: string(principal.SubjectType),
	}
	if principal.Role != nil {
		role := string(*principal.Role)
		resp.Role = &role
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": fiber.Map{"subject": resp}})
}

func (h *AuthHandler) refreshSecret(c *fiber.Ctx) string {
	if secret := c.Cookies(h.cfg.Auth.RefreshCookieName); secret != "" {
		return secret
	}
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}

func subjectResponse(result *service.LoginResult) dto.SubjectResponse {
	resp := dto.SubjectResponse{
		ID:   result.Subject.ID,
		Type: string(result.Subject.Type),
		Name: result.Name,
	}
	if result.Role != nil {
		role := string(*result.Role)
		resp.Role = &role
	}
	return resp
}
