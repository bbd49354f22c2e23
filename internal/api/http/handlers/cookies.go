package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hr-service/internal/config"
)

// RefreshCookie builds the httpOnly carrier for the raw refresh secret.
// Development serves plain HTTP on localhost, so Lax + insecure; production
// must support cross-site delivery over HTTPS, so None + Secure.
func RefreshCookie(cfg *config.Config, value string, ttl time.Duration) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     cfg.Auth.RefreshCookieName,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Auth.CookieDomain,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
	}
	if cfg.App.IsProduction() {
		cookie.Secure = true
		cookie.SameSite = fiber.CookieSameSiteNoneMode
	} else {
		cookie.Secure = false
		cookie.SameSite = fiber.CookieSameSiteLaxMode
	}
	return cookie
}

// ClearRefreshCookie builds the deletion cookie sent on logout regardless of
// whether a server-side session existed.
func ClearRefreshCookie(cfg *config.Config) *fiber.Cookie {
	cookie := RefreshCookie(cfg, "", 0)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	return cookie
}
