package service

import "errors"

// Authentication-adjacent failures are deliberately coarse: the caller never
// learns which underlying case applied.
var (
	// ErrInvalidCredentials covers unknown identifier and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionNotFound covers missing, expired, revoked, and already-rotated
	// sessions; the client response is always "re-authenticate".
	ErrSessionNotFound = errors.New("session not found")

	// ErrResetTokenInvalid covers missing, expired, and malformed reset tokens.
	ErrResetTokenInvalid = errors.New("reset token invalid")

	// ErrDeactivatedAccount is the one case with a disclosed reason, surfaced
	// only on password-reset requests.
	ErrDeactivatedAccount = errors.New("account deactivated")
)
