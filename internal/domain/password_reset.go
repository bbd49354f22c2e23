package domain

import "time"

// PasswordResetRequest is a single-use, time-boxed reset token. The token is
// stored field-encrypted; at most one active row exists per email (a new
// request deletes prior ones) and the row is deleted on consumption.
type PasswordResetRequest struct {
	UUID           string
	Email          string
	EncryptedToken string
	CreatedAt      time.Time
}

// Expired reports whether the request is older than the allowed ttl.
func (r *PasswordResetRequest) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.CreatedAt) > ttl
}
