package domain

import "time"

// Session is one refresh-token lineage. The row is keyed by the SHA-256
// digest of the current refresh secret; rotation replaces TokenHash and
// ExpiresAt in place, never inserting a new row.
type Session struct {
	UUID        string
	SubjectID   string
	SubjectType SubjectType
	TokenHash   string
	UserAgent   string
	IPAddress   string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	RevokedAt   *time.Time
}

// Revoked reports whether the session has been terminally revoked.
func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}

// Expired reports whether the session has passed its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Usable reports whether the session may still be rotated.
func (s *Session) Usable(now time.Time) bool {
	return !s.Revoked() && !s.Expired(now)
}
