package dto

import "time"

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body fallback for clients that cannot send the
// refresh cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse carries the issued access token.
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// SubjectResponse echoes the authenticated subject.
type SubjectResponse struct {
	ID   string  `json:"id"`
	Type string  `json:"type"`
	Name string  `json:"name,omitempty"`
	Role *string `json:"role,omitempty"`
}

// PasswordResetRequest asks for a reset link.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest consumes a reset token.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest changes a password with the old one verified.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
