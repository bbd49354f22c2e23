package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/hr-service/internal/domain"
)

const opaqueSecretBytes = 32

// TokenManager issues and validates signed access tokens and mints the
// opaque refresh secrets whose digests key the session store.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Claims describes the access-token payload. Tokens are self-contained:
// subject id, subject-type discriminator, and role are validated purely by
// signature and expiry, never looked up server-side.
type Claims struct {
	SubjectID string               `json:"sub"`
	Subject   domain.SubjectType   `json:"subject_type"`
	Role      *domain.EmployeeRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IssueAccessToken builds and signs a short-lived JWT for the subject.
func (tm *TokenManager) IssueAccessToken(subjectID string, subject domain.SubjectType, role *domain.EmployeeRole) (string, time.Time, error) {
	expiresAt := time.Now().Add(tm.ttl)
	claims := &Claims{
		SubjectID: subjectID,
		Subject:   subject,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates signature and expiry and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// NewOpaqueSecret mints a cryptographically random opaque secret, used for
// refresh tokens and password-reset tokens. The raw value travels only in
// the cookie or email link and the issuing response, never in storage.
func NewOpaqueSecret() (string, error) {
	b := make([]byte, opaqueSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashSecret returns the one-way digest under which a refresh secret is
// persisted.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
