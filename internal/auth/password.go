package auth

import "golang.org/x/crypto/bcrypt"

// dummyHash is a bcrypt digest of a throwaway value. Comparing against it
// when no account matches keeps the work factor of "no such subject" and
// "wrong password" indistinguishable.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("hr-service-dummy-subject"), bcrypt.DefaultCost)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// DummyCompare burns a bcrypt comparison against a fixed hash. Always fails.
func DummyCompare(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
