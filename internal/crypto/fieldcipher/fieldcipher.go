package fieldcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"

	"github.com/spec-kit/hr-service/internal/config"
)

const (
	keyLen = 32 // AES-256
	ivLen  = aes.BlockSize
	sep    = ":" // hex(iv):hex(ciphertext)

	previewLen = 12
)

// Cipher performs symmetric encryption of individual PII values at rest.
// Stored values are hex(iv):hex(ciphertext); values written before encryption
// was introduced are plain text, and Decrypt passes them through unchanged.
type Cipher struct {
	key    []byte
	logger *zap.Logger
}

// New derives the AES-256 key once from the configured secret and fixed salt
// via argon2id and returns a ready cipher.
func New(cfg config.EncryptionConfig, logger *zap.Logger) (*Cipher, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("fieldcipher: encryption secret not configured")
	}
	if cfg.Salt == "" {
		return nil, fmt.Errorf("fieldcipher: encryption salt not configured")
	}
	key := argon2.IDKey([]byte(cfg.Secret), []byte(cfg.Salt), 3, 64*1024, 1, keyLen)
	return &Cipher{key: key, logger: logger}, nil
}

// Encrypt returns hex(iv):hex(ciphertext) for the given plaintext. Empty
// input returns empty output; a fresh random IV is drawn per call so equal
// plaintexts never produce equal ciphertexts.
func (c *Cipher) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("fieldcipher: %w", err)
	}

	iv := make([]byte, ivLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("fieldcipher: iv: %w", err)
	}

	ct := make([]byte, len(plain))
	cipher.NewCTR(block, iv).XORKeyStream(ct, []byte(plain))

	return hex.EncodeToString(iv) + sep + hex.EncodeToString(ct), nil
}

// Decrypt reverses Encrypt. Values without the separator are legacy plain
// text and are returned unchanged. Any malformed or undecryptable value is
// also returned unchanged after logging a security event; callers prefer a
// possibly-stale stored value over a hard failure on the read path.
func (c *Cipher) Decrypt(value string) string {
	if value == "" || !strings.Contains(value, sep) {
		return value
	}

	parts := strings.Split(value, sep)
	if len(parts) != 2 {
		c.warn("unexpected encrypted field shape", value)
		return value
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivLen {
		c.warn("invalid field iv", value)
		return value
	}
	ct, err := hex.DecodeString(parts[1])
	if err != nil {
		c.warn("invalid field ciphertext", value)
		return value
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		c.warn("field cipher init failed", value)
		return value
	}

	plain := make([]byte, len(ct))
	cipher.NewCTR(block, iv).XORKeyStream(plain, ct)
	return string(plain)
}

// EncryptPtr encrypts an optional field, passing nil through.
func (c *Cipher) EncryptPtr(plain *string) (*string, error) {
	if plain == nil || *plain == "" {
		return nil, nil
	}
	enc, err := c.Encrypt(*plain)
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

// DecryptPtr decrypts an optional field, passing nil through.
func (c *Cipher) DecryptPtr(value *string) *string {
	if value == nil {
		return nil
	}
	dec := c.Decrypt(*value)
	return &dec
}

func (c *Cipher) warn(msg, value string) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, zap.String("value_preview", preview(value)))
}

func preview(value string) string {
	if len(value) <= previewLen {
		return value
	}
	return value[:previewLen] + "..."
}
