package fieldcipher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/config"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := New(config.EncryptionConfig{Secret: "unit-test-secret", Salt: "unit-test-salt"}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNew_RequiresSecretAndSalt(t *testing.T) {
	_, err := New(config.EncryptionConfig{Salt: "s"}, zap.NewNop())
	require.Error(t, err)

	_, err = New(config.EncryptionConfig{Secret: "s"}, zap.NewNop())
	require.Error(t, err)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	for _, plain := range []string{"+1-555-0100", "a", "hello world", strings.Repeat("x", 300)} {
		enc, err := c.Encrypt(plain)
		require.NoError(t, err)
		require.NotEqual(t, plain, enc)
		assert.Contains(t, enc, sep)
		assert.Equal(t, plain, c.Decrypt(enc))
	}
}

func TestEncrypt_EmptyStaysEmpty(t *testing.T) {
	c := newTestCipher(t)
	enc, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", enc)
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	c := newTestCipher(t)
	first, err := c.Encrypt("+1-555-0100")
	require.NoError(t, err)
	second, err := c.Encrypt("+1-555-0100")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, c.Decrypt(first), c.Decrypt(second))
}

func TestDecrypt_LegacyPlaintextPassthrough(t *testing.T) {
	c := newTestCipher(t)
	assert.Equal(t, "+1-555-0100", c.Decrypt("+1-555-0100"))
	assert.Equal(t, "", c.Decrypt(""))
}

func TestDecrypt_MalformedValuesReturnedUnchanged(t *testing.T) {
	c := newTestCipher(t)

	for _, value := range []string{
		"a:b:c",
		"nothex:deadbeef",
		"deadbeef:nothex",
		"dead:beef", // iv too short
	} {
		assert.Equal(t, value, c.Decrypt(value))
	}
}

func TestDecrypt_WrongKeyGarblesWithoutError(t *testing.T) {
	c := newTestCipher(t)
	other, err := New(config.EncryptionConfig{Secret: "another-secret", Salt: "unit-test-salt"}, zap.NewNop())
	require.NoError(t, err)

	enc, err := c.Encrypt("+1-555-0100")
	require.NoError(t, err)

	// CTR has no authentication: a wrong key yields garbage, not an error.
	assert.NotEqual(t, "+1-555-0100", other.Decrypt(enc))
}

func TestPtrHelpers(t *testing.T) {
	c := newTestCipher(t)

	enc, err := c.EncryptPtr(nil)
	require.NoError(t, err)
	assert.Nil(t, enc)

	empty := ""
	enc, err = c.EncryptPtr(&empty)
	require.NoError(t, err)
	assert.Nil(t, enc)

	phone := "+1-555-0100"
	enc, err = c.EncryptPtr(&phone)
	require.NoError(t, err)
	require.NotNil(t, enc)

	dec := c.DecryptPtr(enc)
	require.NotNil(t, dec)
	assert.Equal(t, phone, *dec)

	assert.Nil(t, c.DecryptPtr(nil))
}
