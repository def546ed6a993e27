package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	digest, err := h.Hash("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", digest, "digest must not be the plaintext")
	assert.True(t, strings.HasPrefix(digest, "$2"), "digest should be a bcrypt hash")

	ok, err := h.Verify(digest, "pw123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(digest, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_SamePasswordDifferentDigests(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "bcrypt salts each digest")
}

func TestPasswordHasher_TooLong(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}

func TestPasswordHasher_BrokenDigest(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	ok, err := h.Verify("not-a-bcrypt-hash", "pw")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewPasswordHasher_CostOutOfRange_UsesDefault(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).Cost())
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(bcrypt.MaxCost+1).Cost())
	assert.Equal(t, 12, NewPasswordHasher(12).Cost())
}
