package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/sweetshop-api/internal/infrastructure/security"
)

func TestBcryptHasher_HashYMatches(t *testing.T) {
	h := security.NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash, "el hash nunca debe ser el texto plano")

	assert.True(t, h.Matches("s3cret-pass", hash))
	assert.False(t, h.Matches("otra-cosa", hash))
	assert.False(t, h.Matches("s3cret-pass", "no-es-un-hash"))
}

func TestBcryptHasher_SaltDistinto(t *testing.T) {
	h := security.NewBcryptHasher(bcrypt.MinCost)
	a, err := h.Hash("igual")
	require.NoError(t, err)
	b, err := h.Hash("igual")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "cada hash lleva su propio salt")
}
