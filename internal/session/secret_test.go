package session

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)
	assert.Len(t, secret, 64)

	other, err := GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestSecretBytes(t *testing.T) {
	t.Run("hex value is decoded", func(t *testing.T) {
		configured := hex.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
		key, generated, err := SecretBytes(configured)
		require.NoError(t, err)
		assert.False(t, generated)
		assert.Equal(t, []byte("0123456789abcdef0123456789abcdef"), key)
	})

	t.Run("non-hex value is used as is", func(t *testing.T) {
		key, generated, err := SecretBytes("not hex at all")
		require.NoError(t, err)
		assert.False(t, generated)
		assert.Equal(t, []byte("not hex at all"), key)
	})

	t.Run("empty value generates a key", func(t *testing.T) {
		key, generated, err := SecretBytes("")
		require.NoError(t, err)
		assert.True(t, generated)
		assert.Len(t, key, 32)
	})
}
