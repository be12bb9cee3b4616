package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey_BasicProperties(t *testing.T) {
	key, err := GenerateKey()

	assert.NoError(t, err)
	assert.Len(t, key, 8, "Public key should be 8 characters long")
	assert.Regexp(t, "^[A-Za-z0-9_-]+$", key, "Public key should be URL-safe")
}

func TestGenerateSecret_LongerThanKey(t *testing.T) {
	key, err := GenerateKey()
	assert.NoError(t, err)

	secret, err := GenerateSecret()
	assert.NoError(t, err)

	assert.Len(t, secret, 22)
	assert.Greater(t, len(secret), len(key))
	assert.Regexp(t, "^[A-Za-z0-9_-]+$", secret)
}

func TestGenerateKey_Uniqueness(t *testing.T) {
	keys := make(map[string]bool, 1000)

	for i := 0; i < 1000; i++ {
		key, err := GenerateKey()
		assert.NoError(t, err)

		assert.False(t, keys[key], "Duplicate key generated: %s", key)
		keys[key] = true
	}

	assert.Equal(t, 1000, len(keys), "Should generate 1000 unique keys")
}

func TestToken_Length(t *testing.T) {
	tests := []struct {
		bytes int
		want  int
	}{
		{5, 7},
		{6, 8},
		{8, 11},
		{16, 22},
	}

	for _, tt := range tests {
		token, err := Token(tt.bytes)
		assert.NoError(t, err)
		assert.Len(t, token, tt.want)
	}
}
