package generator

import (
	"crypto/rand"
	"encoding/base64"
)

const (
	// KeyBytes yields an 8 character public key (48 bits).
	KeyBytes = 6
	// SecretBytes yields a 22 character secret key (128 bits).
	SecretBytes = 16
)

// Token returns n random bytes encoded as unpadded base64url.
func Token(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

func GenerateKey() (string, error) {
	return Token(KeyBytes)
}

func GenerateSecret() (string, error) {
	return Token(SecretBytes)
}
