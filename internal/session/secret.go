package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// secretLength is the CSRF auth key size gorilla/csrf expects.
const secretLength = 32

// GenerateSecret creates a random hex-encoded 32-byte secret.
func GenerateSecret() (string, error) {
	bytes := make([]byte, secretLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// SecretBytes turns a configured secret into key bytes. Hex values are
// decoded, anything else is used as raw bytes. An empty value yields a fresh
// random key and generated is true.
func SecretBytes(configured string) (key []byte, generated bool, err error) {
	if configured != "" {
		if decoded, err := hex.DecodeString(configured); err == nil {
			return decoded, false, nil
		}
		return []byte(configured), false, nil
	}

	secret, err := GenerateSecret()
	if err != nil {
		return nil, false, err
	}
	key, _ = hex.DecodeString(secret)
	return key, true, nil
}
