package util

import (
	"crypto/rand"
	"encoding/base64"
)

// CryptoRandomBytes generates cryptographically secure random bytes
func CryptoRandomBytes(length int64) ([]byte, error) {
	buf := make([]byte, length)
	_, err := rand.Read(buf)
	return buf, err
}

// RandomState returns a URL-safe random string built from length random bytes,
// suitable for the OAuth state parameter.
func RandomState(length int) (string, error) {
	b, err := CryptoRandomBytes(int64(length))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
