package utils

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewID returns a random identifier for push channels and other
// server-side handles.
func NewID() string {
	return uuid.NewString()
}

// NewToken returns a cryptographically random alphanumeric string of length n.
func NewToken(n int) (string, error) {
	limit := big.NewInt(int64(len(alphanumeric)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = alphanumeric[idx.Int64()]
	}
	return string(buf), nil
}

// Mask hides all but the first two characters of a secret for logging.
func Mask(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 2 {
		return token + "******"
	}
	return token[:2] + "******"
}
