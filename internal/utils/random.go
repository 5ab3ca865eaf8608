package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomKeyCode returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.  It is used to mint access key
// codes when the creator does not supply one.
func RandomKeyCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
