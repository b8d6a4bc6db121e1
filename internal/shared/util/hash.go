package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortHash returns the first 16 hex characters of the SHA-256 of s. It
// identifies a session in logs without revealing the cookie value.
func ShortHash(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
