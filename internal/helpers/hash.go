package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeText collapses whitespace and lowercases content so that re-extracted
// copies of the same document hash identically.
func NormalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ContentHash computes a SHA-256 hex digest of the normalised content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(NormalizeText(content)))
	return hex.EncodeToString(sum[:])
}
