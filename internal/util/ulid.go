package util

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string. ulid.Make draws from a process-wide
// monotonic entropy source and is safe for concurrent use.
func NewULID() string {
	return ulid.Make().String()
}

// IsULID reports whether s parses as a ULID. Handlers use it to reject
// malformed path ids before they reach the store.
func IsULID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// ContentHash returns the hex SHA-256 of text. It keys cached evaluations.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
