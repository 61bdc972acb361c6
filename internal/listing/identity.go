package listing

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// idSeparator keeps "1 Main, X" / "1, MainX" style inputs from colliding.
const idSeparator = "|"

// Identity derives the deduplication key for a listing from its normalized
// location fields. The hash is content addressing, not security: identical
// inputs always yield identical IDs, and the source is deliberately excluded
// so the same physical address found by two sites collapses onto one row.
func Identity(address, city, postalCode string) string {
	joined := strings.Join([]string{address, city, postalCode}, idSeparator)
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}
