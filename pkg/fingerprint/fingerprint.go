// Package fingerprint derives the deterministic content hash used for
// communication deduplication.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Of returns the lowercase hex SHA-256 of the original (pre-anonymization)
// content. A fingerprint seen before must not be reprocessed.
func Of(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
