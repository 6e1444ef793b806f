package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// FileHash returns the sha256 hex digest of a document's bytes. The digest
// keys the persistence cache, so the same file never runs the pipeline
// twice.
func FileHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
