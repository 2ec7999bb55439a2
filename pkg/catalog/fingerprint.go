package catalog

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the content hash of raw model file text. Equal
// fingerprints mean byte-identical files, which the comparator uses to
// short-circuit before any column inspection.
func Fingerprint(text []byte) string {
	sum := sha256.Sum256(text)
	return hex.EncodeToString(sum[:])
}
