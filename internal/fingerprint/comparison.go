package fingerprint

import (
	"errors"
	"fmt"
)

// ErrFingerprintMismatch is returned when the schema changed between plan and apply
var ErrFingerprintMismatch = errors.New("schema fingerprint mismatch")

// Compare returns ErrFingerprintMismatch, with both hashes abbreviated, unless the fingerprints match
func Compare(expected, actual *SchemaFingerprint) error {
	if expected.Hash == actual.Hash {
		return nil
	}
	return fmt.Errorf("%w - expected: %s, actual: %s", ErrFingerprintMismatch, preview(expected.Hash), preview(actual.Hash))
}

func preview(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}
