package fingerprint

import (
	"errors"
	"strings"
	"testing"
)

func TestCompare(t *testing.T) {
	same := &SchemaFingerprint{Hash: "same_hash_12345"}
	if err := Compare(same, &SchemaFingerprint{Hash: "same_hash_12345"}); err != nil {
		t.Errorf("identical fingerprints should match, got error: %v", err)
	}

	err := Compare(&SchemaFingerprint{Hash: "hash_12345"}, &SchemaFingerprint{Hash: "hash_67890"})
	if !errors.Is(err, ErrFingerprintMismatch) {
		t.Fatalf("expected ErrFingerprintMismatch, got %v", err)
	}
	for _, substring := range []string{"hash_1234", "hash_6789"} {
		if !strings.Contains(err.Error(), substring) {
			t.Errorf("error message should contain %q, got: %s", substring, err)
		}
	}
}
