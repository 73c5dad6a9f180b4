package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldNamesAreDistinct(t *testing.T) {
	names := []string{
		FieldFile, FieldFormat, FieldFingerprint, FieldSession, FieldLine,
		FieldReason, FieldOperation, FieldError, FieldDuration, FieldCount,
		FieldDropped, FieldBackend, FieldComponent, FieldMethod, FieldPath,
		FieldStatus,
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate field name %q", name)
		seen[name] = true
	}
}
