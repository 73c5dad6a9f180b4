// Package cache memoizes parse results by content fingerprint.
//
// A cached *parser.Result is shared between callers and must be treated as
// read-only.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"fjacquet/spend-dashboard/internal/format"
	"fjacquet/spend-dashboard/internal/parser"

	"gopkg.in/yaml.v3"
)

// ParseCache stores parse results keyed by Fingerprint.
type ParseCache interface {
	// Get returns the cached result, or ok=false on a miss.
	Get(ctx context.Context, key string) (result *parser.Result, ok bool, err error)
	Set(ctx context.Context, key string, result *parser.Result) error
	Delete(ctx context.Context, key string) error
}

// Fingerprint identifies content parsed with a given format definition. The
// same bytes parsed with two formats, or with two revisions of one format,
// yield two entries.
func Fingerprint(f *format.Format, content []byte) (string, error) {
	def, err := yaml.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("error serializing format %q: %w", f.Name, err)
	}
	h := sha256.New()
	h.Write(def)
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil)), nil
}
