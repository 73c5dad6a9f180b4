package parser

import (
	"fmt"

	"fjacquet/spend-dashboard/internal/format"
	"fjacquet/spend-dashboard/internal/logging"
)

// GetParser returns a parser for the named format. An empty name selects the
// registry default.
func GetParser(reg *format.Registry, name string, logger logging.Logger) (*Parser, error) {
	f, err := reg.Get(name)
	if err != nil {
		return nil, fmt.Errorf("error selecting parser: %w", err)
	}
	return New(f, logger), nil
}
