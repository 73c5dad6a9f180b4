package parser

import (
	"fjacquet/spend-dashboard/internal/logging"
)

// BaseParser carries the logger shared by parser implementations. Parsers
// embed it:
//
//	type MyParser struct {
//		BaseParser
//		// parser-specific fields
//	}
type BaseParser struct {
	logger logging.Logger
}

// NewBaseParser creates a BaseParser. A nil logger discards output.
func NewBaseParser(logger logging.Logger) BaseParser {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return BaseParser{logger: logger}
}

// SetLogger replaces the logger; nil is ignored.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the current logger.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}
