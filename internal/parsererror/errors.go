// Package parsererror defines the error taxonomy of the transaction pipeline.
//
// File-level problems (InvalidFormatError, ErrNotText, ErrEmptyFile) are
// surfaced to the caller. Row-level problems (RowError) are only logged: the
// offending line is dropped and parsing continues.
package parsererror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotText is returned when uploaded content is not valid UTF-8 text.
	ErrNotText = errors.New("content is not valid text")

	// ErrEmptyFile is returned when the upload contains no non-blank lines.
	ErrEmptyFile = errors.New("file is empty")

	// ErrMissingColumns is returned when no line carries the required columns.
	ErrMissingColumns = errors.New("required columns are missing")

	// ErrUnknownFormat is returned when a format name is not registered.
	ErrUnknownFormat = errors.New("unknown file format")
)

// RowError describes why a single input line was dropped.
type RowError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: failed to parse %s='%s': %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// InvalidFormatError is a file-level failure. ExpectedFormat carries the usage
// hint shown to the user so they can fix the file.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
	Err            error
}

func (e *InvalidFormatError) Error() string {
	name := e.FilePath
	if name == "" {
		name = "upload"
	}
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.ExpectedFormat != "" {
		return fmt.Sprintf("invalid format in '%s': %s. Expected: %s", name, msg, e.ExpectedFormat)
	}
	return fmt.Sprintf("invalid format in '%s': %s", name, msg)
}

func (e *InvalidFormatError) Unwrap() error {
	return e.Err
}

// IsFileLevel reports whether err should be surfaced to the user as a
// rejected file rather than an internal failure.
func IsFileLevel(err error) bool {
	var invalid *InvalidFormatError
	return errors.As(err, &invalid) ||
		errors.Is(err, ErrNotText) ||
		errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrMissingColumns)
}
