// Package validation checks user-supplied CLI arguments before the pipeline runs.
package validation

import (
	"fmt"
	"os"
	"strings"
)

// Output formats accepted by the summary command.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputCSV  = "csv"
)

// OutputFormats lists the accepted output formats.
var OutputFormats = []string{OutputText, OutputJSON, OutputCSV}

// IsValidInputFile checks that path names an existing regular file.
func IsValidInputFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("no input file given")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input path %s is not a regular file", path)
	}
	return nil
}

// IsValidOutputFormat checks if the given format is supported.
func IsValidOutputFormat(format string) error {
	for _, f := range OutputFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %s. Supported formats are %s", format, strings.Join(OutputFormats, ", "))
}
