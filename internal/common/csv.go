// Package common provides shared functionality for the output side of the
// application.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/spend-dashboard/internal/fileutils"
	"fjacquet/spend-dashboard/internal/logging"

	"github.com/gocarina/gocsv"
)

// DefaultDelimiter separates exported CSV fields.
const DefaultDelimiter = ','

// WriteCSV marshals rows, a slice of structs with csv tags, to w. A zero
// delimiter selects DefaultDelimiter.
func WriteCSV[TRow any](w io.Writer, rows []TRow, delim rune) error {
	if rows == nil {
		return fmt.Errorf("cannot write nil rows to CSV")
	}
	if delim == 0 {
		delim = DefaultDelimiter
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delim

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("error flushing CSV data: %w", err)
	}
	return nil
}

// WriteCSVFile writes rows to csvFile, creating its directory if needed.
func WriteCSVFile[TRow any](csvFile string, rows []TRow, delim rune, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	if err := fileutils.EnsureDirectoryExists(filepath.Dir(csvFile)); err != nil {
		return err
	}

	file, err := os.Create(csvFile)
	if err != nil {
		logger.WithError(err).Error("Failed to create CSV file", logging.F(logging.FieldFile, csvFile))
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file", logging.F(logging.FieldFile, csvFile))
		}
	}()

	if err := WriteCSV(file, rows, delim); err != nil {
		logger.WithError(err).Error("Failed to marshal rows to CSV", logging.F(logging.FieldFile, csvFile))
		return err
	}

	logger.Info("Wrote CSV file",
		logging.F(logging.FieldFile, csvFile),
		logging.F(logging.FieldCount, len(rows)))
	return nil
}
