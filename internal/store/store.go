// Package store loads and saves user-defined file formats from YAML.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/spend-dashboard/internal/fileutils"
	"fjacquet/spend-dashboard/internal/format"
	"fjacquet/spend-dashboard/internal/logging"

	"gopkg.in/yaml.v3"
)

// DefaultFormatsFile is looked up when no explicit file is configured.
const DefaultFormatsFile = "formats.yaml"

// FormatsConfig is the on-disk document: a top-level "formats" list.
type FormatsConfig struct {
	Formats []*format.Format `yaml:"formats"`
}

// FormatStore reads format definitions that extend or override the presets.
type FormatStore struct {
	FormatsFile string
	logger      logging.Logger
}

// NewFormatStore creates a store for formatsFile. An empty name means
// DefaultFormatsFile searched in the standard locations.
func NewFormatStore(formatsFile string, logger logging.Logger) *FormatStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &FormatStore{FormatsFile: formatsFile, logger: logger}
}

// FindConfigFile looks for filename in the working directory, ./config and
// ~/.config/spend-dashboard.
func (s *FormatStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "spend-dashboard", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadFormats reads the formats file. A missing default file is not an error
// and yields no formats; a missing explicitly configured file is.
func (s *FormatStore) LoadFormats() ([]*format.Format, error) {
	filename := s.FormatsFile
	explicit := filename != ""
	if !explicit {
		filename = DefaultFormatsFile
	}

	path, err := s.FindConfigFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			s.logger.Debug("No formats file found, using built-in formats",
				logging.F(logging.FieldFile, filename))
			return nil, nil
		}
		return nil, fmt.Errorf("formats file %s: %w", filename, err)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided configuration path
	if err != nil {
		return nil, fmt.Errorf("error reading formats file: %w", err)
	}

	var doc FormatsConfig
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Formats) > 0 {
		return s.validated(doc.Formats, path)
	}

	// Fallback: a bare list without the top-level key.
	var list []*format.Format
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("error parsing formats file %s: %w", path, err)
	}
	return s.validated(list, path)
}

func (s *FormatStore) validated(formats []*format.Format, path string) ([]*format.Format, error) {
	for _, f := range formats {
		if f == nil {
			return nil, fmt.Errorf("formats file %s: empty entry", path)
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("formats file %s: %w", path, err)
		}
	}
	s.logger.Info("Loaded formats",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(formats)))
	return formats, nil
}

// SaveFormats writes formats to path, creating parent directories.
func (s *FormatStore) SaveFormats(path string, formats []*format.Format) error {
	data, err := yaml.Marshal(FormatsConfig{Formats: formats})
	if err != nil {
		return fmt.Errorf("error encoding formats: %w", err)
	}
	if err := fileutils.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error writing formats file: %w", err)
	}
	s.logger.Info("Saved formats",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(formats)))
	return nil
}

// LoadInto registers every stored format in reg.
func (s *FormatStore) LoadInto(reg *format.Registry) error {
	formats, err := s.LoadFormats()
	if err != nil {
		return err
	}
	for _, f := range formats {
		if err := reg.Register(f); err != nil {
			return err
		}
	}
	return nil
}
