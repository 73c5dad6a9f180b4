package format

import (
	"fmt"
	"sort"
	"sync"

	"fjacquet/spend-dashboard/internal/parsererror"
)

// Registry holds the formats known to the application by name.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]*Format
	def     string
}

// NewRegistry returns a registry seeded with the built-in presets and def as
// the default format name.
func NewRegistry(def string) *Registry {
	r := &Registry{formats: make(map[string]*Format), def: def}
	for _, f := range Presets() {
		r.formats[f.Name] = f
	}
	return r
}

// Register adds or replaces a format after validating it.
func (r *Registry) Register(f *Format) error {
	if f == nil {
		return fmt.Errorf("cannot register nil format")
	}
	if err := f.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats[f.Name] = f
	return nil
}

// Get returns the named format; an empty name selects the default.
func (r *Registry) Get(name string) (*Format, error) {
	if name == "" {
		name = r.def
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formats[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", parsererror.ErrUnknownFormat, name)
	}
	return f, nil
}

// Default returns the default format name.
func (r *Registry) Default() string {
	return r.def
}

// List returns all formats sorted by name.
func (r *Registry) List() []*Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Format, 0, len(r.formats))
	for _, f := range r.formats {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
