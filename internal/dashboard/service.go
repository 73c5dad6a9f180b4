// Package dashboard runs one parse, filter, aggregate and present cycle.
package dashboard

import (
	"context"
	"fmt"

	"fjacquet/spend-dashboard/internal/cache"
	"fjacquet/spend-dashboard/internal/filter"
	"fjacquet/spend-dashboard/internal/format"
	"fjacquet/spend-dashboard/internal/logging"
	"fjacquet/spend-dashboard/internal/parser"
	"fjacquet/spend-dashboard/internal/parsererror"
	"fjacquet/spend-dashboard/internal/presenter"
)

// Loaded is a parsed file together with everything derived from the full
// table: facets and the default filter.
type Loaded struct {
	Format      *format.Format
	Fingerprint string
	Result      *parser.Result
	Facets      filter.Facets
	Defaults    filter.Spec
}

// Service wires the pipeline stages together.
type Service struct {
	formats   *format.Registry
	loader    *cache.Loader
	presenter *presenter.Presenter
	logger    logging.Logger
}

// NewService creates a Service.
func NewService(formats *format.Registry, loader *cache.Loader, p *presenter.Presenter, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Service{
		formats:   formats,
		loader:    loader,
		presenter: p,
		logger:    logger.WithField(logging.FieldComponent, "dashboard"),
	}
}

// Formats returns the format registry.
func (s *Service) Formats() *format.Registry {
	return s.formats
}

// Presenter returns the presenter used for rendering.
func (s *Service) Presenter() *presenter.Presenter {
	return s.presenter
}

// Load parses content with the named format, reusing a cached result for
// identical content. Zero-length content is rejected with ErrEmptyFile.
func (s *Service) Load(ctx context.Context, formatName string, content []byte) (*Loaded, error) {
	p, err := parser.GetParser(s.formats, formatName, s.logger)
	if err != nil {
		return nil, err
	}
	f := p.Format()
	if len(content) == 0 {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat: f.Usage(),
			Err:            parsererror.ErrEmptyFile,
		}
	}

	key, err := cache.Fingerprint(f, content)
	if err != nil {
		return nil, err
	}
	result, err := s.loader.Load(ctx, key, func() (*parser.Result, error) {
		return p.ParseBytes(content)
	})
	if err != nil {
		s.logger.WithError(err).Warn("Rejected transaction file",
			logging.F(logging.FieldFormat, f.Name),
			logging.F(logging.FieldFingerprint, key))
		return nil, err
	}

	facets := filter.BuildFacets(result.Transactions)
	return &Loaded{
		Format:      f,
		Fingerprint: key,
		Result:      result,
		Facets:      facets,
		Defaults:    filter.DefaultSpec(facets, f.DefaultExcludedCategories),
	}, nil
}

// Invalidate drops a previously loaded fingerprint from the cache.
func (s *Service) Invalidate(ctx context.Context, fingerprint string) {
	if fingerprint == "" {
		return
	}
	if err := s.loader.Invalidate(ctx, fingerprint); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate cached parse",
			logging.F(logging.FieldFingerprint, fingerprint))
	}
}

// Spec overlays textual params on the loaded defaults and normalises the
// result against the data.
func (s *Service) Spec(loaded *Loaded, params filter.Params) (filter.Spec, error) {
	spec, err := params.Apply(loaded.Defaults)
	if err != nil {
		return filter.Spec{}, err
	}
	return spec.Normalize(loaded.Facets), nil
}

// Build filters, aggregates and presents loaded under spec.
func (s *Service) Build(ctx context.Context, loaded *Loaded, spec filter.Spec) (*presenter.Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if loaded == nil || loaded.Result == nil {
		return nil, fmt.Errorf("nothing loaded")
	}

	spec = spec.Normalize(loaded.Facets)
	txs := loaded.Result.Transactions
	filtered := filter.Apply(txs, spec)

	d := s.presenter.BuildDashboard(presenter.Input{
		Format:   loaded.Format.Name,
		Lines:    loaded.Result.Lines,
		Dropped:  loaded.Result.Dropped,
		Facets:   loaded.Facets,
		Spec:     spec,
		Filtered: filtered,
		Trend:    filter.Apply(txs, spec.TrendScope()),
	})

	s.logger.Debug("Built dashboard",
		logging.F(logging.FieldFormat, loaded.Format.Name),
		logging.F(logging.FieldCount, len(filtered)))
	return d, nil
}

// Render is Load, Spec and Build in one call.
func (s *Service) Render(ctx context.Context, formatName string, content []byte, params filter.Params) (*presenter.Dashboard, error) {
	loaded, err := s.Load(ctx, formatName, content)
	if err != nil {
		return nil, err
	}
	spec, err := s.Spec(loaded, params)
	if err != nil {
		return nil, err
	}
	return s.Build(ctx, loaded, spec)
}
