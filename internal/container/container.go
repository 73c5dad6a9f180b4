// Package container provides dependency injection for the dashboard.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"time"

	"fjacquet/spend-dashboard/internal/cache"
	"fjacquet/spend-dashboard/internal/config"
	"fjacquet/spend-dashboard/internal/dashboard"
	"fjacquet/spend-dashboard/internal/format"
	"fjacquet/spend-dashboard/internal/logging"
	"fjacquet/spend-dashboard/internal/presenter"
	"fjacquet/spend-dashboard/internal/report"
	"fjacquet/spend-dashboard/internal/server"
	"fjacquet/spend-dashboard/internal/session"
	"fjacquet/spend-dashboard/internal/store"
)

const bytesPerMB = 1 << 20

// Container holds all application dependencies. It is immutable after
// creation; dependencies are reached through getters.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	store     *store.FormatStore
	formats   *format.Registry
	cache     cache.ParseCache
	closer    func() error
	loader    *cache.Loader
	sessions  *session.Manager
	presenter *presenter.Presenter
	service   *dashboard.Service
	reports   *report.ReportGenerator
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	return newContainer(cfg, logger)
}

// NewContainerWithLogger wires dependencies around an existing logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return newContainer(cfg, logger)
}

func newContainer(cfg *config.Config, logger logging.Logger) (*Container, error) {
	formatStore := store.NewFormatStore(cfg.Format.PresetsFile, logger)
	registry := format.NewRegistry(cfg.Format.Default)
	if err := formatStore.LoadInto(registry); err != nil {
		return nil, fmt.Errorf("loading formats: %w", err)
	}
	if _, err := registry.Get(""); err != nil {
		return nil, fmt.Errorf("default format: %w", err)
	}

	parseCache, closer := newParseCache(cfg, logger)
	loader := cache.NewLoader(parseCache, logger)
	p := presenter.New(cfg.Display.CurrencySymbol, cfg.Display.DateLayout)

	c := &Container{
		logger:    logger,
		config:    cfg,
		store:     formatStore,
		formats:   registry,
		cache:     parseCache,
		closer:    closer,
		loader:    loader,
		sessions:  session.NewManager(cfg.Server.MaxSessions, cfg.Server.SessionTTL),
		presenter: p,
		service:   dashboard.NewService(registry, loader, p, logger),
		reports:   report.NewReportGenerator(logger),
	}

	logger.Info("Container initialized successfully",
		logging.F("formats_count", len(registry.List())),
		logging.F(logging.FieldBackend, cfg.Cache.Backend))
	return c, nil
}

// newParseCache picks the configured backend. An unreachable Redis is not
// fatal: the in-memory cache takes over.
func newParseCache(cfg *config.Config, logger logging.Logger) (cache.ParseCache, func() error) {
	size := cfg.Cache.Size
	if size < 1 {
		size = 64
	}
	memory := cache.NewMemoryCache(size, cfg.Cache.TTL)

	if cfg.Cache.Backend != config.CacheBackendRedis {
		return memory, nil
	}

	rc := cache.NewRedisCache(cache.NewRedisClient(cfg.Cache.RedisURL), cfg.Cache.TTL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		logger.WithError(err).Warn("Redis unavailable, using in-memory parse cache",
			logging.F(logging.FieldBackend, config.CacheBackendRedis))
		_ = rc.Close()
		return memory, nil
	}
	logger.Info("Using Redis parse cache", logging.F(logging.FieldBackend, config.CacheBackendRedis))
	return rc, rc.Close
}

// NewServer builds the HTTP server. An empty addr uses the configured one.
func (c *Container) NewServer(addr string) *server.Server {
	if addr == "" {
		addr = c.config.Server.Addr
	}
	return server.New(server.Options{
		Addr:           addr,
		MaxUploadBytes: int64(c.config.Server.MaxUploadMB) * bytesPerMB,
		AllowedOrigins: c.config.Server.AllowedOrigins,
		SweepInterval:  sweepInterval(c.config.Server.SessionTTL),
	}, c.service, c.sessions, c.logger)
}

// sweepInterval checks for idle sessions a few times per TTL, but no more
// than once a minute.
func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return max(ttl/4, time.Minute)
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the format store.
func (c *Container) GetStore() *store.FormatStore {
	return c.store
}

// GetFormats returns the format registry, presets plus stored formats.
func (c *Container) GetFormats() *format.Registry {
	return c.formats
}

// GetService returns the dashboard service.
func (c *Container) GetService() *dashboard.Service {
	return c.service
}

// GetPresenter returns the shared presenter.
func (c *Container) GetPresenter() *presenter.Presenter {
	return c.presenter
}

// GetReportGenerator returns the report generator.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reports
}

// GetSessions returns the session manager.
func (c *Container) GetSessions() *session.Manager {
	return c.sessions
}

// MaxUploadBytes is the configured upload limit in bytes.
func (c *Container) MaxUploadBytes() int64 {
	return int64(c.config.Server.MaxUploadMB) * bytesPerMB
}

// Close releases the cache connection, if any.
func (c *Container) Close() error {
	if c.closer != nil {
		if err := c.closer(); err != nil {
			return fmt.Errorf("closing parse cache: %w", err)
		}
	}
	c.logger.Debug("Container closed")
	return nil
}
