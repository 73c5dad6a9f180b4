// Package server exposes the dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fjacquet/spend-dashboard/internal/dashboard"
	"fjacquet/spend-dashboard/internal/logging"
	"fjacquet/spend-dashboard/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options configures the HTTP server.
type Options struct {
	Addr           string
	MaxUploadBytes int64
	AllowedOrigins []string
	// SweepInterval is how often idle sessions are dropped; zero disables it.
	SweepInterval time.Duration
}

// Server serves the JSON API.
type Server struct {
	opts     Options
	service  *dashboard.Service
	sessions *session.Manager
	logger   logging.Logger
	engine   *gin.Engine
}

// New builds the router.
func New(opts Options, service *dashboard.Service, sessions *session.Manager, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		opts:     opts,
		service:  service,
		sessions: sessions,
		logger:   logger.WithField(logging.FieldComponent, "server"),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	if opts.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.MaxUploadBytes
	}

	r.GET("/health", s.healthCheck)

	api := r.Group("/api")
	api.GET("/formats", s.listFormats)
	api.POST("/sessions", s.createSession)
	api.PUT("/sessions/:id/file", s.replaceFile)
	api.GET("/sessions/:id/dashboard", s.getDashboard)
	api.GET("/sessions/:id/transactions.csv", s.exportTransactions)
	api.DELETE("/sessions/:id", s.deleteSession)

	s.engine = r
	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", logging.F("addr", s.opts.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if s.opts.SweepInterval > 0 {
		go s.sweepSessions(ctx, s.opts.SweepInterval)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("Server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) sweepSessions(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.logger.Debug("Expired idle sessions", logging.F(logging.FieldCount, n))
			}
		}
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("Handled request",
			logging.F(logging.FieldMethod, c.Request.Method),
			logging.F(logging.FieldPath, c.FullPath()),
			logging.F(logging.FieldStatus, c.Writer.Status()),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	}
}
