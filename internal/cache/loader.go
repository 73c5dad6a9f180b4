package cache

import (
	"context"
	"sync/atomic"
	"time"

	"fjacquet/spend-dashboard/internal/logging"
	"fjacquet/spend-dashboard/internal/parser"

	"golang.org/x/sync/singleflight"
)

// Loader is a read-through front for a ParseCache. Concurrent loads of the
// same key share one parse. Cache failures are logged and the content is
// parsed anyway.
type Loader struct {
	cache  ParseCache
	group  singleflight.Group
	logger logging.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewLoader wraps c.
func NewLoader(c ParseCache, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Loader{cache: c, logger: logger.WithField(logging.FieldComponent, "cache")}
}

// Load returns the result cached under key, or calls parse and caches what it
// returns. Parse errors are not cached.
func (l *Loader) Load(ctx context.Context, key string, parse func() (*parser.Result, error)) (*parser.Result, error) {
	if r, ok := l.lookup(ctx, key); ok {
		return r, nil
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		if r, ok := l.lookup(ctx, key); ok {
			return r, nil
		}
		l.misses.Add(1)

		start := time.Now()
		r, err := parse()
		if err != nil {
			return nil, err
		}
		if err := l.cache.Set(ctx, key, r); err != nil {
			l.logger.WithError(err).Warn("Failed to cache parse result",
				logging.F(logging.FieldFingerprint, key))
		}
		l.logger.Debug("Cached parse result",
			logging.F(logging.FieldFingerprint, key),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*parser.Result), nil
}

// Invalidate drops key from the cache.
func (l *Loader) Invalidate(ctx context.Context, key string) error {
	l.group.Forget(key)
	if err := l.cache.Delete(ctx, key); err != nil {
		l.logger.WithError(err).Warn("Failed to invalidate parse result",
			logging.F(logging.FieldFingerprint, key))
		return err
	}
	return nil
}

// Stats returns the number of cache hits and misses so far.
func (l *Loader) Stats() (hits, misses int64) {
	return l.hits.Load(), l.misses.Load()
}

func (l *Loader) lookup(ctx context.Context, key string) (*parser.Result, bool) {
	r, ok, err := l.cache.Get(ctx, key)
	if err != nil {
		l.logger.WithError(err).Warn("Parse cache unavailable",
			logging.F(logging.FieldFingerprint, key))
		return nil, false
	}
	if ok {
		l.hits.Add(1)
	}
	return r, ok
}
