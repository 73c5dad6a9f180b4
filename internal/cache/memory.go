package cache

import (
	"context"
	"time"

	"fjacquet/spend-dashboard/internal/parser"
)

// MemoryCache is an in-process ParseCache.
type MemoryCache struct {
	lru *LRUCache[*parser.Result]
}

// NewMemoryCache holds up to size results for ttl each.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: NewLRUCache[*parser.Result](size, ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (*parser.Result, bool, error) {
	r, ok := m.lru.Get(key)
	return r, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, result *parser.Result) error {
	m.lru.Set(key, result)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.lru.Delete(key)
	return nil
}

// Len returns the number of live entries.
func (m *MemoryCache) Len() int {
	m.lru.CleanExpired()
	return m.lru.Size()
}
