package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fjacquet/spend-dashboard/internal/format"
	"fjacquet/spend-dashboard/internal/logging"
	"fjacquet/spend-dashboard/internal/models"
	"fjacquet/spend-dashboard/internal/parser"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *parser.Result {
	return &parser.Result{
		Format: "classic",
		Transactions: []models.Transaction{{
			Account:  "Acme Bank",
			Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Expense:  decimal.RequireFromString("45"),
			Income:   decimal.Zero,
			Category: "Groceries",
		}},
		Lines: 1,
	}
}

func TestFingerprint(t *testing.T) {
	content := []byte("Card, 2024-01-01, x, 1, 0, Food\n")
	key := func(f *format.Format, content []byte) string {
		t.Helper()
		k, err := Fingerprint(f, content)
		require.NoError(t, err)
		return k
	}
	preset := func(name string) *format.Format {
		t.Helper()
		f, err := format.NewRegistry(format.Classic).Get(name)
		require.NoError(t, err)
		return f
	}

	classic := preset(format.Classic)
	assert.Equal(t, key(classic, content), key(preset(format.Classic), content))
	assert.Len(t, key(classic, content), 64)
	assert.NotEqual(t, key(classic, content), key(preset(format.Monthly), content))
	assert.NotEqual(t, key(classic, content), key(classic, append(content, 'x')))
}

func TestFingerprint_ChangesWithDefinition(t *testing.T) {
	content := []byte("Card, 2024-01-01, x, 1, 0, Food\n")
	base := &format.Format{
		Name:        "bank",
		AmountOrder: []format.AmountRole{format.Expense, format.Income},
	}
	baseKey, err := Fingerprint(base, content)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(f *format.Format)
	}{
		{name: "amount order", mutate: func(f *format.Format) {
			f.AmountOrder = []format.AmountRole{format.Income, format.Expense}
		}},
		{name: "delimiter", mutate: func(f *format.Format) { f.Delimiter = ";" }},
		{name: "date layouts", mutate: func(f *format.Format) { f.DateLayouts = []string{"02/01/2006"} }},
		{name: "title case", mutate: func(f *format.Format) { f.TitleCaseCategories = true }},
		{name: "header", mutate: func(f *format.Format) { f.HasHeader = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := *base
			tt.mutate(&changed)
			k, err := Fingerprint(&changed, content)
			require.NoError(t, err)
			assert.NotEqual(t, baseKey, k)
		})
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Size())

	c.Set("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestLRUCache_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "x")
	c.Set("b", "y")
	_, ok := c.Get("a")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_RangeSkipsExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute)
	c.SetClock(func() time.Time { return now })

	c.Set("old", 1)
	now = now.Add(45 * time.Second)
	c.Set("new", 2)
	now = now.Add(30 * time.Second)

	var keys []string
	c.Range(func(key string, _ int) bool {
		keys = append(keys, key)
		return true
	})
	assert.Equal(t, []string{"new"}, keys)
}

func TestLRUCache_RangeStops(t *testing.T) {
	c := NewLRUCache[int](10, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	visited := 0
	c.Range(func(string, int) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(4, time.Hour)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", sampleResult()))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "classic", got.Format)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestLoader_CachesResults(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(NewMemoryCache(4, time.Hour), logging.NewMockLogger())

	calls := 0
	parse := func() (*parser.Result, error) {
		calls++
		return sampleResult(), nil
	}

	first, err := loader.Load(ctx, "k", parse)
	require.NoError(t, err)
	second, err := loader.Load(ctx, "k", parse)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Same(t, first, second)
	hits, misses := loader.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	require.NoError(t, loader.Invalidate(ctx, "k"))
	_, err = loader.Load(ctx, "k", parse)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLoader_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(NewMemoryCache(4, time.Hour), nil)
	boom := errors.New("boom")

	_, err := loader.Load(ctx, "k", func() (*parser.Result, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	r, err := loader.Load(ctx, "k", func() (*parser.Result, error) { return sampleResult(), nil })
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestLoader_ConcurrentLoadsParseOnce(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(NewMemoryCache(4, time.Hour), nil)

	var calls atomic.Int32
	parse := func() (*parser.Result, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return sampleResult(), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := loader.Load(ctx, "k", parse)
			assert.NoError(t, err)
			assert.NotNil(t, r)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestLoader_FallsBackWhenRedisUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	logger := logging.NewMockLogger()
	loader := NewLoader(NewRedisCache(client, time.Minute), logger)

	r, err := loader.Load(context.Background(), "k", func() (*parser.Result, error) { return sampleResult(), nil })
	require.NoError(t, err)
	assert.Equal(t, "classic", r.Format)
	assert.True(t, logger.HasEntry("WARN", "Parse cache unavailable"))
	assert.True(t, logger.HasEntry("WARN", "Failed to cache parse result"))
}

func TestNewRedisClient(t *testing.T) {
	tests := []struct {
		url  string
		addr string
		db   int
	}{
		{url: "localhost:6379", addr: "localhost:6379"},
		{url: "redis://cache:6380/2", addr: "cache:6380", db: 2},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			client := NewRedisClient(tt.url)
			defer client.Close()
			assert.Equal(t, tt.addr, client.Options().Addr)
			assert.Equal(t, tt.db, client.Options().DB)
		})
	}
}
