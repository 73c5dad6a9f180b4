package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"fjacquet/spend-dashboard/internal/cache"
	"fjacquet/spend-dashboard/internal/dashboard"
	"fjacquet/spend-dashboard/internal/format"
	"fjacquet/spend-dashboard/internal/logging"
	"fjacquet/spend-dashboard/internal/presenter"
	"fjacquet/spend-dashboard/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const acme = `Acme Bank, 01 Jan 2024, grocery, shop, 0, 45.00, Groceries
Acme Bank, 02 Jan 2024, salary, 2000.00, 0, Income
Acme Bank, 03 Jan 2024, to savings, 0, 500.00, transfer
Card, 04 Feb 2024, dinner, 0, 60.00, dining
`

type createdSession struct {
	Session   session.Session     `json:"session"`
	Dashboard presenter.Dashboard `json:"dashboard"`
}

func newTestServer(t *testing.T, maxUpload int64) (*Server, *session.Manager) {
	t.Helper()
	logger := logging.NewMockLogger()
	loader := cache.NewLoader(cache.NewMemoryCache(8, time.Hour), logger)
	svc := dashboard.NewService(format.NewRegistry(format.CreditDebit), loader, presenter.New("", ""), logger)
	sessions := session.NewManager(16, time.Hour)
	return New(Options{Addr: "127.0.0.1:0", MaxUploadBytes: maxUpload}, svc, sessions, logger), sessions
}

func uploadRequest(t *testing.T, method, target, formatName, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if formatName != "" {
		require.NoError(t, w.WriteField("format", formatName))
	}
	part, err := w.CreateFormFile("file", "bank.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func create(t *testing.T, s *Server, content string) createdSession {
	t.Helper()
	rec := do(s, uploadRequest(t, http.MethodPost, "/api/sessions", "", content))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out createdSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthAndFormats(t *testing.T) {
	s, _ := newTestServer(t, 0)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/formats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var formats []formatInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &formats))
	require.NotEmpty(t, formats)

	defaults := 0
	for _, f := range formats {
		assert.NotEmpty(t, f.Usage)
		if f.Default {
			defaults++
			assert.Equal(t, format.CreditDebit, f.Name)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestCreateSession_ReturnsDefaultDashboard(t *testing.T) {
	s, sessions := newTestServer(t, 0)

	out := create(t, s, acme)
	assert.NotEmpty(t, out.Session.ID)
	assert.Equal(t, format.CreditDebit, out.Session.Format)
	assert.Equal(t, "bank.csv", out.Session.FileName)
	assert.Equal(t, 1, sessions.Len())

	d := out.Dashboard
	assert.Equal(t, 4, d.Lines)
	assert.Equal(t, 3, d.Matched)
	assert.Equal(t, "$105.00", d.KPIs[0].Value)
	assert.Equal(t, "$2,000.00", d.KPIs[1].Value)
	assert.NotContains(t, d.Filter.Categories, "Transfer")
}

func TestCreateSession_Errors(t *testing.T) {
	tests := []struct {
		name      string
		req       func(t *testing.T) *http.Request
		maxUpload int64
		status    int
		hint      bool
	}{
		{
			name: "missing file field",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(""))
				req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
				return req
			},
			status: http.StatusBadRequest,
		},
		{
			name: "unknown format",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, http.MethodPost, "/api/sessions", "nope", acme)
			},
			status: http.StatusBadRequest,
		},
		{
			name: "empty file",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, http.MethodPost, "/api/sessions", "", "")
			},
			status: http.StatusUnprocessableEntity,
			hint:   true,
		},
		{
			name: "no well-formed rows",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, http.MethodPost, "/api/sessions", "", "a,b\nc,d\n")
			},
			status: http.StatusUnprocessableEntity,
			hint:   true,
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, http.MethodPost, "/api/sessions", "", acme)
			},
			maxUpload: 16,
			status:    http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, sessions := newTestServer(t, tt.maxUpload)
			rec := do(s, tt.req(t))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, 0, sessions.Len())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			if tt.hint {
				assert.Contains(t, body["hint"], "Please ensure your file matches the expected format")
			}
		})
	}
}

func TestDashboard_QueryFilters(t *testing.T) {
	s, _ := newTestServer(t, 0)
	id := create(t, s, acme).Session.ID
	base := "/api/sessions/" + id + "/dashboard"

	tests := []struct {
		name    string
		query   string
		status  int
		matched int
	}{
		{name: "defaults", query: "", status: http.StatusOK, matched: 3},
		{name: "one account", query: "?account=Card", status: http.StatusOK, matched: 1},
		{name: "two categories", query: "?category=Groceries&category=Transfer", status: http.StatusOK, matched: 2},
		{name: "empty category selects nothing", query: "?category=", status: http.StatusOK, matched: 0},
		{name: "date range", query: "?from=2024-01-02&to=2024-01-31", status: http.StatusOK, matched: 1},
		{name: "month", query: "?month=2024-02", status: http.StatusOK, matched: 1},
		{name: "bad date", query: "?from=yesterday", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, httptest.NewRequest(http.MethodGet, base+tt.query, nil))
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				return
			}
			var d presenter.Dashboard
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
			assert.Equal(t, tt.matched, d.Matched)
			if tt.matched == 0 {
				assert.Equal(t, presenter.MsgNoTransactions, d.TransactionsMessage)
			}
		})
	}
}

func TestExportTransactions(t *testing.T) {
	s, _ := newTestServer(t, 0)
	id := create(t, s, acme).Session.ID

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/transactions.csv?account=Card", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Card,2024-02-04,dinner")
}

func TestReplaceFile_InvalidatesUnsharedFingerprint(t *testing.T) {
	s, sessions := newTestServer(t, 0)
	first := create(t, s, acme)
	before, err := sessions.Get(first.Session.ID)
	require.NoError(t, err)

	replacement := "Card, 05 Mar 2024, coffee, 0, 4.50, Dining\n"
	rec := do(s, uploadRequest(t, http.MethodPut, "/api/sessions/"+first.Session.ID+"/file", "", replacement))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out createdSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, first.Session.ID, out.Session.ID)
	assert.Equal(t, 1, out.Dashboard.Matched)
	assert.Equal(t, "$4.50", out.Dashboard.KPIs[0].Value)

	after, err := sessions.Get(first.Session.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.Fingerprint, after.Fingerprint)
}

func TestReplaceFile_RejectedKeepsPreviousUpload(t *testing.T) {
	s, sessions := newTestServer(t, 0)
	id := create(t, s, acme).Session.ID

	rec := do(s, uploadRequest(t, http.MethodPut, "/api/sessions/"+id+"/file", "", "junk\n"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	sess, err := sessions.Get(id)
	require.NoError(t, err)
	assert.Equal(t, acme, string(sess.Content()))
}

func TestDeleteSession(t *testing.T) {
	s, sessions := newTestServer(t, 0)
	id := create(t, s, acme).Session.ID

	rec := do(s, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, sessions.Len())

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil),
		httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/dashboard", nil),
		uploadRequest(t, http.MethodPut, "/api/sessions/"+id+"/file", "", acme),
	} {
		assert.Equal(t, http.StatusNotFound, do(s, req).Code)
	}
}

func TestCORSConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"https://a.example", "*"}).AllowAllOrigins)

	cfg := corsConfig([]string{"https://a.example"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://a.example"}, cfg.AllowOrigins)
	assert.True(t, cfg.AllowCredentials)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, _ := newTestServer(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_SweepsIdleSessions(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	logger := logging.NewMockLogger()
	loader := cache.NewLoader(cache.NewMemoryCache(8, time.Hour), logger)
	svc := dashboard.NewService(format.NewRegistry(format.CreditDebit), loader, presenter.New("", ""), logger)
	sessions := session.NewManager(16, time.Minute)
	sessions.SetClock(clock)
	sessions.Create(session.Upload{Fingerprint: "fp"})

	s := New(Options{Addr: "127.0.0.1:0", SweepInterval: 10 * time.Millisecond}, svc, sessions, logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	assert.Eventually(t, func() bool {
		return logger.HasEntry("DEBUG", "Expired idle sessions")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, sessions.Sweep())

	cancel()
	require.NoError(t, <-done)
}
