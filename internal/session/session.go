// Package session keeps per-user upload state for the HTTP server. Each
// session remembers which format and which content fingerprint it last
// loaded; the parsed data itself lives in the parse cache.
package session

import (
	"errors"
	"sync"
	"time"

	"fjacquet/spend-dashboard/internal/cache"

	"github.com/google/uuid"
)

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("session not found")

// Session is one user's current upload.
type Session struct {
	ID          string    `json:"id"`
	Format      string    `json:"format"`
	Fingerprint string    `json:"-"`
	FileName    string    `json:"file_name"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// content is kept so a cache eviction can be recovered by re-parsing.
	content []byte
}

// Content returns the raw bytes of the current upload.
func (s *Session) Content() []byte {
	return s.content
}

// Upload describes a file handed to the manager.
type Upload struct {
	Format      string
	Fingerprint string
	FileName    string
	Content     []byte
}

// Manager is a concurrency-safe session registry. It holds at most a fixed
// number of sessions, evicting the least recently used one when full, and
// forgets a session once it has been idle for longer than the TTL.
type Manager struct {
	mu       sync.Mutex
	sessions *cache.LRUCache[*Session]
	now      func() time.Time
}

// NewManager creates an empty registry bounded by maxSessions and ttl. A ttl
// of zero or less keeps idle sessions until they are evicted for space.
func NewManager(maxSessions int, ttl time.Duration) *Manager {
	return &Manager{
		sessions: cache.NewLRUCache[*Session](maxSessions, ttl),
		now:      time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	m.sessions.SetClock(now)
}

// Create registers a new session for u.
func (m *Manager) Create(u Upload) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	apply(s, u, now)
	m.sessions.Set(s.ID, s)

	cp := *s
	return &cp
}

// Replace swaps the upload of session id and returns the fingerprint it
// replaced so the caller can invalidate it.
func (m *Manager) Replace(id string, u Upload) (updated *Session, previous string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, "", ErrNotFound
	}
	previous = s.Fingerprint
	apply(s, u, m.now())
	m.sessions.Set(id, s)

	cp := *s
	return &cp, previous, nil
}

// Get returns a snapshot of session id and restarts its idle timer.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	m.sessions.Set(id, s)

	cp := *s
	return &cp, nil
}

// Delete removes session id and returns its last snapshot.
func (m *Manager) Delete(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	m.sessions.Delete(id)
	return s, nil
}

// Sweep drops every idle session and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions.CleanExpired()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	m.sessions.Range(func(string, *Session) bool {
		n++
		return true
	})
	return n
}

// Shared reports whether another session still references fingerprint.
func (m *Manager) Shared(fingerprint, exceptID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	shared := false
	m.sessions.Range(func(id string, s *Session) bool {
		if id != exceptID && s.Fingerprint == fingerprint {
			shared = true
			return false
		}
		return true
	})
	return shared
}

func apply(s *Session, u Upload, now time.Time) {
	s.Format = u.Format
	s.Fingerprint = u.Fingerprint
	s.FileName = u.FileName
	s.Size = len(u.Content)
	s.content = u.Content
	s.UpdatedAt = now
}
