package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(100, time.Hour)

	s := m.Create(Upload{Format: "classic", Fingerprint: "fp1", FileName: "jan.csv", Content: []byte("abc")})
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Size)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "fp1", got.Fingerprint)
	assert.Equal(t, []byte("abc"), got.Content())

	updated, previous, err := m.Replace(s.ID, Upload{Format: "monthly", Fingerprint: "fp2", FileName: "feb.csv", Content: []byte("defg")})
	require.NoError(t, err)
	assert.Equal(t, "fp1", previous)
	assert.Equal(t, "fp2", updated.Fingerprint)
	assert.Equal(t, "monthly", updated.Format)
	assert.Equal(t, s.CreatedAt, updated.CreatedAt)

	deleted, err := m.Delete(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "fp2", deleted.Fingerprint)
	assert.Equal(t, 0, m.Len())

	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = m.Replace(s.ID, Upload{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Delete(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_SnapshotsAreIsolated(t *testing.T) {
	m := NewManager(100, time.Hour)
	s := m.Create(Upload{Format: "classic", Fingerprint: "fp1"})
	s.Format = "tampered"

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "classic", got.Format)
}

func TestManager_Shared(t *testing.T) {
	m := NewManager(100, time.Hour)
	a := m.Create(Upload{Fingerprint: "same"})
	b := m.Create(Upload{Fingerprint: "same"})

	assert.True(t, m.Shared("same", a.ID))
	_, err := m.Delete(b.ID)
	require.NoError(t, err)
	assert.False(t, m.Shared("same", a.ID))
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(100, time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := m.Create(Upload{Fingerprint: "fp"})
			_, _, _ = m.Replace(s.ID, Upload{Fingerprint: "fp2"})
			_, _ = m.Get(s.ID)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, m.Len())
}

func TestManager_ExpiresIdleSessions(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m := NewManager(100, 30*time.Minute)
	m.SetClock(func() time.Time { return now })

	idle := m.Create(Upload{Fingerprint: "idle"})
	active := m.Create(Upload{Fingerprint: "active"})

	now = now.Add(20 * time.Minute)
	_, err := m.Get(active.ID)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	_, err = m.Get(idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(active.ID)
	require.NoError(t, err, "reading a session restarts its idle timer")
	assert.False(t, m.Shared("idle", ""))

	now = now.Add(time.Hour)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 1, m.Sweep())
}

func TestManager_EvictsLeastRecentlyUsed(t *testing.T) {
	m := NewManager(2, 0)

	first := m.Create(Upload{Fingerprint: "a"})
	second := m.Create(Upload{Fingerprint: "b"})
	_, err := m.Get(first.ID)
	require.NoError(t, err)

	third := m.Create(Upload{Fingerprint: "c"})
	assert.Equal(t, 2, m.Len())

	_, err = m.Get(second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(first.ID)
	assert.NoError(t, err)
	_, err = m.Get(third.ID)
	assert.NoError(t, err)
}
