package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s := NewStore(ttl, nil)
	t.Cleanup(s.Stop)
	return s
}

func TestStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t, time.Hour)

	id, err := s.Create("42", UserSnapshot{Nickname: "X", Login: "player42"}, "ext-token", "1.2.3.4", "ua")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, rec.SessionID)
	assert.Equal(t, "42", rec.UserID)
	assert.Equal(t, "X", rec.User.Nickname)
	assert.Equal(t, "ext-token", rec.ExternalToken)
	assert.Equal(t, "1.2.3.4", rec.BoundIP)
	assert.Equal(t, "ua", rec.BoundUserAgent)
	assert.WithinDuration(t, rec.LastAccessAt.Add(time.Hour), rec.ExpiresAt, time.Second,
		"expiry should be last access plus TTL")
}

func TestStore_GetUnknown(t *testing.T) {
	s := newTestStore(t, time.Hour)

	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t, time.Hour)

	id, err := s.Create("42", UserSnapshot{}, "", "", "")
	require.NoError(t, err)

	assert.True(t, s.Delete(id), "first delete should report existence")
	assert.False(t, s.Delete(id), "second delete should report absence")
	_, ok := s.Get(id)
	assert.False(t, ok)
}

func TestStore_UniqueTokens(t *testing.T) {
	s := newTestStore(t, time.Hour)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := s.Create("u", UserSnapshot{}, "", "", "")
		require.NoError(t, err)
		require.False(t, seen[id], "session ids must be unique")
		seen[id] = true
	}
}

func TestStore_RenewSlidesExpiry(t *testing.T) {
	s := newTestStore(t, time.Hour)

	id, err := s.Create("42", UserSnapshot{}, "", "", "")
	require.NoError(t, err)

	// Pretend the session is nearly expired.
	s.mu.Lock()
	rec := s.data[id]
	rec.LastAccessAt = time.Now().Add(-59 * time.Minute)
	rec.ExpiresAt = time.Now().Add(time.Minute)
	s.data[id] = rec
	s.mu.Unlock()

	renewed, status := s.renew(id, time.Now())
	require.Equal(t, renewOK, status)
	assert.WithinDuration(t, time.Now().Add(time.Hour), renewed.ExpiresAt, time.Second,
		"renewal should push expiry a full TTL forward")
	assert.False(t, renewed.ExpiresAt.Before(rec.ExpiresAt), "expiry never moves backwards")
}

func TestStore_RenewExpiredDeletes(t *testing.T) {
	s := newTestStore(t, time.Hour)

	id, err := s.Create("42", UserSnapshot{}, "", "", "")
	require.NoError(t, err)

	s.mu.Lock()
	rec := s.data[id]
	rec.ExpiresAt = time.Now().Add(-time.Second)
	s.data[id] = rec
	s.mu.Unlock()

	_, status := s.renew(id, time.Now())
	assert.Equal(t, renewExpired, status)

	// Lazy expiration is authoritative: the record is gone.
	_, status = s.renew(id, time.Now())
	assert.Equal(t, renewNotFound, status)
	_, ok := s.Get(id)
	assert.False(t, ok)
}

func TestStore_ReapRemovesOnlyExpired(t *testing.T) {
	s := newTestStore(t, time.Hour)

	live, err := s.Create("live", UserSnapshot{}, "", "", "")
	require.NoError(t, err)
	dead, err := s.Create("dead", UserSnapshot{}, "", "", "")
	require.NoError(t, err)

	s.mu.Lock()
	rec := s.data[dead]
	rec.ExpiresAt = time.Now().Add(-time.Minute)
	s.data[dead] = rec
	s.mu.Unlock()

	removed := s.reap(time.Now())
	assert.Equal(t, 1, removed)

	_, ok := s.Get(live)
	assert.True(t, ok, "reaper must never remove a live record")
	_, ok = s.Get(dead)
	assert.False(t, ok, "reaper should remove expired records")
}

func TestStore_ReapSparesRecordRenewedMidSweep(t *testing.T) {
	s := newTestStore(t, time.Hour)

	id, err := s.Create("42", UserSnapshot{}, "", "", "")
	require.NoError(t, err)

	// Expired at sweep-candidate collection time...
	past := time.Now().Add(-time.Minute)
	s.mu.Lock()
	rec := s.data[id]
	rec.ExpiresAt = past
	s.data[id] = rec
	s.mu.Unlock()

	// ...but renewed before the per-record delete re-check.
	_, status := s.renew(id, past.Add(-time.Second))
	require.Equal(t, renewOK, status)

	removed := s.reap(past.Add(time.Millisecond))
	assert.Zero(t, removed, "a renewed record must survive the sweep")
}

func TestStore_ConcurrentCreateDelete(t *testing.T) {
	s := newTestStore(t, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id, err := s.Create("u", UserSnapshot{}, "", "", "")
				assert.NoError(t, err)
				if _, ok := s.Get(id); ok {
					s.renew(id, time.Now())
				}
				s.Delete(id)
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, s.Len())
}
