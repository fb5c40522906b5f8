package bbolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *EventStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEventStore_AppendAndRecent(t *testing.T) {
	s := openTestStore(t)

	for _, kind := range []string{"binding_mismatch", "login_rate_limited", "binding_mismatch"} {
		require.NoError(t, s.Append(Event{Kind: kind, UserID: "42", RemoteIP: "1.2.3.4"}))
	}

	events, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	assert.Equal(t, "binding_mismatch", events[0].Kind)
	assert.Equal(t, "login_rate_limited", events[1].Kind)
	for _, e := range events {
		assert.NotEmpty(t, e.ID)
		assert.NotEmpty(t, e.CreatedAt)
	}
}

func TestEventStore_RecentHonorsLimit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Append(Event{Kind: "binding_mismatch"}))
	}

	events, err := s.Recent(4)
	require.NoError(t, err)
	assert.Len(t, events, 4)
}

func TestEventStore_RecentEmpty(t *testing.T) {
	s := openTestStore(t)

	events, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
