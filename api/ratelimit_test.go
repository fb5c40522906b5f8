package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	rl := newRateLimiter(5, 15*time.Minute)

	for i := 1; i <= 5; i++ {
		allowed, _ := rl.check("ip:1.1.1.1")
		assert.True(t, allowed, "request %d of 5 should be allowed", i)
	}
}

func TestRateLimiter_DeniesOverLimit(t *testing.T) {
	rl := newRateLimiter(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		rl.check("ip:1.1.1.1")
	}

	allowed, retryAfter := rl.check("ip:1.1.1.1")
	require.False(t, allowed, "sixth request in the window must be denied")
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, 15*time.Minute)
}

func TestRateLimiter_RetryAfterNearFullWindow(t *testing.T) {
	rl := newRateLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		rl.check("ip:1.2.3.4")
	}
	allowed, retryAfter := rl.check("ip:1.2.3.4")
	require.False(t, allowed)
	// Denied almost immediately after the window opened, so the wait is
	// close to the whole window.
	assert.InDelta(t, 60, retryAfter.Seconds(), 2)
}

func TestRateLimiter_WindowElapseResets(t *testing.T) {
	rl := newRateLimiter(5, time.Minute)

	for i := 0; i < 6; i++ {
		rl.check("ip:1.1.1.1")
	}

	// Age the window past its duration instead of sleeping.
	rl.mu.Lock()
	rl.records["ip:1.1.1.1"].windowStart = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()

	allowed, _ := rl.check("ip:1.1.1.1")
	assert.True(t, allowed, "a fresh window starts after the old one elapses")

	rl.mu.Lock()
	count := rl.records["ip:1.1.1.1"].count
	rl.mu.Unlock()
	assert.Equal(t, 1, count, "count resets to 1 in the new window")
}

func TestRateLimiter_IdentifiersAreIndependent(t *testing.T) {
	rl := newRateLimiter(5, time.Minute)

	for i := 0; i < 10; i++ {
		rl.check("ip:1.1.1.1")
	}
	allowed, _ := rl.check("ip:1.1.1.1")
	require.False(t, allowed)

	allowed, _ = rl.check("ip:2.2.2.2")
	assert.True(t, allowed, "exhausting one identifier must not affect another")
}

func TestRateLimiter_NamespacedBudgetsDoNotInteract(t *testing.T) {
	loginRL := newRateLimiter(2, time.Minute)
	apiRL := newRateLimiter(100, time.Minute)

	for i := 0; i < 3; i++ {
		loginRL.check("login:1.1.1.1")
	}
	allowed, _ := loginRL.check("login:1.1.1.1")
	require.False(t, allowed)

	allowed, _ = apiRL.check("api:1.1.1.1")
	assert.True(t, allowed, "the api budget is separate from the login budget")
}

func TestRateLimiter_SweepDropsStaleRecords(t *testing.T) {
	rl := newRateLimiter(5, time.Minute)

	rl.check("ip:stale")
	rl.check("ip:fresh")

	rl.mu.Lock()
	rl.records["ip:stale"].windowStart = time.Now().Add(-5 * time.Minute)
	rl.mu.Unlock()

	rl.sweep()

	rl.mu.Lock()
	_, stale := rl.records["ip:stale"]
	_, fresh := rl.records["ip:fresh"]
	rl.mu.Unlock()
	assert.False(t, stale, "records idle past two windows are reclaimed")
	assert.True(t, fresh)
}

func TestCeilSeconds(t *testing.T) {
	assert.Equal(t, time.Second, ceilSeconds(0))
	assert.Equal(t, time.Second, ceilSeconds(300*time.Millisecond))
	assert.Equal(t, time.Second, ceilSeconds(time.Second))
	assert.Equal(t, 2*time.Second, ceilSeconds(time.Second+time.Millisecond))
}
