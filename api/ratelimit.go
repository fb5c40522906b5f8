package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// rateLimiter is a fixed-window counter keyed by an opaque identifier.
// Callers namespace their identifiers (e.g. "login:"+ip vs "api:"+ip) so
// independently configured instances never share a budget.
//
// This is a throttle, not a hard security boundary: a request that slips in
// at a window boundary is acceptable.
type rateLimiter struct {
	mu      sync.Mutex
	records map[string]*windowRecord
	limit   int
	window  time.Duration
}

type windowRecord struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		records: make(map[string]*windowRecord),
		limit:   limit,
		window:  window,
	}
}

// check counts one request against id's current window. The first request
// for a fresh identifier, or one arriving after the window has fully
// elapsed, starts a new window with count=1. Within a live window the count
// increments monotonically; once it exceeds the limit the request is denied
// and retryAfter reports how long until the window resets (whole seconds,
// rounded up, at least 1).
func (rl *rateLimiter) check(id string) (allowed bool, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rec, ok := rl.records[id]
	if !ok || now.Sub(rec.windowStart) > rl.window {
		rl.records[id] = &windowRecord{windowStart: now, count: 1}
		return true, 0
	}

	rec.count++
	if rec.count > rl.limit {
		remaining := rec.windowStart.Add(rl.window).Sub(now)
		return false, ceilSeconds(remaining)
	}
	return true, 0
}

// sweep drops records whose window ended at least one full window ago.
// Dead entries are inert either way; this only bounds memory.
func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-2 * rl.window)
	for id, rec := range rl.records {
		if rec.windowStart.Before(cutoff) {
			delete(rl.records, id)
		}
	}
}

// ceilSeconds rounds d up to a whole second, minimum one.
func ceilSeconds(d time.Duration) time.Duration {
	secs := (d + time.Second - 1) / time.Second * time.Second
	if secs < time.Second {
		secs = time.Second
	}
	return secs
}

// writeRateLimited sends a 429 with a Retry-After header.
func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int(retryAfter / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeError(w, http.StatusTooManyRequests, "too many requests; try again later")
}
