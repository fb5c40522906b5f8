package session

import (
	"log/slog"
	"sync"
	"time"
)

// Store is a thread-safe in-memory session store. Sessions are lost on
// server restart.
//
// Expiry is lazy: Get never consults the clock, and Renew decides liveness
// at access time. The reaper only reclaims memory held by records that are
// already dead.
type Store struct {
	mu   sync.RWMutex
	data map[string]Record
	ttl  time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}

	logger *slog.Logger
}

// NewStore creates a session store whose records live ttl past their last
// successful validation. The reaper does not run until StartReaper is called.
func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		data:   make(map[string]Record),
		ttl:    ttl,
		stopCh: make(chan struct{}),
		logger: logger.With("component", "session_store"),
	}
}

// TTL returns the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create mints a fresh token, inserts a record expiring ttl from now and
// returns the new session id.
func (s *Store) Create(userID string, user UserSnapshot, externalToken, ip, userAgent string) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	now := time.Now()
	rec := Record{
		SessionID:      token,
		UserID:         userID,
		User:           user,
		ExternalToken:  externalToken,
		CreatedAt:      now,
		LastAccessAt:   now,
		ExpiresAt:      now.Add(s.ttl),
		BoundIP:        ip,
		BoundUserAgent: userAgent,
	}
	s.mu.Lock()
	s.data[token] = rec
	s.mu.Unlock()
	return token, nil
}

// Get returns the record for id without mutating it. A returned record may
// already be expired; callers that need liveness go through Validator.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	rec, ok := s.data[id]
	s.mu.RUnlock()
	return rec, ok
}

// Delete removes the record for id and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.data[id]
	delete(s.data, id)
	s.mu.Unlock()
	return ok
}

// Len returns the number of records currently held, live or not.
func (s *Store) Len() int {
	s.mu.RLock()
	n := len(s.data)
	s.mu.RUnlock()
	return n
}

type renewStatus int

const (
	renewOK renewStatus = iota
	renewNotFound
	renewExpired
)

// renew is the single read-modify-write on a record. Under one write lock it
// re-checks existence and expiry, slides LastAccessAt/ExpiresAt forward and
// returns the renewed record, so a concurrent expiration boundary resolves
// to exactly one of "just expired" or "just renewed". An expired record is
// deleted in the same critical section.
func (s *Store) renew(id string, now time.Time) (Record, renewStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[id]
	if !ok {
		return Record{}, renewNotFound
	}
	if now.After(rec.ExpiresAt) {
		delete(s.data, id)
		return Record{}, renewExpired
	}
	rec.LastAccessAt = now
	rec.ExpiresAt = now.Add(s.ttl)
	s.data[id] = rec
	return rec, renewOK
}

// StartReaper launches the background sweep that removes expired records
// every interval. Call Stop to terminate it.
func (s *Store) StartReaper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.reap(time.Now()); n > 0 {
					s.logger.Debug("reaped expired sessions", "count", n)
				}
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the reaper. Idempotent.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// reap removes records whose expiry is at or before now and returns how many
// it removed. Candidates are collected under the read lock first, then each
// is re-checked under the write lock, so the store is never frozen for a
// whole sweep and a record renewed mid-sweep survives.
func (s *Store) reap(now time.Time) int {
	s.mu.RLock()
	var candidates []string
	for id, rec := range s.data {
		if !rec.ExpiresAt.After(now) {
			candidates = append(candidates, id)
		}
	}
	s.mu.RUnlock()

	removed := 0
	for _, id := range candidates {
		s.mu.Lock()
		if rec, ok := s.data[id]; ok && !rec.ExpiresAt.After(now) {
			delete(s.data, id)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}
