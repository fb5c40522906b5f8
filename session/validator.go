package session

import (
	"errors"
	"log/slog"
	"time"
)

// Validation outcomes. Callers outside the subsystem must present
// ErrNotFound and ErrExpired identically so a probe cannot learn whether a
// given token ever existed.
var (
	ErrNotFound = errors.New("session: not found")
	ErrExpired  = errors.New("session: expired")
)

// MismatchFunc is invoked when a validated session's bound IP or User-Agent
// differs from the request's. kind is "ip" or "user_agent".
type MismatchFunc func(rec Record, kind, got string)

// Validator decides whether a presented token identifies a live session,
// applying sliding renewal and soft IP/User-Agent binding.
type Validator struct {
	store      *Store
	logger     *slog.Logger
	onMismatch MismatchFunc
}

// NewValidator creates a validator over store. onMismatch may be nil; the
// mismatch is still logged.
func NewValidator(store *Store, logger *slog.Logger, onMismatch MismatchFunc) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		store:      store,
		logger:     logger.With("component", "session_validator"),
		onMismatch: onMismatch,
	}
}

// Validate resolves token to a session record. On success the session's
// expiry slides forward by the store TTL and the renewed record is returned.
// An expired record is deleted, so a later Validate on the same token
// reports ErrNotFound.
//
// ip and userAgent may be empty; binding is only compared when both the
// record and the request carry a value. A mismatch is reported as a
// security anomaly but never fails the validation — members legitimately
// change networks (mobile carriers, NAT, roaming).
func (v *Validator) Validate(token, ip, userAgent string) (Record, error) {
	rec, status := v.store.renew(token, time.Now())
	switch status {
	case renewNotFound:
		return Record{}, ErrNotFound
	case renewExpired:
		return Record{}, ErrExpired
	}

	// Fail closed on a structurally broken record rather than grant access.
	if rec.UserID == "" {
		v.logger.Error("session record missing user id, revoking",
			"session_prefix", tokenPrefix(rec.SessionID))
		v.store.Delete(rec.SessionID)
		return Record{}, ErrNotFound
	}

	if rec.BoundIP != "" && ip != "" && rec.BoundIP != ip {
		v.logger.Warn("session ip mismatch",
			"user_id", rec.UserID,
			"bound_ip", rec.BoundIP,
			"request_ip", ip)
		if v.onMismatch != nil {
			v.onMismatch(rec, "ip", ip)
		}
	}
	if rec.BoundUserAgent != "" && userAgent != "" && rec.BoundUserAgent != userAgent {
		v.logger.Warn("session user-agent mismatch",
			"user_id", rec.UserID,
			"bound_user_agent", rec.BoundUserAgent,
			"request_user_agent", userAgent)
		if v.onMismatch != nil {
			v.onMismatch(rec, "user_agent", userAgent)
		}
	}

	return rec, nil
}

// tokenPrefix returns a short, log-safe prefix of a session token.
func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8]
}
