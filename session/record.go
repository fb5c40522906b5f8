// Package session holds the in-memory session subsystem: opaque token
// issuance, the session store with its background reaper, and sliding
// validation with soft IP/User-Agent binding.
package session

import "time"

// UserSnapshot is the immutable subset of the member profile captured at
// login. It is built once from the club API response and handed to
// downstream handlers on every validated request; it is never refreshed
// for the lifetime of the session.
type UserSnapshot struct {
	Login    string  `json:"login"`
	Nickname string  `json:"nickname"`
	Phone    string  `json:"phone"`
	Deposit  float64 `json:"deposit"`
	Bonus    float64 `json:"bonus"`
}

// Record is the server-side state for one authenticated member session.
type Record struct {
	// SessionID is the opaque token the client presents as a bearer
	// credential. Unique among live records.
	SessionID string
	// UserID is the member's identifier in the external club API.
	UserID string
	// User is the profile snapshot taken at login.
	User UserSnapshot
	// ExternalToken is the club API access token obtained at login, sent
	// upstream on the member's behalf. May be empty.
	ExternalToken string

	CreatedAt    time.Time
	LastAccessAt time.Time
	// ExpiresAt is always LastAccessAt + TTL. A record with ExpiresAt in
	// the past is dead regardless of whether the reaper has removed it yet.
	ExpiresAt time.Time

	// BoundIP and BoundUserAgent record where the session was created.
	// Binding is soft: a mismatch on a later request is reported as an
	// anomaly but never invalidates the session.
	BoundIP        string
	BoundUserAgent string
}
