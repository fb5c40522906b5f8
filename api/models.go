package api

import (
	"time"

	"github.com/akoval/clubpoint/session"
)

const maxAuthBodySize = 64 << 10
const maxBookingBodySize = 256 << 10

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LoginRequest carries the member's club credentials. Verification happens
// upstream; this service never sees password hashes.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse returns the new session token and the profile snapshot.
type LoginResponse struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expires_at"`
	User      session.UserSnapshot `json:"user"`
}

// MeResponse describes the authenticated member.
type MeResponse struct {
	UserID string               `json:"user_id"`
	User   session.UserSnapshot `json:"user"`
}

// CreateBookingRequest is forwarded to the club API after basic shape checks.
type CreateBookingRequest struct {
	HostID   string    `json:"host_id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Comment  string    `json:"comment,omitempty"`
}

// SecurityEventsResponse lists recent entries from the security journal.
type SecurityEventsResponse struct {
	Events []SecurityEvent `json:"events"`
}

// SecurityEvent mirrors the journal entry shape.
type SecurityEvent struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	UserID    string `json:"user_id,omitempty"`
	RemoteIP  string `json:"remote_ip,omitempty"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}
