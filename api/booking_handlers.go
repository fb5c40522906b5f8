package api

import (
	"encoding/json"
	"net/http"

	"github.com/akoval/clubpoint/club"
)

// The booking endpoints are pass-throughs: request shaping here, all
// business rules upstream. Each call carries the member's external access
// token obtained at login.

// ListBookings handles GET /api/v1/bookings.
func (a *API) ListBookings(w http.ResponseWriter, r *http.Request) {
	a.proxy(w, r, func(identity Identity) (json.RawMessage, error) {
		return a.club.Bookings(r.Context(), identity.ExternalToken)
	})
}

// CreateBooking handles POST /api/v1/bookings.
func (a *API) CreateBooking(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}
	req, ok := decodeJSON[CreateBookingRequest](w, r, maxBookingBodySize)
	if !ok {
		return
	}
	if req.HostID == "" {
		writeError(w, http.StatusBadRequest, "host_id is required")
		return
	}
	if !req.EndsAt.After(req.StartsAt) {
		writeError(w, http.StatusBadRequest, "end time must be after start time")
		return
	}

	data, err := a.club.CreateBooking(r.Context(), identity.ExternalToken, club.BookingInput{
		HostID:   req.HostID,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Comment:  req.Comment,
	})
	if err != nil {
		mapUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, data)
}

// ListHosts handles GET /api/v1/hosts.
func (a *API) ListHosts(w http.ResponseWriter, r *http.Request) {
	a.proxy(w, r, func(identity Identity) (json.RawMessage, error) {
		return a.club.Hosts(r.Context(), identity.ExternalToken)
	})
}

// ListPayments handles GET /api/v1/payments.
func (a *API) ListPayments(w http.ResponseWriter, r *http.Request) {
	a.proxy(w, r, func(identity Identity) (json.RawMessage, error) {
		return a.club.Payments(r.Context(), identity.ExternalToken)
	})
}

// Leaderboard handles GET /api/v1/leaderboard.
func (a *API) Leaderboard(w http.ResponseWriter, r *http.Request) {
	a.proxy(w, r, func(identity Identity) (json.RawMessage, error) {
		return a.club.Leaderboard(r.Context(), identity.ExternalToken)
	})
}

func (a *API) proxy(w http.ResponseWriter, r *http.Request, call func(Identity) (json.RawMessage, error)) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}
	data, err := call(identity)
	if err != nil {
		mapUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}
