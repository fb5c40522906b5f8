package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akoval/clubpoint/club"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeUnauthenticated is the single response used for a missing token, a
// malformed token, an unknown session and an expired session. Collapsing
// them keeps a probe from learning whether a given token ever existed.
func writeUnauthenticated(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid or expired session")
}

// mapUpstreamError translates a club API failure into a response.
func mapUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, club.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, club.ErrUpstream):
		writeError(w, http.StatusBadGateway, "club service unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a request body of at most maxSize bytes into T,
// writing a 400 on failure.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, maxSize int64) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return v, false
	}
	return v, true
}
