package api

import (
	"net/http"
	"strconv"
)

const defaultEventLimit = 50

// ListSecurityEvents handles GET /api/v1/admin/security-events: recent
// journal entries, newest first. Returns an empty list when the journal is
// not configured.
func (a *API) ListSecurityEvents(w http.ResponseWriter, r *http.Request) {
	resp := SecurityEventsResponse{Events: []SecurityEvent{}}
	if a.events == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	events, err := a.events.Recent(limit)
	if err != nil {
		a.logger.Error("listing security events", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	for _, e := range events {
		resp.Events = append(resp.Events, SecurityEvent{
			ID:        e.ID,
			Kind:      e.Kind,
			UserID:    e.UserID,
			RemoteIP:  e.RemoteIP,
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
