package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/akoval/clubpoint/club"
	"github.com/akoval/clubpoint/session"
	eventlog "github.com/akoval/clubpoint/storage/bbolt"
)

// Login handles POST /api/v1/auth/login. Credential verification is
// delegated to the club API; on success a session is created and its token
// returned to the client.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	clientIP := a.clientIP(r)

	// The login budget is much tighter than the general api budget and
	// counts every attempt, successful or not.
	if allowed, retryAfter := a.loginLimiter.check("login:" + clientIP); !allowed {
		a.metrics.rateLimited.WithLabelValues("login").Inc()
		a.audit.logFailure(AuditLoginRateLimited, r, "login rate limited",
			slog.String("client_ip", clientIP))
		a.recordSecurityEvent(eventlog.Event{
			Kind:     "login_rate_limited",
			RemoteIP: clientIP,
		})
		writeRateLimited(w, retryAfter)
		return
	}

	req, ok := decodeJSON[LoginRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	if req.Login == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "login and password are required")
		return
	}

	result, err := a.club.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, club.ErrInvalidCredentials) {
			a.metrics.loginAttempts.WithLabelValues("failure").Inc()
			a.audit.logFailure(AuditLoginFailure, r, "invalid credentials",
				slog.String("client_ip", clientIP))
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		a.metrics.loginAttempts.WithLabelValues("error").Inc()
		a.logger.Error("club authentication failed", "err", err)
		mapUpstreamError(w, err)
		return
	}

	snapshot := snapshotFromProfile(result.Profile)
	token, err := a.store.Create(result.Profile.UserID, snapshot, result.AccessToken, clientIP, r.UserAgent())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	rec, _ := a.store.Get(token)

	a.metrics.loginAttempts.WithLabelValues("success").Inc()
	a.audit.log(AuditLoginSuccess, r,
		slog.String("user_id", result.Profile.UserID),
		slog.String("client_ip", clientIP))

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: rec.ExpiresAt,
		User:      snapshot,
	})
}

// Logout handles POST /api/v1/auth/logout: explicit session revocation.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}
	a.store.Delete(identity.SessionID)
	a.audit.log(AuditLogout, r, slog.String("user_id", identity.UserID))
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{
		UserID: identity.UserID,
		User:   identity.User,
	})
}

func snapshotFromProfile(p club.Profile) session.UserSnapshot {
	return session.UserSnapshot{
		Login:    p.Login,
		Nickname: p.Nickname,
		Phone:    p.Phone,
		Deposit:  p.Deposit,
		Bonus:    p.Bonus,
	}
}
