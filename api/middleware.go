package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/akoval/clubpoint/session"
)

type contextKey int

const identityKey contextKey = iota

// Identity is the resolved caller attached to the request context by the
// gate and consumed by downstream handlers.
type Identity struct {
	SessionID     string
	UserID        string
	User          session.UserSnapshot
	ExternalToken string
}

// IdentityFromContext returns the identity the gate attached, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Paths under /api that skip authentication. Everything outside /api (the
// frontend shell, static assets, health, metrics) is public by location.
var publicAPIPaths = map[string]struct{}{
	"/api/v1/auth/login":   {},
	"/api/v1/openapi.yaml": {},
}

var publicAPIPrefixes = []string{
	"/api/v1/docs",
	"/api/v1/redoc",
}

// Gate is the request filter chain: api-scope rate limiting, then the
// public-path bypass, then bearer-token session validation. Apply it once
// around the whole server.
func (a *API) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := a.clientIP(r)

		if allowed, retryAfter := a.apiLimiter.check("api:" + ip); !allowed {
			a.metrics.rateLimited.WithLabelValues("api").Inc()
			a.audit.logFailure(AuditAPIRateLimited, r, "api rate limited",
				slog.String("client_ip", ip))
			writeRateLimited(w, retryAfter)
			return
		}

		if isPublic(r) {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			// Absent or malformed credentials mean anonymous, which is not
			// enough for a protected route. Not a server fault.
			writeUnauthenticated(w)
			return
		}

		rec, err := a.validator.Validate(token, ip, r.UserAgent())
		if err != nil {
			result := "not_found"
			if errors.Is(err, session.ErrExpired) {
				result = "expired"
			}
			a.metrics.validations.WithLabelValues(result).Inc()
			// The response must not reveal whether the token ever existed.
			a.audit.logFailure(AuditSessionRejected, r, result)
			writeUnauthenticated(w)
			return
		}
		a.metrics.validations.WithLabelValues("valid").Inc()

		ctx := context.WithValue(r.Context(), identityKey, Identity{
			SessionID:     rec.SessionID,
			UserID:        rec.UserID,
			User:          rec.User,
			ExternalToken: rec.ExternalToken,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isPublic(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	path := r.URL.Path
	if !strings.HasPrefix(path, "/api/") {
		return true
	}
	if _, ok := publicAPIPaths[path]; ok {
		return true
	}
	for _, prefix := range publicAPIPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}
