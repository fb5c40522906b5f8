// Package api is the HTTP surface of the booking backend: the auth gate,
// the login/logout flow and the thin proxies to the external club API.
package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/netip"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/akoval/clubpoint/club"
	"github.com/akoval/clubpoint/session"
	eventlog "github.com/akoval/clubpoint/storage/bbolt"
)

//go:embed openapi.yaml
var openapiSpec []byte

// ClubAPI is the subset of the club-management API the handlers use.
type ClubAPI interface {
	Authenticate(ctx context.Context, login, password string) (*club.AuthResult, error)
	Bookings(ctx context.Context, accessToken string) (json.RawMessage, error)
	CreateBooking(ctx context.Context, accessToken string, in club.BookingInput) (json.RawMessage, error)
	Hosts(ctx context.Context, accessToken string) (json.RawMessage, error)
	Payments(ctx context.Context, accessToken string) (json.RawMessage, error)
	Leaderboard(ctx context.Context, accessToken string) (json.RawMessage, error)
}

// Config carries the abuse-control tuning. Zero values fall back to the
// defaults below.
type Config struct {
	LoginRateLimit  int
	LoginRateWindow time.Duration
	APIRateLimit    int
	APIRateWindow   time.Duration
	// TrustedProxies is a comma-separated list of CIDR ranges whose
	// forwarding headers are honored.
	TrustedProxies string
	// SweepInterval is how often limiter memory is reclaimed.
	SweepInterval time.Duration
}

const (
	defaultLoginRateLimit  = 5
	defaultLoginRateWindow = 15 * time.Minute
	defaultAPIRateLimit    = 80
	defaultAPIRateWindow   = time.Minute
	defaultSweepInterval   = 10 * time.Minute
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	club      ClubAPI
	store     *session.Store
	validator *session.Validator

	loginLimiter *rateLimiter
	apiLimiter   *rateLimiter

	audit   *auditLogger
	metrics *metrics
	events  *eventlog.EventStore
	logger  *slog.Logger

	trustedProxies []netip.Prefix
	registerer     prometheus.Registerer

	stopOnce sync.Once
	stopCh   chan struct{}
}

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger. If not set, a JSON logger writing
// to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// WithEventStore enables the persistent security-event journal.
func WithEventStore(events *eventlog.EventStore) Option {
	return func(a *API) {
		a.events = events
	}
}

// WithRegisterer sets the prometheus registerer. Defaults to a private
// registry so tests can construct independent instances.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(a *API) {
		a.registerer = reg
	}
}

// New creates the API over an externally-owned session store and club
// client. It starts the limiter sweep loop; call Close on shutdown.
func New(clubClient ClubAPI, store *session.Store, cfg Config, opts ...Option) *API {
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = defaultLoginRateLimit
	}
	if cfg.LoginRateWindow <= 0 {
		cfg.LoginRateWindow = defaultLoginRateWindow
	}
	if cfg.APIRateLimit <= 0 {
		cfg.APIRateLimit = defaultAPIRateLimit
	}
	if cfg.APIRateWindow <= 0 {
		cfg.APIRateWindow = defaultAPIRateWindow
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	a := &API{
		club:           clubClient,
		store:          store,
		loginLimiter:   newRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow),
		apiLimiter:     newRateLimiter(cfg.APIRateLimit, cfg.APIRateWindow),
		trustedProxies: parseTrustedProxies(cfg.TrustedProxies),
		stopCh:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	if a.registerer == nil {
		a.registerer = prometheus.NewRegistry()
	}
	a.audit = newAuditLogger(a.logger)
	a.metrics = newMetrics(a.registerer, func() float64 {
		return float64(store.Len())
	})
	a.validator = session.NewValidator(store, a.logger, a.onBindingMismatch)

	go a.sweepLoop(cfg.SweepInterval)
	return a
}

// Close stops the limiter sweep loop. Idempotent.
func (a *API) Close() {
	a.stopOnce.Do(func() {
		close(a.stopCh)
	})
}

func (a *API) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.loginLimiter.sweep()
			a.apiLimiter.sweep()
		case <-a.stopCh:
			return
		}
	}
}

// Router returns a chi.Router with all API routes mounted. Authentication
// is enforced by the Gate middleware, applied by the caller around the
// whole server.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/redoc",
	}, nil))

	r.Post("/auth/login", a.Login)
	r.Post("/auth/logout", a.Logout)
	r.Get("/auth/me", a.Me)

	r.Get("/bookings", a.ListBookings)
	r.Post("/bookings", a.CreateBooking)
	r.Get("/hosts", a.ListHosts)
	r.Get("/payments", a.ListPayments)
	r.Get("/leaderboard", a.Leaderboard)

	r.Get("/admin/security-events", a.ListSecurityEvents)

	return r
}

// onBindingMismatch fans a soft-binding anomaly out to metrics and the
// journal. The validator has already logged it.
func (a *API) onBindingMismatch(rec session.Record, kind, got string) {
	a.metrics.bindingMismatch.WithLabelValues(kind).Inc()
	a.recordSecurityEvent(eventlog.Event{
		Kind:     "binding_mismatch",
		UserID:   rec.UserID,
		RemoteIP: got,
		Detail:   kind,
	})
}

// recordSecurityEvent appends to the journal off the request path; session
// bookkeeping itself never blocks on disk.
func (a *API) recordSecurityEvent(e eventlog.Event) {
	if a.events == nil {
		return
	}
	go func() {
		if err := a.events.Append(e); err != nil {
			a.logger.Error("appending security event", "err", err)
		}
	}()
}
