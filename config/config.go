// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config is populated from CLUBPOINT_* environment variables; every knob
// has a default, so an empty environment yields a runnable configuration.
// The server command's flags override individual fields.
type Config struct {
	ListenAddr string `env:"CLUBPOINT_LISTEN_ADDR,default=:8080"`

	ClubAPIURL string `env:"CLUBPOINT_CLUB_API_URL,default=http://localhost:4000/graphql"`
	ClubAPIKey string `env:"CLUBPOINT_CLUB_API_KEY"`

	SessionTTL     time.Duration `env:"CLUBPOINT_SESSION_TTL,default=24h"`
	ReaperInterval time.Duration `env:"CLUBPOINT_REAPER_INTERVAL,default=5m"`

	LoginRateLimit  int           `env:"CLUBPOINT_LOGIN_RATE_LIMIT,default=5"`
	LoginRateWindow time.Duration `env:"CLUBPOINT_LOGIN_RATE_WINDOW,default=15m"`
	APIRateLimit    int           `env:"CLUBPOINT_API_RATE_LIMIT,default=80"`
	APIRateWindow   time.Duration `env:"CLUBPOINT_API_RATE_WINDOW,default=1m"`

	// TrustedProxies is a comma-separated list of CIDR ranges whose
	// forwarding headers are honored when resolving client IPs.
	TrustedProxies string `env:"CLUBPOINT_TRUSTED_PROXIES"`

	// EventsDBPath is the bbolt security-event journal. Empty disables it.
	EventsDBPath string `env:"CLUBPOINT_EVENTS_DB,default=clubpoint-events.db"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := envdecode.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decoding environment: %w", err)
	}
	if c.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("session TTL must be positive, got %s", c.SessionTTL)
	}
	if c.ReaperInterval <= 0 {
		return Config{}, fmt.Errorf("reaper interval must be positive, got %s", c.ReaperInterval)
	}
	return c, nil
}
