// Package club is the HTTP client for the external club-management API.
// It performs the delegated credential check at login and proxies booking,
// host, payment and leaderboard queries using the member's access token.
package club

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/awnumar/memguard"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrInvalidCredentials means the club API rejected the member's
	// login/password pair.
	ErrInvalidCredentials = errors.New("club: invalid credentials")
	// ErrUpstream covers transport failures and unexpected responses from
	// the club API.
	ErrUpstream = errors.New("club: upstream error")
)

// Profile is the member profile as returned by the club API.
type Profile struct {
	UserID   string  `json:"id"`
	Login    string  `json:"login"`
	Nickname string  `json:"nickname"`
	Phone    string  `json:"phone"`
	Deposit  float64 `json:"deposit"`
	Bonus    float64 `json:"bonus"`
}

// AuthResult is the outcome of a successful delegated authentication.
type AuthResult struct {
	Profile     Profile
	AccessToken string
}

// BookingInput is the payload for creating a booking upstream.
type BookingInput struct {
	HostID   string    `json:"hostId"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Comment  string    `json:"comment,omitempty"`
}

// Client talks to the club-management GraphQL endpoint. The service API key
// is held in a memguard enclave and only decrypted around each request.
type Client struct {
	endpoint   string
	apiKey     *memguard.Enclave
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client for the GraphQL endpoint at url. apiKey may be empty
// when the upstream does not require a service key.
func New(url, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	var enclave *memguard.Enclave
	if apiKey != "" {
		enclave = memguard.NewEnclave([]byte(apiKey))
	}
	return &Client{
		endpoint: url,
		apiKey:   enclave,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With("component", "club_client"),
	}
}

// NormalizeLogin canonicalizes a member login before it is used as an
// upstream credential: trimmed and NFC-normalized, so visually identical
// inputs from different keyboards resolve to one account.
func NormalizeLogin(login string) string {
	return norm.NFC.String(strings.TrimSpace(login))
}

// Authenticate performs the delegated credential check and returns the
// member profile plus the access token for subsequent calls on the member's
// behalf.
func (c *Client) Authenticate(ctx context.Context, login, password string) (*AuthResult, error) {
	vars := map[string]any{
		"login":    NormalizeLogin(login),
		"password": password,
	}
	data, err := c.do(ctx, "", loginQuery, vars)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Login struct {
			AccessToken string  `json:"accessToken"`
			User        Profile `json:"user"`
		} `json:"login"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding login payload: %v", ErrUpstream, err)
	}
	if payload.Login.User.UserID == "" {
		return nil, ErrInvalidCredentials
	}
	return &AuthResult{
		Profile:     payload.Login.User,
		AccessToken: payload.Login.AccessToken,
	}, nil
}

// Bookings lists the member's bookings.
func (c *Client) Bookings(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return c.do(ctx, accessToken, bookingsQuery, nil)
}

// CreateBooking books a seat with the given host and time range.
func (c *Client) CreateBooking(ctx context.Context, accessToken string, in BookingInput) (json.RawMessage, error) {
	return c.do(ctx, accessToken, createBookingQuery, map[string]any{"input": in})
}

// Hosts lists available gaming hosts.
func (c *Client) Hosts(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return c.do(ctx, accessToken, hostsQuery, nil)
}

// Payments lists the member's payment history.
func (c *Client) Payments(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return c.do(ctx, accessToken, paymentsQuery, nil)
}

// Leaderboard returns the club leaderboard.
func (c *Client) Leaderboard(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return c.do(ctx, accessToken, leaderboardQuery, nil)
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// do posts one GraphQL request and returns the data field. GraphQL errors
// with an authentication code map to ErrInvalidCredentials; everything else
// surfaces as ErrUpstream.
func (c *Client) do(ctx context.Context, accessToken, query string, vars map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": vars,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if err := c.setAPIKey(req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("club api returned non-200", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []gqlError      `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	if len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		switch first.Extensions.Code {
		case "UNAUTHENTICATED", "INVALID_CREDENTIALS":
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstream, first.Message)
	}
	return envelope.Data, nil
}

// setAPIKey opens the enclave just long enough to copy the key into the
// request header.
func (c *Client) setAPIKey(req *http.Request) error {
	if c.apiKey == nil {
		return nil
	}
	buf, err := c.apiKey.Open()
	if err != nil {
		return fmt.Errorf("opening api key enclave: %w", err)
	}
	defer buf.Destroy()
	req.Header.Set("X-Api-Key", buf.String())
	return nil
}
