package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func gateOnlyAPI(trustedProxies string) *API {
	return &API{trustedProxies: parseTrustedProxies(trustedProxies)}
}

func TestClientIP_UsesRemoteAddrByDefault(t *testing.T) {
	a := gateOnlyAPI("")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	r.Header.Set("X-Forwarded-For", "10.0.0.1")

	assert.Equal(t, "203.0.113.9", a.clientIP(r),
		"forwarding headers are ignored without trusted proxies")
}

func TestClientIP_HonorsHeadersFromTrustedProxy(t *testing.T) {
	a := gateOnlyAPI("127.0.0.0/8")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "127.0.0.1:51234"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	assert.Equal(t, "203.0.113.9", a.clientIP(r))
}

func TestClientIP_XRealIPFallback(t *testing.T) {
	a := gateOnlyAPI("127.0.0.0/8")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "127.0.0.1:51234"
	r.Header.Set("X-Real-IP", "198.51.100.7")

	assert.Equal(t, "198.51.100.7", a.clientIP(r))
}

func TestClientIP_IgnoresHeadersFromUntrustedPeer(t *testing.T) {
	a := gateOnlyAPI("10.0.0.0/8")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:1"
	r.Header.Set("X-Real-IP", "198.51.100.7")

	assert.Equal(t, "203.0.113.9", a.clientIP(r))
}

func TestClientIP_UnknownWhenUnresolvable(t *testing.T) {
	a := gateOnlyAPI("")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "not-an-address"

	assert.Equal(t, unknownClient, a.clientIP(r))
}

func TestNormalizeIP(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1.2.3.4", "1.2.3.4", true},
		{"1.2.3.4:80", "1.2.3.4", true},
		{"[::1]:8080", "::1", true},
		{"fe80::1%eth0", "fe80::1", true},
		{"", "", false},
		{"garbage", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeIP(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := bearerToken(r)
	assert.False(t, ok, "no header")

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, ok = bearerToken(r)
	assert.False(t, ok, "wrong scheme")

	r.Header.Set("Authorization", "Bearer ")
	_, ok = bearerToken(r)
	assert.False(t, ok, "empty token")

	r.Header.Set("Authorization", "Bearer abc123")
	token, ok := bearerToken(r)
	assert.True(t, ok)
	assert.Equal(t, "abc123", token)

	r.Header.Set("Authorization", "bearer abc123")
	token, ok = bearerToken(r)
	assert.True(t, ok, "scheme is case-insensitive")
	assert.Equal(t, "abc123", token)
}
