package api

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// unknownClient is the rate-limit identifier used when no client IP can be
// resolved. All such requests share one budget, which is the safe direction
// to fail.
const unknownClient = "unknown"

// clientIP returns the caller identifier used for rate limiting and session
// binding.
//
// Forwarding headers (X-Forwarded-For, X-Real-IP) are only honored when the
// direct peer falls inside a configured trusted-proxy range; otherwise an
// untrusted client could spoof its identifier and dodge its own budget.
// With no trusted proxies configured (the default), RemoteAddr is always
// used.
func (a *API) clientIP(r *http.Request) string {
	remote, _ := normalizeIP(r.RemoteAddr)

	trusted := false
	if len(a.trustedProxies) > 0 && remote != "" {
		if addr, err := netip.ParseAddr(remote); err == nil {
			for _, prefix := range a.trustedProxies {
				if prefix.Contains(addr) {
					trusted = true
					break
				}
			}
		}
	}

	if trusted {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			for _, part := range strings.Split(xff, ",") {
				if ip, ok := normalizeIP(part); ok {
					return ip
				}
			}
		}
		if ip, ok := normalizeIP(r.Header.Get("X-Real-IP")); ok {
			return ip
		}
	}

	if remote != "" {
		return remote
	}
	return unknownClient
}

// normalizeIP parses a host, host:port or bracketed IPv6 candidate into a
// canonical address string.
func normalizeIP(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if i := strings.IndexByte(s, '%'); i >= 0 {
		s = s[:i]
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", false
	}
	return addr.String(), true
}

// parseTrustedProxies parses a comma-separated list of CIDR ranges or bare
// addresses into prefixes. Invalid entries are skipped.
func parseTrustedProxies(list string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(part); err == nil {
			prefixes = append(prefixes, prefix)
			continue
		}
		if addr, err := netip.ParseAddr(part); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return prefixes
}
