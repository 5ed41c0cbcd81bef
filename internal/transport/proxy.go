// Package transport implements connection establishment and the
// protocol engines quyc dispatches requests over: Happy-Eyeballs dual
// stack dialing, SOCKS/CONNECT proxy tunneling, and the HTTP/1.1,
// HTTP/2, and HTTP/3 chunk-stream facades (spec §4.7, §4.8).
package transport

import (
	"net"
	"net/netip"
	"strings"
)

// NoProxyMatcher implements spec §4.7's no_proxy matching rules: a
// comma-separated list of patterns, each either "*", an exact host, a
// bare suffix matched after a "." separator, a leading-dot suffix, or a
// CIDR block matched against a literal target IP.
type NoProxyMatcher struct {
	matchAll bool
	exact    map[string]bool
	suffixes []string
	cidrs    []netip.Prefix
}

// NewNoProxyMatcher parses a comma-separated no_proxy list.
func NewNoProxyMatcher(list string) *NoProxyMatcher {
	m := &NoProxyMatcher{exact: make(map[string]bool)}
	for _, raw := range strings.Split(list, ",") {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}
		if pattern == "*" {
			m.matchAll = true
			continue
		}
		if prefix, err := netip.ParsePrefix(pattern); err == nil {
			m.cidrs = append(m.cidrs, prefix)
			continue
		}
		if strings.HasPrefix(pattern, ".") {
			m.suffixes = append(m.suffixes, pattern)
			continue
		}
		m.exact[strings.ToLower(pattern)] = true
		m.suffixes = append(m.suffixes, "."+strings.ToLower(pattern))
	}
	return m
}

// Matches reports whether host should bypass the proxy.
func (m *NoProxyMatcher) Matches(host string) bool {
	if m.matchAll {
		return true
	}
	host = strings.ToLower(host)
	if m.exact[host] {
		return true
	}
	for _, suffix := range m.suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		for _, prefix := range m.cidrs {
			if prefix.Contains(addr) {
				return true
			}
		}
	}
	return false
}

// SplitHostPort is a small wrapper around net.SplitHostPort that
// returns host unchanged (and a synthesized default port) when no port
// is present, matching the liberal parsing HTTP client proxy
// configuration typically needs.
func SplitHostPort(hostport, defaultPort string) (host, port string) {
	h, p, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport, defaultPort
	}
	return h, p
}
