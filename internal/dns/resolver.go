// Package dns implements hostname resolution, caching, and override
// support for connection establishment (spec §4.7).
package dns

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// maxAddresses is the 8-entry cap on a resolved address set.
const maxAddresses = 8

// cacheSize is the per-hostname cache's 64-entry cap.
const cacheSize = 64

// cacheTTL bounds how long a resolved address set is trusted before a
// fresh lookup is attempted; spec §4.7 doesn't name a specific figure,
// so this follows the conservative default many HTTP clients in the
// example pack use for DNS caching.
const cacheTTL = 60 * time.Second

type cacheEntry struct {
	addrs      []netip.Addr
	resolvedAt time.Time
}

// Resolver resolves hostnames to an address set, honoring an explicit
// override table before falling back to the system resolver, and
// caching results for cacheTTL.
type Resolver struct {
	preferIPv6 bool

	mu        sync.RWMutex
	overrides map[string][]netip.Addr
	cache     *lru.Cache[string, cacheEntry]

	lookup func(ctx context.Context, host string) ([]netip.Addr, error)
}

// NewResolver returns a Resolver using the system resolver, optionally
// preferring IPv6 addresses first in the returned ordering.
func NewResolver(preferIPv6 bool) *Resolver {
	c, _ := lru.New[string, cacheEntry](cacheSize)
	return &Resolver{
		preferIPv6: preferIPv6,
		overrides:  make(map[string][]netip.Addr),
		cache:      c,
		lookup:     systemLookup,
	}
}

func systemLookup(ctx context.Context, host string) ([]netip.Addr, error) {
	ips, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	return ips, err
}

// SetOverride pins host to a fixed address set, bypassing both the
// cache and the system resolver.
func (r *Resolver) SetOverride(host string, addrs []netip.Addr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[strings.ToLower(host)] = addrs
}

// ValidateHostname checks the constraints spec §4.7 names: non-empty,
// at most 253 characters, and composed of alphanumerics, hyphens (not
// at a label's ends), and dots.
func ValidateHostname(host string) error {
	if host == "" {
		return errors.New("dns: hostname must not be empty")
	}
	if len(host) > 253 {
		return errors.New("dns: hostname exceeds 253 characters")
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" {
			return errors.New("dns: hostname has an empty label")
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return errors.New("dns: hostname label must not start or end with a hyphen")
		}
		for _, r := range label {
			if !isAlnum(r) && r != '-' {
				return errors.New("dns: hostname contains an invalid character")
			}
		}
	}
	return nil
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Resolve returns host's address set, ordered per the prefer-IPv6
// flag, bounded to maxAddresses entries.
func (r *Resolver) Resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	if err := ValidateHostname(host); err != nil {
		return nil, err
	}
	key := strings.ToLower(host)

	r.mu.RLock()
	if override, ok := r.overrides[key]; ok {
		r.mu.RUnlock()
		return order(override, r.preferIPv6), nil
	}
	r.mu.RUnlock()

	if entry, ok := r.cache.Get(key); ok && time.Since(entry.resolvedAt) < cacheTTL {
		return order(entry.addrs, r.preferIPv6), nil
	}

	addrs, err := r.lookup(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) > maxAddresses {
		addrs = addrs[:maxAddresses]
	}
	r.cache.Add(key, cacheEntry{addrs: addrs, resolvedAt: time.Now()})
	return order(addrs, r.preferIPv6), nil
}

// order reorders addrs so the preferred address family sorts first,
// preserving relative order within each family (a stable partition).
func order(addrs []netip.Addr, preferIPv6 bool) []netip.Addr {
	out := make([]netip.Addr, 0, len(addrs))
	var primary, secondary []netip.Addr
	for _, a := range addrs {
		if a.Is6() == preferIPv6 {
			primary = append(primary, a)
		} else {
			secondary = append(secondary, a)
		}
	}
	out = append(out, primary...)
	out = append(out, secondary...)
	return out
}
