package cache

import "net/url"

// Key returns the canonical cache key for u: scheme+host+port+path+query,
// with headers deliberately excluded (spec §4.9 — a Vary-aware variant
// is left to a higher layer).
func Key(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path + "?" + u.RawQuery
}
