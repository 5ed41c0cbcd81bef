package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DeriveExpiry implements spec §4.9's three-step expiry derivation:
// Cache-Control max-age wins first, then Expires, else no expiry.
func DeriveExpiry(header http.Header, now time.Time) *time.Time {
	if maxAge, ok := maxAgeSeconds(header.Get("Cache-Control")); ok {
		t := now.Add(time.Duration(maxAge) * time.Second)
		return &t
	}
	if exp := header.Get("Expires"); exp != "" {
		if t, err := http.ParseTime(exp); err == nil && t.After(now) {
			return &t
		}
	}
	return nil
}

// maxAgeSeconds parses the first max-age directive out of a
// Cache-Control header value. Per spec, "first directive wins" — this
// returns on the first well-formed max-age= token rather than scanning
// for the largest or smallest.
func maxAgeSeconds(cacheControl string) (int, bool) {
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		const prefix = "max-age="
		if !strings.HasPrefix(strings.ToLower(directive), prefix) {
			continue
		}
		n, err := strconv.Atoi(directive[len(prefix):])
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}
