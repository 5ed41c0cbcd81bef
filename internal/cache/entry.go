// Package cache implements the response cache with tee-on-write
// admission and conditional-revalidation support from spec §4.9.
package cache

import (
	"net/http"
	"time"
)

// Entry is a materialized, replayable cached response.
type Entry struct {
	Key          string
	StatusCode   int
	Header       http.Header
	Trailer      http.Header
	Body         []byte
	ETag         string
	LastModified string
	Expiry       *time.Time // nil means no expiry recorded

	SizeBytes  int64
	AccessedAt time.Time
	HitCount   int
}

// Fresh reports whether the entry has not yet passed its recorded
// expiry. An entry with no recorded expiry (spec §4.9 case 3) is never
// considered fresh by this check — callers must evict/refuse to serve
// it through other policy, since the spec leaves that decision to the
// upstream orchestrator.
func (e *Entry) Fresh(now time.Time) bool {
	if e.Expiry == nil {
		return false
	}
	return now.Before(*e.Expiry)
}

// ConditionalHeaders is the validator pair spec §4.9 exposes for a
// cache key, suitable for attaching to a fresh revalidation request.
type ConditionalHeaders struct {
	IfNoneMatch     string
	IfModifiedSince string
}

// Conditional builds the revalidation headers for this entry.
func (e *Entry) Conditional() ConditionalHeaders {
	return ConditionalHeaders{IfNoneMatch: e.ETag, IfModifiedSince: e.LastModified}
}
