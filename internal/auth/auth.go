// Package auth provides request authentication strategies — one of
// SPEC_FULL.md's supplemented features (Bearer, Basic, API-key), each
// reduced to a single Apply method that decorates an outgoing request's
// headers.
package auth

import (
	"encoding/base64"
	"net/http"
)

// Provider decorates an outgoing request with credentials.
type Provider interface {
	Apply(header http.Header)
}

// Bearer sends an RFC 6750 Bearer token.
type Bearer struct {
	Token string
}

func (b Bearer) Apply(header http.Header) {
	header.Set("Authorization", "Bearer "+b.Token)
}

// Basic sends RFC 7617 HTTP Basic credentials.
type Basic struct {
	Username, Password string
}

func (b Basic) Apply(header http.Header) {
	raw := b.Username + ":" + b.Password
	header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(raw)))
}

// APIKey sends a credential in an arbitrary header, e.g. "X-Api-Key".
type APIKey struct {
	Header string
	Key    string
}

func (a APIKey) Apply(header http.Header) {
	name := a.Header
	if name == "" {
		name = "X-Api-Key"
	}
	header.Set(name, a.Key)
}

// None applies no credentials; the zero value of Provider-typed fields
// should use this instead of a nil interface so callers never need a
// nil check before calling Apply.
type None struct{}

func (None) Apply(http.Header) {}
