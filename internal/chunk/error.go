package chunk

import "fmt"

// Kind enumerates the error taxonomy from spec §4.11 / §7.
type Kind int

const (
	KindBuilder Kind = iota
	KindRequest
	KindRedirect
	KindStatus
	KindBody
	KindDecode
	KindUpgrade
	KindConnect
	KindTimeout
	KindPayloadTooLarge
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindBuilder:
		return "builder"
	case KindRequest:
		return "request"
	case KindRedirect:
		return "redirect"
	case KindStatus:
		return "status"
	case KindBody:
		return "body"
	case KindDecode:
		return "decode"
	case KindUpgrade:
		return "upgrade"
	case KindConnect:
		return "connect"
	case KindTimeout:
		return "timeout"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Error is quyc's error type. It carries a Kind, an optional wrapped
// source error, and an optional URL context, and — per spec §4.11 — it
// implements the chunk capability set itself, so an error-bearing stream
// of *Error values stays homogeneous with every other chunk stream in
// the library: IsError is unconditionally true, and BadChunk produces a
// KindRequest error wrapping the given message.
type Error struct {
	Kind       Kind
	StatusCode int    // populated only for KindStatus
	Reason     string // optional human-readable reason, e.g. for KindStatus
	URL        string // optional request URL context
	Source     error  // optional wrapped cause
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	if e.Kind == KindStatus {
		class := "client error"
		if e.StatusCode >= 500 {
			class = "server error"
		}
		prefix = fmt.Sprintf("status %d (%s)", e.StatusCode, class)
	}
	msg := prefix
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.URL != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.URL)
	}
	if e.Source != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Source)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Source }

// IsError always returns true: every *Error value is, definitionally,
// an error. This lets *Error satisfy Chunk[*Error] directly.
func (e *Error) IsError() bool { return true }

// ErrorMsg returns the same text as Error().
func (e *Error) ErrorMsg() string { return e.Error() }

// Default returns nil — required by the Factory contract even though an
// *Error's natural state is "is an error". Callers that need a sentinel
// "no error yet" value use this; IsError on the returned nil pointer
// still reports true.
func (e *Error) Default() *Error { return nil }

// BadChunk builds a KindRequest error wrapping msg, satisfying the
// Factory contract for *Error-typed streams.
func (e *Error) BadChunk(msg string) *Error {
	return &Error{Kind: KindRequest, Reason: msg}
}

// New constructs an *Error of the given kind wrapping src, with no URL
// context attached yet (see WithURL).
func New(kind Kind, reason string, src error) *Error {
	return &Error{Kind: kind, Reason: reason, Source: src}
}

// Status constructs a KindStatus error for a non-2xx HTTP response.
func Status(code int, reason string) *Error {
	return &Error{Kind: KindStatus, StatusCode: code, Reason: reason}
}

// WithURL returns a copy of e with URL context attached.
func (e *Error) WithURL(url string) *Error {
	cp := *e
	cp.URL = url
	return &cp
}

// Retryable classifies whether this error kind is, by its nature,
// eligible for a retry — independent of the attempt-count/backoff
// policy in internal/retry, which additionally folds in status-code
// based retryability.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindRequest, KindConnect, KindTimeout, KindStream:
		return true
	case KindStatus:
		return e.StatusCode >= 500 || e.StatusCode == 429
	default:
		return false
	}
}
