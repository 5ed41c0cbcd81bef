package cache

import (
	"io"
	"net/http"
	"time"
)

// admissionCap is the 50 MiB per-response cap from spec §4.9.
const admissionCap = 50 << 20

// TeeWriter accumulates a response body as it streams from the
// transport to the caller, so that after the stream ends the
// accumulated bytes can be sealed into an Entry without the caller
// having to buffer the whole response itself. Once the accumulated size
// crosses admissionCap mid-stream, accumulation stops silently but the
// wrapped writer keeps receiving the full stream — admission failure
// never affects the caller-visible response.
type TeeWriter struct {
	dest      io.Writer
	key       string
	header    http.Header
	admitted  bool
	buf       []byte
	startedAt time.Time
}

// NewTeeWriter wraps dest (the writer the caller actually reads from)
// with a side accumulator keyed by key.
func NewTeeWriter(dest io.Writer, key string, header http.Header) *TeeWriter {
	return &TeeWriter{dest: dest, key: key, header: header, admitted: true, startedAt: time.Now()}
}

// Write satisfies io.Writer, forwarding every byte to dest and, while
// still under the admission cap, appending it to the side accumulator.
func (t *TeeWriter) Write(p []byte) (int, error) {
	n, err := t.dest.Write(p)
	if err != nil {
		return n, err
	}
	if t.admitted {
		if len(t.buf)+len(p) > admissionCap {
			t.admitted = false
			t.buf = nil
		} else {
			t.buf = append(t.buf, p...)
		}
	}
	return n, nil
}

// Seal finalizes the accumulator into an Entry, or returns ok=false if
// admission was abandoned (body exceeded the cap) at any point.
func (t *TeeWriter) Seal(statusCode int, trailer http.Header, now time.Time) (*Entry, bool) {
	if !t.admitted {
		return nil, false
	}
	return &Entry{
		Key:          t.key,
		StatusCode:   statusCode,
		Header:       t.header.Clone(),
		Trailer:      trailer.Clone(),
		Body:         t.buf,
		ETag:         t.header.Get("ETag"),
		LastModified: t.header.Get("Last-Modified"),
		Expiry:       DeriveExpiry(t.header, now),
		SizeBytes:    int64(len(t.buf)),
		AccessedAt:   now,
	}, true
}
