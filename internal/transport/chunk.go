package transport

import (
	"net/http"

	"github.com/nolan-howard/quyc/internal/chunk"
)

// HeaderChunk carries the response status line and header block, always
// the first chunk a protocol engine emits for a response.
type HeaderChunk struct {
	chunk.Base
	StatusCode int
	Header     http.Header
	Proto      string // "HTTP/1.1", "HTTP/2", "HTTP/3"
}

// Error satisfies chunk.Chunk by forwarding to the embedded Base's
// ErrorMsg, which Base itself doesn't provide (see internal/chunk's Base
// doc comment: it gives IsError/ErrorMsg, not Error).
func (h HeaderChunk) Error() string { return h.ErrorMsg() }

// BodyChunk carries one fragment of the response body.
type BodyChunk struct {
	chunk.Base
	Data []byte
}

func (b BodyChunk) Error() string { return b.ErrorMsg() }

// TrailerChunk carries the response trailer block, the last chunk a
// protocol engine emits for a response that has one.
type TrailerChunk struct {
	chunk.Base
	Trailer http.Header
}

func (t TrailerChunk) Error() string { return t.ErrorMsg() }

// StreamElement is a uniform stream element carrying exactly one of a
// header, a body fragment, or a trailer — the facade every protocol
// engine emits through (spec §4.8).
type StreamElement struct {
	chunk.Base
	Header  *HeaderChunk
	Body    *BodyChunk
	Trailer *TrailerChunk
}

func (s StreamElement) Error() string { return s.ErrorMsg() }

type elementFactory struct{}

func (elementFactory) Default() StreamElement { return StreamElement{} }

func (elementFactory) BadChunk(msg string) StreamElement {
	return StreamElement{Base: chunk.BadBase(msg)}
}

// ElementFactory is a chunk.Factory[StreamElement] value for consumers
// that build StreamDeserializer/circuit-breaker style wrappers around a
// response stream; the protocol engines build their elements directly
// with the helpers below.
var ElementFactory chunk.Factory[StreamElement] = elementFactory{}

func headerElement(h HeaderChunk) StreamElement   { return StreamElement{Header: &h} }
func bodyElement(b BodyChunk) StreamElement       { return StreamElement{Body: &b} }
func trailerElement(t TrailerChunk) StreamElement { return StreamElement{Trailer: &t} }

func errorElement(msg string) StreamElement {
	return StreamElement{Base: chunk.BadBase(msg)}
}
