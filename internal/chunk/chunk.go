// Package chunk defines the capability every stream element in quyc
// implements: a value that is either a payload or a typed error carrier.
//
// Errors never short-circuit a stream's type. A producer that hits a
// recoverable problem mid-stream emits a BadChunk instead of returning
// early, so the consumer sees successes and failures interleaved in
// source order and decides for itself whether to stop at the first
// failure or drain and filter them out.
package chunk

// Chunk is the capability set every element flowing through a quyc
// stream must satisfy. T is typically a concrete struct (a header pair,
// a body fragment, a deserialized record) that embeds or implements
// these two methods; the Default/BadChunk constructors live on Factory.
type Chunk[T any] interface {
	// IsError reports whether this chunk carries an error instead of a
	// payload.
	IsError() bool

	// Error returns the carried error message, or "" if IsError is false.
	Error() string
}

// Factory is implemented by a chunk type's zero-value constructor pair.
// Go has no static/trait-level methods, so the factory is modeled as an
// interface that a separate factory value can satisfy, letting generic
// code build new instances of T without naming the concrete type (see
// BadBase below for building an error-flagged Base).
type Factory[T any] interface {
	Default() T
	BadChunk(msg string) T
}

// Base is an embeddable struct giving any chunk payload type IsError
// and ErrorMsg with a single line: `chunk.Base` as an anonymous field.
// Base has no Error method, so an embedding type adds a one-line Error
// that forwards to ErrorMsg to satisfy Chunk. Most concrete chunk types
// in this module (header pairs, body fragments, trailer pairs) embed
// Base rather than hand-rolling IsError.
type Base struct {
	errMsg  string
	isError bool
}

// IsError reports whether this chunk carries an error.
func (b Base) IsError() bool { return b.isError }

// ErrorMsg returns the carried error message, or "" for a non-error chunk.
func (b Base) ErrorMsg() string { return b.errMsg }

// BadBase returns a Base flagged as an error, carrying msg.
func BadBase(msg string) Base {
	return Base{errMsg: msg, isError: true}
}
