package jsonpath

import (
	"time"

	"github.com/nolan-howard/quyc/internal/chunk"
)

// circuitBreakerThreshold and circuitBreakerResetTimeout are the
// defaults from spec §4.6.
const (
	circuitBreakerThreshold    = 5
	circuitBreakerResetTimeout = 30 * time.Second
)

// DeserializeFunc parses one complete JSON object slice into a T. It is
// the generic stand-in for the "T::deserialize" capability spec §4.6
// asks the target type to provide; callers typically pass
// json.Unmarshal-backed adapters.
type DeserializeFunc[T any] func(data []byte) (T, error)

// StreamDeserializer composes a StateMachine, a StreamBuffer, and a
// target type's deserialize/bad-chunk capability (chunk.Factory[T]) to
// turn raw transport bytes into a pull sequence of T values (spec
// §4.6). It never retains more than one unfinished object beyond the
// current cursor: bytes belonging to completed objects are consumed
// from the buffer as soon as each boundary is processed.
//
// The state machine drives arrayMode framing (telling the scanner when
// the compiled path expects a streamed array rather than a lone
// object, and whether that array sits at the document root or nested
// under other selectors) and is the sole source of object boundaries;
// the buffer only holds the still-unconsumed bytes those boundaries are
// sliced out of. Each framed element is then run through the compiled
// expression's tail selector before being handed to deserialize, so a
// filter predicate excludes elements from the stream exactly as it
// would from Evaluate's eager result.
type StreamDeserializer[T any] struct {
	expr    *Expression
	machine *StateMachine
	buffer  *StreamBuffer

	deserialize DeserializeFunc[T]
	factory     chunk.Factory[T]

	consecutiveFailures int
	breakerOpenedAt     time.Time
	breakerOpen         bool

	compileErrEmitted bool
	compileErr        error

	// tailSelector is the chain's last selector — the one whose match
	// decided Expression.IsArrayStream. When it's a filter, each framed
	// element must pass it before being emitted; other kinds (Wildcard,
	// Slice, Union, RecursiveDescent) already select every element the
	// state machine frames, so they pass through unconditionally.
	tailSelector *Selector

	// peerKeys accumulates object member names across elements seen so
	// far in this stream, approximating spec §4.3's whole-array peer set
	// for the missing-vs-null comparison rule: a streaming pass can only
	// know about peers it has already seen, not ones still to arrive.
	peerKeys map[string]bool
}

// NewStreamDeserializer compiles pathExpr once. A compile error is not
// returned here — per spec §4.6 it is surfaced as the first value
// ProcessChunk returns, via factory.BadChunk, so construction never fails.
func NewStreamDeserializer[T any](pathExpr string, deserialize DeserializeFunc[T], factory chunk.Factory[T]) *StreamDeserializer[T] {
	d := &StreamDeserializer[T]{deserialize: deserialize, factory: factory}
	expr, err := Parse(pathExpr)
	if err != nil {
		d.compileErr = err
		return d
	}
	d.expr = expr
	d.machine = NewStateMachine(expr.IsArrayStream)
	d.buffer = NewStreamBuffer(4096, 4<<20, 4)
	if len(expr.Chain) > 0 {
		tail := expr.Chain[len(expr.Chain)-1]
		d.tailSelector = &tail
	}
	return d
}

// ProcessChunk extends the buffer with newly arrived transport bytes,
// scans for newly closed object boundaries, and attempts to
// deserialize each one, returning the resulting values in order (spec
// §4.6). A deserialization failure yields factory.BadChunk instead of
// halting the sequence.
func (d *StreamDeserializer[T]) ProcessChunk(data []byte) []T {
	if d.compileErr != nil {
		if d.compileErrEmitted {
			return nil
		}
		d.compileErrEmitted = true
		return []T{d.factory.BadChunk("jsonpath: " + d.compileErr.Error())}
	}

	d.buffer.Append(data)
	boundaries, _ := d.machine.Feed(data)
	if len(boundaries) == 0 {
		return nil
	}

	// ObjectBoundary offsets are absolute since construction; the buffer
	// may have discarded its consumed prefix, so rebase against how much
	// it has already dropped to land back in AsBytes()'s window.
	consumedBase := d.buffer.Stats().TotalBytesProcessed
	readable := d.buffer.AsBytes()

	var out []T
	consumedUpTo := 0
	for _, b := range boundaries {
		start, end := b.Start-consumedBase, b.End-consumedBase
		if start < 0 || end > len(readable) || start >= end {
			continue
		}
		if end > consumedUpTo {
			consumedUpTo = end
		}
		raw := readable[start:end]
		if !d.passesTailSelector(raw) {
			continue
		}
		if v, ok := d.emit(raw); ok {
			out = append(out, v)
		}
	}
	d.buffer.Consume(consumedUpTo)

	return out
}

// passesTailSelector applies the chain's array-governing selector to one
// framed element so a streamed filter predicate narrows the emitted set
// the same way Evaluate would (spec §8's multiset invariant). Non-filter
// tail selectors already match every element the state machine frames.
func (d *StreamDeserializer[T]) passesTailSelector(raw []byte) bool {
	if d.tailSelector == nil || d.tailSelector.Kind != SelectorFilter {
		return true
	}
	elem, err := Decode(raw)
	if err != nil {
		return true // let deserialize surface the parse failure as a BadChunk
	}
	if obj, ok := elem.(Object); ok {
		if d.peerKeys == nil {
			d.peerKeys = make(map[string]bool, len(obj))
		}
		for _, kv := range obj {
			d.peerKeys[kv.Key] = true
		}
	}
	return evalTest(d.tailSelector.Filter, filterCtx{current: elem, peerKeys: d.peerKeys})
}

// MachineState exposes the underlying scanner's coarse state, useful
// for callers deciding whether a stream ended cleanly.
func (d *StreamDeserializer[T]) MachineState() MachineState {
	if d.machine == nil {
		return StateError
	}
	return d.machine.State()
}

// emit deserializes one framed element. ok is false when the element
// produces nothing: a failure while the circuit breaker is open is
// suppressed rather than emitted. A success, or the reset timeout
// elapsing, closes the breaker again.
func (d *StreamDeserializer[T]) emit(raw []byte) (v T, ok bool) {
	if d.breakerOpen && time.Since(d.breakerOpenedAt) >= circuitBreakerResetTimeout {
		d.breakerOpen = false
		d.consecutiveFailures = 0
	}

	v, err := d.deserialize(raw)
	if err != nil {
		if d.breakerOpen {
			var zero T
			return zero, false
		}
		d.consecutiveFailures++
		if d.consecutiveFailures >= circuitBreakerThreshold {
			d.breakerOpen = true
			d.breakerOpenedAt = time.Now()
		}
		return d.factory.BadChunk(err.Error()), true
	}
	d.breakerOpen = false
	d.consecutiveFailures = 0
	return v, true
}
