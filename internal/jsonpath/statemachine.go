package jsonpath

import "fmt"

// MachineState is the streaming scanner's coarse state (spec §4.4).
type MachineState int

const (
	StateInitial MachineState = iota
	StateNavigating
	StateStreamingArray
	StateProcessingObject
	StateFinishing
	StateComplete
	StateError
)

func (s MachineState) String() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateNavigating:
		return "Navigating"
	case StateStreamingArray:
		return "StreamingArray"
	case StateProcessingObject:
		return "ProcessingObject"
	case StateFinishing:
		return "Finishing"
	case StateComplete:
		return "Complete"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// ObjectBoundary is a complete, closed JSON object found in the stream,
// expressed as absolute byte offsets into the stream seen so far
// (spec §4.4).
type ObjectBoundary struct {
	Start, End int
}

// StateTransition records one machine state change for test
// observability (spec §4.4's "primary test observability hook").
type StateTransition struct {
	From, To MachineState
	AtOffset int
}

// MachineStats mirrors the invariant spec §4.4 calls out explicitly:
// the depth stack's length must equal CurrentDepth after every byte.
type MachineStats struct {
	CurrentDepth   int
	ObjectsYielded int
}

// StateMachine drives a byte-by-byte JSON scan, tracking enough
// navigational state (relative to a compiled path expression) to decide
// when a complete top-level JSON value matching that path has arrived.
// Grounded in the teacher's SSE loop (stream.go) for the pull-style,
// error-does-not-halt shape, generalized here to a byte scanner instead
// of a channel consumer.
type StateMachine struct {
	state MachineState

	depthStack  []byte // '{' or '[' per open container
	targetDepth  int
	inString     bool
	escaped      bool
	elementDepth int // brace depth within the current candidate array element
	elementStart int // absolute offset where the current candidate element began

	offset int // absolute bytes consumed so far

	arrayMode bool // true once Navigating decides the next match is an array

	stats       MachineStats
	transitions []StateTransition

	err           error
	errRecoverable bool
}

// NewStateMachine returns a scanner in the Initial state. arrayMode
// tells Navigating whether the compiled expression's remaining chain
// expects the next matching node to be a streamed array (spec §4.4);
// the streaming deserializer derives this from Expression.IsArrayStream.
func NewStateMachine(arrayMode bool) *StateMachine {
	return &StateMachine{state: StateInitial, arrayMode: arrayMode}
}

func (m *StateMachine) transition(to MachineState) {
	if to == m.state {
		return
	}
	m.transitions = append(m.transitions, StateTransition{From: m.state, To: to, AtOffset: m.offset})
	m.state = to
}

// State returns the current coarse state.
func (m *StateMachine) State() MachineState { return m.state }

// Stats returns a snapshot of the scanner's invariant-checked counters.
func (m *StateMachine) Stats() MachineStats { return m.stats }

// Transitions returns every recorded state change so far.
func (m *StateMachine) Transitions() []StateTransition { return m.transitions }

// Err returns the last fatal scan error, if any.
func (m *StateMachine) Err() error { return m.err }

// Recover clears scanner state and returns to Initial, but only if the
// last error was flagged recoverable (spec §4.4).
func (m *StateMachine) Recover() bool {
	if m.state != StateError || !m.errRecoverable {
		return false
	}
	m.depthStack = nil
	m.elementDepth = 0
	m.inString = false
	m.escaped = false
	m.err = nil
	m.errRecoverable = false
	m.transition(StateInitial)
	return true
}

// Feed scans data byte by byte (data is the newly-arrived slice; offset
// bookkeeping is relative to the cumulative stream position this
// machine has seen since construction) and returns every ObjectBoundary
// closed during this call. Bytes received after Complete are ignored
// with a warning string rather than an error, per spec §4.4.
func (m *StateMachine) Feed(data []byte) (boundaries []ObjectBoundary, warning string) {
	for _, b := range data {
		if m.state == StateComplete {
			warning = "bytes received after stream completion were ignored"
			m.offset++
			continue
		}
		if m.state == StateError {
			m.offset++
			continue
		}
		if boundary, ok := m.feedByte(b); ok {
			boundaries = append(boundaries, boundary)
		}
		m.offset++
	}
	return boundaries, warning
}

func (m *StateMachine) feedByte(b byte) (ObjectBoundary, bool) {
	switch m.state {
	case StateInitial:
		switch b {
		case '[':
			if m.arrayMode {
				// The root value is itself the target array — skip
				// Navigating, which only exists to find a *nested*
				// array bracket, and start framing elements immediately.
				m.targetDepth = len(m.depthStack)
				m.depthStack = append(m.depthStack, b)
				m.stats.CurrentDepth = len(m.depthStack)
				m.transition(StateStreamingArray)
				return ObjectBoundary{}, false
			}
			m.depthStack = append(m.depthStack, b)
			m.stats.CurrentDepth = len(m.depthStack)
			m.transition(StateNavigating)
		case '{':
			m.depthStack = append(m.depthStack, b)
			m.stats.CurrentDepth = len(m.depthStack)
			m.transition(StateNavigating)
		case ' ', '\t', '\n', '\r':
			// leading whitespace before the document proper
		default:
			m.fail(fmt.Errorf("jsonpath: unexpected byte %q before document start", b), false)
		}
		return ObjectBoundary{}, false

	case StateNavigating:
		return m.feedNavigating(b)

	case StateStreamingArray:
		return m.feedStreamingArray(b)

	case StateFinishing:
		switch b {
		case '}', ']':
			m.depthStack = m.depthStack[:len(m.depthStack)-1]
			m.stats.CurrentDepth = len(m.depthStack)
			if len(m.depthStack) == 0 {
				m.transition(StateComplete)
			}
		case ' ', '\t', '\n', '\r':
		default:
			m.fail(fmt.Errorf("jsonpath: unexpected byte %q while closing document", b), true)
		}
		return ObjectBoundary{}, false

	default:
		return ObjectBoundary{}, false
	}
}

// feedNavigating tracks container depth until it sees the array open
// bracket this machine was told to expect, at which point it switches
// to StreamingArray; otherwise it keeps balancing braces/brackets
// (honoring string/escape state) until the whole document closes.
func (m *StateMachine) feedNavigating(b byte) (ObjectBoundary, bool) {
	if m.inString {
		if m.escaped {
			m.escaped = false
		} else if b == '\\' {
			m.escaped = true
		} else if b == '"' {
			m.inString = false
		}
		return ObjectBoundary{}, false
	}

	switch b {
	case '"':
		m.inString = true
	case '{', '[':
		if b == '[' && m.arrayMode {
			m.targetDepth = len(m.depthStack)
			m.depthStack = append(m.depthStack, b)
			m.stats.CurrentDepth = len(m.depthStack)
			m.transition(StateStreamingArray)
			return ObjectBoundary{}, false
		}
		m.depthStack = append(m.depthStack, b)
		m.stats.CurrentDepth = len(m.depthStack)
	case '}', ']':
		if len(m.depthStack) == 0 {
			m.fail(fmt.Errorf("jsonpath: unbalanced close %q", b), false)
			return ObjectBoundary{}, false
		}
		m.depthStack = m.depthStack[:len(m.depthStack)-1]
		m.stats.CurrentDepth = len(m.depthStack)
		if len(m.depthStack) == 0 {
			m.transition(StateComplete)
		}
	}
	return ObjectBoundary{}, false
}

// feedStreamingArray implements spec §4.4's candidate-element scan:
// each '{' starts a candidate object, brace-balance (honoring strings
// and escapes) tracks its extent, and the matching '}' at element depth
// 1 closes it and emits a boundary.
func (m *StateMachine) feedStreamingArray(b byte) (ObjectBoundary, bool) {
	if m.inString {
		if m.escaped {
			m.escaped = false
		} else if b == '\\' {
			m.escaped = true
		} else if b == '"' {
			m.inString = false
		}
		return ObjectBoundary{}, false
	}

	switch b {
	case '"':
		m.inString = true
		return ObjectBoundary{}, false
	case '{':
		if m.elementDepth == 0 {
			m.elementStart = m.offset
		}
		m.elementDepth++
		return ObjectBoundary{}, false
	case '}':
		if m.elementDepth == 0 {
			m.fail(fmt.Errorf("jsonpath: unbalanced '}' inside streamed array"), true)
			return ObjectBoundary{}, false
		}
		m.elementDepth--
		if m.elementDepth == 0 {
			boundary := ObjectBoundary{Start: m.elementStart, End: m.offset + 1}
			m.stats.ObjectsYielded++
			return boundary, true
		}
		return ObjectBoundary{}, false
	case ']':
		if m.elementDepth != 0 {
			m.fail(fmt.Errorf("jsonpath: array closed mid-element"), true)
			return ObjectBoundary{}, false
		}
		m.depthStack = m.depthStack[:len(m.depthStack)-1]
		m.stats.CurrentDepth = len(m.depthStack)
		if len(m.depthStack) == 0 {
			m.transition(StateComplete)
		} else {
			m.transition(StateFinishing)
		}
		return ObjectBoundary{}, false
	default:
		return ObjectBoundary{}, false
	}
}

// fail records a scan error. Structural failures (unbalanced brackets
// at the top level) are unrecoverable; intra-value failures while
// streaming array elements are forgiving — the scanner can resume
// scanning for the next element boundary after Recover() is called.
func (m *StateMachine) fail(err error, recoverable bool) {
	m.err = err
	m.errRecoverable = recoverable
	m.transition(StateError)
}
