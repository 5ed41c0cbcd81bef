package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachineSingleObjectDocument(t *testing.T) {
	m := NewStateMachine(false)
	boundaries, warning := m.Feed([]byte(`{"a":1}`))
	assert.Empty(t, warning)
	assert.Empty(t, boundaries) // non-array mode never emits element boundaries
	assert.Equal(t, StateComplete, m.State())
}

func TestStateMachineStreamingArrayYieldsEachElement(t *testing.T) {
	m := NewStateMachine(true)
	boundaries, warning := m.Feed([]byte(`[{"id":1},{"id":2}]`))
	require.Empty(t, warning)
	require.Len(t, boundaries, 2)
	assert.Equal(t, StateComplete, m.State())
	assert.Equal(t, 2, m.Stats().ObjectsYielded)
}

func TestStateMachineHandlesStringsWithBraces(t *testing.T) {
	m := NewStateMachine(true)
	boundaries, _ := m.Feed([]byte(`[{"note":"a { b } c"}]`))
	require.Len(t, boundaries, 1)
}

func TestStateMachineHandlesEscapedQuotes(t *testing.T) {
	m := NewStateMachine(true)
	boundaries, _ := m.Feed([]byte(`[{"note":"she said \"hi\""}]`))
	require.Len(t, boundaries, 1)
}

func TestStateMachineFeedAcrossMultipleChunks(t *testing.T) {
	m := NewStateMachine(true)
	b1, _ := m.Feed([]byte(`[{"id":1`))
	assert.Empty(t, b1) // first element not yet closed
	b2, _ := m.Feed([]byte(`},{"id":2}]`))
	require.Len(t, b2, 2)
}

func TestStateMachineIgnoresBytesAfterCompletion(t *testing.T) {
	m := NewStateMachine(false)
	m.Feed([]byte(`{}`))
	_, warning := m.Feed([]byte(`garbage`))
	assert.NotEmpty(t, warning)
}

func TestStateMachineUnbalancedCloseFails(t *testing.T) {
	m := NewStateMachine(false)
	m.Feed([]byte(`}`))
	assert.Equal(t, StateError, m.State())
	assert.Error(t, m.Err())
}

func TestStateMachineRecoverRequiresRecoverableError(t *testing.T) {
	m := NewStateMachine(true)
	m.Feed([]byte(`[`))
	m.Feed([]byte(`}`)) // unbalanced '}' inside streamed array: recoverable
	assert.Equal(t, StateError, m.State())
	assert.True(t, m.Recover())
	assert.Equal(t, StateInitial, m.State())
}

func TestStateMachineDepthStatInvariant(t *testing.T) {
	m := NewStateMachine(false)
	m.Feed([]byte(`{"a":{"b":1}}`))
	assert.Equal(t, StateComplete, m.State())
	assert.Equal(t, 0, m.Stats().CurrentDepth)
}
