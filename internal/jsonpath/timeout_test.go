package jsonpath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendedTimeoutSimpleChain(t *testing.T) {
	expr, err := Parse("$.store.name")
	require.NoError(t, err)
	assert.Equal(t, TimeoutSimple, RecommendedTimeout(expr))
}

func TestRecommendedTimeoutDefaultForFilter(t *testing.T) {
	expr, err := Parse("$.items[?(@.price < 10)]")
	require.NoError(t, err)
	assert.Equal(t, TimeoutDefault, RecommendedTimeout(expr))
}

func TestRecommendedTimeoutDangerousForDeepRecursiveDescent(t *testing.T) {
	expr, err := Parse("$..a..b..c..d..e..f")
	require.NoError(t, err)
	require.True(t, expr.Complexity.Dangerous())
	assert.Equal(t, TimeoutDangerous, RecommendedTimeout(expr))
}

func TestEvaluateTimedReturnsResultWithinBudget(t *testing.T) {
	expr, err := Parse("$.a")
	require.NoError(t, err)
	root, err := Decode([]byte(`{"a":1}`))
	require.NoError(t, err)

	nodes, warn := EvaluateTimed(expr, root, time.Second)
	assert.Nil(t, warn)
	assert.Equal(t, []any{1.0}, nodes)
}

func TestEvaluateTimedReturnsWarningOnTimeout(t *testing.T) {
	expr, err := Parse("$..x")
	require.NoError(t, err)

	// Build a deeply nested document so Evaluate takes measurably longer
	// than an effectively-zero timeout, keeping the race between the
	// timer and the worker goroutine decided in the timer's favor.
	doc := []byte(`{"x":0}`)
	for i := 0; i < 5000; i++ {
		doc = append([]byte(`{"n":`), append(doc, '}')...)
	}
	root, err := Decode(doc)
	require.NoError(t, err)

	nodes, warn := EvaluateTimed(expr, root, time.Nanosecond)
	assert.Nil(t, nodes)
	require.NotNil(t, warn)
	assert.Contains(t, warn.Reason, "timeout")
}
