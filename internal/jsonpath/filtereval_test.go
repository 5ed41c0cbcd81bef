package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterExistenceCheck(t *testing.T) {
	nodes := evalPath(t, "$.items[?@.discount]", `{"items":[{"price":1,"discount":0.1},{"price":2}]}`)
	require.Len(t, nodes, 1)
}

func TestFilterLogicalAndOr(t *testing.T) {
	nodes := evalPath(t, "$.items[?(@.a > 1 && @.b < 5)]",
		`{"items":[{"a":2,"b":3},{"a":0,"b":3},{"a":2,"b":9}]}`)
	require.Len(t, nodes, 1)

	nodes = evalPath(t, "$.items[?(@.a == 1 || @.a == 3)]",
		`{"items":[{"a":1},{"a":2},{"a":3}]}`)
	require.Len(t, nodes, 2)
}

func TestFilterNegation(t *testing.T) {
	nodes := evalPath(t, "$.items[?!@.hidden]", `{"items":[{"hidden":true},{"hidden":false},{}]}`)
	require.Len(t, nodes, 2)
}

func TestFilterStringComparison(t *testing.T) {
	nodes := evalPath(t, `$.items[?@.status == "active"]`,
		`{"items":[{"status":"active"},{"status":"inactive"}]}`)
	require.Len(t, nodes, 1)
}

func TestFilterRegexMatchRequiresFullMatch(t *testing.T) {
	nodes := evalPath(t, `$.items[?match(@.name, "^a.*z$")]`,
		`{"items":[{"name":"abz"},{"name":"xabzy"}]}`)
	require.Len(t, nodes, 1)
}

func TestFilterRegexSearchAllowsSubstring(t *testing.T) {
	nodes := evalPath(t, `$.items[?search(@.name, "abz")]`,
		`{"items":[{"name":"abz"},{"name":"xabzy"},{"name":"none"}]}`)
	require.Len(t, nodes, 2)
}

func TestFilterLengthFunction(t *testing.T) {
	nodes := evalPath(t, `$.items[?length(@.tags) > 1]`,
		`{"items":[{"tags":["a"]},{"tags":["a","b"]}]}`)
	require.Len(t, nodes, 1)
}

func TestFilterCountFunction(t *testing.T) {
	nodes := evalPath(t, `$.items[?count(@.tags[*]) == 2]`,
		`{"items":[{"tags":["a"]},{"tags":["a","b"]}]}`)
	require.Len(t, nodes, 1)
}

func TestFilterNestedCurrentPath(t *testing.T) {
	nodes := evalPath(t, `$.items[?@.meta.score > 5]`,
		`{"items":[{"meta":{"score":9}},{"meta":{"score":2}}]}`)
	require.Len(t, nodes, 1)
}

func TestEvalMissingComparisonPeerSemantics(t *testing.T) {
	// Per RFC 9535: comparing a missing value against null is false
	// unless the comparison context treats the member as uniformly
	// absent. Two peers, one has "b" and one doesn't; @.b == null must
	// not match the peer lacking "b" at all since "b" exists elsewhere
	// with a non-null value.
	nodes := evalPath(t, `$.items[?@.b == null]`,
		`{"items":[{"a":1,"b":2},{"a":2}]}`)
	assert.Empty(t, nodes)
}

func TestApplyFilterSelectorOnObjectTestsItself(t *testing.T) {
	nodes := evalPath(t, `$[?@.kind == "widget"]`, `{"kind":"widget","id":1}`)
	require.Len(t, nodes, 1)
}
