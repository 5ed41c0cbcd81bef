// Package jsonpath implements an RFC 9535-aligned JSONPath engine: a
// tokenizer/parser/compiler producing an optimized selector chain, an
// eager evaluator over a fully materialized tree, and (in deserializer.go
// and statemachine.go) a streaming variant that can emit matches before
// the underlying document has finished arriving.
package jsonpath

import "fmt"

// SelectorKind discriminates the selector union described in spec §3.
type SelectorKind int

const (
	SelectorRoot SelectorKind = iota
	SelectorChild
	SelectorRecursiveDescent
	SelectorIndex
	SelectorSlice
	SelectorWildcard
	SelectorFilter
	SelectorUnion
)

// Selector is one step of a compiled JSONPath expression. Only the
// fields relevant to Kind are populated; the rest stay at their zero
// value. A tagged struct (rather than an interface per selector kind)
// keeps the compiled chain a flat, cache-friendly slice — selectors are
// a hot path walked for every document.
type Selector struct {
	Kind SelectorKind

	// SelectorChild
	Name string

	// SelectorIndex
	Index    int
	FromEnd  bool

	// SelectorSlice
	HasStart, HasEnd, HasStep bool
	Start, End, Step          int

	// SelectorFilter
	Filter *FilterExpr

	// SelectorUnion
	Members []Selector
}

func (s Selector) String() string {
	switch s.Kind {
	case SelectorRoot:
		return "$"
	case SelectorChild:
		return fmt.Sprintf("['%s']", escapeSingleQuoted(s.Name))
	case SelectorRecursiveDescent:
		return ".."
	case SelectorIndex:
		if s.FromEnd {
			return fmt.Sprintf("[-%d]", s.Index)
		}
		return fmt.Sprintf("[%d]", s.Index)
	case SelectorSlice:
		return fmt.Sprintf("[%s:%s:%s]", optInt(s.HasStart, s.Start), optInt(s.HasEnd, s.End), optInt(s.HasStep, s.Step))
	case SelectorWildcard:
		return "[*]"
	case SelectorFilter:
		return "[?...]"
	case SelectorUnion:
		return "[union]"
	default:
		return "?"
	}
}

func optInt(has bool, v int) string {
	if !has {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

// FilterExprKind discriminates the filter-expression tree union from
// spec §3.
type FilterExprKind int

const (
	FilterCurrent FilterExprKind = iota
	FilterProperty
	FilterJSONPath
	FilterLiteral
	FilterComparison
	FilterLogical
	FilterRegex
	FilterFunction
	FilterNot
)

// CompareOp enumerates the comparison operators RFC 9535 defines.
type CompareOp int

const (
	CmpEq CompareOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// LogicalOp is && or ||.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

// FilterExpr is a node in the filter predicate tree (spec §3, §4.3).
type FilterExpr struct {
	Kind FilterExprKind

	// FilterProperty: a singular query after @ — Child and Index
	// selectors only, e.g. @.a.b or @['a'][0]. Evaluates to ValueType
	// (or Missing).
	PathSelectors []Selector

	// FilterJSONPath: a full subpath rooted at @ containing at least one
	// non-singular selector (Wildcard/Slice/Filter/Union/RecursiveDescent),
	// e.g. @.items[*]. Evaluates to NodesType.
	Selectors []Selector

	// FilterLiteral
	Literal any // nil, bool, float64, string

	// FilterComparison / FilterLogical
	Left, Right *FilterExpr
	CompareOp   CompareOp
	LogicalOp   LogicalOp

	// FilterRegex
	Target  *FilterExpr
	Pattern string

	// FilterFunction
	FuncName string
	Args     []*FilterExpr

	// FilterNot
	Operand *FilterExpr
}

// Expression is the compiled form of a path string.
type Expression struct {
	Source string
	Chain  []Selector

	// IsArrayStream is true when the outermost yielded node is expected
	// to be a sequence of peer nodes rather than a single node — i.e.
	// the chain contains a Wildcard, Slice, Filter, RecursiveDescent, or
	// Union.
	IsArrayStream bool

	// FastPathChain holds the leading run of plain Child selectors (no
	// wildcard/filter/recursive-descent) when the whole expression is
	// such a run; nil otherwise. Evaluated with a direct map/slice walk
	// rather than the general selector loop.
	FastPathChain []string

	Complexity Complexity
}

// Complexity is the informational per-expression metric from spec §4.1,
// used only to pick a recommended evaluator timeout (see timeout.go).
type Complexity struct {
	RecursiveDescentCount int
	SelectorCount         int
	FilterComplexity      int
	MaxSliceRange         int
	UnionBreadth          int
}

// Dangerous reports whether the expression has more than five
// recursive-descent segments or a FilterComplexity score above 3,
// either of which escalates RecommendedTimeout to its longest budget.
// Other recursive-descent shapes, such as a single `..*` or two to five
// `..` segments, are not flagged.
func (c Complexity) Dangerous() bool {
	return c.RecursiveDescentCount > 5 || c.FilterComplexity > 3
}
