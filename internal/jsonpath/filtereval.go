package jsonpath

import "regexp"

// filterCtx is the evaluation context for one filter-predicate test: the
// node the predicate runs "in the context of" (spec §4.2 — an array
// element or the object itself) plus the peer-set of sibling keys used
// to disambiguate a missing property from an explicit null (spec §4.3).
type filterCtx struct {
	current  any
	peerKeys map[string]bool
}

// missingInfo records whether a value evaluated to Missing because the
// *first* step of a property access off @ found no such member, and
// whether that member name appears on any sibling node in the same
// filtering pass. Only first-step misses carry peer information —
// deeper misses (e.g. @.a.b when a.b is absent but a.c exists on some
// peer) fall back to plain Missing with no special comparison rule,
// since "exists elsewhere" only has an unambiguous meaning relative to
// the top-level member being tested (spec §4.3).
type missingInfo struct {
	isMissing       bool
	propName        string
	existsElsewhere bool
}

// applyFilterSelector implements spec §4.2's filter-selector rule: an
// array input tests each element in that element's own context: an
// object input tests the object itself; anything else yields nothing.
func applyFilterSelector(filter *FilterExpr, node any) []any {
	switch t := node.(type) {
	case []any:
		peers := collectPeerKeys(t)
		var out []any
		for _, elem := range t {
			ctx := filterCtx{current: elem, peerKeys: peers}
			if evalTest(filter, ctx) {
				out = append(out, elem)
			}
		}
		return out

	case Object:
		ctx := filterCtx{current: t, peerKeys: nil}
		if evalTest(filter, ctx) {
			return []any{t}
		}
		return nil

	default:
		return nil
	}
}

// collectPeerKeys builds the union of object member names across every
// element of arr that is itself an Object — the peer set spec §4.3 uses
// to tell "this property is missing from this element but present on
// siblings" apart from "this property doesn't exist in this array at
// all", both of which the bare Missing sentinel would otherwise conflate.
func collectPeerKeys(arr []any) map[string]bool {
	var peers map[string]bool
	for _, elem := range arr {
		obj, ok := elem.(Object)
		if !ok {
			continue
		}
		if peers == nil {
			peers = make(map[string]bool, len(obj))
		}
		for _, kv := range obj {
			peers[kv.Key] = true
		}
	}
	return peers
}

// evalTest evaluates a filter predicate to LogicalType (spec §4.3's
// test-expression rule): a bare ValueType or NodesType operand is
// converted to logical via existence-as-truth / ToLogical.
func evalTest(f *FilterExpr, ctx filterCtx) bool {
	switch f.Kind {
	case FilterLogical:
		left := evalTest(f.Left, ctx)
		if f.LogicalOp == LogicalAnd {
			return left && evalTest(f.Right, ctx)
		}
		return left || evalTest(f.Right, ctx)

	case FilterNot:
		return !evalTest(f.Operand, ctx)

	case FilterComparison:
		return evalComparison(f, ctx)

	case FilterRegex:
		return evalRegexTest(f, ctx)

	case FilterFunction:
		v, kind := evalFunction(f, ctx)
		if kind == TypeLogical {
			b, _ := v.(bool)
			return b
		}
		if kind == TypeNodes {
			nodes, _ := v.([]any)
			return len(nodes) > 0
		}
		return ToLogical(v)

	case FilterJSONPath:
		nodes := evalNodes(f, ctx)
		return len(nodes) > 0

	default:
		v, _ := evalValue(f, ctx)
		return ToLogical(v)
	}
}

// evalValue evaluates a ValueType-producing filter node, returning the
// value (possibly Missing{}) and missing-context information usable by
// the comparison operators.
func evalValue(f *FilterExpr, ctx filterCtx) (any, missingInfo) {
	switch f.Kind {
	case FilterCurrent:
		return ctx.current, missingInfo{}

	case FilterLiteral:
		return f.Literal, missingInfo{}

	case FilterProperty:
		return evalProperty(f.PathSelectors, ctx)

	case FilterJSONPath:
		nodes := evalNodes(f, ctx)
		return NodesToValue(nodes), missingInfo{}

	case FilterFunction:
		v, kind := evalFunction(f, ctx)
		if kind == TypeNodes {
			nodes, _ := v.([]any)
			return NodesToValue(nodes), missingInfo{}
		}
		return v, missingInfo{}

	default:
		return Missing{}, missingInfo{}
	}
}

// evalProperty walks a singular Child/Index chain off @, per spec §4.3.
// A miss on the first step carries peer-set information for the
// null/missing comparison rule; a miss at any later step does not.
func evalProperty(chain []Selector, ctx filterCtx) (any, missingInfo) {
	cur := ctx.current
	for i, sel := range chain {
		switch sel.Kind {
		case SelectorChild:
			obj, ok := cur.(Object)
			if !ok {
				return Missing{}, missingFor(i, sel.Name, ctx)
			}
			v, found := obj.Get(sel.Name)
			if !found {
				return Missing{}, missingFor(i, sel.Name, ctx)
			}
			cur = v

		case SelectorIndex:
			arr, ok := cur.([]any)
			if !ok {
				return Missing{}, missingInfo{}
			}
			idx := sel.Index
			if sel.FromEnd {
				idx = len(arr) - sel.Index
			}
			if idx < 0 || idx >= len(arr) {
				return Missing{}, missingInfo{}
			}
			cur = arr[idx]

		default:
			return Missing{}, missingInfo{}
		}
	}
	return cur, missingInfo{}
}

func missingFor(step int, name string, ctx filterCtx) missingInfo {
	if step != 0 {
		return missingInfo{}
	}
	return missingInfo{isMissing: true, propName: name, existsElsewhere: ctx.peerKeys[name]}
}

// evalNodes evaluates a NodesType-producing filter node (a full subpath
// rooted at @, or @ itself used where nodes are expected).
func evalNodes(f *FilterExpr, ctx filterCtx) []any {
	switch f.Kind {
	case FilterCurrent:
		return []any{ctx.current}
	case FilterJSONPath:
		nodes, _ := evaluateChain(f.Selectors, ctx.current)
		return nodes
	default:
		v, _ := evalValue(f, ctx)
		if IsMissing(v) {
			return nil
		}
		return []any{v}
	}
}

// evalComparison implements spec §4.3's comparison rules: numeric
// comparison when both sides are numbers, ordinal string comparison when
// both are strings, equality-only comparison for bool/array/object, and
// the missing-vs-null special case — a missing property compares equal
// to null only when no peer in the same filtering pass has that
// property at all; otherwise missing is never equal to anything,
// including another missing.
func evalComparison(f *FilterExpr, ctx filterCtx) bool {
	lv, lm := evalValue(f.Left, ctx)
	rv, rm := evalValue(f.Right, ctx)

	if lm.isMissing || rm.isMissing {
		return evalMissingComparison(f.CompareOp, lv, rv, lm, rm)
	}

	switch f.CompareOp {
	case CmpEq:
		return valuesEqual(lv, rv)
	case CmpNe:
		return !valuesEqual(lv, rv)
	}

	lf, lok := lv.(float64)
	rf, rok := rv.(float64)
	if lok && rok {
		switch f.CompareOp {
		case CmpLt:
			return lf < rf
		case CmpLe:
			return lf <= rf
		case CmpGt:
			return lf > rf
		case CmpGe:
			return lf >= rf
		}
	}

	ls, lok := lv.(string)
	rs, rok := rv.(string)
	if lok && rok {
		switch f.CompareOp {
		case CmpLt:
			return ls < rs
		case CmpLe:
			return ls <= rs
		case CmpGt:
			return ls > rs
		case CmpGe:
			return ls >= rs
		}
	}

	return false
}

// evalMissingComparison handles a comparison where at least one side is
// Missing. Missing never orders against anything; only == and != are
// meaningful. A property absent from this element compares equal to
// null only when no sibling element in the array has that property;
// when a sibling does have it, the absent property is not equal to null
// (so `!= null` holds). Two Missing operands never compare equal.
func evalMissingComparison(op CompareOp, lv, rv any, lm, rm missingInfo) bool {
	eq := func() bool {
		if lm.isMissing && rm.isMissing {
			return false
		}
		if lm.isMissing {
			return missingEqualsValue(lm, rv)
		}
		return missingEqualsValue(rm, lv)
	}()

	switch op {
	case CmpEq:
		return eq
	case CmpNe:
		return !eq
	default:
		return false
	}
}

func missingEqualsValue(m missingInfo, other any) bool {
	if other != nil {
		return false
	}
	return !m.existsElsewhere
}

// valuesEqual implements RFC 9535 equality: same type and same value;
// numbers compare numerically, arrays/objects structurally.
func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i].Key != bv[i].Key || !valuesEqual(av[i].Value, bv[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// evalRegexTest evaluates match()/search() rewritten to FilterRegex
// nodes by the compiler (compiler.go's rewriteFilterExpr): Target must
// evaluate to a string, else the test is false, matching RFC 9535's
// treatment of a well-typedness failure as a non-match rather than an
// error. FuncName distinguishes match()'s whole-string semantics from
// search()'s substring semantics.
func evalRegexTest(f *FilterExpr, ctx filterCtx) bool {
	v, _ := evalValue(f.Target, ctx)
	s, ok := v.(string)
	if !ok {
		return false
	}
	re, err := globalPatternCache.compile(f.Pattern)
	if err != nil {
		return false
	}
	if f.FuncName == "match" {
		return matchesWhole(re, s)
	}
	return re.MatchString(s)
}

// evalFunction evaluates the five builtin functions RFC 9535 defines
// (spec §4.3): length, count, match, search, value.
func evalFunction(f *FilterExpr, ctx filterCtx) (any, TypeKind) {
	switch f.FuncName {
	case "length":
		v, _ := evalValue(f.Args[0], ctx)
		return funcLength(v), TypeValue

	case "count":
		nodes := evalNodes(f.Args[0], ctx)
		return float64(len(nodes)), TypeValue

	case "match", "search":
		target, _ := evalValue(f.Args[0], ctx)
		s, ok := target.(string)
		if !ok {
			return false, TypeLogical
		}
		pattern, _ := evalValue(f.Args[1], ctx)
		p, ok := pattern.(string)
		if !ok {
			return false, TypeLogical
		}
		re, err := globalPatternCache.compile(p)
		if err != nil {
			return false, TypeLogical
		}
		if f.FuncName == "match" {
			return matchesWhole(re, s), TypeLogical
		}
		return re.MatchString(s), TypeLogical

	case "value":
		nodes := evalNodes(f.Args[0], ctx)
		return NodesToValue(nodes), TypeValue

	default:
		return Missing{}, TypeValue
	}
}

// matchesWhole implements match()'s whole-string semantics, as opposed
// to search()'s substring semantics: RE2 has no implicit anchoring, so
// match() anchors explicitly.
func matchesWhole(re *regexp.Regexp, s string) bool {
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

// funcLength implements length() per RFC 9535: string length counts
// Unicode code points (not bytes), array/object length counts elements
// or members, anything else yields Missing (a well-typedness mismatch
// resolved to "no value" rather than an error).
func funcLength(v any) any {
	switch t := v.(type) {
	case string:
		return float64(utf8RuneCount(t))
	case []any:
		return float64(len(t))
	case Object:
		return float64(len(t))
	default:
		return Missing{}
	}
}

func utf8RuneCount(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
