package jsonpath

// resultCap is the per-stage intermediate-result safety cap from spec
// §4.2: once a single selector application stage would produce more
// than this many nodes, evaluation aborts and returns an empty,
// non-error node list with a warning.
const resultCap = 10000

// EvalWarning is returned alongside an empty result when the evaluator
// hits the safety cap or a timeout — these are not errors (spec §4.2,
// §5): a pathological expression degrades to "no matches" rather than
// failing the request.
type EvalWarning struct {
	Reason string
}

// Evaluate applies a compiled expression to a fully materialized JSON
// tree (Object for objects, []any for arrays, float64/string/bool/nil
// for scalars — see Decode) and returns the matching nodes in source
// order (spec §4.2).
func Evaluate(expr *Expression, root any) ([]any, *EvalWarning) {
	return evaluateChain(expr.Chain, root)
}

// evaluateChain walks a selector chain against a starting node, applying
// each selector to every node in the current result set (concatenating
// in source order) with RecursiveDescent specially paired with its
// following selector per spec §4.2. Shared by Evaluate (chain includes
// the leading Root selector) and filter subpath evaluation in
// filtereval.go (chain is a bare subpath rooted at the filter's current
// node, no leading Root).
func evaluateChain(chain []Selector, start any) ([]any, *EvalWarning) {
	nodes := []any{start}

	for i := 0; i < len(chain); i++ {
		sel := chain[i]

		if sel.Kind == SelectorRecursiveDescent {
			if i+1 == len(chain) {
				var out []any
				for _, n := range nodes {
					out = append(out, collectDescendants(n, false)...)
				}
				nodes = out
				i++ // consumed the lone trailing selector
				if len(nodes) > resultCap {
					return nil, &EvalWarning{Reason: "intermediate result exceeded safety cap"}
				}
				continue
			}

			next := chain[i+1]
			var out []any
			for _, n := range nodes {
				// RFC 9535: the next selector applies to the input node
				// itself and to every proper descendant, pre-order. This
				// reduces correctly to "$..*'s" documented behavior of
				// excluding the input from the output, since applying a
				// selector to a node never yields the node itself.
				candidates := append([]any{n}, collectDescendants(n, false)...)
				for _, c := range candidates {
					out = append(out, applySelector(next, c)...)
				}
			}
			nodes = out
			i++ // also consumes `next`
			if len(nodes) > resultCap {
				return nil, &EvalWarning{Reason: "intermediate result exceeded safety cap"}
			}
			continue
		}

		var out []any
		for _, n := range nodes {
			out = append(out, applySelector(sel, n)...)
		}
		nodes = out
		if len(nodes) > resultCap {
			return nil, &EvalWarning{Reason: "intermediate result exceeded safety cap"}
		}
	}

	return nodes, nil
}

// applySelector applies a single selector to a single input node,
// returning the resulting node list in source order (object member
// insertion order / array index order).
func applySelector(sel Selector, node any) []any {
	switch sel.Kind {
	case SelectorRoot:
		return []any{node}

	case SelectorChild:
		obj, ok := node.(Object)
		if !ok {
			return nil
		}
		v, ok := obj.Get(sel.Name)
		if !ok {
			return nil
		}
		return []any{v}

	case SelectorIndex:
		arr, ok := node.([]any)
		if !ok {
			return nil
		}
		idx := sel.Index
		if sel.FromEnd {
			idx = len(arr) - sel.Index
		}
		if idx < 0 || idx >= len(arr) {
			return nil
		}
		return []any{arr[idx]}

	case SelectorSlice:
		arr, ok := node.([]any)
		if !ok {
			return nil
		}
		return applySlice(sel, arr)

	case SelectorWildcard:
		switch t := node.(type) {
		case []any:
			out := make([]any, len(t))
			copy(out, t)
			return out
		case Object:
			return t.Values()
		default:
			return nil
		}

	case SelectorFilter:
		return applyFilterSelector(sel.Filter, node)

	case SelectorUnion:
		var out []any
		for _, m := range sel.Members {
			out = append(out, applySelector(m, node)...)
		}
		return out

	case SelectorRecursiveDescent:
		// Standalone recursive descent (no paired next selector, e.g.
		// the final selector in the chain, reached when applySelector is
		// invoked recursively from collectDescendants' callers rather
		// than from Evaluate's own chain walk): all proper descendants,
		// pre-order.
		return collectDescendants(node, false)

	default:
		return nil
	}
}

// applySlice implements the Python-like slice normalization from spec
// §4.2.
func applySlice(sel Selector, arr []any) []any {
	n := len(arr)
	step := 1
	if sel.HasStep {
		step = sel.Step
	}
	if step == 0 {
		return nil
	}

	normalize := func(v int, has bool, def int) int {
		if !has {
			return def
		}
		if v < 0 {
			v = n + v
		}
		if v < 0 {
			v = 0
		}
		if v > n {
			v = n
		}
		return v
	}

	var out []any
	if step > 0 {
		start := normalize(sel.Start, sel.HasStart, 0)
		end := normalize(sel.End, sel.HasEnd, n)
		for i := start; i < end; i += step {
			out = append(out, arr[i])
		}
	} else {
		start := normalize(sel.Start, sel.HasStart, n-1)
		end := -1
		if sel.HasEnd {
			e := sel.End
			if e < 0 {
				e = n + e
			}
			if e < -1 {
				e = -1
			}
			if e > n {
				e = n
			}
			end = e
		}
		for i := start; i > end && i >= 0; i += step {
			if i < n {
				out = append(out, arr[i])
			}
		}
	}
	return out
}

// collectDescendants returns all proper descendants of node in pre-order
// (parent before children): every object member value and every array
// element, recursively. When includeSelf is false (the RFC-aligned
// choice spec §9 mandates over the source's special-cased "$..* minus
// one container" behavior), node itself is excluded.
func collectDescendants(node any, includeSelf bool) []any {
	var out []any
	var walk func(n any, isRoot bool)
	walk = func(n any, isRoot bool) {
		if !isRoot || includeSelf {
			out = append(out, n)
		}
		switch t := n.(type) {
		case []any:
			for _, v := range t {
				walk(v, false)
			}
		case Object:
			for _, v := range t.Values() {
				walk(v, false)
			}
		}
	}
	walk(node, true)
	return out
}
