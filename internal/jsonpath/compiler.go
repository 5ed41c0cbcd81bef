package jsonpath

// compile turns a raw selector chain into an optimized *Expression:
// computing the is_array_stream flag, the fast-path dot-chain, the
// complexity metric, and rewriting literal-pattern match()/search()
// calls into dedicated Regex nodes so the evaluator can go through the
// bounded pattern cache (filtertypes.go) instead of recompiling the
// regex on every evaluation.
func compile(expr string, chain []Selector) *Expression {
	rewritten := make([]Selector, len(chain))
	for i, s := range chain {
		rewritten[i] = rewriteSelector(s)
	}

	e := &Expression{
		Source: expr,
		Chain:  rewritten,
	}
	e.IsArrayStream = computeIsArrayStream(rewritten)
	e.FastPathChain = computeFastPath(rewritten)
	e.Complexity = computeComplexity(rewritten)
	return e
}

// computeIsArrayStream flags expressions whose outermost match is a
// sequence of peer nodes. Spec §4.1 names Wildcard/Slice/Filter
// explicitly; RecursiveDescent and Union are included too since both
// can legitimately yield more than one peer node, which is the
// property the streaming deserializer actually needs to know (see
// DESIGN.md).
func computeIsArrayStream(chain []Selector) bool {
	for _, s := range chain {
		switch s.Kind {
		case SelectorWildcard, SelectorSlice, SelectorFilter, SelectorRecursiveDescent, SelectorUnion:
			return true
		}
	}
	return false
}

// computeFastPath returns the leading run of plain Child selectors
// (skipping the always-present leading Root) when the *entire* chain is
// such a run — no wildcard, filter, recursive descent, slice, index, or
// union anywhere. Returns nil otherwise.
func computeFastPath(chain []Selector) []string {
	var names []string
	for i, s := range chain {
		if i == 0 {
			if s.Kind != SelectorRoot {
				return nil
			}
			continue
		}
		if s.Kind != SelectorChild {
			return nil
		}
		names = append(names, s.Name)
	}
	return names
}

func computeComplexity(chain []Selector) Complexity {
	var c Complexity
	for _, s := range chain {
		c.SelectorCount++
		switch s.Kind {
		case SelectorRecursiveDescent:
			c.RecursiveDescentCount++
		case SelectorSlice:
			if s.HasStart && s.HasEnd {
				r := s.End - s.Start
				if r < 0 {
					r = -r
				}
				if r > c.MaxSliceRange {
					c.MaxSliceRange = r
				}
			}
		case SelectorUnion:
			if len(s.Members) > c.UnionBreadth {
				c.UnionBreadth = len(s.Members)
			}
		case SelectorFilter:
			c.FilterComplexity += filterComplexity(s.Filter)
		}
	}
	return c
}

// filterComplexity weights functions and regex heavier than plain
// property lookups, per spec §4.1.
func filterComplexity(f *FilterExpr) int {
	if f == nil {
		return 0
	}
	switch f.Kind {
	case FilterFunction:
		total := 2
		for _, a := range f.Args {
			total += filterComplexity(a)
		}
		return total
	case FilterRegex:
		return 3 + filterComplexity(f.Target)
	case FilterComparison:
		return 1 + filterComplexity(f.Left) + filterComplexity(f.Right)
	case FilterLogical:
		return filterComplexity(f.Left) + filterComplexity(f.Right)
	case FilterNot:
		return filterComplexity(f.Operand)
	case FilterProperty, FilterJSONPath:
		return 1
	default:
		return 0
	}
}

func rewriteSelector(s Selector) Selector {
	if s.Kind == SelectorFilter {
		s.Filter = rewriteFilterExpr(s.Filter)
	}
	if s.Kind == SelectorUnion {
		members := make([]Selector, len(s.Members))
		for i, m := range s.Members {
			members[i] = rewriteSelector(m)
		}
		s.Members = members
	}
	return s
}

func rewriteFilterExpr(f *FilterExpr) *FilterExpr {
	if f == nil {
		return nil
	}
	switch f.Kind {
	case FilterFunction:
		for i, a := range f.Args {
			f.Args[i] = rewriteFilterExpr(a)
		}
		if (f.FuncName == "match" || f.FuncName == "search") && len(f.Args) == 2 {
			if lit, ok := f.Args[1].literalString(); ok {
				return &FilterExpr{
					Kind:    FilterRegex,
					Target:  f.Args[0],
					Pattern: lit,
					FuncName: f.FuncName,
				}
			}
		}
		return f
	case FilterComparison:
		f.Left = rewriteFilterExpr(f.Left)
		f.Right = rewriteFilterExpr(f.Right)
		return f
	case FilterLogical:
		f.Left = rewriteFilterExpr(f.Left)
		f.Right = rewriteFilterExpr(f.Right)
		return f
	case FilterNot:
		f.Operand = rewriteFilterExpr(f.Operand)
		return f
	default:
		return f
	}
}

func (f *FilterExpr) literalString() (string, bool) {
	if f == nil || f.Kind != FilterLiteral {
		return "", false
	}
	s, ok := f.Literal.(string)
	return s, ok
}
