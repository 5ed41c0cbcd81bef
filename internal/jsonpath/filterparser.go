package jsonpath

import "fmt"

// parseLogicalOr parses the lowest-precedence filter grammar level: a
// chain of "||"-joined operands, short-circuit at evaluation time.
func (p *parser) parseLogicalOr() (*FilterExpr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &FilterExpr{Kind: FilterLogical, LogicalOp: LogicalOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseLogicalAnd() (*FilterExpr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &FilterExpr{Kind: FilterLogical, LogicalOp: LogicalAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (*FilterExpr, error) {
	if p.cur.Kind == TokNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &FilterExpr{Kind: FilterNot, Operand: operand}, nil
	}
	return p.parseComparisonOrPrimary()
}

func (p *parser) parseComparisonOrPrimary() (*FilterExpr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	op, ok := tokToCompareOp(p.cur.Kind)
	if !ok {
		return left, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return &FilterExpr{Kind: FilterComparison, CompareOp: op, Left: left, Right: right}, nil
}

func tokToCompareOp(k TokenKind) (CompareOp, bool) {
	switch k {
	case TokEq:
		return CmpEq, true
	case TokNe:
		return CmpNe, true
	case TokLt:
		return CmpLt, true
	case TokLe:
		return CmpLe, true
	case TokGt:
		return CmpGt, true
	case TokGe:
		return CmpGe, true
	default:
		return 0, false
	}
}

func (p *parser) parsePrimary() (*FilterExpr, error) {
	switch p.cur.Kind {
	case TokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil

	case TokAt:
		return p.parseCurrentPath()

	case TokDollar:
		// An absolute path is allowed inside a filter too (comparing
		// against a value elsewhere in the document).
		return p.parseAbsolutePathInFilter()

	case TokString:
		v := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &FilterExpr{Kind: FilterLiteral, Literal: v}, nil

	case TokNumber:
		v := p.cur.Num
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &FilterExpr{Kind: FilterLiteral, Literal: v}, nil

	case TokTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &FilterExpr{Kind: FilterLiteral, Literal: true}, nil

	case TokFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &FilterExpr{Kind: FilterLiteral, Literal: false}, nil

	case TokNull:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &FilterExpr{Kind: FilterLiteral, Literal: nil}, nil

	case TokIdent:
		return p.parseFunctionCall()

	default:
		return nil, newSyntaxErr(p.expr, "expected a filter operand", p.cur.Pos)
	}
}

// parseCurrentPath parses "@" followed by zero or more dot/bracket
// segments, classifying the result as a singular query (FilterProperty)
// or a general subpath (FilterJSONPath) depending on whether any
// non-singular selector (wildcard/slice/filter/union/recursive-descent)
// appears, per RFC 9535's singular-query rule.
func (p *parser) parseCurrentPath() (*FilterExpr, error) {
	if err := p.advance(); err != nil { // consume '@'
		return nil, err
	}
	selectors, err := p.parsePathSegments()
	if err != nil {
		return nil, err
	}
	if len(selectors) == 0 {
		return &FilterExpr{Kind: FilterCurrent}, nil
	}
	if isSingularChain(selectors) {
		return &FilterExpr{Kind: FilterProperty, PathSelectors: selectors}, nil
	}
	return &FilterExpr{Kind: FilterJSONPath, Selectors: selectors}, nil
}

func (p *parser) parseAbsolutePathInFilter() (*FilterExpr, error) {
	if err := p.advance(); err != nil { // consume '$'
		return nil, err
	}
	selectors, err := p.parsePathSegments()
	if err != nil {
		return nil, err
	}
	full := append([]Selector{{Kind: SelectorRoot}}, selectors...)
	return &FilterExpr{Kind: FilterJSONPath, Selectors: full}, nil
}

func isSingularChain(selectors []Selector) bool {
	for _, s := range selectors {
		if s.Kind != SelectorChild && s.Kind != SelectorIndex {
			return false
		}
	}
	return true
}

// parsePathSegments parses the dot/bracket segment sequence shared by
// both top-level path parsing and filter-internal path parsing, stopping
// at any token that can't start a segment (comparison operators,
// logical operators, ')', ',', EOF).
func (p *parser) parsePathSegments() ([]Selector, error) {
	var out []Selector
	lastWasDotName := false
	for {
		switch p.cur.Kind {
		case TokDot:
			dotPos := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			switch p.cur.Kind {
			case TokStar:
				if err := p.advance(); err != nil {
					return nil, err
				}
				out = append(out, Selector{Kind: SelectorWildcard})
				lastWasDotName = false
			case TokIdent:
				name := p.cur.Text
				if err := p.advance(); err != nil {
					return nil, err
				}
				out = append(out, Selector{Kind: SelectorChild, Name: name})
				lastWasDotName = true
			default:
				return nil, newSyntaxErr(p.expr, "trailing '.' must be followed by a name or '*'", dotPos)
			}

		case TokDotDot:
			ddPos := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			switch p.cur.Kind {
			case TokStar:
				if err := p.advance(); err != nil {
					return nil, err
				}
				out = append(out, Selector{Kind: SelectorRecursiveDescent}, Selector{Kind: SelectorWildcard})
				lastWasDotName = false
			case TokIdent:
				if lastWasDotName {
					return nil, newSyntaxErr(p.expr,
						"ambiguous 'property..property': use '[\"name\"]' for direct access or '..[\"name\"]'/'..*' to make the recursive search explicit",
						ddPos)
				}
				name := p.cur.Text
				if err := p.advance(); err != nil {
					return nil, err
				}
				out = append(out, Selector{Kind: SelectorRecursiveDescent}, Selector{Kind: SelectorChild, Name: name})
				lastWasDotName = false
			case TokLBracket:
				out = append(out, Selector{Kind: SelectorRecursiveDescent})
				lastWasDotName = false
			default:
				return nil, newSyntaxErr(p.expr, "'..' must be followed by a name, '*', or a bracket segment", ddPos)
			}

		case TokLBracket:
			sel, err := p.parseBracket()
			if err != nil {
				return nil, err
			}
			out = append(out, sel)
			lastWasDotName = false

		default:
			return out, nil
		}
	}
}

// knownFunctions is the builtin function registry used for static
// well-typedness checks (spec §4.3).
var knownFunctions = map[string]int{
	"length": 1,
	"count":  1,
	"match":  2,
	"search": 2,
	"value":  1,
}

func (p *parser) parseFunctionCall() (*FilterExpr, error) {
	name := p.cur.Text
	namePos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}

	var args []*FilterExpr
	for p.cur.Kind != TokRParen {
		arg, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}

	arity, known := knownFunctions[name]
	if !known {
		return nil, newSyntaxErr(p.expr, fmt.Sprintf("unknown function %q", name), namePos)
	}
	if len(args) != arity {
		return nil, newSyntaxErr(p.expr, fmt.Sprintf("function %q takes %d argument(s), got %d", name, arity, len(args)), namePos)
	}

	return &FilterExpr{Kind: FilterFunction, FuncName: name, Args: args}, nil
}
