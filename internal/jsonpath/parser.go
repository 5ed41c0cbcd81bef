package jsonpath

import "fmt"

// Parse tokenizes and parses a JSONPath expression into an *Expression,
// or returns a *SyntaxError (spec §4.1).
func Parse(expr string) (*Expression, error) {
	p := &parser{tz: newTokenizer(expr), expr: expr}
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.cur.Kind != TokDollar {
		return nil, newSyntaxErr(expr, "expression must start with '$'", p.cur.Pos)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	chain := []Selector{{Kind: SelectorRoot}}

	// lastWasDotName tracks whether the most recently parsed segment was
	// a dot-shorthand child name (".foo"), so a following ".." can be
	// checked against the property..property restriction (spec §4.1).
	lastWasDotName := false

	for p.cur.Kind != TokEOF {
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
				chain = append(chain, Selector{Kind: SelectorWildcard})
				lastWasDotName = false
			case TokIdent:
				name := p.cur.Text
				if err := p.advance(); err != nil {
					return nil, err
				}
				chain = append(chain, Selector{Kind: SelectorChild, Name: name})
				lastWasDotName = true
			default:
				return nil, newSyntaxErr(expr, "trailing '.' must be followed by a name or '*'", dotPos)
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
				chain = append(chain, Selector{Kind: SelectorRecursiveDescent}, Selector{Kind: SelectorWildcard})
				lastWasDotName = false
			case TokIdent:
				if lastWasDotName {
					return nil, newSyntaxErr(expr,
						"ambiguous 'property..property': use '[\"name\"]' for direct access or '..[\"name\"]'/'..*' to make the recursive search explicit",
						ddPos)
				}
				name := p.cur.Text
				if err := p.advance(); err != nil {
					return nil, err
				}
				chain = append(chain, Selector{Kind: SelectorRecursiveDescent}, Selector{Kind: SelectorChild, Name: name})
				lastWasDotName = false
			case TokLBracket:
				chain = append(chain, Selector{Kind: SelectorRecursiveDescent})
				lastWasDotName = false
				// the bracket segment itself is parsed on the next loop
				// iteration and appended as the selector paired with the
				// RecursiveDescent above.
			default:
				return nil, newSyntaxErr(expr, "'..' must be followed by a name, '*', or a bracket segment", ddPos)
			}

		case TokLBracket:
			sel, err := p.parseBracket()
			if err != nil {
				return nil, err
			}
			chain = append(chain, sel)
			lastWasDotName = false

		case TokAt:
			return nil, newSyntaxErr(expr, "'@' is only valid inside a filter expression", p.cur.Pos)

		default:
			return nil, newSyntaxErr(expr, fmt.Sprintf("unexpected token at top level"), p.cur.Pos)
		}
	}

	return compile(expr, chain), nil
}

type parser struct {
	tz   *tokenizer
	expr string
	cur  Token
}

func (p *parser) advance() error {
	tok, err := p.tz.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) expect(k TokenKind, what string) error {
	if p.cur.Kind != k {
		return newSyntaxErr(p.expr, "expected "+what, p.cur.Pos)
	}
	return p.advance()
}

// parseBracket parses the contents of "[ ... ]" into a single Selector —
// Index, Slice, Wildcard, Child (quoted name), Filter, or Union of
// several of the above, per spec §4.1's union grammar.
func (p *parser) parseBracket() (Selector, error) {
	lbracketPos := p.cur.Pos
	if err := p.advance(); err != nil { // consume '['
		return Selector{}, err
	}

	var members []Selector
	for {
		if p.cur.Kind == TokRBracket {
			break
		}
		member, err := p.parseBracketMember()
		if err != nil {
			return Selector{}, err
		}
		members = append(members, member)

		if p.cur.Kind == TokComma {
			if err := p.advance(); err != nil {
				return Selector{}, err
			}
			continue
		}
		break
	}

	if err := p.expect(TokRBracket, "']'"); err != nil {
		return Selector{}, err
	}

	if len(members) == 0 {
		return Selector{}, newSyntaxErr(p.expr, "empty bracket segment", lbracketPos)
	}
	if len(members) == 1 {
		return members[0], nil
	}
	return Selector{Kind: SelectorUnion, Members: members}, nil
}

func (p *parser) parseBracketMember() (Selector, error) {
	switch p.cur.Kind {
	case TokStar:
		if err := p.advance(); err != nil {
			return Selector{}, err
		}
		return Selector{Kind: SelectorWildcard}, nil

	case TokString:
		name := p.cur.Text
		if err := p.advance(); err != nil {
			return Selector{}, err
		}
		return Selector{Kind: SelectorChild, Name: name}, nil

	case TokQuestion:
		if err := p.advance(); err != nil {
			return Selector{}, err
		}
		hadParen := false
		if p.cur.Kind == TokLParen {
			hadParen = true
			if err := p.advance(); err != nil {
				return Selector{}, err
			}
		}
		fe, err := p.parseLogicalOr()
		if err != nil {
			return Selector{}, err
		}
		if hadParen {
			if err := p.expect(TokRParen, "')'"); err != nil {
				return Selector{}, err
			}
		}
		return Selector{Kind: SelectorFilter, Filter: fe}, nil

	case TokNumber, TokIdent:
		// A bare numeric literal starts an index or slice. ("-1" is
		// lexed as a single TokNumber by the tokenizer.)
		return p.parseIndexOrSlice()

	case TokColon:
		// Slice with an elided start, e.g. "[:3]".
		return p.parseIndexOrSlice()

	default:
		return Selector{}, newSyntaxErr(p.expr, "expected an index, slice, quoted name, '*', or filter", p.cur.Pos)
	}
}

func (p *parser) parseIndexOrSlice() (Selector, error) {
	hasStart, start := false, 0
	if p.cur.Kind == TokNumber {
		hasStart = true
		start = int(p.cur.Num)
		if err := p.advance(); err != nil {
			return Selector{}, err
		}
	}

	if p.cur.Kind != TokColon {
		if !hasStart {
			return Selector{}, newSyntaxErr(p.expr, "expected an index", p.cur.Pos)
		}
		idx := start
		fromEnd := idx < 0
		if fromEnd {
			idx = -idx
		}
		return Selector{Kind: SelectorIndex, Index: idx, FromEnd: fromEnd}, nil
	}

	// Slice: start : end : step
	sel := Selector{Kind: SelectorSlice, HasStart: hasStart, Start: start}
	if err := p.advance(); err != nil { // consume first ':'
		return Selector{}, err
	}

	if p.cur.Kind == TokNumber {
		sel.HasEnd = true
		sel.End = int(p.cur.Num)
		if err := p.advance(); err != nil {
			return Selector{}, err
		}
	}

	if p.cur.Kind == TokColon {
		colonPos := p.cur.Pos
		if err := p.advance(); err != nil { // consume second ':'
			return Selector{}, err
		}
		// spec §4.1: "After the second ':', a step value is mandatory."
		if p.cur.Kind != TokNumber {
			return Selector{}, newSyntaxErr(p.expr, "a step value is required after the second ':' in a slice", colonPos)
		}
		step := int(p.cur.Num)
		if step == 0 {
			return Selector{}, newSyntaxErr(p.expr, "slice step must not be zero", p.cur.Pos)
		}
		sel.HasStep = true
		sel.Step = step
		if err := p.advance(); err != nil {
			return Selector{}, err
		}
	}

	return sel, nil
}
