package jsonpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Normalize renders a singular-query expression chain (Root plus Child
// and Index selectors only) as the normalized path string from spec §3:
// "$" followed by bracket segments using single-quoted member names or
// non-negative decimal indices without leading zeros.
//
// Normalize is idempotent: Normalize(ParseNormalized(Normalize(e))...)
// yields the same string as Normalize(e) (spec §8).
func Normalize(chain []Selector) (string, error) {
	var sb strings.Builder
	sb.WriteByte('$')
	for i, s := range chain {
		if i == 0 {
			if s.Kind != SelectorRoot {
				return "", fmt.Errorf("normalize: chain must start with Root")
			}
			continue
		}
		switch s.Kind {
		case SelectorChild:
			sb.WriteString("['")
			sb.WriteString(escapeSingleQuoted(s.Name))
			sb.WriteString("']")
		case SelectorIndex:
			if s.FromEnd {
				return "", fmt.Errorf("normalize: from-end index %d is not expressible as a normalized path", s.Index)
			}
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(s.Index))
			sb.WriteByte(']')
		default:
			return "", fmt.Errorf("normalize: selector %v is not part of a singular query", s)
		}
	}
	return sb.String(), nil
}

// ParseNormalized parses a normalized path string (as produced by
// Normalize) back into its selector chain. It is stricter than the
// general Parse: only single-quoted member names and non-negative,
// leading-zero-free decimal indices are accepted in brackets.
func ParseNormalized(path string) ([]Selector, error) {
	if !strings.HasPrefix(path, "$") {
		return nil, fmt.Errorf("normalized path must start with '$'")
	}
	chain := []Selector{{Kind: SelectorRoot}}
	rest := path[1:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return nil, fmt.Errorf("normalized path: expected '[' at %q", rest)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, fmt.Errorf("normalized path: unterminated bracket segment")
		}
		inner := rest[1:end]
		rest = rest[end+1:]

		if strings.HasPrefix(inner, "'") && strings.HasSuffix(inner, "'") && len(inner) >= 2 {
			name, err := unescapeSingleQuoted(inner[1 : len(inner)-1])
			if err != nil {
				return nil, err
			}
			chain = append(chain, Selector{Kind: SelectorChild, Name: name})
			continue
		}

		if inner == "" || (inner[0] == '0' && len(inner) > 1) {
			return nil, fmt.Errorf("normalized path: invalid index segment %q", inner)
		}
		for _, c := range inner {
			if c < '0' || c > '9' {
				return nil, fmt.Errorf("normalized path: invalid index segment %q", inner)
			}
		}
		idx, err := strconv.Atoi(inner)
		if err != nil {
			return nil, fmt.Errorf("normalized path: invalid index segment %q", inner)
		}
		chain = append(chain, Selector{Kind: SelectorIndex, Index: idx})
	}
	return chain, nil
}

func unescapeSingleQuoted(s string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			if i+1 >= len(s) {
				return "", fmt.Errorf("normalized path: trailing backslash in member name")
			}
			switch s[i+1] {
			case '\'':
				sb.WriteByte('\'')
			case '\\':
				sb.WriteByte('\\')
			default:
				return "", fmt.Errorf("normalized path: invalid escape \\%c", s[i+1])
			}
			i++
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String(), nil
}
