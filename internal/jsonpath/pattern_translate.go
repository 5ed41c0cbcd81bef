package jsonpath

import "fmt"

// translatePattern adapts an RFC 9485 I-Regexp pattern (the dialect RFC
// 9535's match()/search() functions use) to Go's RE2 syntax. The two
// dialects overlap heavily for the patterns this library expects to see
// in practice (character classes, quantifiers, anchors, groups); RE2
// additionally rejects backreferences and lookaround, which I-Regexp
// doesn't have either, so no rewriting is required beyond a basic
// well-formedness pass that catches unbalanced groups early with a
// clearer error than regexp.Compile would give.
func translatePattern(pattern string) (string, error) {
	depth := 0
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++ // skip the escaped character
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return "", fmt.Errorf("jsonpath: unbalanced ')' in pattern %q", pattern)
			}
		}
	}
	if depth != 0 {
		return "", fmt.Errorf("jsonpath: unbalanced '(' in pattern %q", pattern)
	}
	return pattern, nil
}
