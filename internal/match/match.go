// Package match implements the ranked pattern chains used to find data rows
// whose labels drift across report years and OCR passes. Patterns are
// ordered strictest to loosest; callers try each in turn and keep the first
// non-empty result, which minimizes false positives while tolerating drift.
package match

import "strings"

// Kind selects the comparison a Pattern performs.
type Kind int

const (
	// KindExact matches the whole cell text, case-sensitive.
	KindExact Kind = iota
	// KindContains matches a substring of the cell text.
	KindContains
)

// Pattern is one rung of a chain.
type Pattern struct {
	Kind          Kind
	Value         string
	CaseSensitive bool
}

// Exact returns a case-sensitive whole-string pattern.
func Exact(value string) Pattern {
	return Pattern{Kind: KindExact, Value: value, CaseSensitive: true}
}

// Contains returns a case-insensitive substring pattern.
func Contains(value string) Pattern {
	return Pattern{Kind: KindContains, Value: value}
}

// ContainsCase returns a case-sensitive substring pattern.
func ContainsCase(value string) Pattern {
	return Pattern{Kind: KindContains, Value: value, CaseSensitive: true}
}

// Matches reports whether text satisfies the pattern.
func (p Pattern) Matches(text string) bool {
	candidate, value := text, p.Value
	if !p.CaseSensitive {
		candidate = strings.ToLower(candidate)
		value = strings.ToLower(value)
	}
	switch p.Kind {
	case KindExact:
		return candidate == value
	case KindContains:
		return strings.Contains(candidate, value)
	default:
		return false
	}
}

// Chain is an ordered list of patterns, strictest first.
type Chain []Pattern

// Select returns the indices of texts matched by the first pattern that
// matches anything at all. An empty result means no rung matched.
func (c Chain) Select(texts []string) []int {
	for _, p := range c {
		var hits []int
		for i, t := range texts {
			if p.Matches(t) {
				hits = append(hits, i)
			}
		}
		if len(hits) > 0 {
			return hits
		}
	}
	return nil
}

// Any returns the indices of texts matched by any pattern in the chain.
// Unlike Select, the rungs are peers rather than fallbacks: Any computes
// their union.
func (c Chain) Any(texts []string) []int {
	var hits []int
	for i, t := range texts {
		for _, p := range c {
			if p.Matches(t) {
				hits = append(hits, i)
				break
			}
		}
	}
	return hits
}
