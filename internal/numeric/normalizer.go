// Package numeric converts raw currency text from extracted report tables
// into float values under a fixed cleaning policy. The tables come out of
// OCR-regenerated pages, so tokens carry currency symbols, stray letters
// substituted for digits, and segmentation artifacts.
package numeric

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	darerrors "github.com/willfineberg/chi-tif-parser/internal/dar/errors"
)

// Format describes the grouping rules of the source numbers. It replaces the
// process-global locale configuration: each worker owns its own instance.
type Format struct {
	GroupSeparator   rune
	DecimalSeparator rune
}

// USCurrency returns the format used by every report year observed so far.
func USCurrency() Format {
	return Format{GroupSeparator: ',', DecimalSeparator: '.'}
}

// Normalizer cleans and parses raw cell text into signed floats.
type Normalizer struct {
	format Format
}

// NewNormalizer creates a Normalizer for the given format.
func NewNormalizer(format Format) *Normalizer {
	return &Normalizer{format: format}
}

var (
	parenPattern = regexp.MustCompile(`\((.+)\)`)
	// A stray trailing '1' welded onto a 3-digit group, e.g. "123,4561".
	trailingOnePattern = regexp.MustCompile(`([,.]\d{3})1$`)
)

// Normalize converts a raw cell string into a float.
//
// Empty cells and lone dashes denote zero in the source tables and return
// 0.0. A parenthesized number is negative. When OCR has split one figure
// into several whitespace-delimited fragments, the longest digit run wins
// (ties go to the later fragment, which matches the historical output).
// Input from which no numeric content survives is a fatal condition for
// the record: the ambiguity cannot be resolved automatically.
func (n *Normalizer) Normalize(raw string) (float64, error) {
	cleaned := strings.TrimSpace(n.scrub(raw))
	if cleaned == "" || cleaned == "-" {
		return 0, nil
	}

	content := cleaned
	negative := false
	if m := parenPattern.FindStringSubmatch(cleaned); m != nil {
		content = m[1]
		negative = true
	}
	content = strings.NewReplacer("(", "", ")", "").Replace(content)
	content = trailingOnePattern.ReplaceAllString(content, "$1")

	fragment := n.longestFragment(content)
	if fragment == "" {
		return 0, darerrors.New(darerrors.KindNumericParseFailure,
			fmt.Sprintf("no numeric content in %q", raw))
	}

	value := strings.ReplaceAll(fragment, string(n.format.GroupSeparator), "")
	if n.format.DecimalSeparator != '.' {
		value = strings.ReplaceAll(value, string(n.format.DecimalSeparator), ".")
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, darerrors.Wrap(darerrors.KindNumericParseFailure,
			fmt.Sprintf("cannot parse %q", raw), err)
	}
	if negative {
		d = d.Neg()
	}
	f, _ := d.Float64()
	return f, nil
}

// NormalizeFloat handles cells the extraction engine already coerced. A NaN
// stands for an empty cell and becomes zero; any other float means upstream
// parsed a value it had no business parsing and the record must fail.
func (n *Normalizer) NormalizeFloat(v float64) (float64, error) {
	if math.IsNaN(v) {
		return 0, nil
	}
	return 0, darerrors.New(darerrors.KindNumericParseFailure,
		"unexpected pre-coerced float from extraction engine")
}

// scrub removes currency formatting and known OCR misreads while preserving
// the characters the later stages key on (digits, separators, parentheses,
// dashes, whitespace).
func (n *Normalizer) scrub(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case '$', '*', '_', '|', '~', ']', '[', 'L', 'I':
			// currency symbols, accounting footnote marks, OCR line debris
		case '§': // OCR reads '5' as '§'
			b.WriteRune('5')
		case 'o', 'O': // and '0' as 'o'
			b.WriteRune('0')
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 1 {
		// 's' for '5' only matters inside a multi-character token; a lone
		// 's' is more likely pure noise and falls out during extraction.
		out = strings.NewReplacer("s", "5", "S", "5").Replace(out)
	}
	return out
}

// longestFragment extracts the digit/separator runs of content and returns
// the one with the most characters. Not the first and not the largest
// magnitude: the longest run empirically best predicts the un-truncated
// figure when OCR splits a number.
func (n *Normalizer) longestFragment(content string) string {
	isNumeric := func(r rune) bool {
		return (r >= '0' && r <= '9') || r == n.format.GroupSeparator || r == n.format.DecimalSeparator
	}

	best := ""
	for _, field := range strings.Fields(content) {
		run := strings.Builder{}
		flush := func() {
			candidate := strings.Trim(run.String(), string(n.format.GroupSeparator)+string(n.format.DecimalSeparator))
			if len(candidate) >= len(best) && candidate != "" {
				best = candidate
			}
			run.Reset()
		}
		for _, r := range field {
			if isNumeric(r) {
				run.WriteRune(r)
			} else {
				flush()
			}
		}
		flush()
	}
	return best
}
