package locate

import (
	"fmt"
	"regexp"

	"github.com/willfineberg/chi-tif-parser/internal/document"
)

// AnchorProbe finds the first word on a page matching a regular
// expression. Table regions are keyed off the coordinates of these
// anchor words rather than fixed rectangles, which keeps extraction
// stable across the small layout shifts between filing years.
type AnchorProbe struct {
	pattern *regexp.Regexp
}

// NewAnchorProbe compiles the probe. When caseSensitive is false the
// pattern is wrapped with (?i).
func NewAnchorProbe(pattern string, caseSensitive bool) (*AnchorProbe, error) {
	expr := pattern
	if !caseSensitive {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling anchor pattern %q: %w", pattern, err)
	}
	return &AnchorProbe{pattern: re}, nil
}

// Find returns the first word, in reading order, whose text matches the
// probe pattern.
func (p *AnchorProbe) Find(words []document.Word) (document.Word, bool) {
	for _, w := range words {
		if p.pattern.MatchString(w.Text) {
			return w, true
		}
	}
	return document.Word{}, false
}
