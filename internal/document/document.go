// Package document loads an annual report PDF into the page text and
// positioned-word index the rest of the pipeline works from. A Document is
// immutable once loaded and owned by a single worker for the duration of
// one record's construction.
package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Word is one positioned token on a page. Coordinates are in points with
// the origin at the top-left of the page, matching the offsets stored in
// the era profiles.
type Word struct {
	Text   string
	X0     float64
	X1     float64
	Top    float64
	Bottom float64
}

// Page holds the extracted artifacts for one page.
type Page struct {
	Number int // 1-indexed
	Text   string
	Words  []Word
	Width  float64
	Height float64
}

// Document is one report's extracted content.
type Document struct {
	// ID is the source file name, e.g. "T_051_CentralLoopAR22.pdf".
	// Report number and fallback entity name are derived from it.
	ID    string
	Path  string
	Pages []Page
}

// Page returns the 1-indexed page, or false if the document is shorter.
func (d *Document) Page(num int) (*Page, bool) {
	if num < 1 || num > len(d.Pages) {
		return nil, false
	}
	return &d.Pages[num-1], true
}

// PageTexts returns the plain text of every page in order.
func (d *Document) PageTexts() []string {
	texts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		texts[i] = p.Text
	}
	return texts
}

var reportNumberPattern = regexp.MustCompile(`T_(\d+)_`)

// ReportNumber derives the district number from a source file name of the
// form "T_<number>_<name>AR<yy>.pdf".
func ReportNumber(id string) (int, error) {
	m := reportNumberPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, fmt.Errorf("no report number in %q", id)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("bad report number in %q: %w", id, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("report number must be positive, got %d from %q", n, id)
	}
	return n, nil
}

// ReportName derives the entity name embedded in the source file name.
// It is the fallback when the name cannot be read off the first data page.
func ReportName(id string) (string, error) {
	parts := strings.Split(id, "_")
	if len(parts) < 3 {
		return "", fmt.Errorf("no report name in %q", id)
	}
	name := parts[2]
	// Trailing "AR<yy>.pdf" suffix.
	if len(name) <= 8 {
		return "", fmt.Errorf("no report name in %q", id)
	}
	return name[:len(name)-8], nil
}
