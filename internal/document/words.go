package document

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Text-run assembly tolerances, in fractions of the run font size. PDF text
// operators emit fragments, not words; runs on the same baseline closer
// than the gap tolerance belong to the same word.
const (
	baselineTolerance = 0.5 // points
	gapFraction       = 0.25
	defaultFontSize   = 12.0
)

// assembleWords merges raw text runs into positioned words, converting the
// PDF bottom-left origin into top-left coordinates.
func assembleWords(runs []pdf.Text, pageHeight float64) []Word {
	runs = sortedRuns(runs)

	var words []Word
	var current *wordBuilder
	for _, run := range runs {
		text := strings.TrimSpace(run.S)
		if text == "" {
			// An explicit space always terminates the current word.
			if current != nil {
				words = append(words, current.build(pageHeight))
				current = nil
			}
			continue
		}
		if current != nil && current.accepts(run) {
			current.append(run, text)
			continue
		}
		if current != nil {
			words = append(words, current.build(pageHeight))
		}
		current = newWordBuilder(run, text)
	}
	if current != nil {
		words = append(words, current.build(pageHeight))
	}
	return words
}

// sortedRuns orders runs top-to-bottom, left-to-right.
func sortedRuns(runs []pdf.Text) []pdf.Text {
	sorted := make([]pdf.Text, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if diff := sorted[i].Y - sorted[j].Y; diff > baselineTolerance || diff < -baselineTolerance {
			return sorted[i].Y > sorted[j].Y // higher baseline first
		}
		return sorted[i].X < sorted[j].X
	})
	return sorted
}

type wordBuilder struct {
	text     strings.Builder
	x0, x1   float64
	y        float64
	fontSize float64
}

func newWordBuilder(run pdf.Text, text string) *wordBuilder {
	b := &wordBuilder{
		x0:       run.X,
		x1:       run.X + run.W,
		y:        run.Y,
		fontSize: fontSizeOf(run),
	}
	b.text.WriteString(text)
	return b
}

// accepts reports whether run continues the word being built: same
// baseline and a horizontal gap smaller than the tolerance.
func (b *wordBuilder) accepts(run pdf.Text) bool {
	if diff := run.Y - b.y; diff > baselineTolerance || diff < -baselineTolerance {
		return false
	}
	gap := run.X - b.x1
	return gap <= gapFraction*b.fontSize
}

func (b *wordBuilder) append(run pdf.Text, text string) {
	b.text.WriteString(text)
	if right := run.X + run.W; right > b.x1 {
		b.x1 = right
	}
}

func (b *wordBuilder) build(pageHeight float64) Word {
	return Word{
		Text:   b.text.String(),
		X0:     b.x0,
		X1:     b.x1,
		Top:    pageHeight - (b.y + b.fontSize),
		Bottom: pageHeight - b.y,
	}
}

// fontSizeOf approximates the run height; the library reports no glyph
// height, so the font size stands in for it.
func fontSizeOf(run pdf.Text) float64 {
	if run.FontSize > 0 {
		return run.FontSize
	}
	return defaultFontSize
}
