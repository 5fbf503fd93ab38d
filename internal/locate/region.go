package locate

import (
	"github.com/willfineberg/chi-tif-parser/internal/document"
)

// Region is a rectangular page area. Coordinates are points from the
// top-left corner unless Relative is set, in which case every value is
// a percentage of the page dimension (height for Top/Bottom, width for
// Left/Right).
type Region struct {
	Top      float64
	Left     float64
	Bottom   float64
	Right    float64
	Relative bool
}

// Absolute converts a relative region to points. Absolute regions pass
// through unchanged.
func (r Region) Absolute(width, height float64) Region {
	if !r.Relative {
		return r
	}
	return Region{
		Top:    r.Top / 100 * height,
		Left:   r.Left / 100 * width,
		Bottom: r.Bottom / 100 * height,
		Right:  r.Right / 100 * width,
	}
}

// Coord selects one coordinate of an anchor word.
type Coord int

const (
	CoordX0 Coord = iota
	CoordX1
	CoordTop
	CoordBottom
)

// AnchorRef names which probe an offset is measured from.
type AnchorRef int

const (
	// RefNone makes the offset an absolute value: Delta stands alone.
	RefNone AnchorRef = iota
	RefPrimary
	RefSecondary
)

// Offset is one resolved coordinate: a base taken from an anchor word
// plus a constant delta.
type Offset struct {
	From  AnchorRef
	Coord Coord
	Delta float64
}

// Abs is shorthand for an absolute offset.
func Abs(v float64) Offset {
	return Offset{From: RefNone, Delta: v}
}

// FromPrimary measures off the primary anchor.
func FromPrimary(c Coord, delta float64) Offset {
	return Offset{From: RefPrimary, Coord: c, Delta: delta}
}

// FromSecondary measures off the secondary anchor.
func FromSecondary(c Coord, delta float64) Offset {
	return Offset{From: RefSecondary, Coord: c, Delta: delta}
}

// Spec describes how a table region and its column boundaries are
// derived from anchor words on the page. A spec with an empty Primary
// pattern resolves straight to its fallback rectangle and columns.
type Spec struct {
	Primary       string
	Secondary     string
	CaseSensitive bool

	Top    Offset
	Left   Offset
	Bottom Offset
	Right  Offset

	// Columns are the x positions separating table columns, leftmost
	// first.
	Columns []Offset

	// RelativeVertical renders the resolved region in percent of page
	// dimensions rather than points.
	RelativeVertical bool

	// FallbackPrimary substitutes a known-good anchor position when the
	// primary probe misses. Zero value (empty Text) means unset.
	FallbackPrimary document.Word

	FallbackRegion  Region
	FallbackColumns []float64
}

// Resolution is the outcome of resolving a Spec against a page.
type Resolution struct {
	Region  Region
	Columns []float64

	// UsedFallback reports that one or more anchors were missing and a
	// configured fallback stood in. MissingAnchors lists their patterns.
	UsedFallback   bool
	MissingAnchors []string
}

// Resolve applies a spec to a page. It always produces a usable region:
// missing anchors degrade to the spec's fallbacks and are reported on
// the resolution rather than as an error.
func Resolve(page *document.Page, spec Spec) (Resolution, error) {
	var res Resolution

	if spec.Primary == "" {
		res.Region = spec.FallbackRegion
		res.Columns = append([]float64(nil), spec.FallbackColumns...)
		return res, nil
	}

	primary, ok, err := probe(page.Words, spec.Primary, spec.CaseSensitive)
	if err != nil {
		return res, err
	}
	if !ok {
		if spec.FallbackPrimary.Text == "" {
			res.Region = spec.FallbackRegion
			res.Columns = append([]float64(nil), spec.FallbackColumns...)
			res.UsedFallback = true
			res.MissingAnchors = []string{spec.Primary}
			return res, nil
		}
		primary = spec.FallbackPrimary
		res.UsedFallback = true
		res.MissingAnchors = append(res.MissingAnchors, spec.Primary)
	}

	var secondary document.Word
	if spec.Secondary != "" {
		secondary, ok, err = probe(page.Words, spec.Secondary, spec.CaseSensitive)
		if err != nil {
			return res, err
		}
		if !ok {
			res.Region = spec.FallbackRegion
			res.Columns = append([]float64(nil), spec.FallbackColumns...)
			res.UsedFallback = true
			res.MissingAnchors = append(res.MissingAnchors, spec.Secondary)
			return res, nil
		}
	}

	res.Region = Region{
		Top:      resolveOffset(spec.Top, primary, secondary),
		Left:     resolveOffset(spec.Left, primary, secondary),
		Bottom:   resolveOffset(spec.Bottom, primary, secondary),
		Right:    resolveOffset(spec.Right, primary, secondary),
		Relative: spec.RelativeVertical,
	}
	if spec.RelativeVertical {
		res.Region.Top = res.Region.Top / page.Height * 100
	}
	for _, c := range spec.Columns {
		res.Columns = append(res.Columns, resolveOffset(c, primary, secondary))
	}
	return res, nil
}

func probe(words []document.Word, pattern string, caseSensitive bool) (document.Word, bool, error) {
	p, err := NewAnchorProbe(pattern, caseSensitive)
	if err != nil {
		return document.Word{}, false, err
	}
	w, ok := p.Find(words)
	return w, ok, nil
}

func resolveOffset(o Offset, primary, secondary document.Word) float64 {
	var base float64
	switch o.From {
	case RefPrimary:
		base = coord(primary, o.Coord)
	case RefSecondary:
		base = coord(secondary, o.Coord)
	}
	return base + o.Delta
}

func coord(w document.Word, c Coord) float64 {
	switch c {
	case CoordX0:
		return w.X0
	case CoordX1:
		return w.X1
	case CoordTop:
		return w.Top
	case CoordBottom:
		return w.Bottom
	}
	return 0
}
