package table

import (
	"strings"

	darerrors "github.com/willfineberg/chi-tif-parser/internal/dar/errors"
	"github.com/willfineberg/chi-tif-parser/internal/match"
)

// HeaderBoundary says where the header rows of a raw grid end. When
// Anchor is set, the header is every row above the first row containing
// a cell the anchor matches. Otherwise the header is the first Rows
// rows. FixedHeaders, when set, replaces the reconciled names outright:
// the oldest report layouts extract header text too mangled to resolve
// columns from, so those profiles impose the canonical names instead.
type HeaderBoundary struct {
	Rows         int
	Anchor       match.Pattern
	FixedHeaders []string
}

// ReconcileHeader folds the header rows of a raw grid into one canonical
// name per column and returns the grid with Headers set and the header
// rows removed. Wrapped header fragments are concatenated top to bottom
// with single spaces. Columns whose reconciled name comes out empty are
// dropped from both headers and data.
func ReconcileHeader(g Grid, b HeaderBoundary) (Grid, error) {
	headerRows, err := headerEnd(g, b)
	if err != nil {
		return Grid{}, err
	}

	if len(b.FixedHeaders) > 0 {
		out := Grid{Headers: append([]string(nil), b.FixedHeaders...)}
		for row := headerRows; row < len(g.Rows); row++ {
			cells := make([]string, len(out.Headers))
			for col := range cells {
				cells[col] = g.Cell(row, col)
			}
			out.Rows = append(out.Rows, cells)
		}
		return out, nil
	}

	width := 0
	for _, r := range g.Rows {
		if len(r) > width {
			width = len(r)
		}
	}

	headers := make([]string, width)
	for col := 0; col < width; col++ {
		var parts []string
		for row := 0; row < headerRows; row++ {
			if cell := strings.TrimSpace(g.Cell(row, col)); cell != "" {
				parts = append(parts, cell)
			}
		}
		headers[col] = strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	}

	var keep []int
	for col, h := range headers {
		if h != "" {
			keep = append(keep, col)
		}
	}

	out := Grid{Headers: make([]string, 0, len(keep))}
	for _, col := range keep {
		out.Headers = append(out.Headers, headers[col])
	}
	for row := headerRows; row < len(g.Rows); row++ {
		cells := make([]string, 0, len(keep))
		for _, col := range keep {
			cells = append(cells, g.Cell(row, col))
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}

// RequireColumns resolves each keyword to a column index, failing with a
// schema drift error that names every keyword the header lacks.
func RequireColumns(g Grid, keywords ...string) ([]int, error) {
	indices := make([]int, 0, len(keywords))
	var missing []string
	for _, kw := range keywords {
		idx, ok := g.Column(kw)
		if !ok {
			missing = append(missing, kw)
			continue
		}
		indices = append(indices, idx)
	}
	if len(missing) > 0 {
		return nil, darerrors.New(darerrors.KindSchemaDrift,
			"header missing required columns: "+strings.Join(missing, ", "))
	}
	return indices, nil
}

func headerEnd(g Grid, b HeaderBoundary) (int, error) {
	if b.Anchor.Value == "" {
		if b.Rows < 0 || b.Rows > len(g.Rows) {
			return 0, darerrors.New(darerrors.KindSchemaDrift, "grid shorter than its fixed header")
		}
		return b.Rows, nil
	}
	for row := range g.Rows {
		for col := range g.Rows[row] {
			if b.Anchor.Matches(g.Rows[row][col]) {
				return row, nil
			}
		}
	}
	return 0, darerrors.New(darerrors.KindSchemaDrift,
		"header anchor "+b.Anchor.Value+" not found in grid")
}
