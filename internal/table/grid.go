// Package table turns raw extracted cell grids into the labeled rows and
// reconciled totals the report schema promises. The grids arrive messy:
// headers wrap across several physical rows, label text carries OCR
// damage, and vendor tables disagree with themselves about what counts
// as an administration cost.
package table

import "strings"

// Grid is a rectangular block of text cells. Headers is empty until the
// grid has been through ReconcileHeader.
type Grid struct {
	Headers []string
	Rows    [][]string
}

// Cell returns the cell at row, col, or "" when either index is out of
// range. Extracted rows are ragged, so bounds-safe access is the norm.
func (g *Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g.Rows) {
		return ""
	}
	r := g.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Column resolves keyword to a column index. Exact header matches win;
// otherwise the first header containing keyword is taken, since
// reconciled headers concatenate every wrapped fragment ("SOURCE of
// Revenue/Cash Receipts"). The exact pass keeps "Name" from resolving
// to "Name of Service".
func (g *Grid) Column(keyword string) (int, bool) {
	for i, h := range g.Headers {
		if h == keyword {
			return i, true
		}
	}
	for i, h := range g.Headers {
		if strings.Contains(h, keyword) {
			return i, true
		}
	}
	return 0, false
}

// ColumnValues collects one column across all data rows. Rows too short
// to reach the column contribute an empty string.
func (g *Grid) ColumnValues(col int) []string {
	values := make([]string, len(g.Rows))
	for i := range g.Rows {
		values[i] = g.Cell(i, col)
	}
	return values
}
