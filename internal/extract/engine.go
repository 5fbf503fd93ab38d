// Package extract recovers tabular cell grids from positioned page
// words. The reports draw their tables with ruled lines the text layer
// knows nothing about, so structure is reconstructed geometrically:
// words sharing a baseline form a row, column boundaries slice the row
// into cells.
package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/willfineberg/chi-tif-parser/internal/document"
	"github.com/willfineberg/chi-tif-parser/internal/locate"
	"github.com/willfineberg/chi-tif-parser/internal/table"
)

// Engine turns a page region into a grid of text cells.
type Engine interface {
	Extract(page *document.Page, region locate.Region, columns []float64) (table.Grid, error)
}

// rowTolerance is the vertical slack, in points, within which words are
// considered part of the same table row.
const rowTolerance = 3.0

// WordEngine is the geometric Engine implementation over the document
// word layer.
type WordEngine struct {
	tolerance float64
}

// NewWordEngine returns an engine with the default row tolerance.
func NewWordEngine() *WordEngine {
	return &WordEngine{tolerance: rowTolerance}
}

// Extract collects the words inside region, groups them into rows by
// baseline, and splits each row into cells at the column boundaries.
// With n boundaries every row has n+1 cells; words left of the first
// boundary land in cell zero. No boundaries means one cell per row.
func (e *WordEngine) Extract(page *document.Page, region locate.Region, columns []float64) (table.Grid, error) {
	abs := region.Absolute(page.Width, page.Height)
	if abs.Top >= abs.Bottom || abs.Left >= abs.Right {
		return table.Grid{}, fmt.Errorf("degenerate region top=%.1f bottom=%.1f left=%.1f right=%.1f",
			abs.Top, abs.Bottom, abs.Left, abs.Right)
	}

	var inside []document.Word
	for _, w := range page.Words {
		cy := (w.Top + w.Bottom) / 2
		cx := (w.X0 + w.X1) / 2
		if cy >= abs.Top && cy <= abs.Bottom && cx >= abs.Left && cx <= abs.Right {
			inside = append(inside, w)
		}
	}
	if len(inside) == 0 {
		return table.Grid{}, nil
	}

	sort.SliceStable(inside, func(i, j int) bool {
		if inside[i].Top != inside[j].Top {
			return inside[i].Top < inside[j].Top
		}
		return inside[i].X0 < inside[j].X0
	})

	boundaries := append([]float64(nil), columns...)
	sort.Float64s(boundaries)

	var grid table.Grid
	rowTop := inside[0].Top
	var row []document.Word
	flush := func() {
		grid.Rows = append(grid.Rows, splitRow(row, boundaries))
		row = row[:0]
	}
	for _, w := range inside {
		if w.Top-rowTop > e.tolerance {
			flush()
			rowTop = w.Top
		}
		row = append(row, w)
	}
	flush()

	return grid, nil
}

func splitRow(row []document.Word, boundaries []float64) []string {
	cells := make([][]string, len(boundaries)+1)
	sort.SliceStable(row, func(i, j int) bool { return row[i].X0 < row[j].X0 })
	for _, w := range row {
		cx := (w.X0 + w.X1) / 2
		idx := 0
		for _, b := range boundaries {
			if cx >= b {
				idx++
			}
		}
		cells[idx] = append(cells[idx], w.Text)
	}
	out := make([]string, len(cells))
	for i, parts := range cells {
		out[i] = strings.Join(parts, " ")
	}
	return out
}
