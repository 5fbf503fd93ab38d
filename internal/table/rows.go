package table

import (
	darerrors "github.com/willfineberg/chi-tif-parser/internal/dar/errors"
	"github.com/willfineberg/chi-tif-parser/internal/match"
)

// MatchRow runs a label pattern chain down one column and returns the
// first matching data row. Several rows can match a loose rung; the
// topmost wins, which on these statements is always the summary line.
func MatchRow(g Grid, labelCol int, chain match.Chain) (int, bool) {
	hits := chain.Select(g.ColumnValues(labelCol))
	if len(hits) == 0 {
		return 0, false
	}
	return hits[0], true
}

// MandatoryRow is MatchRow for categories the record cannot be built
// without. A miss is a fatal mandatory-row error carrying the category
// name.
func MandatoryRow(g Grid, labelCol int, chain match.Chain, category string) (int, error) {
	row, ok := MatchRow(g, labelCol, chain)
	if !ok {
		return 0, darerrors.New(darerrors.KindMandatoryRowNotFound,
			"no row matched any pattern for "+category).WithCategory(category)
	}
	return row, nil
}

// OptionalRow is MatchRow for categories that legitimately vanish from
// some filing years. The error it returns on a miss is recoverable and
// exists for logging, not control flow.
func OptionalRow(g Grid, labelCol int, chain match.Chain, category string) (int, bool, error) {
	row, ok := MatchRow(g, labelCol, chain)
	if !ok {
		return 0, false, darerrors.New(darerrors.KindOptionalRowNotFound,
			"no row matched any pattern for "+category).WithCategory(category)
	}
	return row, true, nil
}
