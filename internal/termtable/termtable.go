// Package termtable resolves redevelopment project areas to their
// designation and termination years. The city publishes the term sheet
// as one more PDF table; it can also be supplied as a CSV snapshot so a
// batch run does not depend on fetching it.
package termtable

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	darerrors "github.com/willfineberg/chi-tif-parser/internal/dar/errors"
	"github.com/willfineberg/chi-tif-parser/internal/match"
	"github.com/willfineberg/chi-tif-parser/internal/table"
)

// Canonical term sheet column names.
const (
	ColumnArea       = "Name of Redevelopment Project Area"
	ColumnDesignated = "Date Designated"
	ColumnTerminated = "Date Terminated"
)

// Entry holds the two lifecycle dates for one project area, as printed,
// in M/D/YYYY form.
type Entry struct {
	Designated string
	Terminated string
}

// StartYear returns the year component of the designation date.
func (e Entry) StartYear() (string, error) {
	return yearOf(e.Designated)
}

// EndYear returns the year component of the termination date.
func (e Entry) EndYear() (string, error) {
	return yearOf(e.Terminated)
}

func yearOf(date string) (string, error) {
	parts := strings.Split(strings.TrimSpace(date), "/")
	year := parts[len(parts)-1]
	if len(year) != 4 {
		return "", fmt.Errorf("malformed term date %q", date)
	}
	for _, r := range year {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("malformed term date %q", date)
		}
	}
	return year, nil
}

// Table maps project area names to their term entries.
type Table struct {
	entries map[string]Entry

	// stripped indexes entries by name with all whitespace removed, so
	// filename-derived names like "CentralLoop" still resolve to the
	// sheet's "Central Loop".
	stripped map[string]string
}

// Load reads a CSV snapshot of the term sheet. The snapshot carries the
// canonical three columns, header row first.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening term table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading term table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("term table %s is empty", path)
	}

	grid := table.Grid{Headers: records[0], Rows: records[1:]}
	return fromTable(grid)
}

// FromGrid builds the term table from a grid extracted off the published
// PDF. Rows above the first project area are page furniture; firstArea
// marks where the data begins, and the canonical headers are imposed
// since the printed ones wrap unpredictably.
func FromGrid(g table.Grid, firstArea match.Pattern) (*Table, error) {
	start := -1
	for row := range g.Rows {
		for col := range g.Rows[row] {
			if firstArea.Matches(g.Rows[row][col]) {
				start = row
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return nil, darerrors.New(darerrors.KindSchemaDrift,
			"term sheet grid holds no row matching "+firstArea.Value)
	}

	trimmed := table.Grid{
		Headers: []string{ColumnArea, ColumnDesignated, ColumnTerminated},
		Rows:    g.Rows[start:],
	}
	return fromTable(trimmed)
}

func fromTable(g table.Grid) (*Table, error) {
	cols, err := table.RequireColumns(g, ColumnArea, ColumnDesignated, ColumnTerminated)
	if err != nil {
		return nil, err
	}
	areaCol, startCol, endCol := cols[0], cols[1], cols[2]

	t := &Table{
		entries:  make(map[string]Entry, len(g.Rows)),
		stripped: make(map[string]string, len(g.Rows)),
	}
	for row := range g.Rows {
		name := normalizeName(g.Cell(row, areaCol))
		if name == "" {
			continue
		}
		t.entries[name] = Entry{
			Designated: strings.TrimSpace(g.Cell(row, startCol)),
			Terminated: strings.TrimSpace(g.Cell(row, endCol)),
		}
		t.stripped[stripName(name)] = name
	}
	return t, nil
}

// Lookup returns the entry for a project area name. Exact lookup runs
// first; a miss retries with all whitespace removed from both sides.
func (t *Table) Lookup(name string) (Entry, bool) {
	if e, ok := t.entries[normalizeName(name)]; ok {
		return e, true
	}
	if canonical, ok := t.stripped[stripName(name)]; ok {
		return t.entries[canonical], true
	}
	return Entry{}, false
}

// Len returns the number of project areas in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Years resolves a project area to its start and end years. A name the
// sheet does not carry is a term lookup failure, which is fatal for the
// record: the two year columns are part of the output contract.
func (t *Table) Years(name string) (start, end string, err error) {
	e, ok := t.Lookup(name)
	if !ok {
		return "", "", darerrors.New(darerrors.KindTermLookupFailure,
			fmt.Sprintf("project area %q not in term sheet", name))
	}
	start, err = e.StartYear()
	if err != nil {
		return "", "", darerrors.Wrap(darerrors.KindTermLookupFailure,
			fmt.Sprintf("designation date for %q", name), err)
	}
	end, err = e.EndYear()
	if err != nil {
		return "", "", darerrors.Wrap(darerrors.KindTermLookupFailure,
			fmt.Sprintf("termination date for %q", name), err)
	}
	return start, end, nil
}

// Project area names differ between the reports and the term sheet in
// spacing only, so comparison collapses interior whitespace.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func stripName(name string) string {
	return strings.Join(strings.Fields(name), "")
}
