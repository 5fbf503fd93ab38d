package dar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	darerrors "github.com/willfineberg/chi-tif-parser/internal/dar/errors"
	"github.com/willfineberg/chi-tif-parser/internal/document"
	"github.com/willfineberg/chi-tif-parser/internal/extract"
	"github.com/willfineberg/chi-tif-parser/internal/locate"
	"github.com/willfineberg/chi-tif-parser/internal/numeric"
	"github.com/willfineberg/chi-tif-parser/internal/profile"
	"github.com/willfineberg/chi-tif-parser/internal/table"
	"github.com/willfineberg/chi-tif-parser/internal/termtable"
)

// SectionPages records where each report section was found, for triage
// when a record comes out wrong.
type SectionPages struct {
	Revenue  int
	Itemized int
	Costs    int
}

// Result is one assembled record plus everything an operator wants to
// know about how it was obtained.
type Result struct {
	Record   *Record
	Pages    SectionPages
	Warnings []string
}

// Assembler builds records from loaded documents. It is not safe for
// concurrent use; the batch runner gives each worker its own.
type Assembler struct {
	profile *profile.Profile
	engine  extract.Engine
	terms   *termtable.Table
	norm    *numeric.Normalizer
}

// NewAssembler wires an assembler for one filing year's profile.
func NewAssembler(p *profile.Profile, engine extract.Engine, terms *termtable.Table, norm *numeric.Normalizer) *Assembler {
	return &Assembler{profile: p, engine: engine, terms: terms, norm: norm}
}

// Assemble extracts one record from a document. Mandatory failures
// return an error and no record; recoverable conditions degrade to
// documented defaults and surface as warnings on the result.
func (a *Assembler) Assemble(doc *document.Document) (*Result, error) {
	res := &Result{Record: &Record{TIFYear: strconv.Itoa(a.profile.Year)}}
	rec := res.Record

	number, err := document.ReportNumber(doc.ID)
	if err != nil {
		return nil, darerrors.Wrap(darerrors.KindDocumentUnreadable,
			"report number not recoverable from file name", err).WithDocument(doc.ID)
	}
	rec.TIFNumber = number

	texts := doc.PageTexts()
	res.Pages = a.sectionPages(texts, res)

	revPage, ok := doc.Page(res.Pages.Revenue)
	if !ok {
		return nil, darerrors.New(darerrors.KindDocumentUnreadable,
			fmt.Sprintf("revenue section page %d beyond document end", res.Pages.Revenue)).
			WithDocument(doc.ID)
	}

	grid, err := a.revenueGrid(revPage, res)
	if err != nil {
		return nil, a.annotate(err, doc.ID, revPage.Number)
	}

	if err := a.fillRevenue(rec, grid, res); err != nil {
		return nil, a.annotate(err, doc.ID, revPage.Number)
	}

	rec.TIFName = a.districtName(doc, revPage, res)
	if err := a.fillTermYears(rec, doc, res); err != nil {
		return nil, a.annotate(err, doc.ID, 0)
	}

	a.fillCosts(rec, doc, res)
	return res, nil
}

func (a *Assembler) sectionPages(texts []string, res *Result) SectionPages {
	p := a.profile
	pages := SectionPages{}

	var found bool
	pages.Revenue, found = locate.SearchSectionPage(texts, p.RevenueMarker)
	if !found {
		pages.Revenue = p.RevenueFallbackPage
		res.warn("revenue section marker %q not found, using page %d", p.RevenueMarker, pages.Revenue)
	}
	pages.Itemized = locate.FindSectionPage(texts, p.ItemizedMarker, p.ItemizedFallbackPage)
	pages.Costs, found = locate.SearchSectionPage(texts, p.CostsMarker)
	if !found {
		pages.Costs = p.CostsFallbackPage
		res.warn("costs section marker %q not found, using page %d", p.CostsMarker, pages.Costs)
	}
	return pages
}

func (a *Assembler) revenueGrid(page *document.Page, res *Result) (table.Grid, error) {
	resolution, err := locate.Resolve(page, a.profile.RevenueRegion)
	if err != nil {
		return table.Grid{}, err
	}
	if resolution.UsedFallback {
		res.warn("revenue anchors %s missing, using fallback geometry",
			strings.Join(resolution.MissingAnchors, ", "))
	}

	raw, err := a.engine.Extract(page, resolution.Region, resolution.Columns)
	if err != nil {
		return table.Grid{}, darerrors.Wrap(darerrors.KindSchemaDrift, "extracting revenue table", err)
	}
	return table.ReconcileHeader(raw, a.profile.RevenueHeader)
}

func (a *Assembler) fillRevenue(rec *Record, grid table.Grid, res *Result) error {
	terms := a.profile.Terms
	cols, err := table.RequireColumns(grid, terms.Source, terms.Current, terms.Cumulative)
	if err != nil {
		return err
	}
	sourceCol, curCol, cumCol := cols[0], cols[1], cols[2]
	chains := a.profile.Rows

	read := func(category string, row, col int) (float64, error) {
		v, err := a.norm.Normalize(grid.Cell(row, col))
		if err != nil {
			return 0, a.categorize(err, category)
		}
		return v, nil
	}

	row, err := table.MandatoryRow(grid, sourceCol, chains.PropertyTax, "property_tax_extraction")
	if err != nil {
		return err
	}
	if rec.PropertyTaxExtraction, err = read("property_tax_extraction", row, curCol); err != nil {
		return err
	}
	if rec.CumulativePropertyTaxExtraction, err = read("cumulative_property_tax_extraction", row, cumCol); err != nil {
		return err
	}

	row, err = table.MandatoryRow(grid, sourceCol, chains.TransfersIn, "transfers_in")
	if err != nil {
		return err
	}
	if rec.TransfersIn, err = read("transfers_in", row, curCol); err != nil {
		return err
	}
	if rec.CumulativeTransfersIn, err = read("cumulative_transfers_in", row, cumCol); err != nil {
		return err
	}

	row, err = table.MandatoryRow(grid, sourceCol, chains.Expenses, "expenses")
	if err != nil {
		return err
	}
	if rec.Expenses, err = read("expenses", row, curCol); err != nil {
		return err
	}

	row, err = table.MandatoryRow(grid, sourceCol, chains.FundBalance, "fund_balance_end")
	if err != nil {
		return err
	}
	if rec.FundBalanceEnd, err = read("fund_balance_end", row, curCol); err != nil {
		return err
	}

	row, err = table.MandatoryRow(grid, sourceCol, chains.Distribution, "distribution")
	if err != nil {
		return err
	}
	if rec.Distribution, err = read("distribution", row, curCol); err != nil {
		return err
	}

	row, found, _ := table.OptionalRow(grid, sourceCol, chains.TransfersOut, "transfers_out")
	if found {
		if rec.TransfersOut, err = read("transfers_out", row, curCol); err != nil {
			return err
		}
	} else {
		res.warn("no transfers to municipal sources row, recording 0")
	}

	return nil
}

// districtName prefers the name block printed on the revenue page; the
// file name stands in when the era has no block or it comes up empty.
func (a *Assembler) districtName(doc *document.Document, page *document.Page, res *Result) string {
	fileName, err := document.ReportName(doc.ID)
	if err != nil {
		fileName = doc.ID
	}

	if !a.profile.HasNameRegion() {
		return fileName
	}

	resolution, err := locate.Resolve(page, a.profile.NameRegion)
	if err != nil {
		return fileName
	}
	grid, err := a.engine.Extract(page, resolution.Region, resolution.Columns)
	if err != nil {
		res.warn("name block unreadable, using file name: %v", err)
		return fileName
	}
	name := strings.TrimSpace(grid.Cell(a.profile.NameRow, 0))
	if name == "" {
		res.warn("name block empty, using file name")
		return fileName
	}
	return name
}

// fillTermYears resolves the start and end years. When the printed name
// misses the term sheet but the file name hits it, the file name wins.
func (a *Assembler) fillTermYears(rec *Record, doc *document.Document, res *Result) error {
	start, end, err := a.terms.Years(rec.TIFName)
	if err != nil {
		fileName, nameErr := document.ReportName(doc.ID)
		if nameErr != nil || fileName == rec.TIFName {
			return err
		}
		start, end, err = a.terms.Years(fileName)
		if err != nil {
			return err
		}
		res.warn("printed name %q absent from term sheet, matched file name %q", rec.TIFName, fileName)
	}
	rec.StartYear = start
	rec.EndYear = end
	return nil
}

// fillCosts is best-effort: the vendor table is the most damaged part of
// the corpus, and a record with zero costs is more useful than no record.
func (a *Assembler) fillCosts(rec *Record, doc *document.Document, res *Result) {
	page, ok := doc.Page(res.Pages.Costs)
	if !ok {
		res.warn("costs section page %d beyond document end, recording 0", res.Pages.Costs)
		return
	}

	summary, err := a.costSummary(page, res)
	if err != nil {
		res.warn("costs table unreadable on page %d, recording 0: %v", page.Number, err)
		return
	}
	rec.AdminCosts = summary.AdminCosts
	rec.FinanceCosts = summary.FinanceCosts
	rec.Bank = summary.Banks
	if summary.Discrepancy {
		res.warn("admin cost tallies disagree (role %.2f vs payee %.2f), larger kept",
			summary.RoleAdminTotal, summary.PayeeAdminTotal)
	}
}

func (a *Assembler) costSummary(page *document.Page, res *Result) (table.CostSummary, error) {
	p := a.profile
	resolution, err := locate.Resolve(page, p.CostsRegion)
	if err != nil {
		return table.CostSummary{}, err
	}
	if resolution.UsedFallback {
		res.warn("costs anchors %s missing, using fallback geometry",
			strings.Join(resolution.MissingAnchors, ", "))
	}

	raw, err := a.engine.Extract(page, resolution.Region, resolution.Columns)
	if err != nil {
		return table.CostSummary{}, err
	}
	if a.noVendors(raw) {
		return table.CostSummary{}, nil
	}

	grid, err := table.ReconcileHeader(raw, p.CostsHeader)
	if err != nil {
		return table.CostSummary{}, err
	}
	return table.ReconcileCosts(grid, p.Costs, a.norm)
}

// noVendors recognizes the "no vendors were paid" statement that stands
// in for the vendor table in quiet years.
func (a *Assembler) noVendors(raw table.Grid) bool {
	marker := a.profile.NoVendorMarker
	if marker == "" {
		return false
	}
	for _, row := range raw.Rows {
		for _, cell := range row {
			if strings.Contains(cell, marker) {
				return true
			}
		}
	}
	return false
}

func (a *Assembler) annotate(err error, docID string, page int) error {
	var pe *darerrors.ParseError
	if !errors.As(err, &pe) {
		return err
	}
	if pe.Document == "" {
		pe.WithDocument(docID)
	}
	if pe.Page == 0 && page > 0 {
		pe.WithPage(page)
	}
	return pe
}

func (a *Assembler) categorize(err error, category string) error {
	var pe *darerrors.ParseError
	if errors.As(err, &pe) && pe.Category == "" {
		pe.WithCategory(category)
	}
	return err
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
