package dar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	darerrors "github.com/willfineberg/chi-tif-parser/internal/dar/errors"
	"github.com/willfineberg/chi-tif-parser/internal/document"
	"github.com/willfineberg/chi-tif-parser/internal/locate"
	"github.com/willfineberg/chi-tif-parser/internal/numeric"
	"github.com/willfineberg/chi-tif-parser/internal/profile"
	"github.com/willfineberg/chi-tif-parser/internal/table"
	"github.com/willfineberg/chi-tif-parser/internal/termtable"
)

type engineFunc func(page *document.Page, region locate.Region, columns []float64) (table.Grid, error)

func (f engineFunc) Extract(page *document.Page, region locate.Region, columns []float64) (table.Grid, error) {
	return f(page, region, columns)
}

func testTerms(t *testing.T) *termtable.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "terms.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"Name of Redevelopment Project Area,Date Designated,Date Terminated\n"+
			"Central Loop,6/20/1984,12/31/2008\n"), 0o644))
	tbl, err := termtable.Load(path)
	require.NoError(t, err)
	return tbl
}

func testDocument() *document.Document {
	doc := &document.Document{ID: "T_051_CentralLoopAR22.pdf"}
	for i := 1; i <= 11; i++ {
		doc.Pages = append(doc.Pages, document.Page{Number: i, Width: 612, Height: 792})
	}
	doc.Pages[5].Text = "SECTION 3.1 STATEMENT OF INCOME AND EXPENDITURES"
	doc.Pages[5].Words = []document.Word{
		{Text: "SOURCE", X0: 52, X1: 98, Top: 120, Bottom: 132},
		{Text: "FUND", X0: 430, X1: 470, Top: 540, Bottom: 552},
	}
	doc.Pages[7].Text = "Section 3.2 A itemized expenditures"
	doc.Pages[10].Text = "Section 3.2 B vendors paid in excess of $10,000"
	doc.Pages[10].Words = []document.Word{
		{Text: "Name", X0: 150, X1: 180, Top: 140, Bottom: 152},
		{Text: "Amount", X0: 450, X1: 500, Top: 140, Bottom: 152},
	}
	return doc
}

func revenueRaw() table.Grid {
	return table.Grid{Rows: [][]string{
		{"", "SOURCE of", "", ""},
		{"", "Revenue/Cash Receipts:", "Current", "Cumulative"},
		{"", "Property Tax Increment", "$1,391,162", "$65,254,639"},
		{"", "Transfers from Municipal Sources", "$0", "$1,000"},
		{"", "Total Expenditures/Cash Disbursements (Carried forward from", "$1,500,000", ""},
		{"", "FUND BALANCE, END OF REPORTING PERIOD*", "$2,000,000", ""},
		{"", "Transfers to Municipal Sources", "$250", ""},
		{"", "Distribution of Surplus", "$0", ""},
	}}
}

func nameRaw() table.Grid {
	return table.Grid{Rows: [][]string{
		{"CITY OF CHICAGO"},
		{"ANNUAL TAX INCREMENT FINANCE REPORT"},
		{"Central Loop"},
	}}
}

func costsRaw() table.Grid {
	return table.Grid{Rows: [][]string{
		{"Name of Service", "Name", "Amount"},
		{"Administration", "City Staff Costs", "$10,000.00"},
		{"Administration", "City Program Management Costs", "$5,000.00"},
		{"Legal", "City Staff Costs", "$2,500.00"},
		{"Financing", "Amalgamated Bank of Chicago", "$4,200.00"},
	}}
}

// stubEngine routes by page and region the way the real geometry would.
func stubEngine(t *testing.T, revenue, name, costs table.Grid) engineFunc {
	t.Helper()
	return func(page *document.Page, region locate.Region, columns []float64) (table.Grid, error) {
		switch {
		case page.Number == 6 && region.Top == 50:
			return name, nil
		case page.Number == 6:
			return revenue, nil
		case page.Number == 11:
			return costs, nil
		default:
			t.Fatalf("unexpected extract on page %d region %+v", page.Number, region)
			return table.Grid{}, nil
		}
	}
}

func testAssembler(t *testing.T, engine engineFunc) *Assembler {
	t.Helper()
	p, err := profile.ForYear(2022)
	require.NoError(t, err)
	return NewAssembler(p, engine, testTerms(t), numeric.NewNormalizer(numeric.USCurrency()))
}

func TestAssemble(t *testing.T) {
	a := testAssembler(t, stubEngine(t, revenueRaw(), nameRaw(), costsRaw()))

	res, err := a.Assemble(testDocument())
	require.NoError(t, err)
	rec := res.Record

	assert.Equal(t, "Central Loop", rec.TIFName)
	assert.Equal(t, "2022", rec.TIFYear)
	assert.Equal(t, "1984", rec.StartYear)
	assert.Equal(t, "2008", rec.EndYear)
	assert.Equal(t, 51, rec.TIFNumber)
	assert.Equal(t, 1391162.0, rec.PropertyTaxExtraction)
	assert.Equal(t, 65254639.0, rec.CumulativePropertyTaxExtraction)
	assert.Equal(t, 0.0, rec.TransfersIn)
	assert.Equal(t, 1000.0, rec.CumulativeTransfersIn)
	assert.Equal(t, 1500000.0, rec.Expenses)
	assert.Equal(t, 2000000.0, rec.FundBalanceEnd)
	assert.Equal(t, 250.0, rec.TransfersOut)
	assert.Equal(t, 0.0, rec.Distribution)
	// role tally 15,000 vs payee tally 17,500: larger wins
	assert.Equal(t, 17500.0, rec.AdminCosts)
	assert.Equal(t, 4200.0, rec.FinanceCosts)
	assert.Equal(t, "Amalgamated Bank", rec.Bank)

	assert.Equal(t, SectionPages{Revenue: 6, Itemized: 8, Costs: 11}, res.Pages)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "tallies disagree")
}

func TestAssembleIdempotent(t *testing.T) {
	a := testAssembler(t, stubEngine(t, revenueRaw(), nameRaw(), costsRaw()))

	first, err := a.Assemble(testDocument())
	require.NoError(t, err)
	second, err := a.Assemble(testDocument())
	require.NoError(t, err)
	assert.Equal(t, first.Record, second.Record)
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestAssembleMissingMandatoryRow(t *testing.T) {
	revenue := revenueRaw()
	// drop the fund balance row
	revenue.Rows = append(revenue.Rows[:5], revenue.Rows[6:]...)
	a := testAssembler(t, stubEngine(t, revenue, nameRaw(), costsRaw()))

	_, err := a.Assemble(testDocument())
	require.Error(t, err)
	assert.Equal(t, darerrors.KindMandatoryRowNotFound, darerrors.KindOf(err))
	assert.Contains(t, err.Error(), "fund_balance_end")
	assert.Contains(t, err.Error(), "T_051_CentralLoopAR22.pdf")
}

func TestAssembleOptionalTransfersOut(t *testing.T) {
	revenue := revenueRaw()
	// drop the transfers-out row
	revenue.Rows = append(revenue.Rows[:6], revenue.Rows[7:]...)
	a := testAssembler(t, stubEngine(t, revenue, nameRaw(), costsRaw()))

	res, err := a.Assemble(testDocument())
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Record.TransfersOut)
	assert.Contains(t, res.Warnings[0], "transfers to municipal sources")
}

func TestAssembleNoVendors(t *testing.T) {
	noVendors := table.Grid{Rows: [][]string{
		{"There were no vendors paid in excess of $10,000 during this reporting period."},
	}}
	a := testAssembler(t, stubEngine(t, revenueRaw(), nameRaw(), noVendors))

	res, err := a.Assemble(testDocument())
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Record.AdminCosts)
	assert.Equal(t, 0.0, res.Record.FinanceCosts)
	assert.Empty(t, res.Record.Bank)
	assert.Empty(t, res.Warnings)
}

func TestAssembleUnreadableCostsDegrades(t *testing.T) {
	broken := table.Grid{Rows: [][]string{{"Vendor", "Paid"}, {"Somebody", "1"}}}
	a := testAssembler(t, stubEngine(t, revenueRaw(), nameRaw(), broken))

	res, err := a.Assemble(testDocument())
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Record.AdminCosts)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "costs table unreadable")
}

func TestAssembleNumericFailureIsFatal(t *testing.T) {
	revenue := revenueRaw()
	revenue.Rows[2][2] = "N/A"
	a := testAssembler(t, stubEngine(t, revenue, nameRaw(), costsRaw()))

	_, err := a.Assemble(testDocument())
	require.Error(t, err)
	assert.Equal(t, darerrors.KindNumericParseFailure, darerrors.KindOf(err))
	assert.Contains(t, err.Error(), "property_tax_extraction")
}

func TestAssembleBadFileName(t *testing.T) {
	a := testAssembler(t, stubEngine(t, revenueRaw(), nameRaw(), costsRaw()))
	doc := testDocument()
	doc.ID = "annual-report.pdf"

	_, err := a.Assemble(doc)
	require.Error(t, err)
	assert.Equal(t, darerrors.KindDocumentUnreadable, darerrors.KindOf(err))
}

func TestRecordCSVRow(t *testing.T) {
	rec := &Record{
		TIFName: "Central Loop", TIFYear: "2022", StartYear: "1984", EndYear: "2008",
		TIFNumber: 51, PropertyTaxExtraction: 1391162, FundBalanceEnd: 2000000.5,
		Bank: "Amalgamated Bank",
	}

	row := rec.CSVRow()
	require.Len(t, row, len(FieldNames()))
	assert.Equal(t, "Central Loop", row[0])
	assert.Equal(t, "51", row[4])
	assert.Equal(t, "1391162", row[5])
	assert.Equal(t, "2000000.5", row[10])
	assert.Equal(t, "Amalgamated Bank", row[len(row)-1])

	assert.Equal(t, "tif_name", FieldNames()[0])
	assert.Equal(t, "bank", FieldNames()[15])
}
