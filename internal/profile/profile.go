// Package profile carries the per-era extraction configuration. The
// state report form was redesigned twice in the covered period, so page
// numbers, anchors, offsets and even label spellings come in three
// flavors keyed off the filing year.
package profile

import (
	"fmt"

	"github.com/willfineberg/chi-tif-parser/internal/document"
	"github.com/willfineberg/chi-tif-parser/internal/locate"
	"github.com/willfineberg/chi-tif-parser/internal/match"
	"github.com/willfineberg/chi-tif-parser/internal/table"
)

// HeaderTerms are the keywords that resolve the revenue table's columns
// after header reconciliation.
type HeaderTerms struct {
	Source     string
	Current    string
	Cumulative string
}

// RowChains holds one ranked pattern chain per record category.
type RowChains struct {
	PropertyTax  match.Chain
	TransfersIn  match.Chain
	Expenses     match.Chain
	FundBalance  match.Chain
	TransfersOut match.Chain
	Distribution match.Chain
}

// Profile is everything year-dependent about parsing one report.
type Profile struct {
	Era  string
	Year int

	// Section markers with their known-good page fallbacks.
	RevenueMarker        string
	RevenueFallbackPage  int
	ItemizedMarker       string
	ItemizedFallbackPage int
	CostsMarker          string
	CostsFallbackPage    int

	RevenueRegion locate.Spec
	RevenueHeader table.HeaderBoundary
	Terms         HeaderTerms

	CostsRegion locate.Spec
	CostsHeader table.HeaderBoundary
	Costs       table.CostConfig

	// NoVendorMarker on the costs page means the district paid nobody
	// that year; an empty vendor table is then legitimate.
	NoVendorMarker string

	// NameRegion extracts the printed project area name; NameRow is the
	// grid row that carries it. A zero NameRegion means the era prints
	// no usable name block and the file name is authoritative.
	NameRegion locate.Spec
	NameRow    int

	Rows RowChains

	// FirstTermArea marks where data begins on the published term
	// sheet, for building a term table straight from the PDF.
	FirstTermArea match.Pattern
}

// HasNameRegion reports whether the era carries a printed name block.
func (p *Profile) HasNameRegion() bool {
	return p.NameRegion.Primary != "" || p.NameRegion.FallbackRegion != (locate.Region{})
}

// ForYear selects the profile for a filing year. Reports before 2010
// predate the form this parser understands.
func ForYear(year int) (*Profile, error) {
	switch {
	case year >= 2017:
		return modernProfile(year), nil
	case year >= 2012:
		return legacyProfile(year), nil
	case year >= 2010:
		p := legacyProfile(year)
		p.RevenueFallbackPage = 8
		p.CostsFallbackPage = 12
		p.RevenueRegion.Primary = "Year"
		// the oldest layout's extracted header is unusable, so the
		// first row is consumed as header and canonical names imposed
		p.RevenueHeader = table.HeaderBoundary{Rows: 1, FixedHeaders: []string{
			"Revenue/Cash Receipts Deposited in Fund During Reporting FY",
			"Reporting Year",
			"Cumulative*",
			"% of Total",
		}}
		return p, nil
	default:
		return nil, fmt.Errorf("no profile for filing year %d", year)
	}
}

func modernProfile(year int) *Profile {
	return &Profile{
		Era:  "2017+",
		Year: year,

		RevenueMarker:        "SECTION 3.1",
		RevenueFallbackPage:  6,
		ItemizedMarker:       "Section 3.2 A",
		ItemizedFallbackPage: 8,
		CostsMarker:          "Section 3.2 B",
		CostsFallbackPage:    11,

		RevenueRegion: locate.Spec{
			Primary:       "SOURCE",
			Secondary:     "FUND",
			CaseSensitive: true,
			Top:           locate.FromPrimary(locate.CoordTop, -25),
			Left:          locate.Abs(0),
			Bottom:        locate.Abs(600),
			Right:         locate.FromSecondary(locate.CoordBottom, 3),
			Columns: []locate.Offset{
				locate.Abs(0),
				locate.FromPrimary(locate.CoordX1, 192),
				locate.FromPrimary(locate.CoordX1, 267),
				locate.FromPrimary(locate.CoordX1, 339),
			},
			FallbackRegion:  locate.Region{Top: 95, Left: 0, Bottom: 600, Right: 560},
			FallbackColumns: []float64{0, 290, 365, 437},
		},
		RevenueHeader: table.HeaderBoundary{Anchor: match.Contains("tax increment")},
		Terms:         HeaderTerms{Source: "SOURCE", Current: "Current", Cumulative: "Cumulative"},

		CostsRegion: locate.Spec{
			Primary:       "Nam",
			Secondary:     "Amount",
			CaseSensitive: true,
			Top:           locate.FromPrimary(locate.CoordTop, -5),
			Left:          locate.Abs(0),
			Bottom:        locate.Abs(645),
			Right:         locate.Abs(612),
			Columns: []locate.Offset{
				locate.Abs(0),
				locate.FromPrimary(locate.CoordX1, 60),
				locate.FromSecondary(locate.CoordX0, -45),
				locate.FromSecondary(locate.CoordX1, 55),
			},
			FallbackRegion:  locate.Region{Top: 145, Left: 0, Bottom: 645, Right: 600},
			FallbackColumns: []float64{0, 260, 420, 520},
		},
		CostsHeader:    table.HeaderBoundary{Rows: 1},
		Costs:          costConfig(),
		NoVendorMarker: "There",

		NameRegion: locate.Spec{
			FallbackRegion: locate.Region{Top: 50, Left: 0, Bottom: 97, Right: 500},
		},
		NameRow: 2,

		Rows:          rowChains(),
		FirstTermArea: match.Exact("105th/Vincennes"),
	}
}

func legacyProfile(year int) *Profile {
	return &Profile{
		Era:  "2010-2016",
		Year: year,

		RevenueMarker:        "SECTION 3.1",
		RevenueFallbackPage:  7,
		ItemizedMarker:       "ITEMIZED LIST",
		ItemizedFallbackPage: 8,
		CostsMarker:          "Section 3.2 B",
		CostsFallbackPage:    11,

		RevenueRegion: locate.Spec{
			Primary:          "Revenue/",
			CaseSensitive:    true,
			Top:              locate.FromPrimary(locate.CoordTop, 0),
			Left:             locate.Abs(0),
			Bottom:           locate.Abs(100),
			Right:            locate.Abs(100),
			RelativeVertical: true,
			Columns: []locate.Offset{
				locate.FromPrimary(locate.CoordX0, -47),
				locate.FromPrimary(locate.CoordX0, 24),
				locate.FromPrimary(locate.CoordX0, 98),
			},
			FallbackPrimary: document.Word{Text: "Revenue/", X0: 406.32, Top: 85.9199},
		},
		RevenueHeader: table.HeaderBoundary{Anchor: match.Contains("tax increment")},
		Terms:         HeaderTerms{Source: "Revenue", Current: "Year", Cumulative: "umu"},

		CostsRegion: locate.Spec{
			Primary:          "Nam",
			Secondary:        "Amount",
			CaseSensitive:    true,
			Top:              locate.FromPrimary(locate.CoordTop, -15),
			Left:             locate.Abs(0),
			Bottom:           locate.Abs(100),
			Right:            locate.Abs(100),
			RelativeVertical: true,
			Columns: []locate.Offset{
				locate.Abs(0),
				locate.FromPrimary(locate.CoordX1, 60),
				locate.FromSecondary(locate.CoordX0, -45),
				locate.FromSecondary(locate.CoordX1, 55),
			},
			FallbackRegion:  locate.Region{Top: 20, Left: 0, Bottom: 100, Right: 100, Relative: true},
			FallbackColumns: []float64{0, 260, 420, 520},
		},
		CostsHeader:    table.HeaderBoundary{Rows: 1},
		Costs:          costConfig(),
		NoVendorMarker: "There",

		Rows:          rowChains(),
		FirstTermArea: match.Exact("105th/Vincennes"),
	}
}

func costConfig() table.CostConfig {
	return table.CostConfig{
		ServiceKeyword: "Service",
		NameKeyword:    "Name",
		AmountKeyword:  "Amount",
		AdminRole: match.Chain{
			match.Exact("Administration"),
			match.Contains("administration"),
		},
		AdminPayees: match.Chain{
			match.Contains("City Program Management Cost"),
			match.Contains("City Staff Cost"),
		},
		FinanceRole: match.Chain{
			match.Exact("Financing"),
			match.Contains("financing"),
		},
		BankAliases: map[string]string{
			"Amalgamated Bank of Chicago": "Amalgamated Bank",
		},
	}
}

func rowChains() RowChains {
	return RowChains{
		PropertyTax: match.Chain{
			match.Exact("Property Tax Increment"),
			match.Contains("property tax inc"),
			match.Contains("Tax Increment"),
			match.Contains("erty Tax"),
			match.Contains("PropertTyax"),
		},
		TransfersIn: match.Chain{
			match.Exact("Transfers from Municipal Sources"),
			match.Contains("Transfers in"),
		},
		Expenses: match.Chain{
			match.Exact("Total Expenditures/Cash Disbursements (Carried forward from"),
			match.Contains("Cash Disbursements"),
		},
		FundBalance: match.Chain{
			match.Exact("FUND BALANCE, END OF REPORTING PERIOD*"),
			match.ContainsCase("END OF REPORTING"),
		},
		TransfersOut: match.Chain{
			match.Exact("Transfers to Municipal Sources"),
			match.Contains("to Municipal Sources"),
		},
		Distribution: match.Chain{
			match.Exact("Distribution of Surplus"),
			match.Contains("Distribution"),
		},
	}
}
