// Package dar assembles district annual report records. It orchestrates
// the locate/extract/table pipeline over one loaded document and emits
// the flat record downstream consumers key their analyses on.
package dar

import "strconv"

// Record is the canonical per-district per-year output row. The field
// order is a stable contract with downstream spreadsheets and must not
// change between runs or releases.
type Record struct {
	TIFName   string
	TIFYear   string
	StartYear string
	EndYear   string
	TIFNumber int

	PropertyTaxExtraction           float64
	CumulativePropertyTaxExtraction float64
	TransfersIn                     float64
	CumulativeTransfersIn           float64
	Expenses                        float64
	FundBalanceEnd                  float64
	TransfersOut                    float64
	Distribution                    float64
	AdminCosts                      float64
	FinanceCosts                    float64

	Bank string
}

// FieldNames returns the output column names in contract order.
func FieldNames() []string {
	return []string{
		"tif_name",
		"tif_year",
		"start_year",
		"end_year",
		"tif_number",
		"property_tax_extraction",
		"cumulative_property_tax_extraction",
		"transfers_in",
		"cumulative_transfers_in",
		"expenses",
		"fund_balance_end",
		"transfers_out",
		"distribution",
		"admin_costs",
		"finance_costs",
		"bank",
	}
}

// CSVRow renders the record in contract order. Whole-dollar amounts
// print without a decimal point.
func (r *Record) CSVRow() []string {
	return []string{
		r.TIFName,
		r.TIFYear,
		r.StartYear,
		r.EndYear,
		strconv.Itoa(r.TIFNumber),
		amount(r.PropertyTaxExtraction),
		amount(r.CumulativePropertyTaxExtraction),
		amount(r.TransfersIn),
		amount(r.CumulativeTransfersIn),
		amount(r.Expenses),
		amount(r.FundBalanceEnd),
		amount(r.TransfersOut),
		amount(r.Distribution),
		amount(r.AdminCosts),
		amount(r.FinanceCosts),
		r.Bank,
	}
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
