package table

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/willfineberg/chi-tif-parser/internal/match"
	"github.com/willfineberg/chi-tif-parser/internal/numeric"
)

// CostConfig drives reconciliation of the itemized vendor table.
type CostConfig struct {
	// Header keywords locating the role, payee and amount columns.
	ServiceKeyword string
	NameKeyword    string
	AmountKeyword  string

	// AdminRole matches the role column; AdminPayees matches the payee
	// column as a union, since the city books its own staff under more
	// than one vendor name.
	AdminRole   match.Chain
	AdminPayees match.Chain
	FinanceRole match.Chain

	// BankAliases folds spelling variants of the same institution in
	// the bank roster.
	BankAliases map[string]string
}

// CostSummary is the reconciled output of a vendor table.
type CostSummary struct {
	AdminCosts   float64
	FinanceCosts float64
	Banks        string

	// RoleAdminTotal and PayeeAdminTotal are the two independent
	// tallies behind AdminCosts. Discrepancy reports that they
	// disagree; the larger one wins.
	RoleAdminTotal  float64
	PayeeAdminTotal float64
	Discrepancy     bool
}

// ReconcileCosts totals administration and financing costs from a
// vendor grid. The bank roster is the distinct payee names of the
// financing rows. Admin spending is tallied two ways, by role and by
// payee name, because the reports themselves are inconsistent about
// which side carries the staff cost lines.
func ReconcileCosts(g Grid, cfg CostConfig, n *numeric.Normalizer) (CostSummary, error) {
	cols, err := RequireColumns(g, cfg.ServiceKeyword, cfg.NameKeyword, cfg.AmountKeyword)
	if err != nil {
		return CostSummary{}, err
	}
	serviceCol, nameCol, amountCol := cols[0], cols[1], cols[2]

	roles := g.ColumnValues(serviceCol)
	payees := g.ColumnValues(nameCol)

	roleAdmin := rowSet(cfg.AdminRole.Select(roles))
	payeeAdmin := rowSet(cfg.AdminPayees.Any(payees))
	finance := rowSet(cfg.FinanceRole.Select(roles))

	var roleTotal, payeeTotal, financeTotal decimal.Decimal
	for row := range g.Rows {
		if !roleAdmin[row] && !payeeAdmin[row] && !finance[row] {
			continue
		}
		v, err := n.Normalize(g.Cell(row, amountCol))
		if err != nil {
			// junk rows in the vendor table carry no amount; skip them
			continue
		}
		d := decimal.NewFromFloat(v)
		if roleAdmin[row] {
			roleTotal = roleTotal.Add(d)
		}
		if payeeAdmin[row] {
			payeeTotal = payeeTotal.Add(d)
		}
		if finance[row] {
			financeTotal = financeTotal.Add(d)
		}
	}

	sum := CostSummary{
		RoleAdminTotal:  roleTotal.InexactFloat64(),
		PayeeAdminTotal: payeeTotal.InexactFloat64(),
	}
	sum.FinanceCosts = financeTotal.InexactFloat64()
	if roleTotal.GreaterThanOrEqual(payeeTotal) {
		sum.AdminCosts = sum.RoleAdminTotal
	} else {
		sum.AdminCosts = sum.PayeeAdminTotal
	}
	sum.Discrepancy = !roleTotal.Equal(payeeTotal)
	sum.Banks = bankRoster(payees, finance, cfg.BankAliases)
	return sum, nil
}

func rowSet(rows []int) map[int]bool {
	set := make(map[int]bool, len(rows))
	for _, r := range rows {
		set[r] = true
	}
	return set
}

func bankRoster(payees []string, finance map[int]bool, aliases map[string]string) string {
	seen := make(map[string]bool)
	var banks []string
	for row, p := range payees {
		if !finance[row] {
			continue
		}
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if alias, ok := aliases[p]; ok {
			p = alias
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		banks = append(banks, p)
	}
	sort.Strings(banks)
	return strings.Join(banks, ", ")
}
