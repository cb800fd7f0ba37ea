package payroll

import (
	"sort"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// SumComponents totals a mixed list of compensation components in one pass.
// Breakdowns are ordered by creation time, then ID. A component without a
// category is kept with a null category; components of unknown kind are skipped.
func SumComponents(components []compensation.Component) payroll.CompensationTotals {
	sorted := make([]compensation.Component, len(components))
	copy(sorted, components)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	totals := payroll.CompensationTotals{
		TotalAllowances:      decimal.Zero,
		TotalDeductions:      decimal.Zero,
		TotalLoans:           decimal.Zero,
		TotalManualOvertimes: decimal.Zero,
		AllowanceBreakdown:   payroll.Breakdown{},
		DeductionBreakdown:   payroll.Breakdown{},
		LoanBreakdown:        payroll.Breakdown{},
		OvertimeBreakdown:    payroll.Breakdown{},
	}

	for _, c := range sorted {
		amount := c.Value()
		item := payroll.BreakdownItem{
			Type:        c.Kind,
			Category:    c.CategoryName,
			Amount:      amount,
			Description: c.Description,
		}

		switch c.Kind {
		case compensation.KindAllowance:
			totals.TotalAllowances = totals.TotalAllowances.Add(amount)
			totals.AllowanceBreakdown = append(totals.AllowanceBreakdown, item)
		case compensation.KindDeduction:
			totals.TotalDeductions = totals.TotalDeductions.Add(amount)
			totals.DeductionBreakdown = append(totals.DeductionBreakdown, item)
		case compensation.KindLoan:
			totals.TotalLoans = totals.TotalLoans.Add(amount)
			totals.LoanBreakdown = append(totals.LoanBreakdown, item)
		case compensation.KindManualOvertime:
			totals.TotalManualOvertimes = totals.TotalManualOvertimes.Add(amount)
			totals.OvertimeBreakdown = append(totals.OvertimeBreakdown, item)
		}
	}

	return totals
}
