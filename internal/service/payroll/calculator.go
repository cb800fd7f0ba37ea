package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// ComputeEntry combines the attendance summary and compensation totals of emp
// into a pending entry. Arithmetic stays at full precision; gross and net are
// rounded with the policy rounding mode, the informational per-day figures to
// cents. The result depends only on its arguments.
//
//	basic = per_day * (present + paid_leave)
//	gross = basic + allowances + manual_overtimes + attendance_overtime
//	        - unpaid_leave_deduction - half_day_deduction - absent_day_deduction
//	net   = gross - deductions - loans
func ComputeEntry(
	emp employee.Employee,
	summary payroll.AttendanceSummary,
	totals payroll.CompensationTotals,
	policy payroll.Policy,
) (payroll.Entry, error) {
	classified := summary.PresentDays + summary.AbsentDays + summary.HalfDays +
		summary.PaidLeaveDays + summary.UnpaidLeaveDays + summary.HolidayDays
	if classified != summary.TotalDays {
		return payroll.Entry{}, fmt.Errorf("attendance summary classifies %d of %d days", classified, summary.TotalDays)
	}

	paidDays := decimal.NewFromInt(int64(summary.PresentDays + summary.PaidLeaveDays))
	basic := summary.PerDaySalary.Mul(paidDays)

	gross := basic.
		Add(totals.TotalAllowances).
		Add(totals.TotalManualOvertimes).
		Add(summary.AttendanceOvertimeAmount).
		Sub(summary.UnpaidLeaveDeduction).
		Sub(summary.HalfDayDeduction).
		Sub(summary.AbsentDayDeduction)
	gross = policy.Round(gross)

	cents := func(d decimal.Decimal) decimal.Decimal { return d.Round(payroll.MoneyPlaces) }

	// deductions and loans are kept at cents so net = gross - deductions - loans holds exactly
	deductions := cents(totals.TotalDeductions)
	loans := cents(totals.TotalLoans)
	net := policy.Round(gross.Sub(deductions).Sub(loans))

	return payroll.Entry{
		EmployeeID: emp.ID,
		CompanyID:  emp.CompanyID,

		TotalDays:       summary.TotalDays,
		PresentDays:     summary.PresentDays,
		AbsentDays:      summary.AbsentDays,
		HalfDays:        summary.HalfDays,
		PaidLeaveDays:   summary.PaidLeaveDays,
		UnpaidLeaveDays: summary.UnpaidLeaveDays,
		HolidayDays:     summary.HolidayDays,
		WorkedHours:     cents(summary.WorkedHours),
		OvertimeHours:   cents(summary.OvertimeHours),

		PerDaySalary:             cents(summary.PerDaySalary),
		BasicSalaryForPeriod:     cents(basic),
		AbsentDayDeduction:       cents(summary.AbsentDayDeduction),
		HalfDayDeduction:         cents(summary.HalfDayDeduction),
		UnpaidLeaveDeduction:     cents(summary.UnpaidLeaveDeduction),
		AttendanceOvertimeAmount: cents(summary.AttendanceOvertimeAmount),

		TotalAllowances:      cents(totals.TotalAllowances),
		TotalDeductions:      deductions,
		TotalLoans:           loans,
		TotalManualOvertimes: cents(totals.TotalManualOvertimes),
		AllowanceBreakdown:   totals.AllowanceBreakdown,
		DeductionBreakdown:   totals.DeductionBreakdown,
		LoanBreakdown:        totals.LoanBreakdown,
		OvertimeBreakdown:    totals.OvertimeBreakdown,

		GrossPay: gross,
		NetPay:   net,
		Status:   payroll.EntryStatusPending,
	}, nil
}
