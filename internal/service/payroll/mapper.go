package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
)

func mapToPayrollResponse(p payroll.Payroll) payroll.PayrollResponse {
	return payroll.PayrollResponse{
		ID:              p.ID,
		CompanyID:       p.CompanyID,
		PayPeriodStart:  payroll.FormatDate(p.PayPeriodStart),
		PayPeriodEnd:    payroll.FormatDate(p.PayPeriodEnd),
		Frequency:       string(p.Frequency),
		TotalGrossPay:   p.TotalGrossPay,
		TotalDeductions: p.TotalDeductions,
		TotalLoans:      p.TotalLoans,
		TotalNetPay:     p.TotalNetPay,
		EmployeeCount:   p.EmployeeCount,
		Status:          string(p.Status),
		IsPayrollPaid:   p.IsPayrollPaid,
		AutoRun:         p.AutoRun,
		Notes:           p.Notes,
		ProcessedAt:     formatTimestamp(p.ProcessedAt),
		PaidAt:          formatTimestamp(p.PaidAt),
	}
}

func mapToEntryResponse(e payroll.Entry) payroll.EntryResponse {
	employeeName := ""
	employeeCode := ""
	if e.EmployeeName != nil {
		employeeName = *e.EmployeeName
	}
	if e.EmployeeCode != nil {
		employeeCode = *e.EmployeeCode
	}

	return payroll.EntryResponse{
		ID:           e.ID,
		PayrollID:    e.PayrollID,
		EmployeeID:   e.EmployeeID,
		EmployeeName: employeeName,
		EmployeeCode: employeeCode,

		TotalDays:       e.TotalDays,
		PresentDays:     e.PresentDays,
		AbsentDays:      e.AbsentDays,
		HalfDays:        e.HalfDays,
		PaidLeaveDays:   e.PaidLeaveDays,
		UnpaidLeaveDays: e.UnpaidLeaveDays,
		HolidayDays:     e.HolidayDays,
		WorkedHours:     e.WorkedHours,
		OvertimeHours:   e.OvertimeHours,

		PerDaySalary:             e.PerDaySalary,
		BasicSalaryForPeriod:     e.BasicSalaryForPeriod,
		AbsentDayDeduction:       e.AbsentDayDeduction,
		HalfDayDeduction:         e.HalfDayDeduction,
		UnpaidLeaveDeduction:     e.UnpaidLeaveDeduction,
		AttendanceOvertimeAmount: e.AttendanceOvertimeAmount,

		TotalAllowances:      e.TotalAllowances,
		TotalDeductions:      e.TotalDeductions,
		TotalLoans:           e.TotalLoans,
		TotalManualOvertimes: e.TotalManualOvertimes,
		AllowanceBreakdown:   nonNil(e.AllowanceBreakdown),
		DeductionBreakdown:   nonNil(e.DeductionBreakdown),
		LoanBreakdown:        nonNil(e.LoanBreakdown),
		OvertimeBreakdown:    nonNil(e.OvertimeBreakdown),

		GrossPay: e.GrossPay,
		NetPay:   e.NetPay,
		Status:   string(e.Status),
		PaidAt:   formatTimestamp(e.PaidAt),
	}
}

func mapToEntryResponses(entries []payroll.Entry) []payroll.EntryResponse {
	result := make([]payroll.EntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, mapToEntryResponse(e))
	}
	return result
}

func mapToFailureResponses(failures []payroll.EntryFailure) []payroll.EntryFailureResponse {
	result := make([]payroll.EntryFailureResponse, 0, len(failures))
	for _, f := range failures {
		result = append(result, payroll.EntryFailureResponse{
			EmployeeID: f.EmployeeID,
			Stage:      string(f.Stage),
			Message:    f.Err.Error(),
		})
	}
	return result
}

func nonNil(b payroll.Breakdown) payroll.Breakdown {
	if b == nil {
		return payroll.Breakdown{}
	}
	return b
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	str := t.Format(time.RFC3339)
	return &str
}
