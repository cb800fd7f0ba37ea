package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
)

func errorCode(err error) string {
	switch {
	case errors.Is(err, payroll.ErrPayrollNotFound):
		return "PAYROLL_NOT_FOUND"
	case errors.Is(err, payroll.ErrEntryNotFound):
		return "ENTRY_NOT_FOUND"
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		return "EMPLOYEE_NOT_FOUND"
	case errors.Is(err, payroll.ErrImmutableBatch):
		return "IMMUTABLE_BATCH"
	case errors.Is(err, payroll.ErrBatchRunInProgress):
		return "RUN_IN_PROGRESS"
	case errors.Is(err, payroll.ErrEntryAlreadyPaid):
		return "ENTRY_ALREADY_PAID"
	case errors.Is(err, payroll.ErrIncompletePayment):
		return "INCOMPLETE_PAYMENT"
	case errors.Is(err, payroll.ErrInvalidStatusTransition):
		return "INVALID_STATUS"
	case errors.Is(err, payroll.ErrMissingCompensationBasis):
		return "MISSING_COMPENSATION_BASIS"
	}
	return "ERROR"
}

func renderPayroll(w io.Writer, p payroll.PayrollResponse) {
	fmt.Fprintf(w, "Payroll %s (%s .. %s, %s)\n", p.ID, p.PayPeriodStart, p.PayPeriodEnd, p.Frequency)
	fmt.Fprintf(w, "  status:      %s\n", p.Status)
	fmt.Fprintf(w, "  employees:   %d\n", p.EmployeeCount)
	fmt.Fprintf(w, "  gross:       %s\n", p.TotalGrossPay.StringFixed(2))
	fmt.Fprintf(w, "  deductions:  %s\n", p.TotalDeductions.StringFixed(2))
	fmt.Fprintf(w, "  loans:       %s\n", p.TotalLoans.StringFixed(2))
	fmt.Fprintf(w, "  net:         %s\n", p.TotalNetPay.StringFixed(2))
	if p.PaidAt != nil {
		fmt.Fprintf(w, "  paid at:     %s\n", *p.PaidAt)
	}
}

func renderEntries(w io.Writer, entries []payroll.EntryResponse) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EMPLOYEE\tDAYS\tPRESENT\tABSENT\tGROSS\tDEDUCTIONS\tLOANS\tNET\tSTATUS")
	for _, e := range entries {
		name := e.EmployeeCode
		if name == "" {
			name = e.EmployeeID
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			name, e.TotalDays, e.PresentDays, e.AbsentDays,
			e.GrossPay.StringFixed(2), e.TotalDeductions.StringFixed(2), e.TotalLoans.StringFixed(2),
			e.NetPay.StringFixed(2), e.Status)
	}
	_ = tw.Flush()
}

func renderEntry(w io.Writer, e payroll.EntryResponse) {
	fmt.Fprintf(w, "Entry %s for employee %s (%s)\n", e.ID, e.EmployeeID, e.Status)
	fmt.Fprintf(w, "  days:        %d total, %d present, %d half, %d paid leave, %d unpaid leave, %d absent, %d holiday\n",
		e.TotalDays, e.PresentDays, e.HalfDays, e.PaidLeaveDays, e.UnpaidLeaveDays, e.AbsentDays, e.HolidayDays)
	fmt.Fprintf(w, "  per day:     %s\n", e.PerDaySalary.StringFixed(2))
	fmt.Fprintf(w, "  basic:       %s\n", e.BasicSalaryForPeriod.StringFixed(2))
	fmt.Fprintf(w, "  allowances:  %s\n", e.TotalAllowances.StringFixed(2))
	fmt.Fprintf(w, "  overtime:    %s\n", e.TotalManualOvertimes.Add(e.AttendanceOvertimeAmount).StringFixed(2))
	fmt.Fprintf(w, "  gross:       %s\n", e.GrossPay.StringFixed(2))
	fmt.Fprintf(w, "  deductions:  %s\n", e.TotalDeductions.StringFixed(2))
	fmt.Fprintf(w, "  loans:       %s\n", e.TotalLoans.StringFixed(2))
	fmt.Fprintf(w, "  net:         %s\n", e.NetPay.StringFixed(2))
}

func renderFailures(w io.Writer, failures []payroll.EntryFailureResponse) {
	for _, f := range failures {
		fmt.Fprintf(w, "  FAILED %s [%s]: %s\n", f.EmployeeID, f.Stage, f.Message)
	}
}
