package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID = "0193a1b2-0000-7000-8000-000000000001"
	testUserID    = "0193a1b2-0000-7000-8000-0000000000aa"

	empAliceID = "0193a1b2-0000-7000-8000-000000000101"
	empBudiID  = "0193a1b2-0000-7000-8000-000000000102"
	empCitraID = "0193a1b2-0000-7000-8000-000000000103"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// febPeriod spans four whole weeks (Mon 2025-02-03 to Sun 2025-03-02): 20 weekdays.
func febPeriod() payroll.Period {
	return payroll.Period{Start: date(2025, 2, 3), End: date(2025, 3, 2)}
}

func monthlyEmployee(id, code string) employee.Employee {
	return employee.Employee{
		ID:               id,
		CompanyID:        testCompanyID,
		EmployeeCode:     code,
		FullName:         "Employee " + code,
		PayBasis:         employee.PayBasisMonthly,
		BasicSalary:      decPtr("3000"),
		HoursPerDay:      dec("8"),
		DaysPerWeek:      5,
		EmploymentStatus: employee.EmploymentStatusActive,
	}
}

func workingDates(period payroll.Period, policy payroll.Policy) []time.Time {
	var out []time.Time
	for _, d := range period.Dates() {
		if policy.IsWorkingDay(d) && !policy.IsHoliday(d) {
			out = append(out, d)
		}
	}
	return out
}

func presentRecord(employeeID string, d time.Time) attendance.Record {
	return attendance.Record{
		ID:             employeeID + "-" + payroll.FormatDate(d),
		EmployeeID:     employeeID,
		CompanyID:      testCompanyID,
		Date:           d,
		TotalHours:     dec("8"),
		OvertimeHours:  decimal.Zero,
		OvertimeAmount: decimal.Zero,
		Status:         attendance.StatusPresent,
	}
}

func approvedLeave(employeeID string, start, end time.Time, paid bool) leave.Application {
	return leave.Application{
		ID:          employeeID + "-leave-" + payroll.FormatDate(start),
		EmployeeID:  employeeID,
		CompanyID:   testCompanyID,
		LeaveTypeID: "annual",
		IsPaid:      paid,
		StartDate:   start,
		EndDate:     end,
		Status:      leave.StatusApproved,
	}
}

// exampleAttendance: 18 present days, 1 absent day without a record and
// 1 approved paid leave day over febPeriod.
func exampleAttendance(employeeID string) ([]attendance.Record, []leave.Application) {
	wd := workingDates(febPeriod(), payroll.DefaultPolicy())
	records := make([]attendance.Record, 0, 18)
	for _, d := range wd[:18] {
		records = append(records, presentRecord(employeeID, d))
	}
	leaves := []leave.Application{approvedLeave(employeeID, wd[19], wd[19], true)}
	return records, leaves
}

// exampleComponents: 5 hours of manual overtime at 20/hr and a 100 deduction.
func exampleComponents(employeeID string) []compensation.Component {
	return []compensation.Component{
		{
			ID:          employeeID + "-ot-1",
			EmployeeID:  employeeID,
			CompanyID:   testCompanyID,
			Kind:        compensation.KindManualOvertime,
			Hours:       dec("5"),
			Rate:        dec("20"),
			Description: strPtr("Stock take"),
			CreatedAt:   time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:           employeeID + "-ded-1",
			EmployeeID:   employeeID,
			CompanyID:    testCompanyID,
			Kind:         compensation.KindDeduction,
			Amount:       dec("100.00"),
			CategoryName: strPtr("BPJS"),
			Description:  strPtr("Health insurance"),
			CreatedAt:    time.Date(2025, 2, 5, 9, 0, 0, 0, time.UTC),
		},
	}
}

// claimsContext returns a context carrying verified claims, as the HTTP verifier would.
func claimsContext(t *testing.T, companyID, userID, role string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	_, tokenString, err := ja.Encode(map[string]interface{}{
		"user_id":    userID,
		"company_id": companyID,
		"role":       role,
		"type":       "access",
	})
	require.NoError(t, err)

	token, err := jwtauth.VerifyToken(ja, tokenString)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}
