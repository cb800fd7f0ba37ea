package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var daysPerWeekCalendar = decimal.NewFromInt(7)

// ResolveAttendance classifies every date of period and sums the attendance
// figures for emp. records and leaves outside period are ignored.
//
// Precedence per date: a present or half_day attendance record wins over
// everything, including an approved leave for the same date. Then holidays
// (attendance holiday status, policy holiday, non-working weekday), then
// approved leave, then an attendance "leave" status without an approved
// application (unpaid), and finally absent.
func ResolveAttendance(
	emp employee.Employee,
	period payroll.Period,
	records []attendance.Record,
	leaves []leave.Application,
	policy payroll.Policy,
) (payroll.AttendanceSummary, error) {
	if period.End.Before(period.Start) {
		return payroll.AttendanceSummary{}, payroll.ErrInvalidRange
	}

	perDay, err := PerDaySalary(emp, period)
	if err != nil {
		return payroll.AttendanceSummary{}, err
	}

	summary := payroll.AttendanceSummary{
		EmployeeID:               emp.ID,
		TotalDays:                period.Days(),
		WorkedHours:              decimal.Zero,
		OvertimeHours:            decimal.Zero,
		AttendanceOvertimeAmount: decimal.Zero,
		PerDaySalary:             perDay,
		Days:                     make([]payroll.DayClassification, 0, period.Days()),
	}

	byDate := make(map[string]*attendance.Record, len(records))
	for i := range records {
		rec := &records[i]
		if !period.Contains(rec.Date) {
			continue
		}
		key := payroll.FormatDate(rec.Date)
		if _, dup := byDate[key]; dup {
			continue
		}
		byDate[key] = rec

		summary.WorkedHours = summary.WorkedHours.Add(rec.TotalHours)
		summary.OvertimeHours = summary.OvertimeHours.Add(rec.OvertimeHours)
		summary.AttendanceOvertimeAmount = summary.AttendanceOvertimeAmount.Add(rec.OvertimeAmount)
	}

	for _, date := range period.Dates() {
		kind := classifyDay(date, byDate[payroll.FormatDate(date)], leaves, policy)
		summary.Days = append(summary.Days, payroll.DayClassification{Date: date, Kind: kind})

		switch kind {
		case payroll.DayPresent:
			summary.PresentDays++
		case payroll.DayHalfDay:
			summary.HalfDays++
		case payroll.DayHoliday:
			summary.HolidayDays++
		case payroll.DayPaidLeave:
			summary.PaidLeaveDays++
		case payroll.DayUnpaidLeave:
			summary.UnpaidLeaveDays++
		default:
			summary.AbsentDays++
		}
	}

	summary.AbsentDayDeduction = perDay.Mul(decimal.NewFromInt(int64(summary.AbsentDays)))
	summary.HalfDayDeduction = perDay.Mul(decimal.NewFromInt(int64(summary.HalfDays))).Mul(policy.HalfDayFactor)
	summary.UnpaidLeaveDeduction = perDay.Mul(decimal.NewFromInt(int64(summary.UnpaidLeaveDays)))

	return summary, nil
}

func classifyDay(date time.Time, rec *attendance.Record, leaves []leave.Application, policy payroll.Policy) payroll.DayKind {
	if rec != nil {
		switch rec.Status {
		case attendance.StatusPresent:
			return payroll.DayPresent
		case attendance.StatusHalfDay:
			return payroll.DayHalfDay
		}
	}

	if (rec != nil && rec.Status == attendance.StatusHoliday) || policy.IsHoliday(date) || !policy.IsWorkingDay(date) {
		return payroll.DayHoliday
	}

	if app, ok := approvedLeaveOn(date, leaves); ok {
		if app.IsPaid {
			return payroll.DayPaidLeave
		}
		return payroll.DayUnpaidLeave
	}

	if rec != nil && rec.Status == attendance.StatusLeave {
		return payroll.DayUnpaidLeave
	}

	return payroll.DayAbsent
}

// approvedLeaveOn returns the approved application covering date. When several
// overlap, a paid one is preferred.
func approvedLeaveOn(date time.Time, leaves []leave.Application) (leave.Application, bool) {
	var found leave.Application
	ok := false
	for _, app := range leaves {
		if app.Status != leave.StatusApproved || !app.Covers(date) {
			continue
		}
		if app.IsPaid {
			return app, true
		}
		if !ok {
			found, ok = app, true
		}
	}
	return found, ok
}

// PerDaySalary derives the daily compensation basis. Monthly employees get
// basic_salary / (days_per_week * calendar_days / 7); hourly employees get
// rate_per_hour * hours_per_day. PayBasis picks the formula and the other one is
// used when the chosen basis is not configured.
func PerDaySalary(emp employee.Employee, period payroll.Period) (decimal.Decimal, error) {
	monthly := func() decimal.Decimal {
		divisor := decimal.NewFromInt(int64(emp.DaysPerWeek) * int64(period.Days()))
		return emp.BasicSalary.Mul(daysPerWeekCalendar).Div(divisor)
	}
	hourly := func() decimal.Decimal {
		return emp.RatePerHour.Mul(emp.HoursPerDay)
	}

	switch {
	case emp.PayBasis == employee.PayBasisHourly && emp.HasHourlyBasis():
		return hourly(), nil
	case emp.PayBasis != employee.PayBasisHourly && emp.HasMonthlyBasis():
		return monthly(), nil
	case emp.HasMonthlyBasis():
		return monthly(), nil
	case emp.HasHourlyBasis():
		return hourly(), nil
	}
	return decimal.Zero, payroll.ErrMissingCompensationBasis
}
