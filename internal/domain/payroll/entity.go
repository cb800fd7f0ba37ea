package payroll

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/compensation"
	"github.com/shopspring/decimal"
)

// PayrollStatus enum. Batches move draft -> processing -> completed -> paid.
type PayrollStatus string

const (
	PayrollStatusDraft      PayrollStatus = "draft"
	PayrollStatusProcessing PayrollStatus = "processing"
	PayrollStatusCompleted  PayrollStatus = "completed"
	PayrollStatusPaid       PayrollStatus = "paid"
)

// IsImmutable reports whether entries of a batch in this status may no longer change.
func (s PayrollStatus) IsImmutable() bool {
	return s == PayrollStatusCompleted || s == PayrollStatusPaid
}

// CanTransitionTo validates the batch state machine.
func (s PayrollStatus) CanTransitionTo(next PayrollStatus) bool {
	switch s {
	case PayrollStatusDraft:
		return next == PayrollStatusProcessing
	case PayrollStatusProcessing:
		// back to draft when a run fails or leaves employees unresolved
		return next == PayrollStatusCompleted || next == PayrollStatusDraft
	case PayrollStatusCompleted:
		return next == PayrollStatusPaid
	}
	return false
}

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyCustom   Frequency = "custom"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyCustom:
		return true
	}
	return false
}

// Payroll - batch covering one pay period. Totals always equal the sums of its entries.
type Payroll struct {
	ID              string
	CompanyID       string
	PayPeriodStart  time.Time
	PayPeriodEnd    time.Time
	Frequency       Frequency
	TotalGrossPay   decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalLoans      decimal.Decimal
	TotalNetPay     decimal.Decimal
	EmployeeCount   int
	Status          PayrollStatus
	IsPayrollPaid   bool
	AutoRun         bool
	Notes           *string
	ProcessedAt     *time.Time
	PaidAt          *time.Time
	PaidBy          *string
	CreatedBy       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p Payroll) Period() Period {
	return Period{Start: p.PayPeriodStart, End: p.PayPeriodEnd}
}

// EntryStatus enum
type EntryStatus string

const (
	EntryStatusPending EntryStatus = "pending"
	EntryStatusPaid    EntryStatus = "paid"
)

// BreakdownItem is one contributing component kept for audit display.
type BreakdownItem struct {
	Type        compensation.Kind `json:"type"`
	Category    *string           `json:"category"`
	Amount      decimal.Decimal   `json:"amount"`
	Description *string           `json:"description"`
}

// Breakdown is stored as a JSON array.
type Breakdown []BreakdownItem

// Value implements driver.Valuer for database storage
func (b Breakdown) Value() (driver.Value, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner for database retrieval
func (b *Breakdown) Scan(value interface{}) error {
	if value == nil {
		*b = Breakdown{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan breakdown: unsupported type")
	}

	return json.Unmarshal(bytes, b)
}

// Entry - one employee's computed line within a batch
type Entry struct {
	ID         string
	PayrollID  string
	EmployeeID string
	CompanyID  string

	TotalDays       int
	PresentDays     int
	AbsentDays      int
	HalfDays        int
	PaidLeaveDays   int
	UnpaidLeaveDays int
	HolidayDays     int
	WorkedHours     decimal.Decimal
	OvertimeHours   decimal.Decimal

	PerDaySalary             decimal.Decimal
	BasicSalaryForPeriod     decimal.Decimal
	AbsentDayDeduction       decimal.Decimal
	HalfDayDeduction         decimal.Decimal
	UnpaidLeaveDeduction     decimal.Decimal
	AttendanceOvertimeAmount decimal.Decimal

	TotalAllowances      decimal.Decimal
	TotalDeductions      decimal.Decimal
	TotalLoans           decimal.Decimal
	TotalManualOvertimes decimal.Decimal
	AllowanceBreakdown   Breakdown
	DeductionBreakdown   Breakdown
	LoanBreakdown        Breakdown
	OvertimeBreakdown    Breakdown

	GrossPay decimal.Decimal
	NetPay   decimal.Decimal

	Status    EntryStatus
	PaidAt    *time.Time
	PaidBy    *string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// AttendanceSummary - resolved day classification and time totals for one employee and period
type AttendanceSummary struct {
	EmployeeID      string
	TotalDays       int
	PresentDays     int
	AbsentDays      int
	HalfDays        int
	PaidLeaveDays   int
	UnpaidLeaveDays int
	HolidayDays     int
	WorkedHours     decimal.Decimal
	OvertimeHours   decimal.Decimal

	PerDaySalary             decimal.Decimal
	AbsentDayDeduction       decimal.Decimal
	HalfDayDeduction         decimal.Decimal
	UnpaidLeaveDeduction     decimal.Decimal
	AttendanceOvertimeAmount decimal.Decimal

	// Days lists every date with its classification, in date order.
	Days []DayClassification
}

type DayKind string

const (
	DayPresent     DayKind = "present"
	DayAbsent      DayKind = "absent"
	DayHalfDay     DayKind = "half_day"
	DayPaidLeave   DayKind = "paid_leave"
	DayUnpaidLeave DayKind = "unpaid_leave"
	DayHoliday     DayKind = "holiday"
)

type DayClassification struct {
	Date time.Time
	Kind DayKind
}

// CompensationTotals - summed allowances, deductions, loans and manual overtime
type CompensationTotals struct {
	TotalAllowances      decimal.Decimal
	TotalDeductions      decimal.Decimal
	TotalLoans           decimal.Decimal
	TotalManualOvertimes decimal.Decimal
	AllowanceBreakdown   Breakdown
	DeductionBreakdown   Breakdown
	LoanBreakdown        Breakdown
	OvertimeBreakdown    Breakdown
}
