package payroll

import (
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PAYROLL (BATCH) DTOs ==========

type CreatePayrollRequest struct {
	PayPeriodStart string  `json:"pay_period_start"`
	PayPeriodEnd   string  `json:"pay_period_end"`
	Frequency      string  `json:"payroll_frequency"`
	AutoRun        *bool   `json:"auto_run,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

func (r *CreatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.PayPeriodStart); !ok {
		errs = append(errs, validator.ValidationError{Field: "pay_period_start", Message: "must be a date in YYYY-MM-DD format"})
	}
	if _, ok := validator.IsValidDate(r.PayPeriodEnd); !ok {
		errs = append(errs, validator.ValidationError{Field: "pay_period_end", Message: "must be a date in YYYY-MM-DD format"})
	}
	if !Frequency(r.Frequency).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "payroll_frequency", Message: "must be 'weekly', 'biweekly', 'monthly' or 'custom'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunBatchRequest struct {
	PayrollID   string   `json:"-"`
	EmployeeIDs []string `json:"employee_ids,omitempty"` // Empty = all active employees
}

func (r *RunBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.PayrollID) {
		errs = append(errs, validator.ValidationError{Field: "payroll_id", Message: "must be a valid UUID"})
	}
	for _, id := range r.EmployeeIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "must contain valid UUIDs"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ComputeEntryRequest struct {
	PayrollID  string `json:"-"`
	EmployeeID string `json:"employee_id"`
}

func (r *ComputeEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.PayrollID) {
		errs = append(errs, validator.ValidationError{Field: "payroll_id", Message: "must be a valid UUID"})
	}
	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	PayPeriodStart  string          `json:"pay_period_start"`
	PayPeriodEnd    string          `json:"pay_period_end"`
	Frequency       string          `json:"payroll_frequency"`
	TotalGrossPay   decimal.Decimal `json:"total_gross_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalLoans      decimal.Decimal `json:"total_loans"`
	TotalNetPay     decimal.Decimal `json:"total_net_pay"`
	EmployeeCount   int             `json:"employee_count"`
	Status          string          `json:"status"`
	IsPayrollPaid   bool            `json:"is_payroll_paid"`
	AutoRun         bool            `json:"auto_run"`
	Notes           *string         `json:"notes,omitempty"`
	ProcessedAt     *string         `json:"processed_at,omitempty"`
	PaidAt          *string         `json:"paid_at,omitempty"`
}

type PayrollFilter struct {
	Status    *string `json:"status,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
	SortBy    string  `json:"sort_by"`
	SortOrder string  `json:"sort_order"`
}

// PayrollSortFields lists the columns a payroll list may be sorted by.
var PayrollSortFields = []string{"created_at", "pay_period_start", "pay_period_end", "total_net_pay", "status"}

var payrollStatuses = []string{
	string(PayrollStatusDraft), string(PayrollStatusProcessing),
	string(PayrollStatusCompleted), string(PayrollStatusPaid),
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !validator.IsInSlice(*f.Status, payrollStatuses) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'draft', 'processing', 'completed' or 'paid'"})
	}
	if f.SortBy != "" && !validator.IsInSlice(f.SortBy, PayrollSortFields) {
		errs = append(errs, validator.ValidationError{Field: "sort_by", Message: "is not a sortable field"})
	}
	if f.SortOrder != "" && !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
		errs = append(errs, validator.ValidationError{Field: "sort_order", Message: "must be 'asc' or 'desc'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListPayrollResponse struct {
	Data       []PayrollResponse `json:"data"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

// ========== ENTRY DTOs ==========

type EntryResponse struct {
	ID           string `json:"id"`
	PayrollID    string `json:"payroll_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	EmployeeCode string `json:"employee_code,omitempty"`

	TotalDays       int             `json:"total_days"`
	PresentDays     int             `json:"present_days"`
	AbsentDays      int             `json:"absent_days"`
	HalfDays        int             `json:"half_days"`
	PaidLeaveDays   int             `json:"paid_leave_days"`
	UnpaidLeaveDays int             `json:"unpaid_leave_days"`
	HolidayDays     int             `json:"holiday_days"`
	WorkedHours     decimal.Decimal `json:"worked_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`

	PerDaySalary             decimal.Decimal `json:"per_day_salary"`
	BasicSalaryForPeriod     decimal.Decimal `json:"basic_salary_for_period"`
	AbsentDayDeduction       decimal.Decimal `json:"absent_day_deduction"`
	HalfDayDeduction         decimal.Decimal `json:"half_day_deduction"`
	UnpaidLeaveDeduction     decimal.Decimal `json:"unpaid_leave_deduction"`
	AttendanceOvertimeAmount decimal.Decimal `json:"attendance_overtime_amount"`

	TotalAllowances      decimal.Decimal `json:"total_allowances"`
	TotalDeductions      decimal.Decimal `json:"total_deductions"`
	TotalLoans           decimal.Decimal `json:"total_loans"`
	TotalManualOvertimes decimal.Decimal `json:"total_manual_overtimes"`
	AllowanceBreakdown   Breakdown       `json:"allowance_breakdown"`
	DeductionBreakdown   Breakdown       `json:"deduction_breakdown"`
	LoanBreakdown        Breakdown       `json:"loan_breakdown"`
	OvertimeBreakdown    Breakdown       `json:"overtime_breakdown"`

	GrossPay decimal.Decimal `json:"gross_pay"`
	NetPay   decimal.Decimal `json:"net_pay"`
	Status   string          `json:"status"`
	PaidAt   *string         `json:"paid_at,omitempty"`
}

type EntryFailureResponse struct {
	EmployeeID string `json:"employee_id"`
	Stage      string `json:"stage"`
	Message    string `json:"message"`
}

type RunBatchResponse struct {
	Payroll  PayrollResponse        `json:"payroll"`
	Entries  []EntryResponse        `json:"entries"`
	Failures []EntryFailureResponse `json:"failures"`
}
