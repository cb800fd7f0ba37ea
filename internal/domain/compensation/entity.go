package compensation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates the compensation variants. All four share one shape so the
// summation step is a single pass over a homogeneous list.
type Kind string

const (
	KindAllowance      Kind = "allowance"
	KindDeduction      Kind = "deduction"
	KindLoan           Kind = "loan"
	KindManualOvertime Kind = "manual_overtime"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindAllowance, KindDeduction, KindLoan, KindManualOvertime:
		return true
	}
	return false
}

// Component is an employee-scoped allowance, deduction, loan installment or
// manually entered overtime.
type Component struct {
	ID           string
	EmployeeID   string
	CompanyID    string
	Kind         Kind
	Amount       decimal.Decimal
	Hours        decimal.Decimal
	Rate         decimal.Decimal
	CategoryID   *string
	CategoryName *string
	Description  *string
	StartDate    *time.Time
	EndDate      *time.Time
	CreatedAt    time.Time
}

// Value is the amount the component contributes. Manual overtime without an
// explicit amount is valued as hours x rate.
func (c Component) Value() decimal.Decimal {
	if c.Kind == KindManualOvertime && c.Amount.IsZero() {
		return c.Hours.Mul(c.Rate)
	}
	return c.Amount
}
