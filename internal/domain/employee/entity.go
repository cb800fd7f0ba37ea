package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee carries identity plus the compensation basis payroll is computed from.
// It is treated as immutable for the duration of a pay period.
type Employee struct {
	ID               string
	CompanyID        string
	EmployeeCode     string
	FullName         string
	ShiftID          *string
	PayBasis         PayBasis
	BasicSalary      *decimal.Decimal
	RatePerHour      *decimal.Decimal
	HoursPerDay      decimal.Decimal
	DaysPerWeek      int
	EmploymentStatus EmploymentStatus
	HireDate         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// PayBasis selects the per-day salary formula.
type PayBasis string

const (
	PayBasisMonthly PayBasis = "monthly"
	PayBasisHourly  PayBasis = "hourly"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// HasMonthlyBasis reports whether a non-zero basic salary is configured.
func (e Employee) HasMonthlyBasis() bool {
	return e.BasicSalary != nil && e.BasicSalary.IsPositive() && e.DaysPerWeek > 0
}

// HasHourlyBasis reports whether a non-zero hourly rate is configured.
func (e Employee) HasHourlyBasis() bool {
	return e.RatePerHour != nil && e.RatePerHour.IsPositive() && e.HoursPerDay.IsPositive()
}
