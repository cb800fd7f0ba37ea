package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
	StatusLeave   Status = "leave"
	StatusHoliday Status = "holiday"
)

// Record is one employee's attendance for one calendar date. Overtime figures are
// computed by the attendance collaborator at clock-out and are only summed here.
type Record struct {
	ID             string
	EmployeeID     string
	CompanyID      string
	Date           time.Time
	ClockIn        *time.Time
	ClockOut       *time.Time
	BreakHours     decimal.Decimal
	TotalHours     decimal.Decimal
	OvertimeHours  decimal.Decimal
	OvertimeAmount decimal.Decimal
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
