package payroll

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// RoundingMode selects how gross and net pay are rounded to 2 decimals.
type RoundingMode string

const (
	RoundHalfUp   RoundingMode = "half_up"
	RoundHalfEven RoundingMode = "half_even"
	RoundDown     RoundingMode = "down"
)

// MoneyPlaces is the fixed-point precision of every stored monetary field.
const MoneyPlaces int32 = 2

// Policy is the explicit payroll configuration passed into every computation.
type Policy struct {
	WorkingDays   []time.Weekday
	Holidays      []time.Time
	RoundingMode  RoundingMode
	HalfDayFactor decimal.Decimal
}

// DefaultPolicy - Monday to Friday, no holidays, half-up rounding, half days worth 0.5.
func DefaultPolicy() Policy {
	return Policy{
		WorkingDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		RoundingMode:  RoundHalfUp,
		HalfDayFactor: decimal.NewFromFloat(0.5),
	}
}

func (p Policy) Validate() error {
	var errs validator.ValidationErrors

	if len(p.WorkingDays) == 0 {
		errs = append(errs, validator.ValidationError{Field: "working_days", Message: "at least one working day is required"})
	}
	switch p.RoundingMode {
	case RoundHalfUp, RoundHalfEven, RoundDown:
	default:
		errs = append(errs, validator.ValidationError{Field: "rounding_mode", Message: "must be 'half_up', 'half_even' or 'down'"})
	}
	if p.HalfDayFactor.IsNegative() || p.HalfDayFactor.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, validator.ValidationError{Field: "half_day_factor", Message: "must be between 0 and 1"})
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPolicy, errs)
	}
	return nil
}

func (p Policy) IsWorkingDay(date time.Time) bool {
	wd := date.Weekday()
	for _, d := range p.WorkingDays {
		if d == wd {
			return true
		}
	}
	return false
}

func (p Policy) IsHoliday(date time.Time) bool {
	d := DateOnly(date)
	for _, h := range p.Holidays {
		if DateOnly(h).Equal(d) {
			return true
		}
	}
	return false
}

// Round applies the rounding mode at MoneyPlaces. half_up rounds half away from zero.
func (p Policy) Round(d decimal.Decimal) decimal.Decimal {
	switch p.RoundingMode {
	case RoundHalfEven:
		return d.RoundBank(MoneyPlaces)
	case RoundDown:
		return d.Truncate(MoneyPlaces)
	default:
		return d.Round(MoneyPlaces)
	}
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekdays parses names like "mon" or "Monday" into a sorted, de-duplicated set.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]bool)
	var days []time.Weekday
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		wd, ok := weekdayNames[key]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidPolicy, name)
		}
		if !seen[wd] {
			seen[wd] = true
			days = append(days, wd)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, nil
}
