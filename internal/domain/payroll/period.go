package payroll

import "time"

const dateLayout = "2006-01-02"

// Period is an inclusive calendar date range.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod normalizes both bounds to UTC dates and rejects end < start.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: DateOnly(start), End: DateOnly(end)}
	if p.End.Before(p.Start) {
		return Period{}, ErrInvalidRange
	}
	return p, nil
}

// ParsePeriod parses two YYYY-MM-DD dates.
func ParsePeriod(start, end string) (Period, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return Period{}, ErrInvalidRange
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return Period{}, ErrInvalidRange
	}
	return NewPeriod(s, e)
}

// Days returns the number of calendar days in the period.
func (p Period) Days() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return int(DateOnly(p.End).Sub(DateOnly(p.Start)).Hours()/24) + 1
}

// Dates returns every date in the period in ascending order.
func (p Period) Dates() []time.Time {
	dates := make([]time.Time, 0, p.Days())
	for d := DateOnly(p.Start); !d.After(DateOnly(p.End)); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func (p Period) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(DateOnly(p.Start)) && !d.After(DateOnly(p.End))
}

func (p Period) String() string {
	return p.Start.Format(dateLayout) + ".." + p.End.Format(dateLayout)
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
