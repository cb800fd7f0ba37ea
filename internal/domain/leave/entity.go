package leave

import "time"

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// Application is a leave request over an inclusive date range. IsPaid comes from
// the joined leave type.
type Application struct {
	ID            string
	EmployeeID    string
	CompanyID     string
	LeaveTypeID   string
	LeaveTypeName *string
	IsPaid        bool
	StartDate     time.Time
	EndDate       time.Time
	Status        RequestStatus
	CreatedAt     time.Time
}

// Covers reports whether date falls inside the application's range (date-only comparison).
func (a Application) Covers(date time.Time) bool {
	d := dateOnly(date)
	return !d.Before(dateOnly(a.StartDate)) && !d.After(dateOnly(a.EndDate))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
