package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// ListByEmployeeAndRange returns records with start <= date <= end, ordered by date.
	ListByEmployeeAndRange(ctx context.Context, employeeID string, companyID string, start, end time.Time) ([]Record, error)
}
