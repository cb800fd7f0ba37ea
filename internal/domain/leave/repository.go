package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	// ListApprovedByEmployeeAndRange returns approved applications overlapping [start, end].
	ListApprovedByEmployeeAndRange(ctx context.Context, employeeID string, companyID string, start, end time.Time) ([]Application, error)
}
