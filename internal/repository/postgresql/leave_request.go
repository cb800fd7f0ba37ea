package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// ListApprovedByEmployeeAndRange implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListApprovedByEmployeeAndRange(ctx context.Context, employeeID string, companyID string, start, end time.Time) ([]leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lr.id, lr.employee_id, lr.company_id, lr.leave_type_id, lt.name, lt.is_paid,
			lr.start_date, lr.end_date, lr.status, lr.created_at
		FROM leave_requests lr
		INNER JOIN leave_types lt ON lr.leave_type_id = lt.id
		WHERE lr.employee_id = $1 AND lr.company_id = $2 AND lr.status = $3
			AND lr.start_date <= $5 AND lr.end_date >= $4
		ORDER BY lr.start_date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, leave.StatusApproved, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var applications []leave.Application
	for rows.Next() {
		var a leave.Application
		err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.CompanyID, &a.LeaveTypeID, &a.LeaveTypeName, &a.IsPaid,
			&a.StartDate, &a.EndDate, &a.Status, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		applications = append(applications, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leave requests: %w", err)
	}

	return applications, nil
}
