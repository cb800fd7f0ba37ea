package compensation

import (
	"context"
	"time"
)

// Period is the inclusive date range components are collected for.
type Period struct {
	Start time.Time
	End   time.Time
}

// Store lists one kind of component for an employee within a pay period.
// Allowances, deductions and manual overtime match on creation date; loans match
// when their active range overlaps the period.
type Store interface {
	Kind() Kind
	ListByEmployeeAndPeriod(ctx context.Context, employeeID string, companyID string, period Period) ([]Component, error)
}
