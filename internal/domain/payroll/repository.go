package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll batches and entries.
// All methods include companyID parameter to prevent cross-company data access.
type PayrollRepository interface {
	// Batches
	CreatePayroll(ctx context.Context, p Payroll) (Payroll, error)
	GetPayrollByID(ctx context.Context, id string, companyID string) (Payroll, error)
	ListPayrolls(ctx context.Context, companyID string, filter PayrollFilter) ([]Payroll, int64, error)
	ListDueAutoRun(ctx context.Context, asOf time.Time) ([]Payroll, error)
	DisableAutoRun(ctx context.Context, id string, companyID string) error
	UpdatePayrollStatus(ctx context.Context, id string, companyID string, status PayrollStatus) error
	RecalculateTotals(ctx context.Context, id string, companyID string) (Payroll, error)
	MarkPayrollPaid(ctx context.Context, id string, companyID string, paidBy string) (Payroll, error)
	DeletePayroll(ctx context.Context, id string, companyID string) error

	// Entries
	DeleteEntriesByPayrollID(ctx context.Context, payrollID string, companyID string) error
	CreateEntry(ctx context.Context, entry Entry) (Entry, error)
	UpsertEntry(ctx context.Context, entry Entry) (Entry, error)
	GetEntryByID(ctx context.Context, id string, companyID string) (Entry, error)
	ListEntriesByPayrollID(ctx context.Context, payrollID string, companyID string) ([]Entry, error)
	MarkEntryPaid(ctx context.Context, id string, companyID string, paidBy string) (Entry, error)
	CountUnpaidEntries(ctx context.Context, payrollID string, companyID string) (int, error)
}
