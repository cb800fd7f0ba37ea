package payroll

import "context"

type PayrollService interface {
	// Batches
	CreatePayroll(ctx context.Context, req CreatePayrollRequest) (PayrollResponse, error)
	GetPayroll(ctx context.Context, id string) (PayrollResponse, error)
	ListPayrolls(ctx context.Context, filter PayrollFilter) (ListPayrollResponse, error)
	DeletePayroll(ctx context.Context, id string) error
	RunBatch(ctx context.Context, req RunBatchRequest) (RunBatchResponse, error)
	MarkPayrollPaid(ctx context.Context, id string) (PayrollResponse, error)

	// Entries
	ComputeEntry(ctx context.Context, req ComputeEntryRequest) (EntryResponse, error)
	GetEntry(ctx context.Context, id string) (EntryResponse, error)
	ListEntries(ctx context.Context, payrollID string) ([]EntryResponse, error)
	MarkEntryPaid(ctx context.Context, id string) (EntryResponse, error)
}
