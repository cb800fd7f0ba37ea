package cli

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const (
	testCompanyID = "8f0c9a52-6a44-4c3f-9d55-2f6c1d0e7a10"
	testPayrollID = "0d5d6b7e-27b1-4a4e-8a0b-3c1f52f0c001"
	testEntryID   = "0d5d6b7e-27b1-4a4e-8a0b-3c1f52f0e001"
	testEmpID     = "0d5d6b7e-27b1-4a4e-8a0b-3c1f52f0a001"
)

type companyKey struct{}

// fakeService records the company it was called for and returns canned data.
type fakeService struct {
	err       error
	runResult payroll.RunBatchResponse
	company   string
	lastRun   payroll.RunBatchRequest
	calls     []string
}

func (s *fakeService) record(ctx context.Context, call string) {
	s.calls = append(s.calls, call)
	if c, ok := ctx.Value(companyKey{}).(string); ok {
		s.company = c
	}
}

func samplePayroll(status string) payroll.PayrollResponse {
	return payroll.PayrollResponse{
		ID:              testPayrollID,
		CompanyID:       testCompanyID,
		PayPeriodStart:  "2025-02-03",
		PayPeriodEnd:    "2025-03-02",
		Frequency:       "monthly",
		TotalGrossPay:   decimal.NewFromInt(2800),
		TotalDeductions: decimal.NewFromInt(100),
		TotalNetPay:     decimal.NewFromInt(2700),
		EmployeeCount:   1,
		Status:          status,
	}
}

func sampleEntry(status string) payroll.EntryResponse {
	return payroll.EntryResponse{
		ID:              testEntryID,
		PayrollID:       testPayrollID,
		EmployeeID:      testEmpID,
		EmployeeCode:    "EMP-001",
		TotalDays:       28,
		PresentDays:     20,
		HolidayDays:     8,
		PerDaySalary:    decimal.NewFromInt(150),
		GrossPay:        decimal.NewFromInt(2800),
		TotalDeductions: decimal.NewFromInt(100),
		NetPay:          decimal.NewFromInt(2700),
		Status:          status,
	}
}

func (s *fakeService) CreatePayroll(ctx context.Context, req payroll.CreatePayrollRequest) (payroll.PayrollResponse, error) {
	s.record(ctx, "create")
	return samplePayroll("draft"), s.err
}

func (s *fakeService) GetPayroll(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	s.record(ctx, "get")
	return samplePayroll("completed"), s.err
}

func (s *fakeService) ListPayrolls(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	s.record(ctx, "list")
	return payroll.ListPayrollResponse{}, s.err
}

func (s *fakeService) DeletePayroll(ctx context.Context, id string) error {
	s.record(ctx, "delete")
	return s.err
}

func (s *fakeService) RunBatch(ctx context.Context, req payroll.RunBatchRequest) (payroll.RunBatchResponse, error) {
	s.record(ctx, "run")
	s.lastRun = req
	return s.runResult, s.err
}

func (s *fakeService) MarkPayrollPaid(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	s.record(ctx, "close")
	return samplePayroll("paid"), s.err
}

func (s *fakeService) ComputeEntry(ctx context.Context, req payroll.ComputeEntryRequest) (payroll.EntryResponse, error) {
	s.record(ctx, "compute")
	return sampleEntry("pending"), s.err
}

func (s *fakeService) GetEntry(ctx context.Context, id string) (payroll.EntryResponse, error) {
	s.record(ctx, "get-entry")
	return sampleEntry("pending"), s.err
}

func (s *fakeService) ListEntries(ctx context.Context, payrollID string) ([]payroll.EntryResponse, error) {
	s.record(ctx, "entries")
	return []payroll.EntryResponse{sampleEntry("pending")}, s.err
}

func (s *fakeService) MarkEntryPaid(ctx context.Context, id string) (payroll.EntryResponse, error) {
	s.record(ctx, "pay-entry")
	return sampleEntry("paid"), s.err
}

type fakeBackend struct {
	svc    *fakeService
	closed bool
}

func (b *fakeBackend) Service() payroll.PayrollService { return b.svc }

func (b *fakeBackend) SystemContext(ctx context.Context, companyID string) (context.Context, error) {
	return context.WithValue(ctx, companyKey{}, companyID), nil
}

func (b *fakeBackend) Close() { b.closed = true }

func testDeps(backend *fakeBackend) Dependencies {
	return Dependencies{
		OpenBackend: func(ctx context.Context) (Backend, error) { return backend, nil },
		Policy: func() (payroll.Policy, error) {
			return payroll.DefaultPolicy(), nil
		},
	}
}
