package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ========== PAYROLL REPOSITORY ==========

type fakePayrollRepo struct {
	mu       sync.Mutex
	payrolls map[string]payroll.Payroll
	entries  map[string]payroll.Entry

	// failCreateEntryAt makes the n-th CreateEntry call (1-based) fail.
	failCreateEntryAt int
	createEntryCalls  int
}

func newFakePayrollRepo() *fakePayrollRepo {
	return &fakePayrollRepo{
		payrolls: make(map[string]payroll.Payroll),
		entries:  make(map[string]payroll.Entry),
	}
}

type repoState struct {
	payrolls map[string]payroll.Payroll
	entries  map[string]payroll.Entry
}

func (r *fakePayrollRepo) snapshot() repoState {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := repoState{
		payrolls: make(map[string]payroll.Payroll, len(r.payrolls)),
		entries:  make(map[string]payroll.Entry, len(r.entries)),
	}
	for k, v := range r.payrolls {
		s.payrolls[k] = v
	}
	for k, v := range r.entries {
		s.entries[k] = v
	}
	return s
}

func (r *fakePayrollRepo) restore(s repoState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payrolls = s.payrolls
	r.entries = s.entries
}

func (r *fakePayrollRepo) entriesOf(payrollID string) []payroll.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entriesOfLocked(payrollID)
}

func (r *fakePayrollRepo) entriesOfLocked(payrollID string) []payroll.Entry {
	var out []payroll.Entry
	for _, e := range r.entries {
		if e.PayrollID == payrollID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

func (r *fakePayrollRepo) CreatePayroll(_ context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.TotalGrossPay, p.TotalDeductions, p.TotalLoans, p.TotalNetPay = decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.payrolls[p.ID] = p
	return p, nil
}

func (r *fakePayrollRepo) GetPayrollByID(_ context.Context, id string, companyID string) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payrolls[id]
	if !ok || p.CompanyID != companyID {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return p, nil
}

func (r *fakePayrollRepo) ListPayrolls(_ context.Context, companyID string, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Payroll
	for _, p := range r.payrolls {
		if p.CompanyID != companyID {
			continue
		}
		if filter.Status != nil && string(p.Status) != *filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PayPeriodStart.After(out[j].PayPeriodStart) })
	return out, int64(len(out)), nil
}

func (r *fakePayrollRepo) ListDueAutoRun(_ context.Context, asOf time.Time) ([]payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Payroll
	for _, p := range r.payrolls {
		if p.AutoRun && p.Status == payroll.PayrollStatusDraft && p.PayPeriodEnd.Before(asOf) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePayrollRepo) DisableAutoRun(_ context.Context, id string, companyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payrolls[id]
	if !ok || p.CompanyID != companyID {
		return payroll.ErrPayrollNotFound
	}
	p.AutoRun = false
	r.payrolls[id] = p
	return nil
}

func (r *fakePayrollRepo) UpdatePayrollStatus(_ context.Context, id string, companyID string, status payroll.PayrollStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payrolls[id]
	if !ok || p.CompanyID != companyID {
		return payroll.ErrPayrollNotFound
	}
	p.Status = status
	if status == payroll.PayrollStatusCompleted {
		now := time.Now()
		p.ProcessedAt = &now
	}
	r.payrolls[id] = p
	return nil
}

func (r *fakePayrollRepo) RecalculateTotals(_ context.Context, id string, companyID string) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payrolls[id]
	if !ok || p.CompanyID != companyID {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	p.TotalGrossPay, p.TotalDeductions, p.TotalLoans, p.TotalNetPay = decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	p.EmployeeCount = 0
	for _, e := range r.entriesOfLocked(id) {
		p.TotalGrossPay = p.TotalGrossPay.Add(e.GrossPay)
		p.TotalDeductions = p.TotalDeductions.Add(e.TotalDeductions)
		p.TotalLoans = p.TotalLoans.Add(e.TotalLoans)
		p.TotalNetPay = p.TotalNetPay.Add(e.NetPay)
		p.EmployeeCount++
	}
	r.payrolls[id] = p
	return p, nil
}

func (r *fakePayrollRepo) MarkPayrollPaid(_ context.Context, id string, companyID string, paidBy string) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payrolls[id]
	if !ok || p.CompanyID != companyID {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	now := time.Now()
	p.Status = payroll.PayrollStatusPaid
	p.IsPayrollPaid = true
	p.PaidAt = &now
	p.PaidBy = &paidBy
	r.payrolls[id] = p
	return p, nil
}

func (r *fakePayrollRepo) DeletePayroll(_ context.Context, id string, companyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payrolls[id]
	if !ok || p.CompanyID != companyID {
		return payroll.ErrPayrollNotFound
	}
	delete(r.payrolls, id)
	for eid, e := range r.entries {
		if e.PayrollID == id {
			delete(r.entries, eid)
		}
	}
	return nil
}

func (r *fakePayrollRepo) DeleteEntriesByPayrollID(_ context.Context, payrollID string, companyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		if e.PayrollID == payrollID && e.CompanyID == companyID {
			delete(r.entries, id)
		}
	}
	return nil
}

func (r *fakePayrollRepo) CreateEntry(_ context.Context, entry payroll.Entry) (payroll.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createEntryCalls++
	if r.failCreateEntryAt > 0 && r.createEntryCalls == r.failCreateEntryAt {
		return payroll.Entry{}, errors.New("connection reset by peer")
	}
	for _, e := range r.entries {
		if e.PayrollID == entry.PayrollID && e.EmployeeID == entry.EmployeeID {
			return payroll.Entry{}, errors.New("duplicate key value violates unique constraint")
		}
	}
	entry.ID = uuid.NewString()
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *fakePayrollRepo) UpsertEntry(_ context.Context, entry payroll.Entry) (payroll.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		if e.PayrollID == entry.PayrollID && e.EmployeeID == entry.EmployeeID {
			entry.ID = id
			r.entries[id] = entry
			return entry, nil
		}
	}
	entry.ID = uuid.NewString()
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *fakePayrollRepo) GetEntryByID(_ context.Context, id string, companyID string) (payroll.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.CompanyID != companyID {
		return payroll.Entry{}, payroll.ErrEntryNotFound
	}
	return e, nil
}

func (r *fakePayrollRepo) ListEntriesByPayrollID(_ context.Context, payrollID string, companyID string) ([]payroll.Entry, error) {
	return r.entriesOf(payrollID), nil
}

func (r *fakePayrollRepo) MarkEntryPaid(_ context.Context, id string, companyID string, paidBy string) (payroll.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.CompanyID != companyID {
		return payroll.Entry{}, payroll.ErrEntryNotFound
	}
	now := time.Now()
	e.Status = payroll.EntryStatusPaid
	e.PaidAt = &now
	e.PaidBy = &paidBy
	r.entries[id] = e
	return e, nil
}

func (r *fakePayrollRepo) CountUnpaidEntries(_ context.Context, payrollID string, companyID string) (int, error) {
	count := 0
	for _, e := range r.entriesOf(payrollID) {
		if e.Status != payroll.EntryStatusPaid {
			count++
		}
	}
	return count, nil
}

// fakeTransactor restores the repository state when fn fails.
type fakeTransactor struct {
	repo *fakePayrollRepo
}

func (f fakeTransactor) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	before := f.repo.snapshot()
	if err := fn(ctx); err != nil {
		f.repo.restore(before)
		return err
	}
	return nil
}

// ========== SOURCE STORES ==========

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id string, companyID string) (employee.Employee, error) {
	emp, ok := r.employees[id]
	if !ok || emp.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *fakeEmployeeRepo) GetActiveByCompanyID(_ context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range r.employees {
		if emp.CompanyID == companyID && emp.EmploymentStatus == employee.EmploymentStatusActive {
			out = append(out, emp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}

type fakeAttendanceRepo struct {
	records map[string][]attendance.Record
	errs    map[string]error
}

func (r *fakeAttendanceRepo) ListByEmployeeAndRange(_ context.Context, employeeID string, _ string, start, end time.Time) ([]attendance.Record, error) {
	if err := r.errs[employeeID]; err != nil {
		return nil, err
	}
	var out []attendance.Record
	for _, rec := range r.records[employeeID] {
		if !rec.Date.Before(start) && !rec.Date.After(end) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeLeaveRepo struct {
	leaves map[string][]leave.Application
}

func (r *fakeLeaveRepo) ListApprovedByEmployeeAndRange(_ context.Context, employeeID string, _ string, start, end time.Time) ([]leave.Application, error) {
	var out []leave.Application
	for _, app := range r.leaves[employeeID] {
		if app.Status == leave.StatusApproved && !app.EndDate.Before(start) && !app.StartDate.After(end) {
			out = append(out, app)
		}
	}
	return out, nil
}

type fakeStore struct {
	kind       compensation.Kind
	components map[string][]compensation.Component
	err        error
}

func (s *fakeStore) Kind() compensation.Kind { return s.kind }

func (s *fakeStore) ListByEmployeeAndPeriod(_ context.Context, employeeID string, _ string, _ compensation.Period) ([]compensation.Component, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []compensation.Component
	for _, c := range s.components[employeeID] {
		if c.Kind == s.kind {
			out = append(out, c)
		}
	}
	return out, nil
}

// ========== CACHE ==========

type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string, target interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.items[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, target)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}
