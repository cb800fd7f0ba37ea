package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/cache"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/lock"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/sync/errgroup"
)

const (
	// runLockTTL bounds how long a crashed run can block the batch.
	runLockTTL = 10 * time.Minute

	defaultComputeConcurrency = 4
)

type PayrollServiceImpl struct {
	txManager    database.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	loader       *SnapshotLoader
	locker       lock.Locker
	summaries    cache.Cache
	policy       payroll.Policy
	concurrency  int
}

func NewPayrollService(
	txManager database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	loader *SnapshotLoader,
	locker lock.Locker,
	summaries cache.Cache,
	policy payroll.Policy,
) payroll.PayrollService {
	if summaries == nil {
		summaries = cache.Noop{}
	}
	return &PayrollServiceImpl{
		txManager:    txManager,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		loader:       loader,
		locker:       locker,
		summaries:    summaries,
		policy:       policy,
		concurrency:  defaultComputeConcurrency,
	}
}

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", user.ErrCompanyIDRequired
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

// ========== BATCHES ==========

func (s *PayrollServiceImpl) CreatePayroll(ctx context.Context, req payroll.CreatePayrollRequest) (payroll.PayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	period, err := payroll.ParsePeriod(req.PayPeriodStart, req.PayPeriodEnd)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	autoRun := false
	if req.AutoRun != nil {
		autoRun = *req.AutoRun
	}

	var createdBy *string
	if userID != "" {
		createdBy = &userID
	}

	created, err := s.payrollRepo.CreatePayroll(ctx, payroll.Payroll{
		CompanyID:      companyID,
		PayPeriodStart: period.Start,
		PayPeriodEnd:   period.End,
		Frequency:      payroll.Frequency(req.Frequency),
		Status:         payroll.PayrollStatusDraft,
		AutoRun:        autoRun,
		Notes:          req.Notes,
		CreatedBy:      createdBy,
	})
	if err != nil {
		return payroll.PayrollResponse{}, fmt.Errorf("failed to create payroll: %w", err)
	}

	slog.Info("Payroll batch created", "payroll_id", created.ID, "company_id", companyID, "period", period.String())
	return mapToPayrollResponse(created), nil
}

func (s *PayrollServiceImpl) GetPayroll(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	var cached payroll.PayrollResponse
	if err := s.summaries.Get(ctx, summaryKey(companyID, id), &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("Payroll summary cache read failed", "payroll_id", id, "error", err)
	}

	p, err := s.payrollRepo.GetPayrollByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	resp := mapToPayrollResponse(p)
	if err := s.summaries.Set(ctx, summaryKey(companyID, id), resp); err != nil {
		slog.Warn("Payroll summary cache write failed", "payroll_id", id, "error", err)
	}
	return resp, nil
}

func (s *PayrollServiceImpl) ListPayrolls(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	payrolls, total, err := s.payrollRepo.ListPayrolls(ctx, companyID, filter)
	if err != nil {
		return payroll.ListPayrollResponse{}, fmt.Errorf("failed to list payrolls: %w", err)
	}

	data := make([]payroll.PayrollResponse, 0, len(payrolls))
	for _, p := range payrolls {
		data = append(data, mapToPayrollResponse(p))
	}

	return payroll.ListPayrollResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) DeletePayroll(ctx context.Context, id string) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	p, err := s.payrollRepo.GetPayrollByID(ctx, id, companyID)
	if err != nil {
		return err
	}
	if p.Status != payroll.PayrollStatusDraft {
		return payroll.ErrCannotDeletePayroll
	}

	if err := s.payrollRepo.DeletePayroll(ctx, id, companyID); err != nil {
		return fmt.Errorf("failed to delete payroll: %w", err)
	}

	s.invalidate(ctx, companyID, id)
	slog.Info("Payroll batch deleted", "payroll_id", id, "company_id", companyID)
	return nil
}

// RunBatch computes one entry per employee and replaces the batch's entries
// and totals in a single transaction. Per-employee failures do not abort the
// run; they are returned and leave the batch in draft so it can be re-run.
func (s *PayrollServiceImpl) RunBatch(ctx context.Context, req payroll.RunBatchRequest) (payroll.RunBatchResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunBatchResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunBatchResponse{}, err
	}

	p, err := s.payrollRepo.GetPayrollByID(ctx, req.PayrollID, companyID)
	if err != nil {
		return payroll.RunBatchResponse{}, err
	}
	if p.Status.IsImmutable() {
		return payroll.RunBatchResponse{}, payroll.ErrImmutableBatch
	}

	release, err := s.acquireRunLock(ctx, p.ID)
	if err != nil {
		return payroll.RunBatchResponse{}, err
	}
	defer release()

	// re-read under the lock, another run may have completed meanwhile
	p, err = s.payrollRepo.GetPayrollByID(ctx, req.PayrollID, companyID)
	if err != nil {
		return payroll.RunBatchResponse{}, err
	}
	if p.Status.IsImmutable() {
		return payroll.RunBatchResponse{}, payroll.ErrImmutableBatch
	}

	if p.Status == payroll.PayrollStatusProcessing {
		// left behind by a run that died without reverting
		slog.Warn("Payroll batch found in processing without a lock holder, resuming", "payroll_id", p.ID)
	} else {
		if err := s.payrollRepo.UpdatePayrollStatus(ctx, p.ID, companyID, payroll.PayrollStatusProcessing); err != nil {
			return payroll.RunBatchResponse{}, fmt.Errorf("failed to mark payroll processing: %w", err)
		}
		s.invalidate(ctx, companyID, p.ID)
	}

	start := time.Now()
	slog.Info("Payroll batch run started", "payroll_id", p.ID, "company_id", companyID, "period", p.Period().String())

	employees, failures, err := s.resolveEmployees(ctx, companyID, req.EmployeeIDs)
	if err != nil {
		s.revertToDraft(ctx, p.ID, companyID)
		return payroll.RunBatchResponse{}, err
	}

	entries, computeFailures := s.computeEntries(ctx, p, employees)
	failures = append(failures, computeFailures...)
	if err := ctx.Err(); err != nil {
		s.revertToDraft(ctx, p.ID, companyID)
		return payroll.RunBatchResponse{}, err
	}

	finalStatus := payroll.PayrollStatusCompleted
	if len(failures) > 0 {
		finalStatus = payroll.PayrollStatusDraft
	}

	var (
		updated payroll.Payroll
		created []payroll.Entry
	)
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.payrollRepo.DeleteEntriesByPayrollID(txCtx, p.ID, companyID); err != nil {
			return fmt.Errorf("failed to delete previous entries: %w", err)
		}

		created = make([]payroll.Entry, 0, len(entries))
		for _, entry := range entries {
			saved, err := s.payrollRepo.CreateEntry(txCtx, entry)
			if err != nil {
				return fmt.Errorf("failed to create entry for employee %s: %w", entry.EmployeeID, err)
			}
			created = append(created, saved)
		}

		if err := s.payrollRepo.UpdatePayrollStatus(txCtx, p.ID, companyID, finalStatus); err != nil {
			return fmt.Errorf("failed to update payroll status: %w", err)
		}

		updated, err = s.payrollRepo.RecalculateTotals(txCtx, p.ID, companyID)
		if err != nil {
			return fmt.Errorf("failed to recalculate payroll totals: %w", err)
		}
		return nil
	})
	if err != nil {
		slog.Error("Payroll batch write failed, rolled back", "payroll_id", p.ID, "error", err)
		s.revertToDraft(ctx, p.ID, companyID)
		return payroll.RunBatchResponse{}, err
	}

	s.invalidate(ctx, companyID, p.ID)
	slog.Info("Payroll batch run completed",
		"payroll_id", p.ID,
		"status", updated.Status,
		"entries", len(created),
		"failures", len(failures),
		"total_net_pay", updated.TotalNetPay.String(),
		"duration", time.Since(start),
	)

	return payroll.RunBatchResponse{
		Payroll:  mapToPayrollResponse(updated),
		Entries:  mapToEntryResponses(created),
		Failures: mapToFailureResponses(failures),
	}, nil
}

func (s *PayrollServiceImpl) MarkPayrollPaid(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	p, err := s.payrollRepo.GetPayrollByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	if !p.Status.CanTransitionTo(payroll.PayrollStatusPaid) {
		return payroll.PayrollResponse{}, fmt.Errorf("%w: %s -> %s", payroll.ErrInvalidStatusTransition, p.Status, payroll.PayrollStatusPaid)
	}

	var updated payroll.Payroll
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		unpaid, err := s.payrollRepo.CountUnpaidEntries(txCtx, id, companyID)
		if err != nil {
			return fmt.Errorf("failed to count unpaid entries: %w", err)
		}
		if unpaid > 0 {
			return fmt.Errorf("%w: %d entries pending", payroll.ErrIncompletePayment, unpaid)
		}

		updated, err = s.payrollRepo.MarkPayrollPaid(txCtx, id, companyID, userID)
		return err
	})
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	s.invalidate(ctx, companyID, id)
	slog.Info("Payroll batch marked paid", "payroll_id", id, "company_id", companyID, "paid_by", userID)
	return mapToPayrollResponse(updated), nil
}

// ========== ENTRIES ==========

// ComputeEntry computes a single employee's entry on a draft batch, replacing
// any previous entry for that employee, and refreshes the batch totals.
func (s *PayrollServiceImpl) ComputeEntry(ctx context.Context, req payroll.ComputeEntryRequest) (payroll.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.EntryResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	release, err := s.acquireRunLock(ctx, req.PayrollID)
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	defer release()

	p, err := s.payrollRepo.GetPayrollByID(ctx, req.PayrollID, companyID)
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	switch {
	case p.Status.IsImmutable():
		return payroll.EntryResponse{}, payroll.ErrImmutableBatch
	case p.Status == payroll.PayrollStatusProcessing:
		return payroll.EntryResponse{}, payroll.ErrBatchRunInProgress
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID)
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	entry, err := s.computeOne(ctx, p, emp)
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	var saved payroll.Entry
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		saved, err = s.payrollRepo.UpsertEntry(txCtx, entry)
		if err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}
		if _, err := s.payrollRepo.RecalculateTotals(txCtx, p.ID, companyID); err != nil {
			return fmt.Errorf("failed to recalculate payroll totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	s.invalidate(ctx, companyID, p.ID)
	slog.Info("Payroll entry computed", "payroll_id", p.ID, "employee_id", emp.ID, "net_pay", saved.NetPay.String())
	return mapToEntryResponse(saved), nil
}

func (s *PayrollServiceImpl) GetEntry(ctx context.Context, id string) (payroll.EntryResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	entry, err := s.payrollRepo.GetEntryByID(ctx, id, companyID)
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	return mapToEntryResponse(entry), nil
}

func (s *PayrollServiceImpl) ListEntries(ctx context.Context, payrollID string) ([]payroll.EntryResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.payrollRepo.GetPayrollByID(ctx, payrollID, companyID); err != nil {
		return nil, err
	}

	entries, err := s.payrollRepo.ListEntriesByPayrollID(ctx, payrollID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return mapToEntryResponses(entries), nil
}

// MarkEntryPaid pays one entry of a completed batch. The batch itself flips to
// paid through MarkPayrollPaid once no entry is pending.
func (s *PayrollServiceImpl) MarkEntryPaid(ctx context.Context, id string) (payroll.EntryResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	entry, err := s.payrollRepo.GetEntryByID(ctx, id, companyID)
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	if entry.Status == payroll.EntryStatusPaid {
		return payroll.EntryResponse{}, payroll.ErrEntryAlreadyPaid
	}

	p, err := s.payrollRepo.GetPayrollByID(ctx, entry.PayrollID, companyID)
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	if p.Status != payroll.PayrollStatusCompleted {
		return payroll.EntryResponse{}, fmt.Errorf("%w: entries can only be paid on a completed payroll (status %s)", payroll.ErrInvalidStatusTransition, p.Status)
	}

	paid, err := s.payrollRepo.MarkEntryPaid(ctx, id, companyID, userID)
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	s.invalidate(ctx, companyID, p.ID)
	slog.Info("Payroll entry marked paid", "entry_id", id, "payroll_id", p.ID, "paid_by", userID)
	return mapToEntryResponse(paid), nil
}

// ========== COMPUTATION ==========

// resolveEmployees returns the employees to run. Explicit IDs that cannot be
// loaded become load failures; an empty list selects all active employees.
func (s *PayrollServiceImpl) resolveEmployees(ctx context.Context, companyID string, ids []string) ([]employee.Employee, []payroll.EntryFailure, error) {
	if len(ids) == 0 {
		employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get employees: %w", err)
		}
		return employees, nil, nil
	}

	var (
		employees []employee.Employee
		failures  []payroll.EntryFailure
	)
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		emp, err := s.employeeRepo.GetByID(ctx, id, companyID)
		if err != nil {
			failures = append(failures, payroll.EntryFailure{EmployeeID: id, Stage: payroll.StageLoad, Err: err})
			continue
		}
		employees = append(employees, emp)
	}
	return employees, failures, nil
}

// computeEntries computes entries concurrently. Output order follows the input
// order regardless of completion order.
func (s *PayrollServiceImpl) computeEntries(ctx context.Context, p payroll.Payroll, employees []employee.Employee) ([]payroll.Entry, []payroll.EntryFailure) {
	entries := make([]*payroll.Entry, len(employees))
	failed := make([]error, len(employees))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, emp := range employees {
		i, emp := i, emp // per-iteration copies (go 1.21 loop semantics)
		g.Go(func() error {
			entry, err := s.computeOne(gctx, p, emp)
			if err != nil {
				failed[i] = err
				return nil
			}
			entries[i] = &entry
			return nil
		})
	}
	_ = g.Wait()

	var (
		out      []payroll.Entry
		failures []payroll.EntryFailure
	)
	for i := range employees {
		if failed[i] != nil {
			var f payroll.EntryFailure
			if !errors.As(failed[i], &f) {
				f = payroll.EntryFailure{EmployeeID: employees[i].ID, Stage: payroll.StageCompute, Err: failed[i]}
			}
			slog.Warn("Payroll entry failed", "payroll_id", p.ID, "employee_id", f.EmployeeID, "stage", f.Stage, "error", f.Err)
			failures = append(failures, f)
			continue
		}
		out = append(out, *entries[i])
	}
	return out, failures
}

// computeOne runs load, resolve and compute for one employee. Errors are
// EntryFailure values naming the stage.
func (s *PayrollServiceImpl) computeOne(ctx context.Context, p payroll.Payroll, emp employee.Employee) (payroll.Entry, error) {
	period := p.Period()

	snap, err := s.loader.Load(ctx, emp.ID, p.CompanyID, period)
	if err != nil {
		return payroll.Entry{}, payroll.EntryFailure{EmployeeID: emp.ID, Stage: payroll.StageLoad, Err: err}
	}

	summary, err := ResolveAttendance(emp, period, snap.Records, snap.Leaves, s.policy)
	if err != nil {
		return payroll.Entry{}, payroll.EntryFailure{EmployeeID: emp.ID, Stage: payroll.StageResolve, Err: err}
	}

	entry, err := ComputeEntry(emp, summary, SumComponents(snap.Components), s.policy)
	if err != nil {
		return payroll.Entry{}, payroll.EntryFailure{EmployeeID: emp.ID, Stage: payroll.StageCompute, Err: err}
	}

	entry.PayrollID = p.ID
	entry.CompanyID = p.CompanyID
	return entry, nil
}

// ========== HELPERS ==========

func (s *PayrollServiceImpl) acquireRunLock(ctx context.Context, payrollID string) (func(), error) {
	releaseFn, err := s.locker.Acquire(ctx, "payroll:run:"+payrollID, runLockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrLockHeld) {
			return nil, payroll.ErrBatchRunInProgress
		}
		return nil, err
	}
	return func() {
		// the request context may already be cancelled
		if err := releaseFn(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Failed to release payroll run lock", "payroll_id", payrollID, "error", err)
		}
	}, nil
}

func (s *PayrollServiceImpl) revertToDraft(ctx context.Context, payrollID, companyID string) {
	if err := s.payrollRepo.UpdatePayrollStatus(context.WithoutCancel(ctx), payrollID, companyID, payroll.PayrollStatusDraft); err != nil {
		slog.Error("Failed to revert payroll to draft", "payroll_id", payrollID, "error", err)
	}
	s.invalidate(ctx, companyID, payrollID)
}

func (s *PayrollServiceImpl) invalidate(ctx context.Context, companyID, payrollID string) {
	if err := s.summaries.Delete(context.WithoutCancel(ctx), summaryKey(companyID, payrollID)); err != nil {
		slog.Warn("Payroll summary cache invalidation failed", "payroll_id", payrollID, "error", err)
	}
}

func summaryKey(companyID, payrollID string) string {
	return "payroll:" + companyID + ":" + payrollID
}
