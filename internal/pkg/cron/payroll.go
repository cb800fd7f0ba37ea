package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
)

// AutoRunStore finds draft batches flagged auto_run whose period has closed,
// and switches the flag off for batches that need a manual re-run.
type AutoRunStore interface {
	ListDueAutoRun(ctx context.Context, asOf time.Time) ([]payroll.Payroll, error)
	DisableAutoRun(ctx context.Context, id string, companyID string) error
}

// BatchRunner is the part of the payroll service the job drives.
type BatchRunner interface {
	RunBatch(ctx context.Context, req payroll.RunBatchRequest) (payroll.RunBatchResponse, error)
}

// SystemContexts issues a context carrying system claims scoped to one company.
type SystemContexts interface {
	SystemContext(ctx context.Context, companyID string) (context.Context, error)
}

type PayrollJobs struct {
	batches BatchRunner
	due     AutoRunStore
	system  SystemContexts
	nowFn   func() time.Time
}

func NewPayrollJobs(batches BatchRunner, due AutoRunStore, system SystemContexts) *PayrollJobs {
	return &PayrollJobs{
		batches: batches,
		due:     due,
		system:  system,
		nowFn:   time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("auto_run_closed_payrolls", interval, j.AutoRunClosedPayrolls)
}

// AutoRunClosedPayrolls runs every due batch over all active employees of its company.
// A failing batch does not stop the others. A batch that finishes with employee
// failures stays in draft with auto_run switched off, so later ticks leave its
// entries alone until someone re-runs it by hand.
func (j *PayrollJobs) AutoRunClosedPayrolls(ctx context.Context) error {
	asOf := payroll.DateOnly(j.nowFn().UTC())

	due, err := j.due.ListDueAutoRun(ctx, asOf)
	if err != nil {
		return fmt.Errorf("failed to list due payrolls: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	slog.Info("Cron: Starting auto-run of closed payrolls", "count", len(due), "as_of", payroll.FormatDate(asOf))

	var errs []error
	completed := 0
	for _, p := range due {
		sysCtx, err := j.system.SystemContext(ctx, p.CompanyID)
		if err != nil {
			errs = append(errs, fmt.Errorf("payroll %s: %w", p.ID, err))
			continue
		}

		result, err := j.batches.RunBatch(sysCtx, payroll.RunBatchRequest{PayrollID: p.ID})
		if err != nil {
			if errors.Is(err, payroll.ErrBatchRunInProgress) {
				slog.Info("Cron: Payroll already running, skipping", "payroll_id", p.ID)
				continue
			}
			slog.Error("Cron: Failed to auto-run payroll", "payroll_id", p.ID, "company_id", p.CompanyID, "error", err)
			errs = append(errs, fmt.Errorf("payroll %s: %w", p.ID, err))
			continue
		}

		if len(result.Failures) > 0 {
			slog.Warn("Cron: Payroll ran with employee failures, auto-run disabled",
				"payroll_id", p.ID,
				"failures", len(result.Failures),
				"status", result.Payroll.Status,
			)
			if err := j.due.DisableAutoRun(ctx, p.ID, p.CompanyID); err != nil {
				errs = append(errs, fmt.Errorf("payroll %s: %w", p.ID, err))
			}
			continue
		}
		completed++
	}

	slog.Info("Cron: Auto-run of closed payrolls finished", "due", len(due), "completed", completed, "errors", len(errs))
	return errors.Join(errs...)
}
