package cli

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/spf13/cobra"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Employees []string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <payroll-id>",
		Short: "Compute every entry of a payroll batch",
		Long: `Compute entries for all active employees of the company, or only the
employees given with --employee, replacing any previous entries of the batch.

The batch must be in draft. It ends completed when every employee was computed,
and back in draft when some failed; failures are listed and the exit code is 1.

Example:
  payrollctl run --company <company-id> <payroll-id>
  payrollctl run --company <company-id> <payroll-id> --employee <id> --employee <id>`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&opts.Employees, "employee", nil, "employee ID to compute (repeatable, default all active)")

	return cmd
}

func runBatch(cmd *cobra.Command, opts *RunOptions, payrollID string) error {
	out := opts.formatter(cmd)

	ctx, svc, closeFn, err := opts.session(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	out.VerboseLog("running payroll %s for %d selected employees", payrollID, len(opts.Employees))

	result, err := svc.RunBatch(ctx, payroll.RunBatchRequest{PayrollID: payrollID, EmployeeIDs: opts.Employees})
	if err != nil {
		return failed(out, "payroll run failed", err)
	}

	if err := out.Success(result, func(w io.Writer) {
		renderPayroll(w, result.Payroll)
		renderEntries(w, result.Entries)
		renderFailures(w, result.Failures)
	}); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}

	if len(result.Failures) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d employee(s) failed", len(result.Failures)))
	}
	return nil
}
