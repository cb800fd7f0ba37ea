package cli

import (
	"io"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/spf13/cobra"
)

// NewComputeCommand creates the compute command.
func NewComputeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compute <payroll-id> <employee-id>",
		Short: "Compute or recompute one employee's entry",
		Long: `Compute a single employee's entry within a draft batch and refresh the batch totals.

Example:
  payrollctl compute --company <company-id> <payroll-id> <employee-id>`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)

			ctx, svc, closeFn, err := rootOpts.session(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			entry, err := svc.ComputeEntry(ctx, payroll.ComputeEntryRequest{PayrollID: args[0], EmployeeID: args[1]})
			if err != nil {
				return failed(out, "compute failed", err)
			}

			return out.Success(entry, func(w io.Writer) { renderEntry(w, entry) })
		},
	}
}

// NewPayEntryCommand creates the pay-entry command.
func NewPayEntryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "pay-entry <entry-id>",
		Short:         "Mark one entry of a completed batch as paid",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)

			ctx, svc, closeFn, err := rootOpts.session(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			entry, err := svc.MarkEntryPaid(ctx, args[0])
			if err != nil {
				return failed(out, "mark entry paid failed", err)
			}

			return out.Success(entry, func(w io.Writer) { renderEntry(w, entry) })
		},
	}
}
