package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// NewCloseCommand creates the close command.
func NewCloseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "close <payroll-id>",
		Short: "Mark a completed batch as paid",
		Long: `Mark a completed batch as paid. Every entry must already be paid.

Example:
  payrollctl close --company <company-id> <payroll-id>`,
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

			p, err := svc.MarkPayrollPaid(ctx, args[0])
			if err != nil {
				return failed(out, "close failed", err)
			}

			return out.Success(p, func(w io.Writer) { renderPayroll(w, p) })
		},
	}
}
