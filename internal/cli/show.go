package cli

import (
	"io"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/spf13/cobra"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Entries bool
}

type showResult struct {
	Payroll payroll.PayrollResponse `json:"payroll"`
	Entries []payroll.EntryResponse `json:"entries,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "show <payroll-id>",
		Short:         "Show a payroll batch and its entries",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)

			ctx, svc, closeFn, err := opts.session(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			result := showResult{}
			result.Payroll, err = svc.GetPayroll(ctx, args[0])
			if err != nil {
				return failed(out, "show failed", err)
			}
			if opts.Entries {
				result.Entries, err = svc.ListEntries(ctx, args[0])
				if err != nil {
					return failed(out, "show failed", err)
				}
			}

			return out.Success(result, func(w io.Writer) {
				renderPayroll(w, result.Payroll)
				if opts.Entries {
					renderEntries(w, result.Entries)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Entries, "entries", true, "include entries")

	return cmd
}
