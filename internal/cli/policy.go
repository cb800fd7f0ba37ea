package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/cmlabs-hris/hris-payroll/internal/config"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/spf13/cobra"
)

// PolicyOptions holds flags for the policy command.
type PolicyOptions struct {
	*RootOptions
	File string
}

type policyView struct {
	WorkingDays   []string `json:"working_days"`
	Holidays      []string `json:"holidays"`
	RoundingMode  string   `json:"rounding_mode"`
	HalfDayFactor string   `json:"half_day_factor"`
}

func newPolicyView(p payroll.Policy) policyView {
	view := policyView{
		WorkingDays:   make([]string, 0, len(p.WorkingDays)),
		Holidays:      make([]string, 0, len(p.Holidays)),
		RoundingMode:  string(p.RoundingMode),
		HalfDayFactor: p.HalfDayFactor.String(),
	}
	for _, d := range p.WorkingDays {
		view.WorkingDays = append(view.WorkingDays, strings.ToLower(d.String()[:3]))
	}
	for _, h := range p.Holidays {
		view.Holidays = append(view.Holidays, payroll.FormatDate(h))
	}
	return view
}

// NewPolicyCommand creates the policy command.
func NewPolicyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PolicyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the effective payroll policy",
		Long: `Print the working days, holidays, rounding mode and half-day factor payroll
runs use. Reads --file when given, else PAYROLL_POLICY_FILE or the PAYROLL_* variables.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)

			policy, err := opts.resolve()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load policy", err)
			}

			view := newPolicyView(policy)
			return out.Success(view, func(w io.Writer) {
				fmt.Fprintf(w, "working days:    %s\n", strings.Join(view.WorkingDays, ", "))
				if len(view.Holidays) == 0 {
					fmt.Fprintln(w, "holidays:        none")
				} else {
					fmt.Fprintf(w, "holidays:        %s\n", strings.Join(view.Holidays, ", "))
				}
				fmt.Fprintf(w, "rounding mode:   %s\n", view.RoundingMode)
				fmt.Fprintf(w, "half-day factor: %s\n", view.HalfDayFactor)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "policy YAML file")

	return cmd
}

func (o *PolicyOptions) resolve() (payroll.Policy, error) {
	if o.File != "" {
		return config.LoadPolicy(o.File)
	}
	if o.deps.Policy != nil {
		return o.deps.Policy()
	}
	return payroll.DefaultPolicy(), nil
}
