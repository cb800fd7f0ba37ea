package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Company string

	deps Dependencies
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Backend is the wired application a command talks to.
type Backend interface {
	Service() payroll.PayrollService
	// SystemContext returns ctx carrying system claims for companyID.
	SystemContext(ctx context.Context, companyID string) (context.Context, error)
	Close()
}

type Dependencies struct {
	OpenBackend func(ctx context.Context) (Backend, error)
	// Policy resolves the effective policy from the environment.
	Policy func() (payroll.Policy, error)
}

// NewRootCommand creates the payrollctl root command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	opts := &RootOptions{deps: deps}

	cmd := &cobra.Command{
		Use:   "payrollctl",
		Short: "Operate payroll batches",
		Long:  "Run, inspect and settle payroll batches directly against the payroll database.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError, "invalid flag", fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Company, "company", os.Getenv("PAYROLL_COMPANY_ID"), "company ID the command acts for")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewComputeCommand(opts))
	cmd.AddCommand(NewPayEntryCommand(opts))
	cmd.AddCommand(NewCloseCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewPolicyCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// session opens the backend and a company-scoped system context. Callers must call the returned close func.
func (o *RootOptions) session(cmd *cobra.Command) (context.Context, payroll.PayrollService, func(), error) {
	if o.Company == "" {
		return nil, nil, nil, NewExitError(ExitCommandError, "--company (or PAYROLL_COMPANY_ID) is required")
	}
	if o.deps.OpenBackend == nil {
		return nil, nil, nil, NewExitError(ExitCommandError, "no backend configured")
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}

	backend, err := o.deps.OpenBackend(parent)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "failed to open backend", err)
	}

	ctx, err := backend.SystemContext(parent, o.Company)
	if err != nil {
		backend.Close()
		return nil, nil, nil, WrapExitError(ExitCommandError, "failed to create system context", err)
	}

	return ctx, backend.Service(), backend.Close, nil
}

// failed reports a service error and converts it to an ExitFailure.
func failed(out *OutputFormatter, message string, err error) error {
	_ = out.Error(errorCode(err), err.Error())
	return WrapExitError(ExitFailure, message, err)
}
