package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cmlabs-hris/hris-payroll/internal/app"
	"github.com/cmlabs-hris/hris-payroll/internal/cli"
	"github.com/cmlabs-hris/hris-payroll/internal/config"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
)

type backend struct {
	app *app.App
}

func (b *backend) Service() payroll.PayrollService {
	return b.app.Payroll
}

func (b *backend) SystemContext(ctx context.Context, companyID string) (context.Context, error) {
	return b.app.JWT.SystemContext(ctx, companyID)
}

func (b *backend) Close() {
	b.app.Close()
}

func main() {
	deps := cli.Dependencies{
		OpenBackend: func(ctx context.Context) (cli.Backend, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			a, err := app.New(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return &backend{app: a}, nil
		},
		Policy: func() (payroll.Policy, error) {
			return config.LoadPayrollConfig().Policy()
		},
	}

	if err := cli.NewRootCommand(deps).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
