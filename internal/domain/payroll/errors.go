package payroll

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
)

var (
	ErrInvalidRange             = errors.New("invalid pay period range")
	ErrMissingCompensationBasis = errors.New("employee has neither basic salary nor hourly rate configured")
	ErrIncompletePayment        = errors.New("payroll has entries that are not paid yet")
	ErrImmutableBatch           = errors.New("payroll batch is completed or paid, cannot modify")
	ErrEmployeeNotFound         = employee.ErrEmployeeNotFound
	ErrPayrollNotFound          = errors.New("payroll not found")
	ErrEntryNotFound            = errors.New("payroll entry not found")
	ErrEntryAlreadyPaid         = errors.New("payroll entry already paid")
	ErrInvalidStatusTransition  = errors.New("invalid payroll status transition")
	ErrBatchRunInProgress       = errors.New("payroll batch run already in progress")
	ErrInvalidFrequency         = errors.New("invalid payroll frequency")
	ErrCannotDeletePayroll      = errors.New("only draft payrolls can be deleted")
	ErrInvalidPolicy            = errors.New("invalid payroll policy")
)

// FailureStage names where a per-employee computation failed.
type FailureStage string

const (
	StageLoad    FailureStage = "load"
	StageResolve FailureStage = "resolve"
	StageCompute FailureStage = "compute"
)

// EntryFailure attributes an error to one employee and one stage of a batch run.
type EntryFailure struct {
	EmployeeID string
	Stage      FailureStage
	Err        error
}

func (f EntryFailure) Error() string {
	return fmt.Sprintf("employee %s: %s: %v", f.EmployeeID, f.Stage, f.Err)
}

func (f EntryFailure) Unwrap() error {
	return f.Err
}
