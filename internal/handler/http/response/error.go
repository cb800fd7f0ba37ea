package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/auth"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrCompanyIDRequired):
		Unauthorized(w, "Company context is missing from token")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Payroll not found
	case errors.Is(err, payroll.ErrPayrollNotFound):
		NotFound(w, CodePayrollNotFound, "Payroll not found")
	case errors.Is(err, payroll.ErrEntryNotFound):
		NotFound(w, CodeEntryNotFound, "Payroll entry not found")
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, CodeEmployeeNotFound, "Employee not found")

	// Payroll state conflicts
	case errors.Is(err, payroll.ErrImmutableBatch):
		Conflict(w, CodeImmutableBatch, "Payroll is completed or paid and can no longer change")
	case errors.Is(err, payroll.ErrBatchRunInProgress):
		Conflict(w, CodeRunInProgress, "Payroll run already in progress")
	case errors.Is(err, payroll.ErrEntryAlreadyPaid):
		Conflict(w, CodeEntryAlreadyPaid, "Payroll entry already paid")
	case errors.Is(err, payroll.ErrIncompletePayment):
		Conflict(w, CodeIncompletePayment, "Payroll has unpaid entries")
	case errors.Is(err, payroll.ErrInvalidStatusTransition):
		Conflict(w, CodeInvalidStatus, err.Error())
	case errors.Is(err, payroll.ErrCannotDeletePayroll):
		Conflict(w, CodePayrollNotDeletable, "Only draft payrolls can be deleted")

	case errors.Is(err, payroll.ErrMissingCompensationBasis):
		Unprocessable(w, CodeMissingCompensationBase, "Employee has no basic salary or hourly rate configured")

	case errors.Is(err, payroll.ErrInvalidRange):
		BadRequest(w, "Invalid pay period range", nil)
	case errors.Is(err, payroll.ErrInvalidFrequency):
		BadRequest(w, "Invalid payroll frequency", nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
