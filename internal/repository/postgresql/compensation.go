package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
)

// Every component query projects the same column list so one scanner serves all four kinds.
// $1 employee_id, $2 company_id, $3 period start, $4 period end.
const (
	allowanceQuery = `
		SELECT a.id, a.employee_id, a.company_id, a.amount, 0::numeric, 0::numeric,
			a.allowance_type_id, t.name, a.description, NULL::date, NULL::date, a.created_at
		FROM allowances a
		LEFT JOIN allowance_types t ON a.allowance_type_id = t.id
		WHERE a.employee_id = $1 AND a.company_id = $2
			AND a.created_at::date BETWEEN $3 AND $4
	`

	deductionQuery = `
		SELECT d.id, d.employee_id, d.company_id, d.amount, 0::numeric, 0::numeric,
			d.deduction_type_id, t.name, d.description, NULL::date, NULL::date, d.created_at
		FROM deductions d
		LEFT JOIN deduction_types t ON d.deduction_type_id = t.id
		WHERE d.employee_id = $1 AND d.company_id = $2
			AND d.created_at::date BETWEEN $3 AND $4
	`

	loanQuery = `
		SELECT l.id, l.employee_id, l.company_id, l.amount, 0::numeric, 0::numeric,
			l.loan_type_id, t.name, l.description, l.start_date, l.end_date, l.created_at
		FROM loans l
		LEFT JOIN loan_types t ON l.loan_type_id = t.id
		WHERE l.employee_id = $1 AND l.company_id = $2
			AND l.start_date <= $4 AND (l.end_date IS NULL OR l.end_date >= $3)
	`

	overtimeQuery = `
		SELECT o.id, o.employee_id, o.company_id, COALESCE(o.amount, 0), o.hours, o.rate,
			NULL::uuid, NULL::varchar, o.description, NULL::date, NULL::date, o.created_at
		FROM overtimes o
		WHERE o.employee_id = $1 AND o.company_id = $2
			AND o.created_at::date BETWEEN $3 AND $4
	`
)

type compensationStore struct {
	db    *database.DB
	kind  compensation.Kind
	query string
}

func NewAllowanceStore(db *database.DB) compensation.Store {
	return &compensationStore{db: db, kind: compensation.KindAllowance, query: allowanceQuery}
}

func NewDeductionStore(db *database.DB) compensation.Store {
	return &compensationStore{db: db, kind: compensation.KindDeduction, query: deductionQuery}
}

func NewLoanStore(db *database.DB) compensation.Store {
	return &compensationStore{db: db, kind: compensation.KindLoan, query: loanQuery}
}

func NewOvertimeStore(db *database.DB) compensation.Store {
	return &compensationStore{db: db, kind: compensation.KindManualOvertime, query: overtimeQuery}
}

// NewCompensationStores returns the four stores in summation order.
func NewCompensationStores(db *database.DB) []compensation.Store {
	return []compensation.Store{
		NewAllowanceStore(db),
		NewDeductionStore(db),
		NewLoanStore(db),
		NewOvertimeStore(db),
	}
}

func (s *compensationStore) Kind() compensation.Kind {
	return s.kind
}

// ListByEmployeeAndPeriod implements compensation.Store.
func (s *compensationStore) ListByEmployeeAndPeriod(ctx context.Context, employeeID string, companyID string, period compensation.Period) ([]compensation.Component, error) {
	q := GetQuerier(ctx, s.db)

	rows, err := q.Query(ctx, s.query+" ORDER BY created_at ASC, id ASC", employeeID, companyID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s components: %w", s.kind, err)
	}
	defer rows.Close()

	var components []compensation.Component
	for rows.Next() {
		c := compensation.Component{Kind: s.kind}
		err := rows.Scan(
			&c.ID, &c.EmployeeID, &c.CompanyID, &c.Amount, &c.Hours, &c.Rate,
			&c.CategoryID, &c.CategoryName, &c.Description, &c.StartDate, &c.EndDate, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s component: %w", s.kind, err)
		}
		components = append(components, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s components: %w", s.kind, err)
	}

	return components, nil
}
