package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

const payrollColumns = `
	id, company_id, pay_period_start, pay_period_end, payroll_frequency,
	total_gross_pay, total_deductions, total_loans, total_net_pay, employee_count,
	status, is_payroll_paid, auto_run, notes, processed_at, paid_at, paid_by,
	created_by, created_at, updated_at
`

const entrySelect = `
	SELECT pe.id, pe.payroll_id, pe.employee_id, pe.company_id,
		pe.total_days, pe.present_days, pe.absent_days, pe.half_days,
		pe.paid_leave_days, pe.unpaid_leave_days, pe.holiday_days, pe.worked_hours, pe.overtime_hours,
		pe.per_day_salary, pe.basic_salary_for_period, pe.absent_day_deduction, pe.half_day_deduction,
		pe.unpaid_leave_deduction, pe.attendance_overtime_amount,
		pe.total_allowances, pe.total_deductions, pe.total_loans, pe.total_manual_overtimes,
		pe.allowance_breakdown, pe.deduction_breakdown, pe.loan_breakdown, pe.overtime_breakdown,
		pe.gross_pay, pe.net_pay, pe.status, pe.paid_at, pe.paid_by, pe.created_at, pe.updated_at,
		e.full_name, e.employee_code
	FROM payroll_entries pe
	LEFT JOIN employees e ON pe.employee_id = e.id
`

// Shared by CreateEntry and UpsertEntry; placeholders match entryArgs.
const entryInsert = `
	INSERT INTO payroll_entries (
		payroll_id, employee_id, company_id,
		total_days, present_days, absent_days, half_days,
		paid_leave_days, unpaid_leave_days, holiday_days, worked_hours, overtime_hours,
		per_day_salary, basic_salary_for_period, absent_day_deduction, half_day_deduction,
		unpaid_leave_deduction, attendance_overtime_amount,
		total_allowances, total_deductions, total_loans, total_manual_overtimes,
		allowance_breakdown, deduction_breakdown, loan_breakdown, overtime_breakdown,
		gross_pay, net_pay, status
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29
	)
`

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func scanPayroll(row pgx.Row) (payroll.Payroll, error) {
	var p payroll.Payroll
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.PayPeriodStart, &p.PayPeriodEnd, &p.Frequency,
		&p.TotalGrossPay, &p.TotalDeductions, &p.TotalLoans, &p.TotalNetPay, &p.EmployeeCount,
		&p.Status, &p.IsPayrollPaid, &p.AutoRun, &p.Notes, &p.ProcessedAt, &p.PaidAt, &p.PaidBy,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanEntry(row pgx.Row) (payroll.Entry, error) {
	var e payroll.Entry
	err := row.Scan(
		&e.ID, &e.PayrollID, &e.EmployeeID, &e.CompanyID,
		&e.TotalDays, &e.PresentDays, &e.AbsentDays, &e.HalfDays,
		&e.PaidLeaveDays, &e.UnpaidLeaveDays, &e.HolidayDays, &e.WorkedHours, &e.OvertimeHours,
		&e.PerDaySalary, &e.BasicSalaryForPeriod, &e.AbsentDayDeduction, &e.HalfDayDeduction,
		&e.UnpaidLeaveDeduction, &e.AttendanceOvertimeAmount,
		&e.TotalAllowances, &e.TotalDeductions, &e.TotalLoans, &e.TotalManualOvertimes,
		&e.AllowanceBreakdown, &e.DeductionBreakdown, &e.LoanBreakdown, &e.OvertimeBreakdown,
		&e.GrossPay, &e.NetPay, &e.Status, &e.PaidAt, &e.PaidBy, &e.CreatedAt, &e.UpdatedAt,
		&e.EmployeeName, &e.EmployeeCode,
	)
	return e, err
}

func entryArgs(e payroll.Entry) []interface{} {
	status := e.Status
	if status == "" {
		status = payroll.EntryStatusPending
	}
	return []interface{}{
		e.PayrollID, e.EmployeeID, e.CompanyID,
		e.TotalDays, e.PresentDays, e.AbsentDays, e.HalfDays,
		e.PaidLeaveDays, e.UnpaidLeaveDays, e.HolidayDays, e.WorkedHours, e.OvertimeHours,
		e.PerDaySalary, e.BasicSalaryForPeriod, e.AbsentDayDeduction, e.HalfDayDeduction,
		e.UnpaidLeaveDeduction, e.AttendanceOvertimeAmount,
		e.TotalAllowances, e.TotalDeductions, e.TotalLoans, e.TotalManualOvertimes,
		e.AllowanceBreakdown, e.DeductionBreakdown, e.LoanBreakdown, e.OvertimeBreakdown,
		e.GrossPay, e.NetPay, status,
	}
}

// ========== BATCHES ==========

// CreatePayroll implements payroll.PayrollRepository.
func (r *payrollRepository) CreatePayroll(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	status := p.Status
	if status == "" {
		status = payroll.PayrollStatusDraft
	}

	query := `
		INSERT INTO payrolls (company_id, pay_period_start, pay_period_end, payroll_frequency, status, auto_run, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + payrollColumns

	created, err := scanPayroll(q.QueryRow(ctx, query,
		p.CompanyID, p.PayPeriodStart, p.PayPeriodEnd, p.Frequency, status, p.AutoRun, p.Notes, p.CreatedBy,
	))
	if err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to create payroll: %w", err)
	}
	return created, nil
}

// GetPayrollByID implements payroll.PayrollRepository.
func (r *payrollRepository) GetPayrollByID(ctx context.Context, id string, companyID string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + ` FROM payrolls WHERE id = $1 AND company_id = $2`

	p, err := scanPayroll(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll by id %s: %w", id, err)
	}
	return p, nil
}

// ListPayrolls implements payroll.PayrollRepository.
func (r *payrollRepository) ListPayrolls(ctx context.Context, companyID string, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payrolls
		WHERE company_id = $1
	`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	// Count query
	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payrolls: %w", err)
	}

	// Sort
	sortColumn := "created_at"
	if validator.IsInSlice(filter.SortBy, payroll.PayrollSortFields) {
		sortColumn = filter.SortBy
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s
		%s
		ORDER BY %s %s, id ASC
		LIMIT $%d OFFSET $%d
	`, payrollColumns, baseQuery, sortColumn, sortOrder, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer rows.Close()

	var payrolls []payroll.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll: %w", err)
		}
		payrolls = append(payrolls, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating payrolls: %w", err)
	}

	return payrolls, totalCount, nil
}

// ListDueAutoRun returns draft auto-run batches whose period ended before asOf, across all companies.
func (r *payrollRepository) ListDueAutoRun(ctx context.Context, asOf time.Time) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + `
		FROM payrolls
		WHERE auto_run = TRUE AND status = $1 AND pay_period_end < $2
		ORDER BY pay_period_end ASC, id ASC
	`

	rows, err := q.Query(ctx, query, payroll.PayrollStatusDraft, payroll.DateOnly(asOf))
	if err != nil {
		return nil, fmt.Errorf("failed to list due auto-run payrolls: %w", err)
	}
	defer rows.Close()

	var payrolls []payroll.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll: %w", err)
		}
		payrolls = append(payrolls, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payrolls: %w", err)
	}

	return payrolls, nil
}

func (r *payrollRepository) DisableAutoRun(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE payrolls SET auto_run = FALSE, updated_at = NOW() WHERE id = $1 AND company_id = $2`

	tag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to disable payroll auto-run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

// UpdatePayrollStatus implements payroll.PayrollRepository. processed_at is stamped on completion.
func (r *payrollRepository) UpdatePayrollStatus(ctx context.Context, id string, companyID string, status payroll.PayrollStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payrolls
		SET status = $3::varchar,
			processed_at = CASE WHEN $3::varchar = 'completed' THEN NOW() ELSE processed_at END,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query, id, companyID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update payroll status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

// RecalculateTotals rewrites the batch totals from its entries.
func (r *payrollRepository) RecalculateTotals(ctx context.Context, id string, companyID string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH totals AS (
			SELECT COALESCE(SUM(gross_pay), 0) AS gross,
				COALESCE(SUM(total_deductions), 0) AS deducted,
				COALESCE(SUM(total_loans), 0) AS loans,
				COALESCE(SUM(net_pay), 0) AS net,
				COUNT(*) AS entry_count
			FROM payroll_entries
			WHERE payroll_id = $1 AND company_id = $2
		)
		UPDATE payrolls
		SET total_gross_pay = totals.gross,
			total_deductions = totals.deducted,
			total_loans = totals.loans,
			total_net_pay = totals.net,
			employee_count = totals.entry_count,
			updated_at = NOW()
		FROM totals
		WHERE payrolls.id = $1 AND payrolls.company_id = $2
		RETURNING ` + payrollColumns

	p, err := scanPayroll(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to recalculate payroll totals: %w", err)
	}
	return p, nil
}

// MarkPayrollPaid implements payroll.PayrollRepository. Only completed batches move to paid.
func (r *payrollRepository) MarkPayrollPaid(ctx context.Context, id string, companyID string, paidBy string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payrolls
		SET status = $3, is_payroll_paid = TRUE, paid_at = NOW(), paid_by = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = $5
		RETURNING ` + payrollColumns

	p, err := scanPayroll(q.QueryRow(ctx, query, id, companyID, payroll.PayrollStatusPaid, paidBy, payroll.PayrollStatusCompleted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrInvalidStatusTransition
		}
		return payroll.Payroll{}, fmt.Errorf("failed to mark payroll paid: %w", err)
	}
	return p, nil
}

// DeletePayroll implements payroll.PayrollRepository. Entries go with the batch via ON DELETE CASCADE.
func (r *payrollRepository) DeletePayroll(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payrolls WHERE id = $1 AND company_id = $2 AND status = $3`,
		id, companyID, payroll.PayrollStatusDraft)
	if err != nil {
		return fmt.Errorf("failed to delete payroll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

// ========== ENTRIES ==========

func (r *payrollRepository) DeleteEntriesByPayrollID(ctx context.Context, payrollID string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payroll_entries WHERE payroll_id = $1 AND company_id = $2`, payrollID, companyID); err != nil {
		return fmt.Errorf("failed to delete payroll entries: %w", err)
	}
	return nil
}

// CreateEntry implements payroll.PayrollRepository.
func (r *payrollRepository) CreateEntry(ctx context.Context, entry payroll.Entry) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := entryInsert + ` RETURNING id, status, created_at, updated_at`

	err := q.QueryRow(ctx, query, entryArgs(entry)...).Scan(&entry.ID, &entry.Status, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to create payroll entry for employee %s: %w", entry.EmployeeID, err)
	}
	return entry, nil
}

// UpsertEntry replaces the entry for (payroll_id, employee_id), resetting payment state.
func (r *payrollRepository) UpsertEntry(ctx context.Context, entry payroll.Entry) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := entryInsert + `
		ON CONFLICT (payroll_id, employee_id) DO UPDATE SET
			total_days = EXCLUDED.total_days,
			present_days = EXCLUDED.present_days,
			absent_days = EXCLUDED.absent_days,
			half_days = EXCLUDED.half_days,
			paid_leave_days = EXCLUDED.paid_leave_days,
			unpaid_leave_days = EXCLUDED.unpaid_leave_days,
			holiday_days = EXCLUDED.holiday_days,
			worked_hours = EXCLUDED.worked_hours,
			overtime_hours = EXCLUDED.overtime_hours,
			per_day_salary = EXCLUDED.per_day_salary,
			basic_salary_for_period = EXCLUDED.basic_salary_for_period,
			absent_day_deduction = EXCLUDED.absent_day_deduction,
			half_day_deduction = EXCLUDED.half_day_deduction,
			unpaid_leave_deduction = EXCLUDED.unpaid_leave_deduction,
			attendance_overtime_amount = EXCLUDED.attendance_overtime_amount,
			total_allowances = EXCLUDED.total_allowances,
			total_deductions = EXCLUDED.total_deductions,
			total_loans = EXCLUDED.total_loans,
			total_manual_overtimes = EXCLUDED.total_manual_overtimes,
			allowance_breakdown = EXCLUDED.allowance_breakdown,
			deduction_breakdown = EXCLUDED.deduction_breakdown,
			loan_breakdown = EXCLUDED.loan_breakdown,
			overtime_breakdown = EXCLUDED.overtime_breakdown,
			gross_pay = EXCLUDED.gross_pay,
			net_pay = EXCLUDED.net_pay,
			status = EXCLUDED.status,
			paid_at = NULL,
			paid_by = NULL,
			updated_at = NOW()
		RETURNING id, status, created_at, updated_at
	`

	entry.Status = payroll.EntryStatusPending
	entry.PaidAt = nil
	entry.PaidBy = nil

	err := q.QueryRow(ctx, query, entryArgs(entry)...).Scan(&entry.ID, &entry.Status, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to upsert payroll entry for employee %s: %w", entry.EmployeeID, err)
	}
	return entry, nil
}

// GetEntryByID implements payroll.PayrollRepository.
func (r *payrollRepository) GetEntryByID(ctx context.Context, id string, companyID string) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEntry(q.QueryRow(ctx, entrySelect+` WHERE pe.id = $1 AND pe.company_id = $2`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Entry{}, payroll.ErrEntryNotFound
		}
		return payroll.Entry{}, fmt.Errorf("failed to get payroll entry by id %s: %w", id, err)
	}
	return e, nil
}

// ListEntriesByPayrollID implements payroll.PayrollRepository.
func (r *payrollRepository) ListEntriesByPayrollID(ctx context.Context, payrollID string, companyID string) ([]payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := entrySelect + `
		WHERE pe.payroll_id = $1 AND pe.company_id = $2
		ORDER BY e.employee_code ASC, pe.id ASC
	`

	rows, err := q.Query(ctx, query, payrollID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll entries: %w", err)
	}
	defer rows.Close()

	var entries []payroll.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payroll entries: %w", err)
	}

	return entries, nil
}

// MarkEntryPaid implements payroll.PayrollRepository.
func (r *payrollRepository) MarkEntryPaid(ctx context.Context, id string, companyID string, paidBy string) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_entries
		SET status = $3, paid_at = NOW(), paid_by = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = $5
	`

	tag, err := q.Exec(ctx, query, id, companyID, payroll.EntryStatusPaid, paidBy, payroll.EntryStatusPending)
	if err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to mark payroll entry paid: %w", err)
	}

	entry, err := r.GetEntryByID(ctx, id, companyID)
	if err != nil {
		return payroll.Entry{}, err
	}
	if tag.RowsAffected() == 0 {
		return payroll.Entry{}, payroll.ErrEntryAlreadyPaid
	}
	return entry, nil
}

// CountUnpaidEntries implements payroll.PayrollRepository.
func (r *payrollRepository) CountUnpaidEntries(ctx context.Context, payrollID string, companyID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM payroll_entries WHERE payroll_id = $1 AND company_id = $2 AND status <> $3`,
		payrollID, companyID, payroll.EntryStatusPaid,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unpaid payroll entries: %w", err)
	}
	return count, nil
}
