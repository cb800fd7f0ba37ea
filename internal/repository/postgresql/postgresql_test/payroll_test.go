package postgresql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBatch(t *testing.T, repo payroll.PayrollRepository, autoRun bool) payroll.Payroll {
	t.Helper()
	createdBy := "user-1"
	p, err := repo.CreatePayroll(context.Background(), payroll.Payroll{
		CompanyID:      testCompanyID,
		PayPeriodStart: day("2025-02-03"),
		PayPeriodEnd:   day("2025-03-02"),
		Frequency:      payroll.FrequencyMonthly,
		AutoRun:        autoRun,
		CreatedBy:      &createdBy,
	})
	require.NoError(t, err)
	return p
}

func sampleEntry(payrollID, employeeID string, gross, deductions, loans int64) payroll.Entry {
	category := "Health insurance"
	return payroll.Entry{
		PayrollID:            payrollID,
		EmployeeID:           employeeID,
		CompanyID:            testCompanyID,
		TotalDays:            28,
		PresentDays:          20,
		HolidayDays:          8,
		WorkedHours:          decimal.NewFromInt(160),
		PerDaySalary:         decimal.NewFromInt(150),
		BasicSalaryForPeriod: decimal.NewFromInt(gross),
		TotalDeductions:      decimal.NewFromInt(deductions),
		TotalLoans:           decimal.NewFromInt(loans),
		DeductionBreakdown: payroll.Breakdown{
			{Type: compensation.KindDeduction, Category: &category, Amount: decimal.NewFromInt(deductions)},
		},
		GrossPay: decimal.NewFromInt(gross),
		NetPay:   decimal.NewFromInt(gross - deductions - loans),
	}
}

func TestPayrollRepository_BatchLifecycle(t *testing.T) {
	setup := setupTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(setup.DB)

	aliceID := seedEmployee(t, setup, "EMP-001", "Alice", "active", "3000")
	budiID := seedEmployee(t, setup, "EMP-002", "Budi", "active", "2500")

	p := newBatch(t, repo, false)
	assert.Equal(t, payroll.PayrollStatusDraft, p.Status)
	assert.True(t, p.TotalNetPay.IsZero())

	_, err := repo.CreateEntry(ctx, sampleEntry(p.ID, aliceID, 3000, 100, 0))
	require.NoError(t, err)
	_, err = repo.CreateEntry(ctx, sampleEntry(p.ID, budiID, 2500, 50, 200))
	require.NoError(t, err)

	t.Run("duplicate employee entry is rejected", func(t *testing.T) {
		_, err := repo.CreateEntry(ctx, sampleEntry(p.ID, aliceID, 1, 0, 0))
		assert.Error(t, err)
	})

	t.Run("totals match entries", func(t *testing.T) {
		totals, err := repo.RecalculateTotals(ctx, p.ID, testCompanyID)
		require.NoError(t, err)
		assert.True(t, totals.TotalGrossPay.Equal(decimal.NewFromInt(5500)))
		assert.True(t, totals.TotalDeductions.Equal(decimal.NewFromInt(150)))
		assert.True(t, totals.TotalLoans.Equal(decimal.NewFromInt(200)))
		assert.True(t, totals.TotalNetPay.Equal(decimal.NewFromInt(5150)))
		assert.Equal(t, 2, totals.EmployeeCount)
	})

	t.Run("entries ordered by employee code with breakdown", func(t *testing.T) {
		entries, err := repo.ListEntriesByPayrollID(ctx, p.ID, testCompanyID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.NotNil(t, entries[0].EmployeeCode)
		assert.Equal(t, "EMP-001", *entries[0].EmployeeCode)
		require.Len(t, entries[0].DeductionBreakdown, 1)
		assert.Equal(t, compensation.KindDeduction, entries[0].DeductionBreakdown[0].Type)
		assert.NotNil(t, entries[0].AllowanceBreakdown)
		assert.Empty(t, entries[0].AllowanceBreakdown)
	})

	t.Run("upsert replaces existing entry", func(t *testing.T) {
		updated, err := repo.UpsertEntry(ctx, sampleEntry(p.ID, aliceID, 3100, 100, 0))
		require.NoError(t, err)
		assert.Equal(t, payroll.EntryStatusPending, updated.Status)

		got, err := repo.GetEntryByID(ctx, updated.ID, testCompanyID)
		require.NoError(t, err)
		assert.True(t, got.GrossPay.Equal(decimal.NewFromInt(3100)))

		count, err := repo.CountUnpaidEntries(ctx, p.ID, testCompanyID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("mark paid", func(t *testing.T) {
		require.NoError(t, repo.UpdatePayrollStatus(ctx, p.ID, testCompanyID, payroll.PayrollStatusProcessing))
		require.NoError(t, repo.UpdatePayrollStatus(ctx, p.ID, testCompanyID, payroll.PayrollStatusCompleted))

		completed, err := repo.GetPayrollByID(ctx, p.ID, testCompanyID)
		require.NoError(t, err)
		assert.NotNil(t, completed.ProcessedAt)

		entries, err := repo.ListEntriesByPayrollID(ctx, p.ID, testCompanyID)
		require.NoError(t, err)
		for _, e := range entries {
			paid, err := repo.MarkEntryPaid(ctx, e.ID, testCompanyID, "user-1")
			require.NoError(t, err)
			assert.Equal(t, payroll.EntryStatusPaid, paid.Status)
			assert.NotNil(t, paid.PaidAt)
		}

		_, err = repo.MarkEntryPaid(ctx, entries[0].ID, testCompanyID, "user-1")
		assert.ErrorIs(t, err, payroll.ErrEntryAlreadyPaid)

		paid, err := repo.MarkPayrollPaid(ctx, p.ID, testCompanyID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, payroll.PayrollStatusPaid, paid.Status)
		assert.True(t, paid.IsPayrollPaid)

		_, err = repo.MarkPayrollPaid(ctx, p.ID, testCompanyID, "user-1")
		assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition)
	})

	t.Run("paid batch cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, repo.DeletePayroll(ctx, p.ID, testCompanyID), payroll.ErrPayrollNotFound)
	})
}

func TestPayrollRepository_ListAndDue(t *testing.T) {
	setup := setupTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(setup.DB)

	manual := newBatch(t, repo, false)
	auto := newBatch(t, repo, true)

	t.Run("list with status filter", func(t *testing.T) {
		draft := string(payroll.PayrollStatusDraft)
		list, total, err := repo.ListPayrolls(ctx, testCompanyID, payroll.PayrollFilter{Status: &draft, Limit: 1, Page: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, list, 1)
	})

	t.Run("due auto-run", func(t *testing.T) {
		due, err := repo.ListDueAutoRun(ctx, day("2025-03-03"))
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, auto.ID, due[0].ID)

		due, err = repo.ListDueAutoRun(ctx, day("2025-03-02"))
		require.NoError(t, err)
		assert.Empty(t, due)
	})

	t.Run("disabled auto-run is no longer due", func(t *testing.T) {
		require.NoError(t, repo.DisableAutoRun(ctx, auto.ID, testCompanyID))

		due, err := repo.ListDueAutoRun(ctx, day("2025-03-03"))
		require.NoError(t, err)
		assert.Empty(t, due)

		got, err := repo.GetPayrollByID(ctx, auto.ID, testCompanyID)
		require.NoError(t, err)
		assert.False(t, got.AutoRun)
		assert.Equal(t, payroll.PayrollStatusDraft, got.Status)
	})

	t.Run("delete draft", func(t *testing.T) {
		require.NoError(t, repo.DeletePayroll(ctx, manual.ID, testCompanyID))
		_, err := repo.GetPayrollByID(ctx, manual.ID, testCompanyID)
		assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)
	})
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	setup := setupTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	aliceID := seedEmployee(t, setup, "EMP-001", "Alice", "active", "3000")
	p := newBatch(t, repo, false)
	boom := errors.New("boom")

	err := tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := repo.CreateEntry(txCtx, sampleEntry(p.ID, aliceID, 3000, 0, 0)); err != nil {
			return err
		}
		if err := repo.UpdatePayrollStatus(txCtx, p.ID, testCompanyID, payroll.PayrollStatusProcessing); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	entries, err := repo.ListEntriesByPayrollID(ctx, p.ID, testCompanyID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	got, err := repo.GetPayrollByID(ctx, p.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusDraft, got.Status)
}
