package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testCompanyID = "8f0c9a52-6a44-4c3f-9d55-2f6c1d0e7a10"

func seedEmployee(t *testing.T, setup *TestDatabaseSetup, code, name, status string, basic string) string {
	t.Helper()
	var id string
	err := setup.DB.QueryRow(context.Background(), `
		INSERT INTO employees (company_id, employee_code, full_name, pay_basis, basic_salary, hours_per_day, days_per_week, employment_status)
		VALUES ($1, $2, $3, 'monthly', $4::numeric, 8, 5, $5)
		RETURNING id
	`, testCompanyID, code, name, basic, status).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedAttendance(t *testing.T, setup *TestDatabaseSetup, employeeID string, date time.Time, status string, hours, overtime string) {
	t.Helper()
	_, err := setup.DB.Exec(context.Background(), `
		INSERT INTO attendances (employee_id, company_id, date, total_hours, overtime_hours, status)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6)
	`, employeeID, testCompanyID, date, hours, overtime, status)
	require.NoError(t, err)
}

func seedLeave(t *testing.T, setup *TestDatabaseSetup, employeeID, typeName string, paid bool, start, end time.Time, status string) {
	t.Helper()
	ctx := context.Background()

	var typeID string
	err := setup.DB.QueryRow(ctx, `
		INSERT INTO leave_types (company_id, name, is_paid) VALUES ($1, $2, $3) RETURNING id
	`, testCompanyID, typeName, paid).Scan(&typeID)
	require.NoError(t, err)

	_, err = setup.DB.Exec(ctx, `
		INSERT INTO leave_requests (employee_id, company_id, leave_type_id, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, employeeID, testCompanyID, typeID, start, end, status)
	require.NoError(t, err)
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
