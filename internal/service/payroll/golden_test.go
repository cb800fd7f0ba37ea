package payroll

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func assertGoldenJSON(t *testing.T, name string, v interface{}) {
	t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}

func TestEntryResponse_Golden(t *testing.T) {
	tests := []struct {
		name     string
		withComp bool
	}{
		{"entry_basic", false},
		{"entry_overtime_and_deduction", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entry = computeExample(t, nil)
			if tt.withComp {
				entry = computeExample(t, exampleComponents(empAliceID))
			}
			entry.ID = "0193a1b2-0000-7000-8000-00000000e001"
			entry.PayrollID = "0193a1b2-0000-7000-8000-00000000b001"
			entry.EmployeeName = strPtr("Alice Pratama")
			entry.EmployeeCode = strPtr("EMP-001")

			assertGoldenJSON(t, tt.name, mapToEntryResponse(entry))
		})
	}
}
