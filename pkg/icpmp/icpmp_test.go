package icpmp

import (
	"testing"

	"github.com/paiban/roster/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeePool(n int, scheme model.Scheme) []*model.Employee {
	pool := make([]*model.Employee, n)
	for i := 0; i < n; i++ {
		pool[i] = &model.Employee{
			EmployeeID:        string(rune('A' + i)),
			Scheme:            scheme,
			TotalWorkingHours: float64(i),
		}
	}
	return pool
}

// Scenario D: 7-day pattern DDDDDOO, HC=5, 31-day horizon.
func TestRun_ScenarioD_SevenDayPattern(t *testing.T) {
	pool := employeePool(10, model.SchemeA)

	in := Input{
		Requirement: model.Requirement{
			RequirementID: "R-D",
			Headcount:     5,
			WorkPattern:   model.WorkPattern{"D", "D", "D", "D", "D", "O", "O"},
		},
		Employees:       pool,
		CalendarDays:    31,
		LongestShiftHrs: 12,
	}

	out := Run(in)
	require.Empty(t, out.Warning)
	assert.Equal(t, 7, out.N)
	assert.Len(t, out.Offsets, 7)

	seen := map[int]bool{}
	for _, o := range out.Offsets {
		seen[o] = true
	}
	for v := 0; v < 7; v++ {
		assert.True(t, seen[v], "offset %d should appear at least once", v)
	}

	assert.Len(t, out.Employees, 7)
	assert.Equal(t, 0, out.TotalUSlots, "an offset set spanning the full 7-day cycle at HC=5 leaves no day over-covered")
}

func TestRun_InsufficientEmployeesWarns(t *testing.T) {
	pool := employeePool(2, model.SchemeA)

	in := Input{
		Requirement: model.Requirement{
			RequirementID: "R-small-pool",
			Headcount:     5,
			WorkPattern:   model.WorkPattern{"D", "D", "D", "D", "D", "O", "O"},
		},
		Employees:       pool,
		CalendarDays:    31,
		LongestShiftHrs: 12,
	}

	out := Run(in)
	assert.NotEmpty(t, out.Warning)
	assert.Len(t, out.Employees, 2)
}

func TestRun_OwnedEmployeesExcluded(t *testing.T) {
	pool := employeePool(3, model.SchemeA)
	pool[0].ClaimForRequirement("other-req")

	in := Input{
		Requirement: model.Requirement{
			RequirementID: "R-own",
			Headcount:     1,
			WorkPattern:   model.WorkPattern{"D", "O"},
		},
		Employees:       pool,
		CalendarDays:    14,
		LongestShiftHrs: 8,
	}

	out := Run(in)
	for _, sel := range out.Employees {
		assert.NotEqual(t, pool[0].EmployeeID, sel.EmployeeID)
	}
}

func TestRun_EmptyPatternWarns(t *testing.T) {
	in := Input{
		Requirement: model.Requirement{RequirementID: "R-empty", Headcount: 1, WorkPattern: model.WorkPattern{"O", "O"}},
		Employees:   employeePool(3, model.SchemeA),
	}
	out := Run(in)
	assert.NotEmpty(t, out.Warning)
}
