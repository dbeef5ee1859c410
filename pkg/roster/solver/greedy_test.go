package solver

import (
	"context"
	"testing"
	"time"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
	"github.com/paiban/roster/pkg/roster/constraint/builtin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkDaySlot(id, reqID, date, shiftCode string, startHour, endHour int) model.Slot {
	return model.Slot{
		SlotID:        id,
		RequirementID: reqID,
		Date:          date,
		ShiftCode:     shiftCode,
		Start:         time.Date(2026, 1, parseDay(date), startHour, 0, 0, 0, time.UTC),
		End:           time.Date(2026, 1, parseDay(date), endHour, 0, 0, 0, time.UTC),
	}
}

func parseDay(date string) int {
	d, _ := model.ParseDate(date)
	return d.Day()
}

func TestGreedySolver_FillsHeadcountAndPrefersLeastLoadedEmployee(t *testing.T) {
	requirements := map[string]model.Requirement{
		"R1": {RequirementID: "R1", Headcount: 1},
	}
	emp1 := &model.Employee{EmployeeID: "E1", Scheme: model.SchemeA}
	emp2 := &model.Employee{EmployeeID: "E2", Scheme: model.SchemeA}

	slots := []model.Slot{
		mkDaySlot("S1", "R1", "2026-01-05", "D", 8, 16),
		mkDaySlot("S2", "R1", "2026-01-06", "D", 8, 16),
	}

	m := BuildModel(slots, []*model.Employee{emp1, emp2})
	require.Len(t, m.Pairs, 4)

	manager := builtin.BuildManager(nil, nil, builtin.DefaultBuildOptions())
	evalCtx := constraint.NewContext(model.PlanningHorizon{StartDate: "2026-01-01", EndDate: "2026-01-31"},
		[]*model.Employee{emp1, emp2}, requirements)

	solver := NewGreedySolver(manager)
	result, err := solver.Solve(context.Background(), evalCtx, m, requirements)
	require.NoError(t, err)

	require.Len(t, result.Assignments, 2)
	assert.Equal(t, 2, result.Statistics.TotalSlots)
	assert.Equal(t, 2, result.Statistics.AssignedSlots)
	assert.Equal(t, 100.0, result.Statistics.CoverageRate)

	assigned := map[string]bool{}
	for _, a := range result.Assignments {
		assigned[a.EmployeeID] = true
		assert.Equal(t, model.StatusAssigned, a.Status)
	}
	assert.Len(t, assigned, 2, "solver should spread the two slots across both employees rather than stacking one")
}

func TestGreedySolver_SkipsIneligibleCandidates(t *testing.T) {
	requirements := map[string]model.Requirement{
		"R1": {RequirementID: "R1", Headcount: 1, Gender: "F"},
	}
	male := &model.Employee{EmployeeID: "E1", Scheme: model.SchemeA, Gender: "M"}

	slot := mkDaySlot("S1", "R1", "2026-01-05", "D", 8, 16)
	slot.Gender = "F"

	m := BuildModel([]model.Slot{slot}, []*model.Employee{male})
	assert.Empty(t, m.Pairs, "male employee should not be admitted against a female-only slot")

	manager := builtin.BuildManager(nil, nil, builtin.DefaultBuildOptions())
	evalCtx := constraint.NewContext(model.PlanningHorizon{StartDate: "2026-01-01", EndDate: "2026-01-31"},
		[]*model.Employee{male}, requirements)

	solver := NewGreedySolver(manager)
	result, err := solver.Solve(context.Background(), evalCtx, m, requirements)
	require.NoError(t, err)
	assert.Empty(t, result.Assignments)
}
