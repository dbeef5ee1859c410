package output

import (
	"testing"
	"time"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_SynthesizesOffDaysAndAggregatesHours(t *testing.T) {
	horizon := model.PlanningHorizon{StartDate: "2026-01-05", EndDate: "2026-01-07"}
	requirements := map[string]model.Requirement{
		"R1": {RequirementID: "R1", Headcount: 1, PatternStartDate: "2026-01-05"},
	}
	emp := &model.Employee{
		EmployeeID:  "E1",
		Scheme:      model.SchemeA,
		WorkPattern: model.WorkPattern{"D", "O"},
	}
	emp.ClaimForRequirement("R1")

	slots := []model.Slot{
		{SlotID: "S1", RequirementID: "R1", Date: "2026-01-05", ShiftCode: "D", DayType: model.DayTypeNormal},
	}
	assignments := []model.Assignment{
		{
			SlotID: "S1", EmployeeID: "E1", Status: model.StatusAssigned, ShiftCode: "D",
			Start: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 1, 5, 16, 0, 0, 0, time.UTC),
			Hours: model.Hours{Gross: 8, Normal: 8, Paid: 8},
		},
	}

	result := &constraint.Result{IsValid: true, Score: 95}

	out, err := Build("run-1", time.Now(), time.Now(), "FEASIBLE", result, assignments, slots,
		[]*model.Employee{emp}, requirements, nil, horizon, nil, BuildOptions{SolverVersion: "test"})
	require.NoError(t, err)

	require.Len(t, out.EmployeeRoster, 1)
	days := out.EmployeeRoster[0].DailyStatus
	require.Len(t, days, 3)
	assert.Equal(t, model.StatusAssigned, days[0].Status)
	assert.Equal(t, model.StatusOffDay, days[1].Status, "day 2 of a D-O pattern should synthesise as an off day")
	assert.Equal(t, model.StatusUnassigned, days[2].Status, "day 3 rolls the D-O pattern back to a work day with no assignment")

	assert.Equal(t, 1, out.RosterSummary.TotalAssigned)
	assert.Equal(t, 1, out.RosterSummary.TotalOffDay)

	require.Contains(t, out.Meta.EmployeeHours, "E1")
	assert.Equal(t, 8.0, out.Meta.EmployeeHours["E1"].WeeklyNormal["2026-W02"])

	require.Len(t, out.Assignments, 1)
	assert.Equal(t, "E1", out.Assignments[0].EmployeeID)
}

func TestBuild_EmployeeWithoutWorkPatternIsNotUsed(t *testing.T) {
	horizon := model.PlanningHorizon{StartDate: "2026-01-05", EndDate: "2026-01-05"}
	emp := &model.Employee{EmployeeID: "E2", Scheme: model.SchemeA}

	out, err := Build("run-2", time.Now(), time.Now(), "FEASIBLE", &constraint.Result{IsValid: true},
		nil, nil, []*model.Employee{emp}, nil, nil, horizon, nil, BuildOptions{})
	require.NoError(t, err)

	require.Len(t, out.EmployeeRoster, 1)
	assert.Equal(t, model.StatusNotUsed, out.EmployeeRoster[0].DailyStatus[0].Status)
	assert.Equal(t, 1, out.RosterSummary.TotalNotUsed)
}

func TestInputHash_StripsSolverInternalKeysAndIsStable(t *testing.T) {
	input := map[string]interface{}{
		"planningHorizon": map[string]interface{}{"startDate": "2026-01-01"},
		"slots":           []interface{}{"scratch"},
		"x":               "internal",
	}
	h1, err := InputHash(input)
	require.NoError(t, err)

	reordered := map[string]interface{}{
		"x":               "internal",
		"slots":           []interface{}{"scratch"},
		"planningHorizon": map[string]interface{}{"startDate": "2026-01-01"},
	}
	h2, err := InputHash(reordered)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	withoutStrippedKeys := map[string]interface{}{
		"planningHorizon": map[string]interface{}{"startDate": "2026-01-01"},
	}
	h3, err := InputHash(withoutStrippedKeys)
	require.NoError(t, err)
	assert.Equal(t, h1, h3, "stripped keys must not affect the hash")
}
