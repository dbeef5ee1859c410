package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
	"github.com/paiban/roster/pkg/roster/constraint/builtin"
	"github.com/paiban/roster/pkg/roster/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkSlot(id, reqID, date, shiftCode string, day, startHour, endHour int) model.Slot {
	return model.Slot{
		SlotID:        id,
		RequirementID: reqID,
		Date:          date,
		ShiftCode:     shiftCode,
		Start:         time.Date(2026, 1, day, startHour, 0, 0, 0, time.UTC),
		End:           time.Date(2026, 1, day, endHour, 0, 0, 0, time.UTC),
	}
}

func TestOptimizer_NeverWorsensThePenalty(t *testing.T) {
	requirements := map[string]model.Requirement{
		"R1": {RequirementID: "R1", Headcount: 1},
	}
	emp1 := &model.Employee{EmployeeID: "E1", Scheme: model.SchemeA}
	emp2 := &model.Employee{EmployeeID: "E2", Scheme: model.SchemeA}
	employees := []*model.Employee{emp1, emp2}

	slots := []model.Slot{
		mkSlot("S1", "R1", "2026-01-05", "D", 5, 8, 16),
		mkSlot("S2", "R1", "2026-01-06", "D", 6, 8, 16),
		mkSlot("S3", "R1", "2026-01-07", "D", 7, 8, 16),
		mkSlot("S4", "R1", "2026-01-08", "D", 8, 8, 16),
	}

	m := solver.BuildModel(slots, employees)
	manager := builtin.BuildManager(nil, nil, builtin.DefaultBuildOptions())

	evalCtx := constraint.NewContext(model.PlanningHorizon{StartDate: "2026-01-01", EndDate: "2026-01-31"}, employees, requirements)
	greedy := solver.NewGreedySolver(manager)
	solved, err := greedy.Solve(context.Background(), evalCtx, m, requirements)
	require.NoError(t, err)
	require.NotEmpty(t, solved.Assignments)

	cfg := DefaultConfig()
	cfg.MaxIterations = 25
	cfg.MaxTime = 2 * time.Second
	cfg.NeighborhoodSize = 5

	opt := NewOptimizer(manager, cfg)
	result := opt.Optimize(context.Background(), evalCtx, m)

	assert.LessOrEqual(t, result.FinalPenalty, result.InitialPenalty)
	assert.NotNil(t, result.ConstraintResult)
	assert.GreaterOrEqual(t, result.Iterations, 0)
}

func TestTabuList_EvictsOldestWhenFull(t *testing.T) {
	tl := NewTabuList(2)
	tl.Add(1)
	tl.Add(2)
	assert.True(t, tl.Contains(1))
	tl.Add(3)
	assert.False(t, tl.Contains(1), "oldest entry should be evicted once the list is full")
	assert.True(t, tl.Contains(2))
	assert.True(t, tl.Contains(3))
}
