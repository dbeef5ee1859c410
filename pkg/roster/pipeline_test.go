package roster

import (
	"context"
	"testing"
	"time"

	"github.com/paiban/roster/pkg/model"
	"github.com/stretchr/testify/require"
)

func testRequest() *model.RosterRequest {
	return &model.RosterRequest{
		PlanningHorizon: model.PlanningHorizon{StartDate: "2026-01-05", EndDate: "2026-01-06"},
		Employees: []model.Employee{
			{EmployeeID: "E1", Scheme: model.SchemeA, WorkPattern: model.WorkPattern{"D", "O"}},
			{EmployeeID: "E2", Scheme: model.SchemeA, WorkPattern: model.WorkPattern{"D", "O"}},
		},
		DemandItems: []model.DemandItem{
			{
				DemandID:   "D1",
				LocationID: "L1",
				OUID:       "OU1",
				Shifts: []model.ShiftSet{
					{ShiftDetails: []model.ShiftDetails{{ShiftCode: "D", Start: "08:00", End: "16:00"}}},
				},
				Requirements: []model.Requirement{
					{
						RequirementID:    "R1",
						Headcount:        1,
						WorkPattern:      model.WorkPattern{"D", "O"},
						PatternStartDate: "2026-01-05",
					},
				},
			},
		},
	}
}

func TestSolve_ProducesAssignmentsAndOutputDocument(t *testing.T) {
	req := testRequest()
	cfg := DefaultConfig()
	cfg.OptimizerConfig.MaxIterations = 10
	cfg.OptimizerConfig.MaxTime = 0

	outcome, err := Solve(context.Background(), req, cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, outcome.Output)
	require.NotEmpty(t, outcome.Output.Assignments)
	require.Len(t, outcome.Output.EmployeeRoster, 2)
}

func TestSolve_WithoutOptimizerStillProducesAssignments(t *testing.T) {
	req := testRequest()
	cfg := DefaultConfig()
	cfg.EnableOptimizer = false

	outcome, err := Solve(context.Background(), req, cfg, nil)
	require.NoError(t, err)
	require.NotEmpty(t, outcome.Output.Assignments)
}

func TestSolve_RejectsInvalidInput(t *testing.T) {
	req := &model.RosterRequest{}
	_, err := Solve(context.Background(), req, DefaultConfig(), nil)
	require.Error(t, err)
}

// TestSolve_InsufficientRestLeavesOneSlotUnassigned mirrors the insufficient-
// rest scenario (spec.md's scenario E): a single employee, two slots whose
// gap is under the minimum rest threshold. The only employee able to cover
// either slot can be placed on at most one of them.
func TestSolve_InsufficientRestLeavesOneSlotUnassigned(t *testing.T) {
	req := &model.RosterRequest{
		PlanningHorizon: model.PlanningHorizon{StartDate: "2026-01-05", EndDate: "2026-01-06"},
		Employees: []model.Employee{
			{EmployeeID: "E4", Scheme: model.SchemeA, WorkPattern: model.WorkPattern{"D", "D"}},
		},
		DemandItems: []model.DemandItem{
			{
				DemandID:   "D1",
				LocationID: "L1",
				OUID:       "OU1",
				Shifts: []model.ShiftSet{
					{
						CoverageDays: []time.Weekday{time.Monday},
						ShiftDetails: []model.ShiftDetails{{ShiftCode: "D", Start: "08:00", End: "20:00"}},
					},
					{
						CoverageDays: []time.Weekday{time.Tuesday},
						ShiftDetails: []model.ShiftDetails{{ShiftCode: "D", Start: "05:00", End: "17:00"}},
					},
				},
				Requirements: []model.Requirement{
					{
						RequirementID:    "R1",
						Headcount:        1,
						WorkPattern:      model.WorkPattern{"D", "D"},
						PatternStartDate: "2026-01-05",
					},
				},
			},
		},
	}

	outcome, err := Solve(context.Background(), req, DefaultConfig(), nil)
	require.NoError(t, err)
	require.Len(t, outcome.Output.Assignments, 1, "rest < 11h between the two slots must keep E4 off the second one")
}

// TestSolve_ExpiredQualificationLeavesSlotUnassigned mirrors the
// qualification-expiry scenario (spec.md's scenario F): the sole qualified
// employee's credential has already lapsed by the slot's date, so the slot
// must go unassigned rather than violate the qualification constraint.
func TestSolve_ExpiredQualificationLeavesSlotUnassigned(t *testing.T) {
	req := &model.RosterRequest{
		PlanningHorizon: model.PlanningHorizon{StartDate: "2026-01-20", EndDate: "2026-01-20"},
		Employees: []model.Employee{
			{
				EmployeeID: "E5",
				Scheme:     model.SchemeA,
				WorkPattern: model.WorkPattern{"D"},
				Qualifications: []model.Qualification{
					{Code: "Q1", ValidFrom: "2025-01-01", ExpiryDate: "2026-01-15"},
				},
			},
		},
		DemandItems: []model.DemandItem{
			{
				DemandID:   "D1",
				LocationID: "L1",
				OUID:       "OU1",
				Shifts: []model.ShiftSet{
					{ShiftDetails: []model.ShiftDetails{{ShiftCode: "D", Start: "08:00", End: "16:00"}}},
				},
				Requirements: []model.Requirement{
					{
						RequirementID:               "R1",
						Headcount:                   1,
						WorkPattern:                 model.WorkPattern{"D"},
						PatternStartDate:             "2026-01-20",
						RequiredQualificationGroups: []model.QualificationGroup{{GroupID: "g1", MatchType: model.MatchAll, Qualifications: []string{"Q1"}}},
					},
				},
			},
		},
	}

	outcome, err := Solve(context.Background(), req, DefaultConfig(), nil)
	require.NoError(t, err)
	require.Empty(t, outcome.Output.Assignments, "E5's qualification lapsed before the slot's date, so it must stay unassigned")
}
