package validator

import (
	"testing"

	"github.com/paiban/roster/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRequest() *model.RosterRequest {
	return &model.RosterRequest{
		PlanningHorizon: model.PlanningHorizon{StartDate: "2026-01-05", EndDate: "2026-01-11"},
		Employees: []model.Employee{
			{EmployeeID: "E1", Scheme: model.SchemeA},
		},
		DemandItems: []model.DemandItem{
			{
				DemandID: "D1",
				Shifts: []model.ShiftSet{
					{ShiftDetails: []model.ShiftDetails{{ShiftCode: "D", Start: "08:00", End: "20:00"}}},
				},
				Requirements: []model.Requirement{
					{RequirementID: "R1", Headcount: 1, WorkPattern: model.WorkPattern{"D", "O"}, Schemes: []model.Scheme{model.SchemeA}},
				},
			},
		},
	}
}

func TestValidate_HappyPath(t *testing.T) {
	res := Validate(baseRequest())
	require.Empty(t, res.Errors)
	assert.True(t, res.IsValid)
}

func TestValidate_EmptyCollections(t *testing.T) {
	req := &model.RosterRequest{PlanningHorizon: model.PlanningHorizon{StartDate: "2026-01-01", EndDate: "2026-01-02"}}
	res := Validate(req)
	assert.False(t, res.IsValid)
	codes := findingCodes(res.Errors)
	assert.Contains(t, codes, "REQUIRED_NON_EMPTY")
}

func TestValidate_StartAfterEnd(t *testing.T) {
	req := baseRequest()
	req.PlanningHorizon = model.PlanningHorizon{StartDate: "2026-02-01", EndDate: "2026-01-01"}
	res := Validate(req)
	assert.False(t, res.IsValid)
	assert.Contains(t, findingCodes(res.Errors), "START_AFTER_END")
}

func TestValidate_LongHorizonWarns(t *testing.T) {
	req := baseRequest()
	req.PlanningHorizon = model.PlanningHorizon{StartDate: "2026-01-01", EndDate: "2026-06-01"}
	res := Validate(req)
	assert.True(t, res.IsValid)
	assert.Contains(t, findingCodes(res.Warnings), "LONG_HORIZON")
}

func TestValidate_UnknownShiftCodeInPattern(t *testing.T) {
	req := baseRequest()
	req.DemandItems[0].Requirements[0].WorkPattern = model.WorkPattern{"NIGHT", "O"}
	res := Validate(req)
	assert.False(t, res.IsValid)
	assert.Contains(t, findingCodes(res.Errors), "UNKNOWN_SHIFT_CODE")
}

func TestValidate_ZeroHeadcountRejectedUnlessOutcomeBased(t *testing.T) {
	req := baseRequest()
	req.DemandItems[0].Requirements[0].Headcount = 0
	res := Validate(req)
	assert.False(t, res.IsValid)
	assert.Contains(t, findingCodes(res.Errors), "ZERO_HEADCOUNT")

	req.DemandItems[0].Requirements[0].RosteringBasis = model.OutcomeBased
	req.DemandItems[0].MinStaffThresholdPercentage = 50
	req.OUOffsets = []model.OUOffset{{OUID: "OU1", RotationOffset: 0}}
	res2 := Validate(req)
	assert.NotContains(t, findingCodes(res2.Errors), "ZERO_HEADCOUNT")
}

func TestValidate_OutcomeBasedRequiresOUOffsets(t *testing.T) {
	req := baseRequest()
	req.DemandItems[0].Requirements[0].RosteringBasis = model.OutcomeBased
	req.DemandItems[0].MinStaffThresholdPercentage = 50
	res := Validate(req)
	assert.False(t, res.IsValid)
	assert.Contains(t, findingCodes(res.Errors), "REQUIRED_NON_EMPTY")
}

func TestValidate_InsufficientPoolWarns(t *testing.T) {
	req := baseRequest()
	req.DemandItems[0].Requirements[0].Headcount = 10
	res := Validate(req)
	assert.True(t, res.IsValid)
	assert.Contains(t, findingCodes(res.Warnings), "INSUFFICIENT_POOL")
}

func findingCodes(findings []Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Code
	}
	return out
}
