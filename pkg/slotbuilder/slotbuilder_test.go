package slotbuilder

import (
	"testing"
	"time"

	"github.com/paiban/roster/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseReq() *model.RosterRequest {
	return &model.RosterRequest{
		PlanningHorizon: model.PlanningHorizon{StartDate: "2026-01-05", EndDate: "2026-01-11"},
		DemandItems: []model.DemandItem{
			{
				DemandID:   "D1",
				LocationID: "L1",
				OUID:       "OU1",
				Shifts: []model.ShiftSet{
					{
						ShiftDetails: []model.ShiftDetails{
							{ShiftCode: "D", Start: "08:00", End: "20:00"},
							{ShiftCode: "N", Start: "20:00", End: "08:00"},
						},
					},
				},
				Requirements: []model.Requirement{
					{
						RequirementID:    "R1",
						Headcount:        2,
						WorkPattern:      model.WorkPattern{"D", "D", "O"},
						PatternStartDate: "2026-01-05",
					},
				},
			},
		},
	}
}

func TestBuild_DefaultVariant_FansOutAllDatesShiftsAndPositions(t *testing.T) {
	req := baseReq()
	slots, err := Build(req)
	require.NoError(t, err)

	// 7 dates * 1 pattern shift code (N is not in the D,D,O pattern) *
	// 2 headcount positions = 14 slots.
	assert.Len(t, slots, 14)
	for _, s := range slots {
		assert.True(t, s.Valid())
	}
}

func TestBuild_DefaultVariant_NextDayRollover(t *testing.T) {
	req := baseReq()
	req.DemandItems[0].Requirements[0].WorkPattern = model.WorkPattern{"D", "N", "O"}
	slots, err := Build(req)
	require.NoError(t, err)

	for _, s := range slots {
		if s.ShiftCode == "N" {
			assert.True(t, s.End.After(s.Start))
			assert.Equal(t, s.Start.Day()+1, s.End.Day()%32)
		}
	}
}

func TestBuild_CoverageDaysRestrictsDates(t *testing.T) {
	req := baseReq()
	req.DemandItems[0].Shifts[0].CoverageDays = []time.Weekday{time.Monday}

	slots, err := Build(req)
	require.NoError(t, err)
	for _, s := range slots {
		d, parseErr := model.ParseDate(s.Date)
		require.NoError(t, parseErr)
		assert.Equal(t, time.Monday, d.Weekday())
	}
}

func TestBuild_DailyHeadcountVariant_OverridesAndZeroSuppresses(t *testing.T) {
	req := baseReq()
	req.DemandItems[0].Requirements[0].DailyHeadcount = []model.DailyHeadcountEntry{
		{Date: "2026-01-05", ShiftCode: "D", Headcount: 1},
		{Date: "2026-01-06", ShiftCode: "D", Headcount: 0},
	}

	slots, err := Build(req)
	require.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Equal(t, "2026-01-05", slots[0].Date)
}

func TestBuild_OutcomeBased_UsesRotationOffsetNoHeadcountFanOut(t *testing.T) {
	req := baseReq()
	req.DemandItems[0].Requirements[0].RosteringBasis = model.OutcomeBased
	req.OUOffsets = []model.OUOffset{{OUID: "OU1", RotationOffset: 0}}

	slots, err := Build(req)
	require.NoError(t, err)
	// Pattern D,D,O repeated over 7 days starting at offset 0: days 0,1,3,4,6 work.
	assert.Len(t, slots, 5)
}
