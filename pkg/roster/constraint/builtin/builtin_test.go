package builtin

import (
	"fmt"
	"testing"
	"time"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkSlot(id, reqID, date, shiftCode string, start, end time.Time) model.Slot {
	return model.Slot{
		SlotID:        id,
		RequirementID: reqID,
		Date:          date,
		ShiftCode:     shiftCode,
		Start:         start,
		End:           end,
	}
}

func mkCtx(employees []*model.Employee, reqs map[string]model.Requirement) *constraint.Context {
	return constraint.NewContext(model.PlanningHorizon{StartDate: "2026-01-01", EndDate: "2026-01-31"}, employees, reqs)
}

func TestDailyHoursCapConstraint_RejectsOverCap(t *testing.T) {
	emp := &model.Employee{EmployeeID: "E1", Scheme: model.SchemeB}
	ctx := mkCtx([]*model.Employee{emp}, nil)

	slot := mkSlot("S1", "R1", "2026-01-05", "D",
		time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC)) // 14h, over scheme B's 13h cap

	c := NewDailyHoursCapConstraint(nil)
	valid, penalty := c.EvaluateAssignment(ctx, slot, "E1")
	assert.False(t, valid)
	assert.Equal(t, 100, penalty)
}

func TestOnePerDayConstraint_RejectsSecondSlotSameDate(t *testing.T) {
	emp := &model.Employee{EmployeeID: "E1", Scheme: model.SchemeA}
	ctx := mkCtx([]*model.Employee{emp}, nil)

	first := mkSlot("S1", "R1", "2026-01-05", "D",
		time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 5, 16, 0, 0, 0, time.UTC))
	require.NoError(t, ctx.Place(first, "E1"))

	second := mkSlot("S2", "R1", "2026-01-05", "N",
		time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 6, 4, 0, 0, 0, time.UTC))

	c := NewOnePerDayConstraint()
	valid, penalty := c.EvaluateAssignment(ctx, second, "E1")
	assert.False(t, valid)
	assert.Equal(t, 100, penalty)
}

func TestMinRestBetweenShiftsConstraint_RejectsTightTurnaround(t *testing.T) {
	emp := &model.Employee{EmployeeID: "E1", Scheme: model.SchemeA}
	ctx := mkCtx([]*model.Employee{emp}, nil)

	first := mkSlot("S1", "R1", "2026-01-05", "D",
		time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC))
	require.NoError(t, ctx.Place(first, "E1"))

	// Starts 8 hours after the previous shift ended — under the 660-minute minimum.
	second := mkSlot("S2", "R1", "2026-01-06", "D",
		time.Date(2026, 1, 6, 4, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 6, 16, 0, 0, 0, time.UTC))

	c := NewMinRestBetweenShiftsConstraint()
	valid, _ := c.EvaluateAssignment(ctx, second, "E1")
	assert.False(t, valid)
}

func TestHeadcountConstraint_RejectsOnceTargetMet(t *testing.T) {
	reqs := map[string]model.Requirement{
		"R1": {RequirementID: "R1", Headcount: 1},
	}
	emp1 := &model.Employee{EmployeeID: "E1", Scheme: model.SchemeA}
	emp2 := &model.Employee{EmployeeID: "E2", Scheme: model.SchemeA}
	ctx := mkCtx([]*model.Employee{emp1, emp2}, reqs)

	slot := mkSlot("S1", "R1", "2026-01-05", "D",
		time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 5, 16, 0, 0, 0, time.UTC))
	require.NoError(t, ctx.Place(slot, "E1"))

	c := NewHeadcountConstraint()
	valid, _ := c.EvaluateAssignment(ctx, slot, "E2")
	assert.False(t, valid)
}

func TestQualificationValidityConstraint_RejectsExpiredCredential(t *testing.T) {
	emp := &model.Employee{
		EmployeeID: "E1",
		Scheme:     model.SchemeA,
		Qualifications: []model.Qualification{
			{Code: "CPR", ValidFrom: "2025-01-01", ExpiryDate: "2025-12-31"},
		},
	}
	ctx := mkCtx([]*model.Employee{emp}, nil)

	slot := mkSlot("S1", "R1", "2026-01-05", "D",
		time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 5, 16, 0, 0, 0, time.UTC))
	slot.RequiredQualificationGroups = []model.QualificationGroup{
		{GroupID: "legacy", MatchType: model.MatchAll, Qualifications: []string{"CPR"}},
	}

	c := NewQualificationValidityConstraint()
	valid, _ := c.EvaluateAssignment(ctx, slot, "E1")
	assert.False(t, valid)
}

func TestAPGDD10MonthlyCapConstraint_RejectsOverStandardCap(t *testing.T) {
	// Scheme A + product APO auto-detects as APGD-D10 (IsAPGDD10);
	// Local true keeps it on the 246h standard cap for a 31-day month
	// rather than the 268h foreign CPL/SGT cap.
	emp := &model.Employee{EmployeeID: "E3", Scheme: model.SchemeA, ProductTypeID: "APO", Local: true}
	ctx := mkCtx([]*model.Employee{emp}, nil)

	c := NewAPGDD10MonthlyCapConstraint()

	// Every 8h shift nets 7.25h (8h gross - 0.75h MOM lunch deduction),
	// independent of work pattern/week position. 33 * 7.25h = 239.25h,
	// still under the 246h cap.
	for i := 0; i < 33; i++ {
		slot := mkSlot(fmt.Sprintf("S%d", i), "R1", "2026-01-10", "D",
			time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 10, 16, 0, 0, 0, time.UTC))
		valid, _ := c.EvaluateAssignment(ctx, slot, "E3")
		require.True(t, valid, "shift %d should still be under the 246h cap", i)
		require.NoError(t, ctx.Place(slot, "E3"))
	}

	// A 34th shift would push the monthly net total to 246.5h, over cap.
	over := mkSlot("S33", "R1", "2026-01-11", "D",
		time.Date(2026, 1, 11, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 11, 16, 0, 0, 0, time.UTC))
	valid, penalty := c.EvaluateAssignment(ctx, over, "E3")
	assert.False(t, valid)
	assert.Equal(t, 100, penalty)
}

func TestAPGDD10MonthlyCapConstraint_IgnoresNonAPGDD10Employees(t *testing.T) {
	emp := &model.Employee{EmployeeID: "E1", Scheme: model.SchemeA, ProductTypeID: "GENERAL"}
	ctx := mkCtx([]*model.Employee{emp}, nil)

	slot := mkSlot("S1", "R1", "2026-01-10", "D",
		time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 10, 16, 0, 0, 0, time.UTC))

	c := NewAPGDD10MonthlyCapConstraint()
	valid, _ := c.EvaluateAssignment(ctx, slot, "E1")
	assert.True(t, valid, "the monthly cap only applies to the APGD-D10 class (scheme A + product APO)")
}
