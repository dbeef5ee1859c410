package builtin

import (
	"time"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
)

const (
	standardConsecutiveDaysCap = 12
	apgdD10ConsecutiveDaysCap  = 8

	standardMinRestMinutes = 660
	apgdD10MinRestMinutes  = 480
)

// ConsecutiveDaysCapConstraint is C3: no employee may work more than K
// consecutive calendar days (K=12 standard, K=8 for APGD-D10).
type ConsecutiveDaysCapConstraint struct {
	*BaseConstraint
}

func NewConsecutiveDaysCapConstraint() *ConsecutiveDaysCapConstraint {
	return &ConsecutiveDaysCapConstraint{
		BaseConstraint: NewBaseConstraint("consecutive working days cap", constraint.TypeConsecutiveDaysCap, constraint.CategoryHard, 100),
	}
}

func (c *ConsecutiveDaysCapConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil {
		return true, 0
	}

	cap := standardConsecutiveDaysCap
	if emp.IsAPGDD10() {
		cap = apgdD10ConsecutiveDaysCap
	}

	streak := ctx.ConsecutiveWorkDays(employeeID, slot.Date) + 1 // +1 for this slot's date
	if streak > cap {
		return false, c.Weight()
	}
	return true, 0
}

// MinRestBetweenShiftsConstraint is C4: consecutive shifts for the same
// employee must be separated by at least Rmin minutes (660 standard,
// 480 for APGD-D10).
type MinRestBetweenShiftsConstraint struct {
	*BaseConstraint
}

func NewMinRestBetweenShiftsConstraint() *MinRestBetweenShiftsConstraint {
	return &MinRestBetweenShiftsConstraint{
		BaseConstraint: NewBaseConstraint("minimum rest between shifts", constraint.TypeMinRestBetweenShifts, constraint.CategoryHard, 100),
	}
}

func (c *MinRestBetweenShiftsConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil {
		return true, 0
	}

	rmin := time.Duration(standardMinRestMinutes) * time.Minute
	if emp.IsAPGDD10() {
		rmin = time.Duration(apgdD10MinRestMinutes) * time.Minute
	}

	if lastEnd, ok := ctx.LastShiftEnd(employeeID, slot.Start); ok {
		if slot.Start.Sub(lastEnd) < rmin {
			return false, c.Weight()
		}
	}

	for _, a := range ctx.Assignments(employeeID) {
		if a.Slot().Start.Before(slot.End) {
			continue
		}
		if a.Slot().Start.Sub(slot.End) < rmin {
			return false, c.Weight()
		}
	}
	return true, 0
}

// MinOffDaysPerWeekConstraint is C5: at least one off-day in every
// rolling 7-day window. Typically implied by C2/C3, kept as a direct
// safeguard for the template-based outcome path.
type MinOffDaysPerWeekConstraint struct {
	*BaseConstraint
}

func NewMinOffDaysPerWeekConstraint() *MinOffDaysPerWeekConstraint {
	return &MinOffDaysPerWeekConstraint{
		BaseConstraint: NewBaseConstraint("minimum off-days per week", constraint.TypeMinOffDaysPerWeek, constraint.CategoryHard, 100),
	}
}

func (c *MinOffDaysPerWeekConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	streak := ctx.ConsecutiveWorkDays(employeeID, slot.Date) + 1
	if streak > 6 {
		return false, c.Weight()
	}
	return true, 0
}
