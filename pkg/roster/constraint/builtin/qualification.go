package builtin

import (
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
)

// QualificationValidityConstraint is C7: qualification groups are
// evaluated per (slot, employee) with ALL/ANY semantics, each held
// credential checked valid as of the slot's date.
type QualificationValidityConstraint struct {
	*BaseConstraint
}

func NewQualificationValidityConstraint() *QualificationValidityConstraint {
	return &QualificationValidityConstraint{
		BaseConstraint: NewBaseConstraint("qualification validity", constraint.TypeQualificationValidity, constraint.CategoryHard, 100),
	}
}

func (c *QualificationValidityConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil {
		return false, c.Weight()
	}
	if !emp.SatisfiesQualificationGroups(slot.RequiredQualificationGroups, slot.Date) {
		return false, c.Weight()
	}
	return true, 0
}
