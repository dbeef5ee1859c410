// Package builtin provides the concrete C1-C19 / S1-S6 constraint
// implementations plus the factory that builds a Manager from a
// constraintList configuration (spec §4.5).
package builtin

import (
	"fmt"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
)

// BaseConstraint carries the identity fields every concrete constraint
// shares and the violation-construction helper.
type BaseConstraint struct {
	name     string
	typ      constraint.Type
	category constraint.Category
	weight   int
}

// NewBaseConstraint builds the shared identity fields for a constraint.
func NewBaseConstraint(name string, typ constraint.Type, cat constraint.Category, weight int) *BaseConstraint {
	return &BaseConstraint{name: name, typ: typ, category: cat, weight: weight}
}

func (c *BaseConstraint) Name() string                   { return c.name }
func (c *BaseConstraint) Type() constraint.Type           { return c.typ }
func (c *BaseConstraint) Category() constraint.Category   { return c.category }
func (c *BaseConstraint) Weight() int                     { return c.weight }

// Violation builds a ViolationDetail tagged with this constraint's
// identity and the right severity for its category.
func (c *BaseConstraint) Violation(employeeID, slotID, date, message string, penalty int) constraint.ViolationDetail {
	severity := "warning"
	if c.category == constraint.CategoryHard {
		severity = "error"
	}
	return constraint.ViolationDetail{
		ConstraintType: c.typ,
		ConstraintName: c.name,
		EmployeeID:     employeeID,
		SlotID:         slotID,
		Date:           date,
		Message:        message,
		Severity:       severity,
		Penalty:        penalty,
	}
}

// Evaluate is the default whole-roster evaluation (always satisfied);
// concrete constraints that need full-roster scans override it.
func (c *BaseConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return true, 0, nil
}

// EvaluateAssignment is the default incremental check (always passes);
// concrete constraints override it.
func (c *BaseConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	return true, 0
}

func fmtMessage(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
