package builtin

import (
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
)

// HeadcountConstraint is C8: the number of employees placed on a
// (date, shiftCode) cell must not exceed the requirement's target
// headcount for that shift. Strict mode treats the target as exact
// (the solver's coverage objective drives it up to the target
// separately); outcome-based mode only enforces the ceiling.
type HeadcountConstraint struct {
	*BaseConstraint
}

func NewHeadcountConstraint() *HeadcountConstraint {
	return &HeadcountConstraint{
		BaseConstraint: NewBaseConstraint("headcount exact-fill", constraint.TypeHeadcountExactFill, constraint.CategoryHard, 100),
	}
}

func (c *HeadcountConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	if slot.RosteringBasis == model.OutcomeBased {
		return true, 0
	}
	req := ctx.Requirements[slot.RequirementID]
	target := req.HeadcountFor(slot.ShiftCode)
	if target > 0 && ctx.CellCount(slot.Date, slot.ShiftCode) >= target {
		return false, c.Weight()
	}
	return true, 0
}

// OnePerDayConstraint is C9: an employee may hold at most one working
// slot per calendar date.
type OnePerDayConstraint struct {
	*BaseConstraint
}

func NewOnePerDayConstraint() *OnePerDayConstraint {
	return &OnePerDayConstraint{
		BaseConstraint: NewBaseConstraint("one slot per day", constraint.TypeOnePerDay, constraint.CategoryHard, 100),
	}
}

func (c *OnePerDayConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	for _, a := range ctx.Assignments(employeeID) {
		if a.Slot().Date == slot.Date {
			return false, c.Weight()
		}
	}
	return true, 0
}

// WhitelistBlacklistConstraint is C10: an employee's explicit shift-code
// whitelist/blacklist overrides the ordinary eligibility filters.
type WhitelistBlacklistConstraint struct {
	*BaseConstraint
}

func NewWhitelistBlacklistConstraint() *WhitelistBlacklistConstraint {
	return &WhitelistBlacklistConstraint{
		BaseConstraint: NewBaseConstraint("whitelist/blacklist shift codes", constraint.TypeWhitelistBlacklist, constraint.CategoryHard, 100),
	}
}

func (c *WhitelistBlacklistConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil {
		return true, 0
	}
	if len(emp.WhitelistShiftCodes) > 0 && !containsCode(emp.WhitelistShiftCodes, slot.ShiftCode) {
		return false, c.Weight()
	}
	if containsCode(emp.BlacklistShiftCodes, slot.ShiftCode) {
		return false, c.Weight()
	}
	return true, 0
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// ProductRankMatchConstraint is C11: the slot's rank/product-type filter
// must admit the employee.
type ProductRankMatchConstraint struct {
	*BaseConstraint
}

func NewProductRankMatchConstraint() *ProductRankMatchConstraint {
	return &ProductRankMatchConstraint{
		BaseConstraint: NewBaseConstraint("product/rank compatibility", constraint.TypeProductRankMatch, constraint.CategoryHard, 100),
	}
}

func (c *ProductRankMatchConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil {
		return false, c.Weight()
	}
	if len(slot.RankIDs) > 0 && !containsCode(slot.RankIDs, emp.RankID) {
		return false, c.Weight()
	}
	if len(slot.ProductTypeIDs) > 0 && !containsCode(slot.ProductTypeIDs, emp.ProductTypeID) {
		return false, c.Weight()
	}
	return true, 0
}

// GenderMatchConstraint is C12: a slot's gender filter, when set, must
// match the employee's gender exactly.
type GenderMatchConstraint struct {
	*BaseConstraint
}

func NewGenderMatchConstraint() *GenderMatchConstraint {
	return &GenderMatchConstraint{
		BaseConstraint: NewBaseConstraint("gender match", constraint.TypeGenderMatch, constraint.CategoryHard, 100),
	}
}

func (c *GenderMatchConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil {
		return false, c.Weight()
	}
	if slot.Gender != "" && slot.Gender != emp.Gender {
		return false, c.Weight()
	}
	return true, 0
}

// SchemeMatchConstraint is C13: the employee's normalised scheme must be
// compatible with the slot's scheme list.
type SchemeMatchConstraint struct {
	*BaseConstraint
}

func NewSchemeMatchConstraint() *SchemeMatchConstraint {
	return &SchemeMatchConstraint{
		BaseConstraint: NewBaseConstraint("scheme match", constraint.TypeSchemeMatch, constraint.CategoryHard, 100),
	}
}

func (c *SchemeMatchConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil {
		return false, c.Weight()
	}
	if len(slot.Schemes) > 0 && !model.SchemeCompatible(emp.Scheme, slot.Schemes) {
		return false, c.Weight()
	}
	return true, 0
}

// EmployeeOwnershipConstraint is C14: when ICPMP has pre-selected an
// employee for a requirement, that employee may only fill slots under
// that same requirement.
type EmployeeOwnershipConstraint struct {
	*BaseConstraint
}

func NewEmployeeOwnershipConstraint() *EmployeeOwnershipConstraint {
	return &EmployeeOwnershipConstraint{
		BaseConstraint: NewBaseConstraint("employee ownership by requirement", constraint.TypeEmployeeOwnership, constraint.CategoryHard, 100),
	}
}

func (c *EmployeeOwnershipConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil {
		return false, c.Weight()
	}
	if emp.IsOwned() && emp.OwnedByRequirement() != slot.RequirementID {
		return false, c.Weight()
	}
	return true, 0
}

// InterOUIsolationConstraint is C15: once an employee has worked a slot
// under one organisational unit, they may not also be placed under a
// different OU within the same planning horizon.
type InterOUIsolationConstraint struct {
	*BaseConstraint
}

func NewInterOUIsolationConstraint() *InterOUIsolationConstraint {
	return &InterOUIsolationConstraint{
		BaseConstraint: NewBaseConstraint("inter-OU isolation", constraint.TypeInterOUIsolation, constraint.CategoryHard, 100),
	}
}

func (c *InterOUIsolationConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	for _, a := range ctx.Assignments(employeeID) {
		if a.Slot().OUID != slot.OUID {
			return false, c.Weight()
		}
	}
	return true, 0
}

// LockedSlotFixedConstraint is C16: a slot carried over as locked from a
// prior incremental solve may not be reassigned by this run.
type LockedSlotFixedConstraint struct {
	*BaseConstraint
}

func NewLockedSlotFixedConstraint() *LockedSlotFixedConstraint {
	return &LockedSlotFixedConstraint{
		BaseConstraint: NewBaseConstraint("locked slot fixed", constraint.TypeLockedSlotFixed, constraint.CategoryHard, 100),
	}
}

func (c *LockedSlotFixedConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	if slot.Locked {
		return false, c.Weight()
	}
	return true, 0
}
