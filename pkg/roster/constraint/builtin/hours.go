package builtin

import (
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
)

// defaultSchemeDailyCaps mirrors the C1 default caps (§4.5): 14h for
// scheme A, 13h for B, 9h for P.
var defaultSchemeDailyCaps = map[model.Scheme]float64{
	model.SchemeA: 14,
	model.SchemeB: 13,
	model.SchemeP: 9,
}

// DailyHoursCapConstraint is C1: a slot's gross hours must not exceed
// the employee's scheme daily cap. This is a pre-filter more than a
// true constraint, but it is enforced symmetrically here too.
type DailyHoursCapConstraint struct {
	*BaseConstraint
	caps map[model.Scheme]float64
}

// NewDailyHoursCapConstraint builds C1 with the given scheme caps, or
// the spec defaults when caps is nil.
func NewDailyHoursCapConstraint(caps map[model.Scheme]float64) *DailyHoursCapConstraint {
	if caps == nil {
		caps = defaultSchemeDailyCaps
	}
	return &DailyHoursCapConstraint{
		BaseConstraint: NewBaseConstraint("daily hours cap", constraint.TypeDailyHoursCap, constraint.CategoryHard, 100),
		caps:           caps,
	}
}

func (c *DailyHoursCapConstraint) cap(s model.Scheme) float64 {
	if v, ok := c.caps[s]; ok {
		return v
	}
	return defaultSchemeDailyCaps[model.SchemeA]
}

func (c *DailyHoursCapConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil {
		return true, 0
	}
	gross := slot.End.Sub(slot.Start).Hours()
	if gross > c.cap(emp.Scheme) {
		return false, c.Weight()
	}
	return true, 0
}

// weeklyNormalCap returns the §4.5 C2 cap in hours for a scheme and its
// work-days-per-week.
func weeklyNormalCap(scheme model.Scheme, workDaysPerWeek int) float64 {
	if scheme == model.SchemeP {
		if workDaysPerWeek <= 4 {
			return 34.98
		}
		return 29.98
	}
	return 44.0
}

// WeeklyNormalHoursCapConstraint is C2: pattern-aware normal hours per
// (employee, ISO week) must not exceed the scheme cap. APGD-D10
// employees are exempt (bounded instead by C19's monthly cap).
type WeeklyNormalHoursCapConstraint struct {
	*BaseConstraint
}

func NewWeeklyNormalHoursCapConstraint() *WeeklyNormalHoursCapConstraint {
	return &WeeklyNormalHoursCapConstraint{
		BaseConstraint: NewBaseConstraint("weekly normal hours cap", constraint.TypeWeeklyNormalHoursCap, constraint.CategoryHard, 100),
	}
}

func (c *WeeklyNormalHoursCapConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil || emp.IsAPGDD10() {
		return true, 0
	}

	h, err := ctx.HoursFor(slot, employeeID)
	if err != nil {
		return true, 0
	}
	existing, err := ctx.NormalHoursInISOWeek(employeeID, slot.Date)
	if err != nil {
		return true, 0
	}

	req := ctx.Requirements[slot.RequirementID]
	cap := weeklyNormalCap(emp.Scheme, req.WorkPattern.WorkDays())
	if existing+h.Normal > cap {
		return false, c.Weight()
	}
	return true, 0
}

// PartTimeWeeklyHoursCapConstraint is C6: redundant with C2 for scheme
// P, kept as an independent safeguard using the same pattern-aware
// accounting.
type PartTimeWeeklyHoursCapConstraint struct {
	*BaseConstraint
}

func NewPartTimeWeeklyHoursCapConstraint() *PartTimeWeeklyHoursCapConstraint {
	return &PartTimeWeeklyHoursCapConstraint{
		BaseConstraint: NewBaseConstraint("part-time weekly hours cap", constraint.TypePartTimeWeeklyCap, constraint.CategoryHard, 100),
	}
}

func (c *PartTimeWeeklyHoursCapConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil || emp.Scheme != model.SchemeP {
		return true, 0
	}

	h, err := ctx.HoursFor(slot, employeeID)
	if err != nil {
		return true, 0
	}
	existing, err := ctx.NormalHoursInISOWeek(employeeID, slot.Date)
	if err != nil {
		return true, 0
	}

	req := ctx.Requirements[slot.RequirementID]
	cap := weeklyNormalCap(model.SchemeP, req.WorkPattern.WorkDays())
	if existing+h.Normal > cap {
		return false, c.Weight()
	}
	return true, 0
}

// standardMonthlyOTCapHours is C17's standard employee cap: 72h/month
// regardless of month length.
const standardMonthlyOTCapHours = 72.0

// apgdD10MonthlyOTCapHours maps calendar-month length to the APGD-D10
// monthly OT cap (§4.5 C17).
var apgdD10MonthlyOTCapHours = map[int]float64{28: 112, 29: 116, 30: 120, 31: 124}

// MonthlyOvertimeCapConstraint is C17: per (employee, calendar month),
// pattern-aware OT contributions must not exceed the applicable cap.
type MonthlyOvertimeCapConstraint struct {
	*BaseConstraint
}

func NewMonthlyOvertimeCapConstraint() *MonthlyOvertimeCapConstraint {
	return &MonthlyOvertimeCapConstraint{
		BaseConstraint: NewBaseConstraint("monthly overtime cap", constraint.TypeMonthlyOTCap, constraint.CategoryHard, 100),
	}
}

func (c *MonthlyOvertimeCapConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil {
		return true, 0
	}

	h, err := ctx.HoursFor(slot, employeeID)
	if err != nil {
		return true, 0
	}
	existing, err := ctx.OTHoursInMonth(employeeID, slot.Date)
	if err != nil {
		return true, 0
	}

	cap := standardMonthlyOTCapHours
	if emp.IsAPGDD10() {
		ym, err := slot.YearMonth()
		if err == nil {
			if v, ok := apgdD10MonthlyOTCapHours[ym.DaysIn()]; ok {
				cap = v
			}
		}
	}

	if existing+h.OT > cap {
		return false, c.Weight()
	}
	return true, 0
}

// standardMonthlyNetCapHours maps month length to the C19 standard-local
// net-hours monthly cap.
var standardMonthlyNetCapHours = map[int]float64{28: 224, 29: 231, 30: 238, 31: 246}

// foreignMonthlyNetCapHours maps month length to the C19 foreign
// CPL/SGT net-hours monthly cap.
var foreignMonthlyNetCapHours = map[int]float64{28: 244, 29: 252, 30: 260, 31: 268}

// APGDD10MonthlyCapConstraint is C19: for APGD-D10 employees, a total
// monthly cap on net hours replaces the weekly 44h cap entirely.
type APGDD10MonthlyCapConstraint struct {
	*BaseConstraint
}

func NewAPGDD10MonthlyCapConstraint() *APGDD10MonthlyCapConstraint {
	return &APGDD10MonthlyCapConstraint{
		BaseConstraint: NewBaseConstraint("APGD-D10 monthly net-hours cap", constraint.TypeAPGDD10MonthlyCap, constraint.CategoryHard, 100),
	}
}

func (c *APGDD10MonthlyCapConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil || !emp.IsAPGDD10() {
		return true, 0
	}

	h, err := ctx.HoursFor(slot, employeeID)
	if err != nil {
		return true, 0
	}
	existing, err := ctx.NetHoursInMonth(employeeID, slot.Date)
	if err != nil {
		return true, 0
	}

	ym, err := slot.YearMonth()
	if err != nil {
		return true, 0
	}

	caps := standardMonthlyNetCapHours
	if emp.IsForeignCorporalOrSergeant() {
		caps = foreignMonthlyNetCapHours
	}
	cap, ok := caps[ym.DaysIn()]
	if !ok {
		cap = caps[31]
	}

	net := h.Gross - h.Lunch
	if existing+net > cap {
		return false, c.Weight()
	}
	return true, 0
}
