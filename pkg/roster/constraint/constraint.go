// Package constraint defines the hard/soft constraint interface and the
// evaluation context the roster solver and optimizer share (spec §4.5).
package constraint

import (
	"time"

	"github.com/paiban/roster/pkg/hours"
	"github.com/paiban/roster/pkg/model"
)

// Type identifies a constraint by the repository's own C#/S# taxonomy.
type Type string

const (
	TypeDailyHoursCap         Type = "C1_daily_hours_cap"
	TypeWeeklyNormalHoursCap  Type = "C2_weekly_normal_hours_cap"
	TypeConsecutiveDaysCap    Type = "C3_consecutive_days_cap"
	TypeMinRestBetweenShifts  Type = "C4_min_rest_between_shifts"
	TypeMinOffDaysPerWeek     Type = "C5_min_off_days_per_week"
	TypePartTimeWeeklyCap     Type = "C6_part_time_weekly_cap"
	TypeQualificationValidity Type = "C7_qualification_validity"
	TypeHeadcountExactFill    Type = "C8_headcount_exact_fill"
	TypeOnePerDay             Type = "C9_one_slot_per_day"
	TypeWhitelistBlacklist    Type = "C10_whitelist_blacklist"
	TypeProductRankMatch      Type = "C11_product_rank_match"
	TypeGenderMatch           Type = "C12_gender_match"
	TypeSchemeMatch           Type = "C13_scheme_match"
	TypeEmployeeOwnership     Type = "C14_employee_ownership"
	TypeInterOUIsolation      Type = "C15_inter_ou_isolation"
	TypeLockedSlotFixed       Type = "C16_locked_slot_fixed"
	TypeMonthlyOTCap          Type = "C17_monthly_ot_cap"
	TypeAPGDD10MonthlyCap     Type = "C19_apgd_d10_monthly_cap"

	TypeWorkloadBalance   Type = "S1_workload_balance"
	TypeMinimizeOvertime  Type = "S2_minimize_overtime"
	TypePreference        Type = "S3_employee_preference"
	TypeConsecutiveNights Type = "S4_minimize_consecutive_nights"
	TypeShiftVariety      Type = "S5_shift_variety"
	TypeWeekendFairness   Type = "S6_weekend_fairness"
)

// Category distinguishes hard (must-satisfy) from soft (penalty-only)
// constraints.
type Category string

const (
	CategoryHard Category = "hard"
	CategorySoft Category = "soft"
)

// ViolationDetail describes one concrete violation found during
// evaluation.
type ViolationDetail struct {
	ConstraintType Type
	ConstraintName string
	EmployeeID     string
	SlotID         string
	Date           string
	Message        string
	Severity       string // error/warning
	Penalty        int
}

// Constraint is satisfied either wholesale (Evaluate, over the full
// assignment set) or incrementally (EvaluateAssignment, for one
// candidate (slot, employee) pair during greedy/local-search solving).
type Constraint interface {
	Name() string
	Type() Type
	Category() Category
	Weight() int

	Evaluate(ctx *Context) (valid bool, penalty int, details []ViolationDetail)
	EvaluateAssignment(ctx *Context, slot model.Slot, employeeID string) (valid bool, penalty int)
}

// Result aggregates constraint evaluation across the whole roster.
type Result struct {
	IsValid        bool
	TotalPenalty   int
	HardViolations []ViolationDetail
	SoftViolations []ViolationDetail
	Score          float64
}

// CalculateScore derives a 0-100 score from the accumulated penalty
// against the maximum possible penalty across registered constraints.
func (r *Result) CalculateScore(maxPenalty int) {
	if maxPenalty == 0 {
		r.Score = 100.0
		return
	}
	r.Score = 100.0 * float64(maxPenalty-r.TotalPenalty) / float64(maxPenalty)
	if r.Score < 0 {
		r.Score = 0
	}
}

// PlacedAssignment is one committed (slot, employee) pair inside the
// evaluation context, with its hour breakdown pre-computed.
type PlacedAssignment struct {
	slot  model.Slot
	hours model.Hours
}

// Slot returns the placed assignment's slot.
func (p PlacedAssignment) Slot() model.Slot { return p.slot }

// Hours returns the placed assignment's computed hour breakdown.
func (p PlacedAssignment) Hours() model.Hours { return p.hours }

// Context is the read/mutate surface constraints use to evaluate a
// roster-in-progress: the employee pool, the requirement each slot
// belongs to (for pattern-aware hour accounting), and the assignments
// committed so far.
type Context struct {
	PlanningHorizon model.PlanningHorizon
	Employees       []*model.Employee
	Requirements    map[string]model.Requirement

	CutoffDate string // incremental mode: locked assignments are on/before this date

	employeeMap         map[string]*model.Employee
	assignmentsByEmp    map[string][]PlacedAssignment
	assignmentsBySlot   map[string]string // slotID -> employeeID
	assignmentsByCell   map[string][]string // (date|shiftCode) -> employeeIDs
}

// NewContext builds an empty evaluation context over the given pool and
// requirement set.
func NewContext(horizon model.PlanningHorizon, employees []*model.Employee, requirements map[string]model.Requirement) *Context {
	c := &Context{
		PlanningHorizon:   horizon,
		Employees:         employees,
		Requirements:      requirements,
		employeeMap:       make(map[string]*model.Employee, len(employees)),
		assignmentsByEmp:  make(map[string][]PlacedAssignment),
		assignmentsBySlot: make(map[string]string),
		assignmentsByCell: make(map[string][]string),
	}
	for _, e := range employees {
		c.employeeMap[e.EmployeeID] = e
	}
	return c
}

// Employee looks up a pooled employee by ID.
func (c *Context) Employee(id string) *model.Employee { return c.employeeMap[id] }

// Clone returns an independent copy of the committed-assignment state,
// sharing the read-only employee pool and requirement set. The
// optimizer's local search uses this to explore a candidate move without
// disturbing the context other neighbours are evaluated against.
func (c *Context) Clone() *Context {
	clone := &Context{
		PlanningHorizon:   c.PlanningHorizon,
		Employees:         c.Employees,
		Requirements:      c.Requirements,
		CutoffDate:        c.CutoffDate,
		employeeMap:       c.employeeMap,
		assignmentsByEmp:  make(map[string][]PlacedAssignment, len(c.assignmentsByEmp)),
		assignmentsBySlot: make(map[string]string, len(c.assignmentsBySlot)),
		assignmentsByCell: make(map[string][]string, len(c.assignmentsByCell)),
	}
	for k, v := range c.assignmentsByEmp {
		cp := make([]PlacedAssignment, len(v))
		copy(cp, v)
		clone.assignmentsByEmp[k] = cp
	}
	for k, v := range c.assignmentsBySlot {
		clone.assignmentsBySlot[k] = v
	}
	for k, v := range c.assignmentsByCell {
		cp := make([]string, len(v))
		copy(cp, v)
		clone.assignmentsByCell[k] = cp
	}
	return clone
}

// Place commits slot -> employeeID, computing and caching its hour
// breakdown. Callers must ensure the slot is eligible before placing.
func (c *Context) Place(slot model.Slot, employeeID string) error {
	h, err := c.computeHours(slot, employeeID)
	if err != nil {
		return err
	}
	c.assignmentsByEmp[employeeID] = append(c.assignmentsByEmp[employeeID], PlacedAssignment{slot: slot, hours: h})
	c.assignmentsBySlot[slot.SlotID] = employeeID
	cell := slot.Date + "|" + slot.ShiftCode
	c.assignmentsByCell[cell] = append(c.assignmentsByCell[cell], employeeID)
	return nil
}

// Unplace removes a previously committed assignment (used by the
// optimizer's local search to explore neighbours).
func (c *Context) Unplace(slot model.Slot, employeeID string) {
	list := c.assignmentsByEmp[employeeID]
	for i, a := range list {
		if a.slot.SlotID == slot.SlotID {
			c.assignmentsByEmp[employeeID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	delete(c.assignmentsBySlot, slot.SlotID)
	cell := slot.Date + "|" + slot.ShiftCode
	cellList := c.assignmentsByCell[cell]
	for i, id := range cellList {
		if id == employeeID {
			c.assignmentsByCell[cell] = append(cellList[:i], cellList[i+1:]...)
			break
		}
	}
}

// EmployeeOf returns the employee currently assigned to slotID, or "" if
// the slot is unassigned.
func (c *Context) EmployeeOf(slotID string) string { return c.assignmentsBySlot[slotID] }

// CellCount returns how many employees are currently assigned to the
// (date, shiftCode) cell.
func (c *Context) CellCount(date, shiftCode string) int {
	return len(c.assignmentsByCell[date+"|"+shiftCode])
}

// Assignments returns every placed assignment for employeeID.
func (c *Context) Assignments(employeeID string) []PlacedAssignment {
	return c.assignmentsByEmp[employeeID]
}

// AllAssignments flattens every committed (slot, employee) pair into
// model.Assignment records. The optimizer mutates a Context's placed
// assignments directly (swap/relocate), so this is the source of truth
// for what got assigned once a solve run is done — not whatever
// []model.Assignment list a solver returned before optimization ran.
func (c *Context) AllAssignments() []model.Assignment {
	var out []model.Assignment
	for employeeID, placed := range c.assignmentsByEmp {
		for _, pa := range placed {
			patternDay, _ := pa.slot.PatternDay()
			out = append(out, model.Assignment{
				SlotID:     pa.slot.SlotID,
				EmployeeID: employeeID,
				Status:     model.StatusAssigned,
				Start:      pa.slot.Start,
				End:        pa.slot.End,
				ShiftCode:  pa.slot.ShiftCode,
				PatternDay: patternDay,
				Hours:      pa.hours,
			})
		}
	}
	return out
}

// HoursOnDate sums gross hours the employee already has on date.
func (c *Context) HoursOnDate(employeeID, date string) float64 {
	var total float64
	for _, a := range c.assignmentsByEmp[employeeID] {
		if a.slot.Date == date {
			total += a.hours.Gross
		}
	}
	return total
}

// NormalHoursInISOWeek sums pattern-aware normal hours already placed
// for employeeID within the ISO week containing date.
func (c *Context) NormalHoursInISOWeek(employeeID, date string) (float64, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return 0, err
	}
	week := model.ISOWeekOf(d)

	var total float64
	for _, a := range c.assignmentsByEmp[employeeID] {
		w, err := a.slot.ISOWeek()
		if err != nil {
			return 0, err
		}
		if w == week {
			total += a.hours.Normal
		}
	}
	return total, nil
}

// OTHoursInMonth sums OT hours already placed for employeeID within the
// calendar month containing date.
func (c *Context) OTHoursInMonth(employeeID, date string) (float64, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return 0, err
	}
	ym := model.YearMonthOf(d)

	var total float64
	for _, a := range c.assignmentsByEmp[employeeID] {
		m, err := a.slot.YearMonth()
		if err != nil {
			return 0, err
		}
		if m == ym {
			total += a.hours.OT
		}
	}
	return total, nil
}

// NetHoursInMonth sums (gross-lunch) hours already placed for employeeID
// within the calendar month containing date — used by the APGD-D10
// monthly total-hour cap (C19).
func (c *Context) NetHoursInMonth(employeeID, date string) (float64, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return 0, err
	}
	ym := model.YearMonthOf(d)

	var total float64
	for _, a := range c.assignmentsByEmp[employeeID] {
		m, err := a.slot.YearMonth()
		if err != nil {
			return 0, err
		}
		if m == ym {
			total += a.hours.Gross - a.hours.Lunch
		}
	}
	return total, nil
}

// ConsecutiveWorkDays returns the length of the working streak that
// would include targetDate if employeeID worked it (counting the
// existing streak on both sides, not including targetDate itself).
func (c *Context) ConsecutiveWorkDays(employeeID, targetDate string) int {
	dates := make(map[string]bool)
	for _, a := range c.assignmentsByEmp[employeeID] {
		dates[a.slot.Date] = true
	}

	before := 0
	cursor := shiftDate(targetDate, -1)
	for dates[cursor] {
		before++
		cursor = shiftDate(cursor, -1)
		if before > 60 {
			break
		}
	}

	after := 0
	cursor = shiftDate(targetDate, 1)
	for dates[cursor] {
		after++
		cursor = shiftDate(cursor, 1)
		if after > 60 {
			break
		}
	}

	return before + after
}

// LastShiftEnd returns the end time of employeeID's chronologically last
// placed assignment strictly before slotStart, and whether one exists.
func (c *Context) LastShiftEnd(employeeID string, slotStart time.Time) (time.Time, bool) {
	var last time.Time
	found := false
	for _, a := range c.assignmentsByEmp[employeeID] {
		if a.slot.End.Before(slotStart) && (!found || a.slot.End.After(last)) {
			last = a.slot.End
			found = true
		}
	}
	return last, found
}

func shiftDate(date string, delta int) string {
	d, err := model.ParseDate(date)
	if err != nil {
		return date
	}
	return model.FormatDate(d.AddDate(0, 0, delta))
}

// HoursFor computes the hour breakdown slot would produce for employeeID
// if placed, without committing the assignment. Constraints use this to
// evaluate prospective placements against weekly/monthly caps.
func (c *Context) HoursFor(slot model.Slot, employeeID string) (model.Hours, error) {
	return c.computeHours(slot, employeeID)
}

func (c *Context) computeHours(slot model.Slot, employeeID string) (model.Hours, error) {
	emp := c.employeeMap[employeeID]
	req := c.Requirements[slot.RequirementID]

	workDaysPerCycle := req.WorkPattern.WorkDays()
	if workDaysPerCycle == 0 {
		workDaysPerCycle = 5
	}

	workDates := c.workDatesInISOWeek(employeeID, slot.Date)
	weekPosition := hours.WeekPosition(workDates, slot.Date)

	in := hours.Input{
		Start:            slot.Start,
		End:              slot.End,
		Scheme:           emp.Scheme,
		WorkDaysPerCycle: workDaysPerCycle,
		WeekPosition:     weekPosition,
	}
	return hours.Compute(in)
}

func (c *Context) workDatesInISOWeek(employeeID, date string) []string {
	d, err := model.ParseDate(date)
	if err != nil {
		return []string{date}
	}
	week := model.ISOWeekOf(d)

	dates := []string{date}
	for _, a := range c.assignmentsByEmp[employeeID] {
		w, err := a.slot.ISOWeek()
		if err == nil && w == week {
			dates = append(dates, a.slot.Date)
		}
	}
	return dates
}
