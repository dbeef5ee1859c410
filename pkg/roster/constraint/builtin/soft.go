package builtin

import (
	"math"
	"time"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
)

// WorkloadBalanceConstraint is S1: penalises deviation of each
// employee's total placed gross hours from the pool average, identical
// in spirit to the teacher's workload fairness constraint.
type WorkloadBalanceConstraint struct {
	*BaseConstraint
	tolerancePercent float64
}

func NewWorkloadBalanceConstraint(weight int, tolerancePercent float64) *WorkloadBalanceConstraint {
	return &WorkloadBalanceConstraint{
		BaseConstraint:   NewBaseConstraint("workload balance", constraint.TypeWorkloadBalance, constraint.CategorySoft, weight),
		tolerancePercent: tolerancePercent,
	}
}

func (c *WorkloadBalanceConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	if len(ctx.Employees) < 2 {
		return true, 0, nil
	}

	hours := make([]float64, len(ctx.Employees))
	for i, emp := range ctx.Employees {
		for _, a := range ctx.Assignments(emp.EmployeeID) {
			hours[i] += a.Hours().Gross
		}
	}
	avg, _ := meanAndStdDev(hours)
	tolerance := avg * c.tolerancePercent / 100

	var violations []constraint.ViolationDetail
	totalPenalty := 0
	for i, emp := range ctx.Employees {
		deviation := hours[i] - avg
		if math.Abs(deviation) > tolerance {
			penalty := int(math.Abs(deviation) * float64(c.Weight()) / (avg + 1))
			totalPenalty += penalty
			violations = append(violations, c.Violation(emp.EmployeeID, "", "",
				fmtMessage("employee %s has %.1fh, deviating %.1fh from the pool average %.1fh", emp.EmployeeID, hours[i], deviation, avg),
				penalty))
		}
	}
	return true, totalPenalty, violations
}

// MinimizeOvertimeConstraint is S2: penalises every hour of OT already
// placed, nudging the solver toward normal-hour coverage first.
type MinimizeOvertimeConstraint struct {
	*BaseConstraint
}

func NewMinimizeOvertimeConstraint(weight int) *MinimizeOvertimeConstraint {
	return &MinimizeOvertimeConstraint{
		BaseConstraint: NewBaseConstraint("minimize overtime", constraint.TypeMinimizeOvertime, constraint.CategorySoft, weight),
	}
}

func (c *MinimizeOvertimeConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	h, err := ctx.HoursFor(slot, employeeID)
	if err != nil || h.OT <= 0 {
		return true, 0
	}
	return true, int(h.OT * float64(c.Weight()))
}

// EmployeePreferenceConstraint is S3: rewards assigning employees to
// shift codes present in their whitelist, without hard-excluding the
// rest (that exclusion lives in C10).
type EmployeePreferenceConstraint struct {
	*BaseConstraint
}

func NewEmployeePreferenceConstraint(weight int) *EmployeePreferenceConstraint {
	return &EmployeePreferenceConstraint{
		BaseConstraint: NewBaseConstraint("employee preference", constraint.TypePreference, constraint.CategorySoft, weight),
	}
}

func (c *EmployeePreferenceConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	emp := ctx.Employee(employeeID)
	if emp == nil || len(emp.WhitelistShiftCodes) == 0 {
		return true, 0
	}
	if containsCode(emp.WhitelistShiftCodes, slot.ShiftCode) {
		return true, 0
	}
	return true, c.Weight() / 10
}

// ConsecutiveNightsConstraint is S4: penalises runs of consecutive
// night-coded shifts beyond a short tolerance.
type ConsecutiveNightsConstraint struct {
	*BaseConstraint
	nightShiftCode string
	tolerance      int
}

func NewConsecutiveNightsConstraint(weight int, nightShiftCode string, tolerance int) *ConsecutiveNightsConstraint {
	return &ConsecutiveNightsConstraint{
		BaseConstraint: NewBaseConstraint("minimize consecutive nights", constraint.TypeConsecutiveNights, constraint.CategorySoft, weight),
		nightShiftCode: nightShiftCode,
		tolerance:      tolerance,
	}
}

func (c *ConsecutiveNightsConstraint) EvaluateAssignment(ctx *constraint.Context, slot model.Slot, employeeID string) (bool, int) {
	if slot.ShiftCode != c.nightShiftCode {
		return true, 0
	}
	streak := 0
	cursor := slot.Date
	nights := make(map[string]bool)
	for _, a := range ctx.Assignments(employeeID) {
		if a.Slot().ShiftCode == c.nightShiftCode {
			nights[a.Slot().Date] = true
		}
	}
	for {
		cursor = dateMinusOne(cursor)
		if !nights[cursor] {
			break
		}
		streak++
		if streak > 60 {
			break
		}
	}
	if streak+1 > c.tolerance {
		return true, (streak + 1 - c.tolerance) * c.Weight()
	}
	return true, 0
}

// ShiftVarietyConstraint is S5: mildly penalises an employee working
// the identical shift code on every placed date, encouraging rotation.
type ShiftVarietyConstraint struct {
	*BaseConstraint
}

func NewShiftVarietyConstraint(weight int) *ShiftVarietyConstraint {
	return &ShiftVarietyConstraint{
		BaseConstraint: NewBaseConstraint("shift variety", constraint.TypeShiftVariety, constraint.CategorySoft, weight),
	}
}

func (c *ShiftVarietyConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	totalPenalty := 0
	for _, emp := range ctx.Employees {
		codes := map[string]int{}
		total := 0
		for _, a := range ctx.Assignments(emp.EmployeeID) {
			codes[a.Slot().ShiftCode]++
			total++
		}
		if total < 4 || len(codes) > 1 {
			continue
		}
		penalty := c.Weight() / 5
		totalPenalty += penalty
		violations = append(violations, c.Violation(emp.EmployeeID, "", "",
			fmtMessage("employee %s has no shift-code variety across %d placed shifts", emp.EmployeeID, total), penalty))
	}
	return true, totalPenalty, violations
}

// WeekendFairnessConstraint is S6: penalises deviation of each
// employee's weekend-shift count from the pool average.
type WeekendFairnessConstraint struct {
	*BaseConstraint
}

func NewWeekendFairnessConstraint(weight int) *WeekendFairnessConstraint {
	return &WeekendFairnessConstraint{
		BaseConstraint: NewBaseConstraint("weekend fairness", constraint.TypeWeekendFairness, constraint.CategorySoft, weight),
	}
}

func (c *WeekendFairnessConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	if len(ctx.Employees) < 2 {
		return true, 0, nil
	}

	counts := make([]float64, len(ctx.Employees))
	for i, emp := range ctx.Employees {
		for _, a := range ctx.Assignments(emp.EmployeeID) {
			if isWeekendDate(a.Slot().Date) {
				counts[i]++
			}
		}
	}
	avg, _ := meanAndStdDev(counts)

	var violations []constraint.ViolationDetail
	totalPenalty := 0
	for i, emp := range ctx.Employees {
		deviation := counts[i] - avg
		if math.Abs(deviation) > 1 {
			penalty := int(math.Abs(deviation)) * c.Weight() / 4
			totalPenalty += penalty
			violations = append(violations, c.Violation(emp.EmployeeID, "", "",
				fmtMessage("employee %s worked %.0f weekend shifts, deviating %.1f from average %.1f", emp.EmployeeID, counts[i], deviation, avg),
				penalty))
		}
	}
	return true, totalPenalty, violations
}

func meanAndStdDev(values []float64) (avg, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg = sum / float64(len(values))

	var sumSquares float64
	for _, v := range values {
		d := v - avg
		sumSquares += d * d
	}
	stdDev = math.Sqrt(sumSquares / float64(len(values)))
	return avg, stdDev
}

func isWeekendDate(date string) bool {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return false
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func dateMinusOne(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, -1).Format(model.DateLayout)
}
