package output

import (
	"sort"

	"github.com/paiban/roster/pkg/model"
)

// synthesizeEmployeeRoster fans out every employee across every civil
// date in horizon, filling in a solver-found assignment where one
// exists and otherwise deriving the day's disposition from the
// employee's own work pattern and rotation offset (§4.6: "OFF_DAY
// entries are synthesised from pattern+offset even when the employee
// has no solver output for that date").
func synthesizeEmployeeRoster(
	employees []*model.Employee,
	requirements map[string]model.Requirement,
	byEmployee map[string][]model.Assignment,
	horizon model.PlanningHorizon,
) ([]EmployeeRosterEntry, RosterSummary, error) {
	dates, err := horizon.Dates()
	if err != nil {
		return nil, RosterSummary{}, err
	}

	var roster []EmployeeRosterEntry
	var summary RosterSummary

	for _, emp := range employees {
		assignedByDate := map[string]model.Assignment{}
		for _, a := range byEmployee[emp.EmployeeID] {
			assignedByDate[model.FormatDate(a.Start)] = a
		}

		anchor := patternAnchor(emp, requirements, horizon)

		entry := EmployeeRosterEntry{
			EmployeeID:     emp.EmployeeID,
			RotationOffset: emp.RotationOffset,
			WorkPattern:    emp.WorkPattern,
		}

		for _, date := range dates {
			if a, ok := assignedByDate[date]; ok {
				entry.DailyStatus = append(entry.DailyStatus, DailyStatusEntry{
					Date: date, Status: model.StatusAssigned, ShiftCode: a.ShiftCode, PatternDay: a.PatternDay,
				})
				summary.TotalAssigned++
				continue
			}

			status, shiftCode, patternDay := offPatternStatus(emp, anchor, date)
			entry.DailyStatus = append(entry.DailyStatus, DailyStatusEntry{
				Date: date, Status: status, ShiftCode: shiftCode, PatternDay: patternDay,
			})
			switch status {
			case model.StatusOffDay:
				summary.TotalOffDay++
			case model.StatusNotUsed:
				summary.TotalNotUsed++
			default:
				summary.TotalUnassigned++
			}
		}

		roster = append(roster, entry)
	}

	sort.Slice(roster, func(i, j int) bool { return roster[i].EmployeeID < roster[j].EmployeeID })
	return roster, summary, nil
}

// patternAnchor resolves the pattern start date that dayOffset is
// computed against: the requirement that owns the employee (ICPMP
// claims an employee for exactly one requirement), falling back to the
// horizon start when the employee is unowned.
func patternAnchor(emp *model.Employee, requirements map[string]model.Requirement, horizon model.PlanningHorizon) string {
	if req, ok := requirements[emp.OwnedByRequirement()]; ok && req.PatternStartDate != "" {
		return req.PatternStartDate
	}
	return horizon.StartDate
}

func offPatternStatus(emp *model.Employee, anchor, date string) (model.SlotStatus, string, int) {
	if len(emp.WorkPattern) == 0 {
		return model.StatusNotUsed, "", 0
	}
	anchorDate, err := model.ParseDate(anchor)
	if err != nil {
		return model.StatusNotUsed, "", 0
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return model.StatusNotUsed, "", 0
	}

	offset := int(d.Sub(anchorDate).Hours() / 24)
	patternDay := emp.WorkPattern.PatternDayAt(offset, emp.RotationOffset)
	code := emp.WorkPattern[patternDay]
	if code == model.RestSymbol {
		return model.StatusOffDay, code, patternDay
	}
	return model.StatusUnassigned, code, patternDay
}
