package output

import (
	"sort"

	"github.com/paiban/roster/pkg/model"
)

type coverageCell struct {
	date, shiftCode string
}

// buildDailyCoverage reports fill rate per (date, shiftCode) cell, used
// only in v2-mode output (§4.6).
func buildDailyCoverage(slots []model.Slot, assignments []model.Assignment, requirements map[string]model.Requirement) []DailyCoverageEntry {
	target := map[coverageCell]int{}
	dayType := map[coverageCell]model.DayType{}
	bySlotID := make(map[string]model.Slot, len(slots))

	for _, s := range slots {
		bySlotID[s.SlotID] = s
		c := coverageCell{s.Date, s.ShiftCode}
		if _, seen := target[c]; !seen {
			req := requirements[s.RequirementID]
			target[c] = req.HeadcountFor(s.ShiftCode)
			dayType[c] = s.DayType
		}
	}

	assignedCount := map[coverageCell]int{}
	for _, a := range assignments {
		if !a.IsWorking() {
			continue
		}
		slot, ok := bySlotID[a.SlotID]
		if !ok {
			continue
		}
		assignedCount[coverageCell{slot.Date, slot.ShiftCode}]++
	}

	out := make([]DailyCoverageEntry, 0, len(target))
	for c, want := range target {
		assigned := assignedCount[c]
		rate := 0.0
		if want > 0 {
			rate = 100.0 * float64(assigned) / float64(want)
		}
		out = append(out, DailyCoverageEntry{
			Date:            c.date,
			ShiftCode:       c.shiftCode,
			DayType:         dayType[c],
			TargetHeadcount: want,
			AssignedCount:   assigned,
			CoverageRate:    rate,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ShiftCode < out[j].ShiftCode
	})
	return out
}
