// Package slotbuilder materialises the flat slot list from demand items
// (§4.3): one default fan-out variant, one daily-headcount override
// variant, and one template-replication variant for outcome-based mode.
package slotbuilder

import (
	"fmt"
	"time"

	"github.com/paiban/roster/pkg/model"
)

// Holidays is a lookup set of public-holiday civil dates.
type Holidays map[string]bool

// NewHolidays builds a lookup set from a flat date list.
func NewHolidays(dates []string) Holidays {
	h := make(Holidays, len(dates))
	for _, d := range dates {
		h[d] = true
	}
	return h
}

func (h Holidays) isHoliday(date string) bool { return h[date] }

func (h Holidays) isEveOfHoliday(date string) bool {
	d, err := model.ParseDate(date)
	if err != nil {
		return false
	}
	return h.isHoliday(model.FormatDate(d.AddDate(0, 0, 1)))
}

func (h Holidays) dayType(date string) model.DayType {
	switch {
	case h.isHoliday(date):
		return model.DayTypePublicHoliday
	case h.isEveOfHoliday(date):
		return model.DayTypeEveOfPH
	default:
		return model.DayTypeNormal
	}
}

// Build materialises every slot for req, dispatching per requirement to
// the default, daily-headcount, or outcome-based variant.
func Build(req *model.RosterRequest) ([]model.Slot, error) {
	holidays := NewHolidays(req.PublicHolidays)
	dates, err := req.PlanningHorizon.Dates()
	if err != nil {
		return nil, err
	}

	var slots []model.Slot
	for _, demand := range req.DemandItems {
		for _, r := range demand.Requirements {
			var built []model.Slot
			var buildErr error

			switch {
			case r.RosteringBasis == model.OutcomeBased:
				built, buildErr = buildOutcomeBased(demand, r, req.OUOffsets, dates)
			case r.DailyHeadcount != nil:
				built, buildErr = buildDailyHeadcount(demand, r, holidays)
			default:
				built, buildErr = buildDefault(demand, r, holidays, dates)
			}
			if buildErr != nil {
				return nil, buildErr
			}
			slots = append(slots, built...)
		}
	}
	return slots, nil
}

// buildDefault is the standard fan-out: one slot per (date, shiftCode,
// headcount position) for every date whose weekday is covered and whose
// public-holiday state matches the shift's inclusion flags.
func buildDefault(demand model.DemandItem, r model.Requirement, holidays Holidays, dates []string) ([]model.Slot, error) {
	var slots []model.Slot

	patternShiftCodes := map[string]bool{}
	for _, code := range r.WorkPattern {
		if code != model.RestSymbol {
			patternShiftCodes[code] = true
		}
	}

	for _, ss := range demand.Shifts {
		for _, date := range dates {
			if !dateCovered(date, ss) {
				continue
			}
			dt := holidays.dayType(date)
			if dt == model.DayTypePublicHoliday && !ss.IncludePublicHolidays {
				continue
			}
			if dt == model.DayTypeEveOfPH && !ss.IncludeEveOfPublicHolidays {
				continue
			}

			for _, sd := range ss.ShiftDetails {
				if len(patternShiftCodes) > 0 && !patternShiftCodes[sd.ShiftCode] {
					continue
				}
				headcount := r.HeadcountFor(sd.ShiftCode)
				for p := 0; p < headcount; p++ {
					slot, err := newSlot(demand, r, sd, date, ss, dt, p)
					if err != nil {
						return nil, err
					}
					slots = append(slots, slot)
				}
			}
		}
	}
	return slots, nil
}

// buildDailyHeadcount emits slots only from the per-date override table:
// each (date, shiftCode) entry yields its headcount of slots with its
// optional time overrides, and an entry without a day type gets the
// holiday-set inference. Dates and shift codes with no entry emit no
// slots; the static headcount is not used as a fallback.
func buildDailyHeadcount(demand model.DemandItem, r model.Requirement, holidays Holidays) ([]model.Slot, error) {
	byKey := make(map[string]model.DailyHeadcountEntry, len(r.DailyHeadcount))
	for _, e := range r.DailyHeadcount {
		byKey[e.Date+"|"+e.ShiftCode] = e
	}

	var slots []model.Slot
	for _, ss := range demand.Shifts {
		for _, sd := range ss.ShiftDetails {
			for key, entry := range byKey {
				if entry.ShiftCode != sd.ShiftCode {
					continue
				}
				_ = key
				if entry.Headcount <= 0 {
					continue
				}
				leg := sd
				if entry.StartTimeOverride != "" {
					leg.Start = entry.StartTimeOverride
				}
				if entry.EndTimeOverride != "" {
					leg.End = entry.EndTimeOverride
				}
				dt := entry.DayType
				if dt == "" {
					dt = holidays.dayType(entry.Date)
				}
				for p := 0; p < entry.Headcount; p++ {
					slot, err := newSlot(demand, r, leg, entry.Date, ss, dt, p)
					if err != nil {
						return nil, err
					}
					slots = append(slots, slot)
				}
			}
		}
	}
	return slots, nil
}

// buildOutcomeBased produces one slot per (employee-offset, date) using
// each OU's fixed rotation offset rather than per-day headcount fan-out.
func buildOutcomeBased(demand model.DemandItem, r model.Requirement, ouOffsets []model.OUOffset, dates []string) ([]model.Slot, error) {
	offset := 0
	for _, o := range ouOffsets {
		if o.OUID == demand.OUID {
			offset = o.RotationOffset
			break
		}
	}

	var slots []model.Slot
	L := r.WorkPattern.Len()
	if L == 0 {
		return nil, nil
	}

	for i, date := range dates {
		patternDay := r.WorkPattern.PatternDayAt(i, offset)
		code := r.WorkPattern[patternDay]
		if code == model.RestSymbol {
			continue
		}
		for _, ss := range demand.Shifts {
			for _, sd := range ss.ShiftDetails {
				if sd.ShiftCode != code {
					continue
				}
				slot, err := newSlot(demand, r, sd, date, ss, model.DayTypeNormal, 0)
				if err != nil {
					return nil, err
				}
				slots = append(slots, slot)
			}
		}
	}
	return slots, nil
}

func dateCovered(date string, ss model.ShiftSet) bool {
	if len(ss.CoverageDays) == 0 {
		return true
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return false
	}
	for _, wd := range ss.CoverageDays {
		if d.Weekday() == wd {
			return true
		}
	}
	return false
}

func newSlot(demand model.DemandItem, r model.Requirement, sd model.ShiftDetails, date string, ss model.ShiftSet, dt model.DayType, position int) (model.Slot, error) {
	start, end, err := shiftTimes(date, sd)
	if err != nil {
		return model.Slot{}, err
	}

	return model.Slot{
		SlotID:                      fmt.Sprintf("%s|%s|%s|%s|%d", demand.DemandID, r.RequirementID, date, sd.ShiftCode, position),
		DemandID:                    demand.DemandID,
		RequirementID:               r.RequirementID,
		Date:                        date,
		ShiftCode:                   sd.ShiftCode,
		Start:                       start,
		End:                         end,
		LocationID:                  demand.LocationID,
		OUID:                        demand.OUID,
		RankIDs:                     r.RankIDs,
		ProductTypeIDs:              r.ProductTypeIDs,
		Gender:                      r.Gender,
		Schemes:                     r.Schemes,
		RequiredQualificationGroups: r.NormalizedQualificationGroups(),
		PatternStartDate:            r.PatternStartDate,
		CoverageAnchor:              ss.CoverageAnchor,
		CoverageDays:                ss.CoverageDays,
		DayType:                     dt,
		RosteringBasis:              r.RosteringBasis,
	}, nil
}

func shiftTimes(date string, sd model.ShiftDetails) (time.Time, time.Time, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, err := parseClockOnDate(d, sd.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseClockOnDate(d, sd.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if sd.NextDay || !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

func parseClockOnDate(date time.Time, clock string) (time.Time, error) {
	layouts := []string{"15:04:05", "15:04"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, clock)
		if err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
