package handler

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster"
	"github.com/paiban/roster/pkg/rosterrors"
)

// EmptySlotInput is one explicit unfilled slot supplied directly by the
// caller, bypassing the demand-item/requirement derivation the normal
// solve path uses (§6 "Empty-slots solve endpoint").
type EmptySlotInput struct {
	Date       string
	ShiftCode  string
	Start      string
	End        string
	LocationID string
	OUID       string
}

// EmployeeAssignmentState is one employee's running totals carried
// forward from outside the current solve window.
type EmployeeAssignmentState struct {
	EmployeeID             string
	WeeklyHours            float64
	ConsecutiveWorkingDays int
}

// LockedContext carries the bookkeeping state empty-slots mode needs
// from the run that produced the surrounding (already-filled) roster.
type LockedContext struct {
	CutoffDate         string
	EmployeeAssignments []EmployeeAssignmentState
}

// EmptySlotsSolveRequest is the empty-slots endpoint's body.
type EmptySlotsSolveRequest struct {
	EmptySlots      []EmptySlotInput
	LockedContext   LockedContext
	Employees       []model.Employee
	PlanningHorizon model.PlanningHorizon
	PublicHolidays  []string
}

// EmptySlotsSolveHandler re-solves only the slots the caller explicitly
// names, synthesizing demand-based requirements from them (one
// DailyHeadcount entry per slot) so the request can reuse the regular
// model/solve path (§6).
//
// The LockedContext's per-employee weekly-hour/consecutive-day
// bookkeeping is accepted but not folded into the constraint
// evaluation: the constraint engine derives both figures from placed
// assignments, and this endpoint has no assignment history to replay,
// only the pre-aggregated counters. The C2 weekly-hour and C3
// consecutive-day checks therefore run as if each employee starts this
// window with a clean slate.
func EmptySlotsSolveHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, appErr := decodeRosterRequestRaw(r)
		if appErr != nil {
			respondError(w, appErr)
			return
		}

		var body EmptySlotsSolveRequest
		if err := remarshal(raw, &body); err != nil {
			respondError(w, rosterrors.Wrap(err, rosterrors.CodeInputError, "malformed empty-slots solve request"))
			return
		}
		if len(body.EmptySlots) == 0 {
			respondError(w, rosterrors.InputError("emptySlots", "at least one empty slot is required"))
			return
		}

		demandItems := demandItemsFromEmptySlots(body.EmptySlots)

		req := model.RosterRequest{
			PlanningHorizon: body.PlanningHorizon,
			Employees:       body.Employees,
			DemandItems:     demandItems,
			PublicHolidays:  body.PublicHolidays,
			CutoffDate:      body.LockedContext.CutoffDate,
			EmptySlotsOnly:  true,
		}

		outcome, err := roster.Solve(r.Context(), &req, deps.Config, raw)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, outcome.Output)
	}
}

// demandItemsFromEmptySlots groups explicit slots by (locationId, ouId)
// into one demand item each, folding each slot into a DailyHeadcount
// entry on a single demand-based requirement — the enhanced
// slot-builder variant's native input shape (§4.3).
func demandItemsFromEmptySlots(slots []EmptySlotInput) []model.DemandItem {
	type groupKey struct{ location, ou string }
	groups := map[groupKey][]EmptySlotInput{}
	var order []groupKey
	for _, s := range slots {
		key := groupKey{s.LocationID, s.OUID}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], s)
	}

	var items []model.DemandItem
	for _, key := range order {
		group := groups[key]

		shiftTimes := map[string]EmptySlotInput{}
		headcountByDateShift := map[string]int{}
		var dateShiftOrder []string
		for _, s := range group {
			shiftTimes[s.ShiftCode] = s
			dateShiftKey := s.Date + "|" + s.ShiftCode
			if headcountByDateShift[dateShiftKey] == 0 {
				dateShiftOrder = append(dateShiftOrder, dateShiftKey)
			}
			headcountByDateShift[dateShiftKey]++
		}

		var daily []model.DailyHeadcountEntry
		for _, dateShiftKey := range dateShiftOrder {
			parts := strings.SplitN(dateShiftKey, "|", 2)
			daily = append(daily, model.DailyHeadcountEntry{
				Date:      parts[0],
				ShiftCode: parts[1],
				Headcount: headcountByDateShift[dateShiftKey],
			})
		}

		var shiftDetails []model.ShiftDetails
		for code, s := range shiftTimes {
			shiftDetails = append(shiftDetails, model.ShiftDetails{ShiftCode: code, Start: s.Start, End: s.End})
		}
		sort.Slice(shiftDetails, func(i, j int) bool { return shiftDetails[i].ShiftCode < shiftDetails[j].ShiftCode })

		items = append(items, model.DemandItem{
			DemandID:   fmt.Sprintf("empty-slots-%s-%s", key.location, key.ou),
			LocationID: key.location,
			OUID:       key.ou,
			Shifts:     []model.ShiftSet{{ShiftDetails: shiftDetails}},
			Requirements: []model.Requirement{
				{
					RequirementID:  fmt.Sprintf("empty-slots-%s-%s-req", key.location, key.ou),
					RosteringBasis: model.DemandBased,
					DailyHeadcount: daily,
				},
			},
		})
	}
	return items
}
