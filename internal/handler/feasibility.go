package handler

import (
	"net/http"
	"time"

	"github.com/paiban/roster/pkg/icpmp"
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/rosterrors"
	"github.com/paiban/roster/pkg/validator"
)

// FeasibilityResponse reports, per requirement, whether enough eligible
// employees exist to source ICPMP's lower bound — without running the
// slot builder or solver (grounded on original_source's
// feasibility_checker.py).
type FeasibilityResponse struct {
	Feasible             bool                      `json:"feasible"`
	LowerBoundPerReq     map[string]int            `json:"lowerBoundPerRequirement"`
	Warnings             map[string]string          `json:"warnings,omitempty"`
}

// FeasibilityHandler runs only validation + ICPMP's lower-bound search,
// giving callers instant feedback before committing to a full (queued)
// solve (§4 supplement).
func FeasibilityHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, appErr := decodeRosterRequestRaw(r)
		if appErr != nil {
			respondError(w, appErr)
			return
		}

		var req model.RosterRequest
		if err := remarshal(raw, &req); err != nil {
			respondError(w, rosterrors.Wrap(err, rosterrors.CodeInputError, "malformed feasibility request"))
			return
		}

		if res := validator.Validate(&req); !res.IsValid {
			appErr := rosterrors.New(rosterrors.CodeInputError, "input validation failed")
			appErr.Fields = map[string]interface{}{"errors": res.Errors}
			respondError(w, appErr)
			return
		}

		employees := make([]*model.Employee, len(req.Employees))
		for i := range req.Employees {
			employees[i] = &req.Employees[i]
		}

		dates, err := req.PlanningHorizon.Dates()
		if err != nil {
			respondError(w, rosterrors.Wrap(err, rosterrors.CodeInputError, "invalid planning horizon"))
			return
		}

		resp := FeasibilityResponse{
			Feasible:         true,
			LowerBoundPerReq: map[string]int{},
			Warnings:         map[string]string{},
		}

		for _, demand := range req.DemandItems {
			for _, r := range demand.Requirements {
				// Mirrors pkg/roster.Solve's gating: ICPMP runs for
				// demand-based requirements, not outcome-based ones.
				if r.RosteringBasis == model.OutcomeBased || r.WorkPattern == nil {
					continue
				}
				out := icpmp.Run(icpmp.Input{
					Requirement:     r,
					Employees:       employees,
					CalendarDays:    len(dates),
					LongestShiftHrs: longestShiftHoursFor(demand),
					EnableOTAware:   req.EnableOTAwareICPMP,
				})
				resp.LowerBoundPerReq[r.RequirementID] = out.N
				if out.Warning != "" {
					resp.Warnings[r.RequirementID] = out.Warning
					resp.Feasible = false
				}
			}
		}

		respondJSON(w, http.StatusOK, resp)
	}
}

func longestShiftHoursFor(demand model.DemandItem) float64 {
	longest := 0.0
	for _, set := range demand.Shifts {
		for _, sd := range set.ShiftDetails {
			h := clockSpanHours(sd.Start, sd.End, sd.NextDay)
			if h > longest {
				longest = h
			}
		}
	}
	return longest
}

// clockSpanHours repeats the per-leg span computation inside pkg/roster's
// unexported longestShiftHours, since that isn't part of the package's
// public API.
func clockSpanHours(start, end string, nextDay bool) float64 {
	s, err := time.Parse("15:04:05", padClockSeconds(start))
	if err != nil {
		return 0
	}
	e, err := time.Parse("15:04:05", padClockSeconds(end))
	if err != nil {
		return 0
	}
	hours := e.Sub(s).Hours()
	if nextDay || hours <= 0 {
		hours += 24
	}
	return hours
}

func padClockSeconds(clock string) string {
	if len(clock) == len("15:04") {
		return clock + ":00"
	}
	return clock
}
