package handler

import (
	"net/http"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster"
	"github.com/paiban/roster/pkg/rosterrors"
)

// TemporalWindow bounds one incremental solve (§6 "Incremental solve
// endpoint"): dates before CutoffDate are locked, the window
// [SolveFromDate, SolveToDate] is re-solved.
type TemporalWindow struct {
	CutoffDate    string
	SolveFromDate string
	SolveToDate   string
}

// EmployeeChanges classifies employees added or removed since the prior
// run, used to free their in-window assignments for re-solve.
type EmployeeChanges struct {
	NewJoiners      []string
	NotAvailableFrom []NotAvailableFrom
	LongLeave        []LongLeave
}

// NotAvailableFrom marks an employee as departed effective from a date.
type NotAvailableFrom struct {
	EmployeeID      string
	NotAvailableFrom string
}

// LongLeave marks an employee unavailable for a date range.
type LongLeave struct {
	EmployeeID string
	LeaveFrom  string
	LeaveTo    string
}

// IncrementalSolveRequest is the incremental endpoint's body.
type IncrementalSolveRequest struct {
	TemporalWindow   TemporalWindow
	PreviousOutput   struct {
		Assignments []model.Assignment
	}
	EmployeeChanges EmployeeChanges
	DemandItems     []model.DemandItem
	Employees       []model.Employee
	PlanningHorizon model.PlanningHorizon
	OUOffsets       []model.OUOffset
	PublicHolidays  []string
}

// IncrementalSolveHandler re-solves a prior roster's re-solve window,
// locking assignments before the cutoff and freeing assignments that
// belong to departed or on-leave employees (§6).
func IncrementalSolveHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, appErr := decodeRosterRequestRaw(r)
		if appErr != nil {
			respondError(w, appErr)
			return
		}

		var body IncrementalSolveRequest
		if err := remarshal(raw, &body); err != nil {
			respondError(w, rosterrors.Wrap(err, rosterrors.CodeInputError, "malformed incremental solve request"))
			return
		}

		if body.TemporalWindow.CutoffDate == "" || body.TemporalWindow.SolveFromDate == "" {
			respondError(w, rosterrors.InputError("temporalWindow", "cutoffDate and solveFromDate are required"))
			return
		}

		departed, onLeave := classifyEmployeeChanges(body.EmployeeChanges)

		priorAssignments := freeAssignments(
			body.PreviousOutput.Assignments,
			body.TemporalWindow.SolveFromDate,
			body.TemporalWindow.SolveToDate,
			departed,
			onLeave,
		)

		req := model.RosterRequest{
			PlanningHorizon:  body.PlanningHorizon,
			Employees:        body.Employees,
			DemandItems:      body.DemandItems,
			OUOffsets:        body.OUOffsets,
			PublicHolidays:   body.PublicHolidays,
			CutoffDate:       body.TemporalWindow.CutoffDate,
			SolveFromDate:    body.TemporalWindow.SolveFromDate,
			PriorAssignments: priorAssignments,
		}

		outcome, err := roster.Solve(r.Context(), &req, deps.Config, raw)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, outcome.Output)
	}
}

// classifyEmployeeChanges flattens the departed/on-leave employee sets
// for freeAssignments' lookup.
func classifyEmployeeChanges(changes EmployeeChanges) (departed map[string]string, onLeave map[string][2]string) {
	departed = map[string]string{}
	for _, d := range changes.NotAvailableFrom {
		departed[d.EmployeeID] = d.NotAvailableFrom
	}
	onLeave = map[string][2]string{}
	for _, l := range changes.LongLeave {
		onLeave[l.EmployeeID] = [2]string{l.LeaveFrom, l.LeaveTo}
	}
	return departed, onLeave
}

// freeAssignments classifies every prior assignment as locked (kept as
// an incoming prior assignment for the new run to honour) or freed (the
// employee departed or is on leave on that date, so the slot is
// excluded and left for the solver to fill afresh).
func freeAssignments(prior []model.Assignment, solveFrom, solveTo string, departed map[string]string, onLeave map[string][2]string) []model.Assignment {
	var kept []model.Assignment
	for _, a := range prior {
		date := a.Start.Format("2006-01-02")
		if inWindow(date, solveFrom, solveTo) {
			if effectiveFrom, ok := departed[a.EmployeeID]; ok && date >= effectiveFrom {
				continue
			}
			if leave, ok := onLeave[a.EmployeeID]; ok && date >= leave[0] && date <= leave[1] {
				continue
			}
		}
		kept = append(kept, a)
	}
	return kept
}

func inWindow(date, from, to string) bool {
	if date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}
