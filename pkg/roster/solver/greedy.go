package solver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
)

// Statistics summarises one solve run for the output builder's
// solutionQuality section (§4.6).
type Statistics struct {
	TotalSlots       int
	AssignedSlots    int
	CoverageRate     float64
	TotalHours       float64
	ActiveEmployees  int
	Iterations       int
}

// Result is the greedy solver's output: the assignments it produced
// plus the full constraint evaluation of the final roster.
type Result struct {
	RunID            string
	Assignments      []model.Assignment
	Statistics       Statistics
	ConstraintResult *constraint.Result
	Duration         time.Duration
	Success          bool
	Message          string
}

// GreedySolver visits slots in date then shift-code order and offers
// each to its eligible employees least-loaded first, checking hard
// constraints before each placement. A demand-based slot takes at most
// one employee and a cell stops filling once its headcount target is
// met; an outcome-based slot takes every candidate that passes.
// Soft-constraint penalties are not consulted during the fill, only in
// the final evaluation. Generalizes the teacher's two-phase balanced
// GreedySolver.
type GreedySolver struct {
	manager       *constraint.Manager
	maxIterations int
}

// NewGreedySolver builds a solver bound to the given constraint
// manager.
func NewGreedySolver(manager *constraint.Manager) *GreedySolver {
	return &GreedySolver{manager: manager, maxIterations: 200000}
}

// SetMaxIterations overrides the default iteration ceiling (a backstop
// against pathological inputs, not a tuning knob for normal runs).
func (s *GreedySolver) SetMaxIterations(n int) { s.maxIterations = n }

// Solve runs the round-robin greedy fill over model against requirements
// keyed by RequirementID, returning assignments plus the final
// constraint evaluation.
func (s *GreedySolver) Solve(ctx context.Context, evalCtx *constraint.Context, m *Model, requirements map[string]model.Requirement) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}

	if len(evalCtx.Employees) == 0 {
		return result, fmt.Errorf("no employees available to solve against")
	}

	slotsByID := map[string]model.Slot{}
	var orderedSlotIDs []string
	for _, p := range m.Pairs {
		if _, seen := slotsByID[p.Slot.SlotID]; !seen {
			orderedSlotIDs = append(orderedSlotIDs, p.Slot.SlotID)
		}
		slotsByID[p.Slot.SlotID] = p.Slot
	}
	sort.Slice(orderedSlotIDs, func(i, j int) bool {
		a, b := slotsByID[orderedSlotIDs[i]], slotsByID[orderedSlotIDs[j]]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.ShiftCode < b.ShiftCode
	})

	iterations := 0
	employeeTotalHours := map[string]float64{}

	for _, slotID := range orderedSlotIDs {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		iterations++
		if iterations > s.maxIterations {
			break
		}

		slot := slotsByID[slotID]
		req := requirements[slot.RequirementID]
		target := req.HeadcountFor(slot.ShiftCode)
		if target <= 0 && slot.RosteringBasis != model.OutcomeBased {
			continue
		}

		candidates := append([]string{}, m.CandidatesFor(slotID)...)
		sort.Slice(candidates, func(i, j int) bool {
			return employeeTotalHours[candidates[i]] < employeeTotalHours[candidates[j]]
		})

		for _, empID := range candidates {
			if evalCtx.CellCount(slot.Date, slot.ShiftCode) >= target && slot.RosteringBasis != model.OutcomeBased {
				break
			}

			canPlace, _ := s.manager.CanPlace(evalCtx, slot, empID)
			if !canPlace {
				continue
			}

			h, err := evalCtx.HoursFor(slot, empID)
			if err != nil {
				continue
			}
			if err := evalCtx.Place(slot, empID); err != nil {
				continue
			}

			patternDay, _ := slot.PatternDay()
			result.Assignments = append(result.Assignments, model.Assignment{
				SlotID:     slot.SlotID,
				EmployeeID: empID,
				Status:     model.StatusAssigned,
				Start:      slot.Start,
				End:        slot.End,
				ShiftCode:  slot.ShiftCode,
				PatternDay: patternDay,
				Hours:      h,
			})
			employeeTotalHours[empID] += h.Gross
			if slot.RosteringBasis != model.OutcomeBased {
				break // the cell's other headcount positions are separate slots
			}
		}
	}

	result.ConstraintResult = s.manager.Evaluate(evalCtx)
	result.Success = result.ConstraintResult.IsValid
	result.Duration = time.Since(start)
	result.Statistics = buildStatistics(orderedSlotIDs, result.Assignments, employeeTotalHours, iterations)

	if !result.Success {
		result.Message = fmt.Sprintf("%d hard constraint violations remain", len(result.ConstraintResult.HardViolations))
	} else {
		result.Message = fmt.Sprintf("solved with %.1f%% coverage", result.Statistics.CoverageRate)
	}

	return result, nil
}

func buildStatistics(slotIDs []string, assignments []model.Assignment, hoursByEmployee map[string]float64, iterations int) Statistics {
	stats := Statistics{TotalSlots: len(slotIDs), AssignedSlots: len(assignments), Iterations: iterations}
	if stats.TotalSlots > 0 {
		stats.CoverageRate = float64(stats.AssignedSlots) / float64(stats.TotalSlots) * 100
	}
	for _, h := range hoursByEmployee {
		stats.TotalHours += h
		if h > 0 {
			stats.ActiveEmployees++
		}
	}
	return stats
}
