// Package icpmp implements the Incremental Configuration Pattern-
// Matching Preprocessor: for each requirement it computes the provably
// minimum headcount, a set of rotation offsets, and a concrete
// assignment of real employees to those offsets.
package icpmp

import (
	"math"
	"sort"

	"github.com/paiban/roster/pkg/model"
)

const (
	defaultMaxAttempts  = 50
	tightBufferPercent  = 25
	looseBufferPercent  = 20
	nominalShiftHours   = 8.0
	partTimeCapLE4Days  = 34.98
	partTimeCapGT4Days  = 29.98
)

// Outcome is the per-requirement ICPMP result.
type Outcome struct {
	RequirementID  string
	LowerBound     int
	N              int
	Offsets        []int
	Employees      []SelectedEmployee
	ForcedFullSpan bool
	TotalUSlots    int
	Warning        string
}

// SelectedEmployee pairs a chosen employee with its rotation offset and
// the rotated pattern it will work.
type SelectedEmployee struct {
	EmployeeID     string
	RotationOffset int
	RotatedPattern model.WorkPattern
}

// Input bundles what ICPMP needs to process a single requirement.
type Input struct {
	Requirement     model.Requirement
	Employees       []*model.Employee // full pool, shared and mutated (ownership) across requirements
	CalendarDays    int               // D: in-scope calendar days for this requirement, PH exclusions applied
	LongestShiftHrs float64           // longest shift duration in the demand, for the C1 pre-filter
	EnableOTAware   bool
	MonthlyOTCapHrs float64
	WeeksPerMonth   float64
}

// Run executes the lower-bound computation, offset search and pool
// selection for one requirement. Failures are reported via a non-empty
// Warning and never panic or abort the caller's batch.
func Run(in Input) Outcome {
	pattern := in.Requirement.WorkPattern
	L := pattern.Len()
	W := pattern.WorkDays()
	hc := in.Requirement.TotalHeadcount()

	out := Outcome{RequirementID: in.Requirement.RequirementID}

	if L == 0 || W == 0 {
		out.Warning = "work pattern has no work days; cannot compute a lower bound"
		return out
	}

	lower := lowerBound(in.Requirement, L, W, hc, in)
	out.LowerBound = lower

	n, offsets, forced, ok := searchFeasibleN(lower, pattern, hc, in.CalendarDays)
	if !ok {
		out.Warning = "no feasible placement found within max_attempts"
		return out
	}
	out.N = n
	out.Offsets = offsets
	out.ForcedFullSpan = forced
	out.TotalUSlots = countUSlots(offsets, pattern, hc, in.CalendarDays)

	selected, warning := selectFromPool(in, n, offsets, pattern)
	out.Employees = selected
	if warning != "" {
		out.Warning = warning
	}
	return out
}

func lowerBound(req model.Requirement, L, W, hc int, in Input) int {
	if req.WorkPattern == nil {
		return hc
	}

	isPartTime := false
	for _, e := range in.Employees {
		if e != nil && e.Scheme == model.SchemeP {
			isPartTime = true
			break
		}
	}

	var effectiveW float64
	if isPartTime {
		workDaysPerWeek := float64(W) / float64(L) * 7.0
		if workDaysPerWeek <= 4 {
			effectiveW = partTimeCapLE4Days / nominalShiftHours
		} else {
			effectiveW = partTimeCapGT4Days / nominalShiftHours
		}
		if in.EnableOTAware && in.WeeksPerMonth > 0 {
			effectiveW += in.MonthlyOTCapHrs / in.WeeksPerMonth / nominalShiftHours
		}
	} else {
		effectiveW = float64(W)
	}

	rawLower := math.Ceil(float64(hc) * float64(L) / effectiveW)

	bufferPercent := tightBufferPercent
	if effectiveW/float64(L) > 0.6 {
		bufferPercent = 0 // loose pattern, no buffer needed
	}
	buffered := math.Ceil(rawLower * (1 + float64(bufferPercent)/100.0))

	lower := int(math.Max(float64(hc), buffered))
	if lower < 1 {
		lower = 1
	}
	return lower
}

// searchFeasibleN tries N = lower, lower+1, ... up to lower+maxAttempts,
// placing offsets evenly and simulating day-by-day coverage.
func searchFeasibleN(lower int, pattern model.WorkPattern, hc, calendarDays int) (n int, offsets []int, forced bool, ok bool) {
	L := pattern.Len()
	for n = lower; n <= lower+defaultMaxAttempts; n++ {
		offsets = evenOffsets(n, L)
		if simulateFeasible(offsets, pattern, hc, calendarDays) {
			if !offsetsSpanFullCycle(offsets, L) {
				forcedOffsets := evenOffsets(L, L)
				if simulateFeasible(forcedOffsets, pattern, hc, calendarDays) {
					return L, forcedOffsets, true, true
				}
			}
			return n, offsets, false, true
		}
	}
	return 0, nil, false, false
}

// evenOffsets places n offsets round-robin across {0, ..., L-1}.
func evenOffsets(n, L int) []int {
	offsets := make([]int, n)
	for i := 0; i < n; i++ {
		offsets[i] = i % L
	}
	return offsets
}

func offsetsSpanFullCycle(offsets []int, L int) bool {
	seen := make(map[int]bool, L)
	for _, o := range offsets {
		seen[o] = true
	}
	return len(seen) == L
}

// simulateFeasible walks the calendar day by day. On each day, every
// offset whose rotated pattern day is a work day (not "O") is available
// to cover one of the hc slots; the rest are absorbed as unassigned on
// the employee side. Coverage is feasible iff every day has at least hc
// employees available to work.
func simulateFeasible(offsets []int, pattern model.WorkPattern, hc, calendarDays int) bool {
	if hc <= 0 {
		return true
	}
	L := pattern.Len()
	for day := 0; day < calendarDays; day++ {
		available := 0
		for _, offset := range offsets {
			patternDay := pattern.PatternDayAt(day, offset)
			if patternDay < L && pattern[patternDay] != model.RestSymbol {
				available++
			}
		}
		if available < hc {
			return false
		}
	}
	return true
}

// countUSlots sums, across every in-scope day, the number of offsets
// whose pattern day says "work" beyond the day's headcount — placements
// the greedy simulation absorbs as unassigned (U-slots) rather than
// emitting as coverage.
func countUSlots(offsets []int, pattern model.WorkPattern, hc, calendarDays int) int {
	L := pattern.Len()
	total := 0
	for day := 0; day < calendarDays; day++ {
		available := 0
		for _, offset := range offsets {
			patternDay := pattern.PatternDayAt(day, offset)
			if patternDay < L && pattern[patternDay] != model.RestSymbol {
				available++
			}
		}
		if available > hc {
			total += available - hc
		}
	}
	return total
}

// selectFromPool filters the pool per §4.7, sorts by fairness, and
// assigns the first n passing employees to the given offsets.
func selectFromPool(in Input, n int, offsets []int, pattern model.WorkPattern) ([]SelectedEmployee, string) {
	candidates := filterCandidates(in)

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].TotalWorkingHours != candidates[j].TotalWorkingHours {
			return candidates[i].TotalWorkingHours < candidates[j].TotalWorkingHours
		}
		return candidates[i].EmployeeID < candidates[j].EmployeeID
	})

	required := n
	if len(candidates) < n {
		// Select the whole pool and drop tail offsets down to its size
		// rather than failing outright; N is not recomputed with a
		// smaller buffer percentage.
		if len(candidates) == 0 {
			return nil, "insufficient employees for requirement"
		}
		n = len(candidates)
		offsets = offsets[:n]
	}

	selected := make([]SelectedEmployee, 0, n)
	for i := 0; i < n; i++ {
		emp := candidates[i]
		emp.ClaimForRequirement(in.Requirement.RequirementID)
		selected = append(selected, SelectedEmployee{
			EmployeeID:     emp.EmployeeID,
			RotationOffset: offsets[i],
			RotatedPattern: pattern.Rotate(offsets[i]),
		})
	}

	warning := ""
	if n < required {
		warning = "insufficient employees for requirement; selected fewer than the computed N"
	}
	return selected, warning
}

func filterCandidates(in Input) []*model.Employee {
	req := in.Requirement
	var out []*model.Employee
	for _, e := range in.Employees {
		if e == nil || e.IsOwned() {
			continue
		}
		if !req.MatchesProductType(e.ProductTypeID) {
			continue
		}
		if !req.MatchesRank(e.RankID) {
			continue
		}
		if len(req.Schemes) > 0 && !model.SchemeCompatible(e.Scheme, req.Schemes) {
			continue
		}
		if req.Gender != "" && req.Gender != e.Gender {
			continue
		}
		if !e.SatisfiesQualificationGroups(req.NormalizedQualificationGroups(), in.Requirement.PatternStartDate) {
			continue
		}
		if in.LongestShiftHrs > schemeDailyCap(e.Scheme) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func schemeDailyCap(s model.Scheme) float64 {
	switch s {
	case model.SchemeA:
		return 14
	case model.SchemeB:
		return 13
	case model.SchemeP:
		return 9
	default:
		return 14
	}
}
