// Package output assembles the solve-result document from a completed
// roster: assignments, per-employee daily status, roster totals,
// solution-quality grading, and the audit metadata block (§4.6).
package output

import (
	"math"
	"sort"
	"time"

	"github.com/paiban/roster/pkg/icpmp"
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
)

// SolverRun carries the provenance of one solve attempt.
type SolverRun struct {
	RunID           string
	SolverVersion   string
	StartedAt       time.Time
	Ended           time.Time
	DurationSeconds float64
	Status          string
}

// Score is the overall/hard/soft breakdown the output schema reports
// alongside the detailed ScoreBreakdown.
type Score struct {
	Overall float64
	Hard    float64
	Soft    float64
}

// ScoreBreakdown aggregates violations by constraint type.
type ScoreBreakdown struct {
	ConstraintType string
	Penalty        int
	ViolationCount int
}

// AssignmentOut is one emitted work assignment with its full hour
// breakdown.
type AssignmentOut struct {
	SlotID     string
	EmployeeID string
	Date       string
	ShiftCode  string
	Start      time.Time
	End        time.Time
	PatternDay int
	Hours      model.Hours
	AuditInfo  *model.AuditInfo
}

// DailyStatusEntry is one civil date's disposition for an employee.
type DailyStatusEntry struct {
	Date       string
	Status     model.SlotStatus
	ShiftCode  string
	PatternDay int
}

// EmployeeRosterEntry is one employee's full-horizon daily status list.
type EmployeeRosterEntry struct {
	EmployeeID     string
	RotationOffset int
	WorkPattern    model.WorkPattern
	DailyStatus    []DailyStatusEntry
}

// RosterSummary totals the employeeRoster's daily statuses across all
// employees.
type RosterSummary struct {
	TotalAssigned   int
	TotalOffDay     int
	TotalUnassigned int
	TotalNotUsed    int
}

// QualityGrade is the solve's overall graded quality.
type QualityGrade string

const (
	GradeOptimal    QualityGrade = "OPTIMAL"
	GradeExcellent  QualityGrade = "EXCELLENT"
	GradeVeryGood   QualityGrade = "VERY_GOOD"
	GradeGood       QualityGrade = "GOOD"
	GradeAcceptable QualityGrade = "ACCEPTABLE"
	GradeInfeasible QualityGrade = "INFEASIBLE"
	GradeUnknown    QualityGrade = "UNKNOWN"
)

// SolutionQuality is the graded summary used by callers to decide
// whether a solve is good enough to accept without review.
type SolutionQuality struct {
	QualityGrade     QualityGrade
	CoverageRate     float64
	WorkloadVariance float64
	UtilizationRate  float64
}

// EmployeeHours is one employee's per-ISO-week normal hours and
// per-calendar-month overtime hours.
type EmployeeHours struct {
	WeeklyNormal map[string]float64
	MonthlyOT    map[string]float64
}

// Meta carries the audit-trail fields: the input fingerprint and the
// per-employee hour ledgers.
type Meta struct {
	InputHash     string
	EmployeeHours map[string]EmployeeHours
}

// DailyCoverageEntry is one (date, shiftCode) cell's fill rate, emitted
// only in v2-mode output.
type DailyCoverageEntry struct {
	Date            string
	ShiftCode       string
	DayType         model.DayType
	TargetHeadcount int
	AssignedCount   int
	CoverageRate    float64
}

// ICPMPRequirementMeta is one requirement's preprocessor result, carried
// in the output document so a caller can audit ICPMP's lower bound and
// offset search without re-running it (§4.2 testable property 8).
type ICPMPRequirementMeta struct {
	RequirementID      string
	LowerBound         int
	EmployeesRequired  int // N: the provably minimum headcount the search settled on
	SelectedCount      int
	OffsetDistribution map[int]int // rotation offset -> count of employees assigned to it
	ForcedFullSpan     bool
	CoverageRate       float64
	TotalUSlots        int
	Warning            string
}

// IncrementalSolveInfo is the audit block attached to incremental-mode
// output.
type IncrementalSolveInfo struct {
	CutoffDate             string
	SolveFromDate          string
	SolveToDate            string
	LockedAssignmentsCount int
	NewAssignmentsCount    int
	SolvableSlots          int
	UnassignedSlots        int
}

// Output is the full solve-result document (§4.6).
type Output struct {
	SolverRun        SolverRun
	Score            Score
	ScoreBreakdown   []ScoreBreakdown
	Assignments      []AssignmentOut
	EmployeeRoster   []EmployeeRosterEntry
	RosterSummary    RosterSummary
	SolutionQuality  SolutionQuality
	Meta             Meta
	ICPMPMetadata    []ICPMPRequirementMeta `json:",omitempty"`
	DailyCoverage    []DailyCoverageEntry   `json:",omitempty"`
	IncrementalSolve *IncrementalSolveInfo  `json:",omitempty"`
}

// BuildOptions parameterises the parts of the output that vary by solve
// mode.
type BuildOptions struct {
	SolverVersion string
	APIVersion    int // 2 enables DailyCoverage (§4.6 v2 mode)
	Incremental   *IncrementalSolveInfo
}

// Build assembles the full output document from one completed solve.
func Build(
	runID string,
	startedAt, ended time.Time,
	status string,
	result *constraint.Result,
	assignments []model.Assignment,
	slots []model.Slot,
	employees []*model.Employee,
	requirements map[string]model.Requirement,
	icpmpResults map[string]icpmp.Outcome,
	horizon model.PlanningHorizon,
	rawInput map[string]interface{},
	opts BuildOptions,
) (*Output, error) {
	byEmployee := map[string][]model.Assignment{}
	for _, a := range assignments {
		if !a.IsWorking() {
			continue
		}
		byEmployee[a.EmployeeID] = append(byEmployee[a.EmployeeID], a)
	}

	roster, summary, err := synthesizeEmployeeRoster(employees, requirements, byEmployee, horizon)
	if err != nil {
		return nil, err
	}

	employeeHours, err := buildEmployeeHours(byEmployee)
	if err != nil {
		return nil, err
	}

	inputHash := ""
	if rawInput != nil {
		inputHash, err = InputHash(rawInput)
		if err != nil {
			return nil, err
		}
	}

	coverageRate := 0.0
	if len(slots) > 0 {
		coverageRate = 100.0 * float64(len(assignments)) / float64(len(slots))
	}
	workloadVariance := shiftCountStdDev(byEmployee)
	utilizationRate := utilization(byEmployee, horizon)

	out := &Output{
		SolverRun: SolverRun{
			RunID:           runID,
			SolverVersion:   opts.SolverVersion,
			StartedAt:       startedAt,
			Ended:           ended,
			DurationSeconds: ended.Sub(startedAt).Seconds(),
			Status:          status,
		},
		Score:          computeScore(result),
		ScoreBreakdown: buildScoreBreakdown(result),
		Assignments:    buildAssignmentsOut(assignments),
		EmployeeRoster: roster,
		RosterSummary:  summary,
		SolutionQuality: SolutionQuality{
			QualityGrade:     grade(status, coverageRate, workloadVariance, utilizationRate),
			CoverageRate:     coverageRate,
			WorkloadVariance: workloadVariance,
			UtilizationRate:  utilizationRate,
		},
		Meta: Meta{
			InputHash:     inputHash,
			EmployeeHours: employeeHours,
		},
		ICPMPMetadata:    buildICPMPMetadata(icpmpResults),
		IncrementalSolve: opts.Incremental,
	}

	if opts.APIVersion >= 2 {
		out.DailyCoverage = buildDailyCoverage(slots, assignments, requirements)
	}

	return out, nil
}

// buildICPMPMetadata projects the preprocessor's per-requirement
// outcomes into the output document's audit shape, sorted by
// requirement ID for deterministic output.
func buildICPMPMetadata(results map[string]icpmp.Outcome) []ICPMPRequirementMeta {
	if len(results) == 0 {
		return nil
	}
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]ICPMPRequirementMeta, 0, len(ids))
	for _, id := range ids {
		res := results[id]
		offsetDist := map[int]int{}
		for _, sel := range res.Employees {
			offsetDist[sel.RotationOffset]++
		}
		coverageRate := 0.0
		if res.Warning == "" && res.N > 0 {
			coverageRate = 100.0
		}
		out = append(out, ICPMPRequirementMeta{
			RequirementID:      res.RequirementID,
			LowerBound:         res.LowerBound,
			EmployeesRequired:  res.N,
			SelectedCount:      len(res.Employees),
			OffsetDistribution: offsetDist,
			ForcedFullSpan:     res.ForcedFullSpan,
			CoverageRate:       coverageRate,
			TotalUSlots:        res.TotalUSlots,
			Warning:            res.Warning,
		})
	}
	return out
}

func buildAssignmentsOut(assignments []model.Assignment) []AssignmentOut {
	out := make([]AssignmentOut, 0, len(assignments))
	for _, a := range assignments {
		if !a.IsWorking() {
			continue
		}
		out = append(out, AssignmentOut{
			SlotID:     a.SlotID,
			EmployeeID: a.EmployeeID,
			Date:       model.FormatDate(a.Start),
			ShiftCode:  a.ShiftCode,
			Start:      a.Start,
			End:        a.End,
			PatternDay: a.PatternDay,
			Hours:      a.Hours,
			AuditInfo:  a.AuditInfo,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

func computeScore(result *constraint.Result) Score {
	if result == nil {
		return Score{}
	}
	hard := 100.0
	if len(result.HardViolations) > 0 {
		hard = 0.0
	}
	softPenalty := 0
	for _, v := range result.SoftViolations {
		softPenalty += v.Penalty
	}
	soft := math.Max(0, 100.0-float64(softPenalty))
	return Score{Overall: result.Score, Hard: hard, Soft: soft}
}

func buildScoreBreakdown(result *constraint.Result) []ScoreBreakdown {
	if result == nil {
		return nil
	}
	counts := map[constraint.Type]*ScoreBreakdown{}
	var order []constraint.Type

	add := func(v constraint.ViolationDetail) {
		sb, ok := counts[v.ConstraintType]
		if !ok {
			sb = &ScoreBreakdown{ConstraintType: string(v.ConstraintType)}
			counts[v.ConstraintType] = sb
			order = append(order, v.ConstraintType)
		}
		sb.Penalty += v.Penalty
		sb.ViolationCount++
	}
	for _, v := range result.HardViolations {
		add(v)
	}
	for _, v := range result.SoftViolations {
		add(v)
	}

	out := make([]ScoreBreakdown, 0, len(order))
	for _, t := range order {
		out = append(out, *counts[t])
	}
	return out
}

func shiftCountStdDev(byEmployee map[string][]model.Assignment) float64 {
	if len(byEmployee) == 0 {
		return 0
	}
	counts := make([]float64, 0, len(byEmployee))
	var sum float64
	for _, list := range byEmployee {
		n := float64(len(list))
		counts = append(counts, n)
		sum += n
	}
	mean := sum / float64(len(counts))
	var variance float64
	for _, c := range counts {
		variance += (c - mean) * (c - mean)
	}
	variance /= float64(len(counts))
	return math.Sqrt(variance)
}

// utilization approximates workload intensity as average gross hours
// worked per employee against an 8h/day ceiling across the horizon —
// the spec names a 60% threshold for EXCELLENT but does not define the
// denominator, so this is the most direct reading of "utilisation".
func utilization(byEmployee map[string][]model.Assignment, horizon model.PlanningHorizon) float64 {
	dates, err := horizon.Dates()
	if err != nil || len(dates) == 0 || len(byEmployee) == 0 {
		return 0
	}
	ceiling := 8.0 * float64(len(dates))
	if ceiling == 0 {
		return 0
	}

	var total float64
	for _, list := range byEmployee {
		for _, a := range list {
			total += a.Hours.Gross
		}
	}
	avg := total / float64(len(byEmployee))
	return 100.0 * avg / ceiling
}
