// Package roster wires the pipeline stages — validator, ICPMP
// preprocessor, slot builder, constraint-based solver, local-search
// optimizer and output builder — into the single `Solve` entry point
// the HTTP/CLI front-ends call. Each stage lives in its own package
// (icpmp, slotbuilder, roster/constraint, roster/solver,
// roster/optimizer, output); this file is only the glue between them,
// mirroring the orchestration the teacher's request handlers do inline
// against pkg/scheduler.
package roster

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/roster/internal/ratiocache"
	"github.com/paiban/roster/pkg/icpmp"
	"github.com/paiban/roster/pkg/logger"
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/output"
	"github.com/paiban/roster/pkg/roster/constraint"
	"github.com/paiban/roster/pkg/roster/constraint/builtin"
	"github.com/paiban/roster/pkg/roster/optimizer"
	"github.com/paiban/roster/pkg/roster/solver"
	"github.com/paiban/roster/pkg/rosterrors"
	"github.com/paiban/roster/pkg/slotbuilder"
	"github.com/paiban/roster/pkg/validator"
)

// Config parameterises one Solve run: which constraints run and at
// what weight, the optimizer's tuning, and the output's API shape.
type Config struct {
	Constraints     []builtin.ConstraintConfig
	ConstraintOpts  builtin.BuildOptions
	SolverScores    map[string]int
	OptimizerConfig optimizer.Config
	EnableOptimizer bool
	Output          output.BuildOptions
	// RatioCache, when set, is read before and written after each
	// demand-based requirement's ICPMP search (outcome-based requirements
	// skip ICPMP and the cache), so a repeat requirement (same
	// pattern/headcount/horizon) is recognised across runs; a hit is only
	// logged and the search still runs.
	RatioCache *ratiocache.Cache
}

// DefaultConfig mirrors the spec defaults: every constraint enabled at
// its built-in weight, optimizer on.
func DefaultConfig() Config {
	return Config{
		ConstraintOpts:  builtin.DefaultBuildOptions(),
		OptimizerConfig: optimizer.DefaultConfig(),
		EnableOptimizer: true,
	}
}

// Outcome is the full result of one Solve call: the assembled output
// document plus the ICPMP warnings raised along the way (non-fatal —
// a requirement that couldn't source its full lower bound still
// produces a best-effort roster for the rest of the input).
type Outcome struct {
	Output         *output.Output
	ICPMPWarnings  map[string]string // requirementID -> warning
}

// Solve runs the full pipeline against req and returns the assembled
// output document. rawInput, when non-nil, is hashed into the output's
// meta.inputHash (§4.6) — callers pass the original decoded JSON body.
func Solve(ctx context.Context, req *model.RosterRequest, cfg Config, rawInput map[string]interface{}) (*Outcome, error) {
	startedAt := time.Now()
	events := logger.NewRosterLogger()

	if res := validator.Validate(req); !res.IsValid {
		appErr := rosterrors.New(rosterrors.CodeInputError, "input validation failed")
		appErr.Fields = map[string]interface{}{"errors": res.Errors}
		return nil, appErr
	}

	employees := employeePointers(req.Employees)
	requirements := map[string]model.Requirement{}
	warnings := map[string]string{}
	icpmpResults := map[string]icpmp.Outcome{}

	for _, demand := range req.DemandItems {
		for _, r := range demand.Requirements {
			requirements[r.RequirementID] = r

			// ICPMP sources minimum-N and rotation offsets for demand-based
			// requirements; outcome-based requirements instead pull their
			// offsets from req.OUOffsets (slotbuilder.buildOutcomeBased), so
			// the preprocessor does not run for them.
			if r.RosteringBasis == model.OutcomeBased || r.WorkPattern == nil {
				continue
			}
			dates, err := req.PlanningHorizon.Dates()
			if err != nil {
				return nil, rosterrors.Wrap(err, rosterrors.CodeInputError, "invalid planning horizon")
			}

			sig := ratiocache.NewRequirementSignature(r, len(dates))
			if cfg.RatioCache != nil {
				if entry, hit := cfg.RatioCache.Get(sig); hit {
					logger.Debug().Str("requirement_id", r.RequirementID).Int("cached_lower_bound", entry.LowerBound).Msg("ratio cache hit")
				}
			}

			out := icpmp.Run(icpmp.Input{
				Requirement:     r,
				Employees:       employees,
				CalendarDays:    len(dates),
				LongestShiftHrs: longestShiftHours(demand),
				EnableOTAware:   req.EnableOTAwareICPMP,
			})
			icpmpResults[r.RequirementID] = out
			if out.Warning != "" {
				warnings[r.RequirementID] = out.Warning
				logger.Warn().Str("requirement_id", r.RequirementID).Str("warning", out.Warning).Msg("ICPMP requirement warning")
			}
			for _, sel := range out.Employees {
				if emp := employeeByID(employees, sel.EmployeeID); emp != nil {
					emp.RotationOffset = sel.RotationOffset
				}
			}

			events.ICPMPRequirement(r.RequirementID, out.N, len(out.Employees))
			if cfg.RatioCache != nil {
				if err := cfg.RatioCache.Save(sig, out.N, out.Offsets); err != nil {
					logger.Warn().Err(err).Str("requirement_id", r.RequirementID).Msg("failed to update ratio cache")
				}
			}
		}
	}

	slots, err := slotbuilder.Build(req)
	if err != nil {
		return nil, rosterrors.Wrap(err, rosterrors.CodeInternal, "slot build failed")
	}

	events.SolveStarted(NewJobID(), len(employees), len(slots)) // correlation id for this stage only; the solver mints its own RunID below

	// Incremental mode (§4.7): slots on or before the cutoff date are
	// locked to whatever PriorAssignments says, and excluded from the
	// solver's free variables by solver.BuildModel.
	if req.CutoffDate != "" {
		for i := range slots {
			if slots[i].Date <= req.CutoffDate {
				slots[i].Locked = true
			}
		}
	}

	manager := builtin.BuildManager(cfg.Constraints, cfg.SolverScores, cfg.ConstraintOpts)
	evalCtx := constraint.NewContext(req.PlanningHorizon, employees, requirements)
	evalCtx.CutoffDate = req.CutoffDate

	for _, a := range req.PriorAssignments {
		for _, s := range slots {
			if s.SlotID == a.SlotID && s.Locked {
				if err := evalCtx.Place(s, a.EmployeeID); err != nil {
					return nil, rosterrors.Wrap(err, rosterrors.CodeInternal, "failed to lock prior assignment")
				}
				break
			}
		}
	}

	runModel := solver.BuildModel(slots, employees)
	greedy := solver.NewGreedySolver(manager)

	solveResult, err := greedy.Solve(ctx, evalCtx, runModel, requirements)
	if err != nil {
		return nil, rosterrors.Wrap(err, rosterrors.CodeSolverFailed, "greedy solve failed")
	}

	finalCtx := evalCtx
	constraintResult := solveResult.ConstraintResult

	if cfg.EnableOptimizer {
		optResult := optimizer.NewOptimizer(manager, cfg.OptimizerConfig).Optimize(ctx, evalCtx, runModel)
		finalCtx = optResult.Context
		constraintResult = optResult.ConstraintResult
	}

	if !constraintResult.IsValid {
		logger.Warn().Str("run_id", solveResult.RunID).Msg("solve completed with unresolved hard constraint violations")
		for _, v := range constraintResult.HardViolations {
			events.ConstraintViolation(string(v.ConstraintType), v.Message)
		}
	}
	events.SolveCompleted(solveResult.RunID, time.Since(startedAt), constraintResult.Score)

	// finalCtx already carries the locked prior assignments placed above
	// (so the solver/constraints saw correct cell occupancy), so this
	// single call is also the complete assignment list for output.
	assignments := finalCtx.AllAssignments()

	status := "FEASIBLE"
	if !constraintResult.IsValid {
		status = "INFEASIBLE"
	}

	doc, err := output.Build(
		solveResult.RunID, startedAt, time.Now(), status, constraintResult,
		assignments, slots, employees, requirements, icpmpResults, req.PlanningHorizon, rawInput, cfg.Output,
	)
	if err != nil {
		return nil, rosterrors.Wrap(err, rosterrors.CodeInternal, "output build failed")
	}

	return &Outcome{Output: doc, ICPMPWarnings: warnings}, nil
}

// NewJobID mints a run/job identifier the same way the teacher's solver
// does, for callers that need to pre-allocate one (e.g. the async job
// queue, which must know the ID before the solve completes).
func NewJobID() string { return uuid.NewString() }

func employeePointers(employees []model.Employee) []*model.Employee {
	out := make([]*model.Employee, len(employees))
	for i := range employees {
		out[i] = &employees[i]
	}
	return out
}

func employeeByID(employees []*model.Employee, id string) *model.Employee {
	for _, e := range employees {
		if e.EmployeeID == id {
			return e
		}
	}
	return nil
}

// longestShiftHours finds the longest shift-leg duration across every
// shift set on a demand item, for ICPMP's C1 pre-filter.
func longestShiftHours(demand model.DemandItem) float64 {
	longest := 0.0
	for _, set := range demand.Shifts {
		for _, sd := range set.ShiftDetails {
			start, err := time.Parse("15:04:05", padSeconds(sd.Start))
			if err != nil {
				continue
			}
			end, err := time.Parse("15:04:05", padSeconds(sd.End))
			if err != nil {
				continue
			}
			hours := end.Sub(start).Hours()
			if sd.NextDay || hours <= 0 {
				hours += 24
			}
			if hours > longest {
				longest = hours
			}
		}
	}
	return longest
}

func padSeconds(clock string) string {
	if len(clock) == len("15:04") {
		return clock + ":00"
	}
	return clock
}
