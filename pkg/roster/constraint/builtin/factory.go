package builtin

import (
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
)

// ConstraintConfig names one entry of the external constraintList
// configuration (§2.3): which constraint to enable. BuildManager does not
// read Weight; hard constraints run at 100 and soft weights come from
// the scores map.
type ConstraintConfig struct {
	Type   constraint.Type
	Weight int
}

// BuildOptions parameterises the constraints that need more than a
// weight (scheme daily caps, the soft constraints' tunables).
type BuildOptions struct {
	SchemeDailyCaps  map[model.Scheme]float64
	NightShiftCode   string
	WorkloadTolerancePercent float64
}

// DefaultBuildOptions returns the spec defaults for BuildOptions.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		SchemeDailyCaps:          defaultSchemeDailyCaps,
		NightShiftCode:           "N",
		WorkloadTolerancePercent: 10,
	}
}

// BuildManager assembles a constraint.Manager from the external
// constraintList + solverScoreConfig configuration. Hard constraints
// always run at weight 100 (their emission is a fixing, not a
// penalty); soft constraint weights come from scores, defaulting to 10
// when the config omits an entry.
func BuildManager(constraints []ConstraintConfig, scores map[string]int, opts BuildOptions) *constraint.Manager {
	m := constraint.NewManager()

	softWeight := func(t constraint.Type, fallback int) int {
		if scores != nil {
			if w, ok := scores[string(t)]; ok {
				return w
			}
		}
		return fallback
	}

	enabled := map[constraint.Type]bool{}
	for _, c := range constraints {
		enabled[c.Type] = true
	}
	allEnabled := len(constraints) == 0

	register := func(t constraint.Type, build func() constraint.Constraint) {
		if allEnabled || enabled[t] {
			m.Register(build())
		}
	}

	register(constraint.TypeDailyHoursCap, func() constraint.Constraint { return NewDailyHoursCapConstraint(opts.SchemeDailyCaps) })
	register(constraint.TypeWeeklyNormalHoursCap, func() constraint.Constraint { return NewWeeklyNormalHoursCapConstraint() })
	register(constraint.TypeConsecutiveDaysCap, func() constraint.Constraint { return NewConsecutiveDaysCapConstraint() })
	register(constraint.TypeMinRestBetweenShifts, func() constraint.Constraint { return NewMinRestBetweenShiftsConstraint() })
	register(constraint.TypeMinOffDaysPerWeek, func() constraint.Constraint { return NewMinOffDaysPerWeekConstraint() })
	register(constraint.TypePartTimeWeeklyCap, func() constraint.Constraint { return NewPartTimeWeeklyHoursCapConstraint() })
	register(constraint.TypeQualificationValidity, func() constraint.Constraint { return NewQualificationValidityConstraint() })
	register(constraint.TypeHeadcountExactFill, func() constraint.Constraint { return NewHeadcountConstraint() })
	register(constraint.TypeOnePerDay, func() constraint.Constraint { return NewOnePerDayConstraint() })
	register(constraint.TypeWhitelistBlacklist, func() constraint.Constraint { return NewWhitelistBlacklistConstraint() })
	register(constraint.TypeProductRankMatch, func() constraint.Constraint { return NewProductRankMatchConstraint() })
	register(constraint.TypeGenderMatch, func() constraint.Constraint { return NewGenderMatchConstraint() })
	register(constraint.TypeSchemeMatch, func() constraint.Constraint { return NewSchemeMatchConstraint() })
	register(constraint.TypeEmployeeOwnership, func() constraint.Constraint { return NewEmployeeOwnershipConstraint() })
	register(constraint.TypeInterOUIsolation, func() constraint.Constraint { return NewInterOUIsolationConstraint() })
	register(constraint.TypeLockedSlotFixed, func() constraint.Constraint { return NewLockedSlotFixedConstraint() })
	register(constraint.TypeMonthlyOTCap, func() constraint.Constraint { return NewMonthlyOvertimeCapConstraint() })
	register(constraint.TypeAPGDD10MonthlyCap, func() constraint.Constraint { return NewAPGDD10MonthlyCapConstraint() })

	register(constraint.TypeWorkloadBalance, func() constraint.Constraint {
		return NewWorkloadBalanceConstraint(softWeight(constraint.TypeWorkloadBalance, 10), opts.WorkloadTolerancePercent)
	})
	register(constraint.TypeMinimizeOvertime, func() constraint.Constraint {
		return NewMinimizeOvertimeConstraint(softWeight(constraint.TypeMinimizeOvertime, 10))
	})
	register(constraint.TypePreference, func() constraint.Constraint {
		return NewEmployeePreferenceConstraint(softWeight(constraint.TypePreference, 10))
	})
	register(constraint.TypeConsecutiveNights, func() constraint.Constraint {
		return NewConsecutiveNightsConstraint(softWeight(constraint.TypeConsecutiveNights, 10), opts.NightShiftCode, 2)
	})
	register(constraint.TypeShiftVariety, func() constraint.Constraint {
		return NewShiftVarietyConstraint(softWeight(constraint.TypeShiftVariety, 10))
	})
	register(constraint.TypeWeekendFairness, func() constraint.Constraint {
		return NewWeekendFairnessConstraint(softWeight(constraint.TypeWeekendFairness, 10))
	})

	return m
}
