// Package validator fails fast, with field-pinpointed errors, on input
// documents the downstream roster pipeline cannot safely handle, and
// warns on input that is legal but likely wrong.
package validator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/paiban/roster/pkg/model"
)

// Finding is a single field-scoped error or warning.
type Finding struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the validator's full output (§4.1).
type Result struct {
	IsValid  bool      `json:"isValid"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

func (r *Result) addError(field, code, format string, args ...interface{}) {
	r.Errors = append(r.Errors, Finding{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) addWarning(field, code, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Finding{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
}

const maxHorizonDaysBeforeWarning = 62

// Validate runs every check in §4.1 against req and returns the
// aggregate result. A non-empty Errors list means the pipeline must not
// proceed.
func Validate(req *model.RosterRequest) Result {
	res := Result{IsValid: true}

	validateStructure(req, &res)
	validateHorizon(req, &res)
	validateDemandItems(req, &res)
	validateSchemes(req, &res)
	validateOutcomeBasedRequirements(req, &res)
	validateFeasibility(req, &res)

	res.IsValid = len(res.Errors) == 0
	return res
}

func validateStructure(req *model.RosterRequest, res *Result) {
	if len(req.DemandItems) == 0 {
		res.addError("demandItems", "REQUIRED_NON_EMPTY", "at least one demand item is required")
	}
	if len(req.Employees) == 0 {
		res.addError("employees", "REQUIRED_NON_EMPTY", "at least one employee is required")
	}
}

func validateHorizon(req *model.RosterRequest, res *Result) {
	start, errStart := model.ParseDate(req.PlanningHorizon.StartDate)
	end, errEnd := model.ParseDate(req.PlanningHorizon.EndDate)

	if errStart != nil {
		res.addError("planningHorizon.startDate", "INVALID_DATE", "%q is not a valid YYYY-MM-DD date", req.PlanningHorizon.StartDate)
	}
	if errEnd != nil {
		res.addError("planningHorizon.endDate", "INVALID_DATE", "%q is not a valid YYYY-MM-DD date", req.PlanningHorizon.EndDate)
	}
	if errStart != nil || errEnd != nil {
		return
	}
	if start.After(end) {
		res.addError("planningHorizon", "START_AFTER_END", "startDate %s is after endDate %s", req.PlanningHorizon.StartDate, req.PlanningHorizon.EndDate)
		return
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > maxHorizonDaysBeforeWarning {
		res.addWarning("planningHorizon", "LONG_HORIZON", "horizon spans %d days, over the %d-day review threshold", days, maxHorizonDaysBeforeWarning)
	}
}

func validateDemandItems(req *model.RosterRequest, res *Result) {
	for di, demand := range req.DemandItems {
		prefix := fmt.Sprintf("demandItems[%d]", di)

		shiftCodes := map[string]bool{}
		for _, ss := range demand.Shifts {
			for _, sd := range ss.ShiftDetails {
				shiftCodes[sd.ShiftCode] = true
			}
		}

		for ri, req := range demand.Requirements {
			rprefix := fmt.Sprintf("%s.requirements[%d]", prefix, ri)

			for _, code := range req.WorkPattern {
				if code == model.RestSymbol {
					continue
				}
				if !shiftCodes[code] {
					res.addError(rprefix+".workPattern", "UNKNOWN_SHIFT_CODE",
						"shift code %q referenced in workPattern has no matching shiftDetails entry on this demand item", code)
				}
			}
			if len(shiftCodes) == 0 && req.WorkPattern.WorkDays() > 0 {
				res.addError(rprefix+".workPattern", "EMPTY_SHIFT_DETAILS",
					"demand item has no shiftDetails but requirement's workPattern has work days")
			}

			validateHeadcount(req, rprefix, res)
		}
	}
}

func validateHeadcount(req model.Requirement, prefix string, res *Result) {
	if req.HeadcountByShift != nil {
		if len(req.HeadcountByShift) == 0 {
			res.addError(prefix+".headcount", "EMPTY_HEADCOUNT_MAP", "headcount map form must be non-empty")
			return
		}
		for shiftCode, n := range req.HeadcountByShift {
			if n <= 0 {
				res.addError(prefix+".headcount", "NON_POSITIVE_HEADCOUNT", "headcount for shift %q must be positive, got %d", shiftCode, n)
			}
		}
		return
	}

	if req.Headcount == 0 && req.RosteringBasis != model.OutcomeBased {
		res.addError(prefix+".headcount", "ZERO_HEADCOUNT", "headcount of 0 is only allowed in outcomeBased mode")
	}
}

var validSchemes = map[model.Scheme]bool{
	model.SchemeA: true, model.SchemeB: true, model.SchemeP: true, model.SchemeAny: true,
}

func validateSchemes(req *model.RosterRequest, res *Result) {
	for i, e := range req.Employees {
		if !validSchemes[e.Scheme] {
			res.addError(fmt.Sprintf("employees[%d].scheme", i), "UNKNOWN_SCHEME", "scheme %q does not normalise to {A, B, P, Any}", e.Scheme)
		}
	}
	for di, demand := range req.DemandItems {
		for ri, r := range demand.Requirements {
			for _, s := range r.Schemes {
				if !validSchemes[s] {
					res.addError(fmt.Sprintf("demandItems[%d].requirements[%d].schemes", di, ri), "UNKNOWN_SCHEME",
						"scheme %q does not normalise to {A, B, P, Any}", s)
				}
			}
		}
	}
}

func validateOutcomeBasedRequirements(req *model.RosterRequest, res *Result) {
	anyOutcomeBased := false
	for di, demand := range req.DemandItems {
		for _, r := range demand.Requirements {
			if r.RosteringBasis != model.OutcomeBased {
				continue
			}
			anyOutcomeBased = true
			if demand.MinStaffThresholdPercentage < 1 || demand.MinStaffThresholdPercentage > 100 {
				res.addError(fmt.Sprintf("demandItems[%d].minStaffThresholdPercentage", di), "OUT_OF_RANGE",
					"outcomeBased demand items require minStaffThresholdPercentage in [1, 100], got %d", demand.MinStaffThresholdPercentage)
			}
		}
	}
	if anyOutcomeBased {
		if len(req.OUOffsets) == 0 {
			res.addError("ouOffsets", "REQUIRED_NON_EMPTY", "outcomeBased requirements require a non-empty root-level ouOffsets array")
		}
		for i, o := range req.OUOffsets {
			if o.RotationOffset < 0 {
				res.addError(fmt.Sprintf("ouOffsets[%d].rotationOffset", i), "NEGATIVE_OFFSET", "rotationOffset must be >= 0, got %d", o.RotationOffset)
			}
		}
	}
}

// validateFeasibility is the mathematical lower-bound pre-check: for
// each requirement, filter the pool by product/rank/scheme/gender and
// compare the eligible count against ceil(headcount*cycleLength /
// workDaysInPattern).
func validateFeasibility(req *model.RosterRequest, res *Result) {
	for di, demand := range req.DemandItems {
		for ri, r := range demand.Requirements {
			workDays := r.WorkPattern.WorkDays()
			cycleLength := r.WorkPattern.Len()
			if workDays == 0 || cycleLength == 0 {
				continue
			}

			eligible := countEligible(req.Employees, r)
			lowerBound := int(math.Ceil(float64(r.TotalHeadcount()*cycleLength) / float64(workDays)))

			if eligible < lowerBound {
				res.addWarning(fmt.Sprintf("demandItems[%d].requirements[%d]", di, ri), "INSUFFICIENT_POOL",
					"only %d eligible candidates in the pool, need at least %d to satisfy headcount %d over a %d-day cycle",
					eligible, lowerBound, r.TotalHeadcount(), cycleLength)
			}
		}
	}
}

func countEligible(employees []model.Employee, r model.Requirement) int {
	count := 0
	for i := range employees {
		e := &employees[i]
		if !r.MatchesProductType(e.ProductTypeID) {
			continue
		}
		if !r.MatchesRank(e.RankID) {
			continue
		}
		if !r.MatchesGender(e.Gender) {
			continue
		}
		if len(r.Schemes) > 0 && !model.SchemeCompatible(e.Scheme, r.Schemes) {
			continue
		}
		count++
	}
	return count
}

// ParseShiftTime validates an HH:MM[:SS] clock-time literal.
func ParseShiftTime(s string) error {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("%q is not in HH:MM[:SS] form", s)
	}
	layout := "15:04"
	if len(parts) == 3 {
		layout = "15:04:05"
	}
	if _, err := time.Parse(layout, s); err != nil {
		return fmt.Errorf("%q is not in HH:MM[:SS] form", s)
	}
	return nil
}
