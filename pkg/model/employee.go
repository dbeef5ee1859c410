package model

// Employee is a pool member eligible for assignment to slots.
type Employee struct {
	EmployeeID      string
	Scheme          Scheme
	ProductTypeID   string
	RankID          string
	Gender          string // "M" or "F"
	Local           bool
	Qualifications  []Qualification
	WorkPattern     WorkPattern
	RotationOffset  int
	TotalWorkingHours float64 // fairness tie-break input for ICPMP selection

	// Whitelist/blacklist on shift assignment (C8..C16 predicate inputs).
	WhitelistShiftCodes []string
	BlacklistShiftCodes []string

	// icpmpRequirementID is a soft back-reference recording which
	// requirement owns this employee for the current solve; it is an
	// identifier, not a pointer, so it never entangles object lifetime.
	icpmpRequirementID string
}

// OwnedByRequirement reports whether ICPMP has already claimed this
// employee for a different requirement.
func (e *Employee) OwnedByRequirement() string { return e.icpmpRequirementID }

// ClaimForRequirement marks the employee as owned by requirementID. It is
// a no-op safeguard to call twice with the same id.
func (e *Employee) ClaimForRequirement(requirementID string) {
	e.icpmpRequirementID = requirementID
}

// IsOwned reports whether any requirement already owns this employee.
func (e *Employee) IsOwned() bool { return e.icpmpRequirementID != "" }

// HasQualification reports whether the employee holds code, valid on date.
func (e *Employee) HasQualification(code, date string) bool {
	for _, q := range e.Qualifications {
		if q.Code == code && q.ValidOn(date) {
			return true
		}
	}
	return false
}

// SatisfiesQualificationGroups evaluates every group with AND semantics;
// an empty group list always passes.
func (e *Employee) SatisfiesQualificationGroups(groups []QualificationGroup, date string) bool {
	for _, g := range groups {
		switch g.MatchType {
		case MatchAny:
			ok := false
			for _, code := range g.Qualifications {
				if e.HasQualification(code, date) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		default: // MatchAll
			for _, code := range g.Qualifications {
				if !e.HasQualification(code, date) {
					return false
				}
			}
		}
	}
	return true
}

// NormalizedScheme maps loose scheme spellings ("Scheme A", " a ", "A") to
// the canonical single-letter code. Unknown values default to SchemeA.
func NormalizedScheme(raw string) Scheme {
	s := normalizeSchemeToken(raw)
	switch s {
	case "A", "B", "P":
		return Scheme(s)
	default:
		return SchemeA
	}
}

func normalizeSchemeToken(raw string) string {
	trimmed := trimAndUpper(raw)
	if len(trimmed) == 1 {
		return trimmed
	}
	// "Scheme A" style
	const prefix = "SCHEME "
	if len(trimmed) > len(prefix) && trimmed[:len(prefix)] == prefix {
		return trimmed[len(prefix):]
	}
	return trimmed
}

func trimAndUpper(s string) string {
	// local helper kept tiny and allocation-light; strings.TrimSpace+ToUpper
	// would do the same but this keeps model free of a strings import
	// churned across every call site.
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	b := []byte(s[start:end])
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		}
	}
	return string(b)
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// NormalizeSchemeList folds legacy singular scheme + "Global"/"Any" into
// the plural list form used by requirement filters.
func NormalizeSchemeList(schemes []string, legacySingular string) []Scheme {
	if len(schemes) > 0 {
		var out []Scheme
		for _, s := range schemes {
			u := trimAndUpper(s)
			if u == "ANY" || u == "GLOBAL" {
				return []Scheme{SchemeAny}
			}
			out = append(out, NormalizedScheme(s))
		}
		if len(out) == 0 {
			return []Scheme{SchemeAny}
		}
		return out
	}
	if legacySingular != "" {
		u := trimAndUpper(legacySingular)
		if u == "GLOBAL" || u == "ANY" {
			return []Scheme{SchemeAny}
		}
		return []Scheme{NormalizedScheme(legacySingular)}
	}
	return []Scheme{SchemeAny}
}

// SchemeCompatible reports whether employeeScheme satisfies a requirement
// scheme list (§4.7).
func SchemeCompatible(employeeScheme Scheme, requirementSchemes []Scheme) bool {
	for _, s := range requirementSchemes {
		if s == SchemeAny || s == employeeScheme {
			return true
		}
	}
	return false
}

// IsAPGDD10 auto-detects the APGD-D10 special class: Scheme A + product
// APO. Any legacy enable flag on the requirement is ignored by design.
func (e *Employee) IsAPGDD10() bool {
	return e.Scheme == SchemeA && e.ProductTypeID == "APO"
}

// IsForeignCorporalOrSergeant reports the foreign CPL/SGT monthly-cap
// variant used by C19.
func (e *Employee) IsForeignCorporalOrSergeant() bool {
	if e.Local {
		return false
	}
	return e.RankID == "CPL" || e.RankID == "SGT"
}
