// Package model defines the core rostering data types: planning horizon,
// employees, demand items, requirements, slots and assignments.
package model

import "time"

// Scheme is the employee's labour scheme. A and B are full-time variants
// with different daily caps; P is part-time and hour-limited rather than
// day-limited.
type Scheme string

const (
	SchemeA   Scheme = "A"
	SchemeB   Scheme = "B"
	SchemeP   Scheme = "P"
	SchemeAny Scheme = "Any"
)

// RestSymbol marks a rest day in a work pattern.
const RestSymbol = "O"

// WorkPattern is a cyclic sequence of shift codes (or RestSymbol) of
// length L. pattern[(dayOffset+rotationOffset) mod L] determines what an
// employee does on a given calendar date.
type WorkPattern []string

// Len returns the cycle length L.
func (p WorkPattern) Len() int { return len(p) }

// WorkDays returns W, the count of non-rest entries in the cycle.
func (p WorkPattern) WorkDays() int {
	w := 0
	for _, d := range p {
		if d != RestSymbol {
			w++
		}
	}
	return w
}

// Rotate returns pattern[offset:] ++ pattern[:offset], the pattern as seen
// by an employee assigned that rotation offset.
func (p WorkPattern) Rotate(offset int) WorkPattern {
	if len(p) == 0 {
		return p
	}
	offset = ((offset % len(p)) + len(p)) % len(p)
	out := make(WorkPattern, len(p))
	copy(out, p[offset:])
	copy(out[len(p)-offset:], p[:offset])
	return out
}

// PatternDayAt returns (dateOffset + rotationOffset) mod L.
func (p WorkPattern) PatternDayAt(dateOffset, rotationOffset int) int {
	l := len(p)
	if l == 0 {
		return 0
	}
	d := (dateOffset + rotationOffset) % l
	if d < 0 {
		d += l
	}
	return d
}

// PlanningHorizon is an inclusive civil-date range.
type PlanningHorizon struct {
	StartDate string // YYYY-MM-DD
	EndDate   string
}

// Dates enumerates every civil date in the horizon, inclusive.
func (h PlanningHorizon) Dates() ([]string, error) {
	start, err := ParseDate(h.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(h.EndDate)
	if err != nil {
		return nil, err
	}
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, FormatDate(d))
	}
	return out, nil
}

// DateLayout is the canonical civil-date layout used throughout the model.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD civil date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ISOWeek identifies an ISO-8601 week; stored as a pair (not a string) so
// that arithmetic at year boundaries stays correct.
type ISOWeek struct {
	Year int
	Week int
}

// ISOWeekOf returns the ISO week containing date.
func ISOWeekOf(date time.Time) ISOWeek {
	y, w := date.ISOWeek()
	return ISOWeek{Year: y, Week: w}
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf returns the calendar month containing date.
func YearMonthOf(date time.Time) YearMonth {
	return YearMonth{Year: date.Year(), Month: date.Month()}
}

// DaysIn returns the number of days in the calendar month.
func (ym YearMonth) DaysIn() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Qualification is a credential held by an employee, valid over a range.
type Qualification struct {
	Code       string
	ValidFrom  string
	ExpiryDate string
}

// ValidOn reports whether the qualification covers the given civil date.
func (q Qualification) ValidOn(date string) bool {
	if q.ValidFrom != "" && date < q.ValidFrom {
		return false
	}
	if q.ExpiryDate != "" && date > q.ExpiryDate {
		return false
	}
	return true
}

// QualificationMatchType selects how a qualification group is evaluated.
type QualificationMatchType string

const (
	MatchAll QualificationMatchType = "ALL"
	MatchAny QualificationMatchType = "ANY"
)

// QualificationGroup is one independently-evaluated requirement; groups
// combine with AND across a slot's RequiredQualifications.
type QualificationGroup struct {
	GroupID        string
	MatchType      QualificationMatchType
	Qualifications []string
}

// NormalizeQualifications folds a flat legacy code list into a single ALL
// group, or passes already-grouped input through unchanged.
func NormalizeQualifications(flat []string, groups []QualificationGroup) []QualificationGroup {
	if len(groups) > 0 {
		return groups
	}
	if len(flat) == 0 {
		return nil
	}
	return []QualificationGroup{{GroupID: "legacy", MatchType: MatchAll, Qualifications: flat}}
}
