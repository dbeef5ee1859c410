package ratiocache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/paiban/roster/pkg/model"
)

// RequirementSignature captures the facets of a requirement that
// determine its ICPMP lower bound and offset search, independent of
// its identity (two requirements with the same pattern, headcount and
// horizon length always search to the same result).
type RequirementSignature struct {
	Pattern       model.WorkPattern
	ShiftHeadcount map[string]int // shiftCode -> headcount, collapses a flat Headcount to {"": n}
	CalendarDays  int
}

// NewRequirementSignature derives a signature from a requirement and
// the calendar-day span it is being solved against.
func NewRequirementSignature(req model.Requirement, calendarDays int) RequirementSignature {
	shiftHC := req.HeadcountByShift
	if shiftHC == nil {
		shiftHC = map[string]int{"": req.Headcount}
	}
	return RequirementSignature{
		Pattern:        req.WorkPattern,
		ShiftHeadcount: shiftHC,
		CalendarDays:   calendarDays,
	}
}

func (r RequirementSignature) patternString() string {
	return strings.Join([]string(r.Pattern), "")
}

// Hash returns a short, stable hex digest identifying this signature.
func (r RequirementSignature) Hash() string {
	shiftCodes := make([]string, 0, len(r.ShiftHeadcount))
	for code := range r.ShiftHeadcount {
		shiftCodes = append(shiftCodes, code)
	}
	sort.Strings(shiftCodes)

	summary := make([]string, 0, len(shiftCodes))
	for _, code := range shiftCodes {
		summary = append(summary, code+":"+strconv.Itoa(r.ShiftHeadcount[code]))
	}

	input := struct {
		Pattern      string   `json:"pattern"`
		Length       int      `json:"patternLength"`
		Shifts       []string `json:"shifts"`
		CalendarDays int      `json:"calendarDays"`
	}{
		Pattern:      r.patternString(),
		Length:       len(r.Pattern),
		Shifts:       summary,
		CalendarDays: r.CalendarDays,
	}

	encoded, _ := json.Marshal(input)
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])[:16]
}
