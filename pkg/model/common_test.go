package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkPattern_WorkDays(t *testing.T) {
	tests := []struct {
		name    string
		pattern WorkPattern
		want    int
	}{
		{"five-two", WorkPattern{"D", "D", "D", "D", "D", "O", "O"}, 5},
		{"seven-day-single-rest", WorkPattern{"D", "D", "D", "D", "D", "D", "O"}, 6},
		{"all-rest", WorkPattern{"O", "O"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pattern.WorkDays())
		})
	}
}

func TestWorkPattern_Rotate(t *testing.T) {
	p := WorkPattern{"D", "D", "D", "D", "D", "O", "O"}

	rotated := p.Rotate(2)
	assert.Equal(t, WorkPattern{"D", "D", "D", "O", "O", "D", "D"}, rotated)

	// a full-length rotation is the identity
	assert.Equal(t, p, p.Rotate(len(p)))

	// negative offsets wrap the same as a positive equivalent
	assert.Equal(t, p.Rotate(len(p)-1), p.Rotate(-1))
}

func TestWorkPattern_PatternDayAt(t *testing.T) {
	p := WorkPattern{"D", "D", "D", "D", "D", "O", "O"}
	assert.Equal(t, 2, p.PatternDayAt(0, 2))
	assert.Equal(t, 0, p.PatternDayAt(5, 2))
	assert.Equal(t, 5, p.PatternDayAt(-4, 2))
}

func TestPlanningHorizon_Dates(t *testing.T) {
	h := PlanningHorizon{StartDate: "2026-01-29", EndDate: "2026-02-02"}
	dates, err := h.Dates()
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01-29", "2026-01-30", "2026-01-31", "2026-02-01", "2026-02-02"}, dates)
}

func TestISOWeekOf_YearBoundary(t *testing.T) {
	d, err := ParseDate("2025-12-29") // Monday, ISO week 1 of 2026
	require.NoError(t, err)
	w := ISOWeekOf(d)
	assert.Equal(t, ISOWeek{Year: 2026, Week: 1}, w)
}

func TestYearMonth_DaysIn(t *testing.T) {
	assert.Equal(t, 29, YearMonth{Year: 2028, Month: 2}.DaysIn()) // leap year
	assert.Equal(t, 28, YearMonth{Year: 2026, Month: 2}.DaysIn())
	assert.Equal(t, 31, YearMonth{Year: 2026, Month: 1}.DaysIn())
}

func TestQualification_ValidOn(t *testing.T) {
	q := Qualification{Code: "CPR", ValidFrom: "2026-01-01", ExpiryDate: "2026-06-30"}
	assert.True(t, q.ValidOn("2026-03-01"))
	assert.False(t, q.ValidOn("2025-12-31"))
	assert.False(t, q.ValidOn("2026-07-01"))
}

func TestNormalizeQualifications(t *testing.T) {
	groups := NormalizeQualifications([]string{"CPR", "FIRST_AID"}, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, MatchAll, groups[0].MatchType)
	assert.ElementsMatch(t, []string{"CPR", "FIRST_AID"}, groups[0].Qualifications)

	explicit := []QualificationGroup{{GroupID: "g1", MatchType: MatchAny, Qualifications: []string{"X"}}}
	assert.Equal(t, explicit, NormalizeQualifications([]string{"ignored"}, explicit))
}
