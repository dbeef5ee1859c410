package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlot_Valid(t *testing.T) {
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	assert.True(t, Slot{Start: base, End: base.Add(8 * time.Hour)}.Valid())
	assert.False(t, Slot{Start: base, End: base}.Valid())
}

func TestSlot_PatternDay(t *testing.T) {
	s := Slot{PatternStartDate: "2026-01-01", Date: "2026-01-08"}
	day, err := s.PatternDay()
	require.NoError(t, err)
	assert.Equal(t, 7, day)
}

func TestSlot_ISOWeek(t *testing.T) {
	s := Slot{Date: "2026-03-16"}
	w, err := s.ISOWeek()
	require.NoError(t, err)
	assert.Equal(t, 2026, w.Year)
}

func TestSlot_MatchesEmployee(t *testing.T) {
	slot := Slot{
		RankIDs:        []string{"SGT", "CPL"},
		ProductTypeIDs: []string{"APO"},
		Gender:         "M",
		Schemes:        []Scheme{SchemeA},
		Date:           "2026-03-01",
		RequiredQualificationGroups: []QualificationGroup{
			{MatchType: MatchAll, Qualifications: []string{"CPR"}},
		},
	}

	fit := &Employee{
		RankID:        "SGT",
		ProductTypeID: "APO",
		Gender:        "M",
		Scheme:        SchemeA,
		Qualifications: []Qualification{{Code: "CPR"}},
	}
	assert.True(t, slot.MatchesEmployee(fit))

	wrongRank := *fit
	wrongRank.RankID = "PTE"
	assert.False(t, slot.MatchesEmployee(&wrongRank))

	noQual := *fit
	noQual.Qualifications = nil
	assert.False(t, slot.MatchesEmployee(&noQual))
}
