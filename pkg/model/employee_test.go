package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmployee_HasQualification(t *testing.T) {
	e := &Employee{Qualifications: []Qualification{
		{Code: "CPR", ValidFrom: "2026-01-01", ExpiryDate: "2026-12-31"},
	}}

	assert.True(t, e.HasQualification("CPR", "2026-06-01"))
	assert.False(t, e.HasQualification("CPR", "2027-01-01"))
	assert.False(t, e.HasQualification("FIRST_AID", "2026-06-01"))
}

func TestEmployee_SatisfiesQualificationGroups(t *testing.T) {
	e := &Employee{Qualifications: []Qualification{
		{Code: "CPR"}, {Code: "FIRST_AID"},
	}}

	allGroup := []QualificationGroup{{MatchType: MatchAll, Qualifications: []string{"CPR", "FIRST_AID"}}}
	assert.True(t, e.SatisfiesQualificationGroups(allGroup, "2026-01-01"))

	missingOne := []QualificationGroup{{MatchType: MatchAll, Qualifications: []string{"CPR", "ICU"}}}
	assert.False(t, e.SatisfiesQualificationGroups(missingOne, "2026-01-01"))

	anyGroup := []QualificationGroup{{MatchType: MatchAny, Qualifications: []string{"ICU", "FIRST_AID"}}}
	assert.True(t, e.SatisfiesQualificationGroups(anyGroup, "2026-01-01"))

	assert.True(t, e.SatisfiesQualificationGroups(nil, "2026-01-01"))
}

func TestNormalizedScheme(t *testing.T) {
	tests := []struct {
		raw  string
		want Scheme
	}{
		{"A", SchemeA},
		{" b ", SchemeB},
		{"Scheme P", SchemeP},
		{"scheme a", SchemeA},
		{"unknown", SchemeA},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizedScheme(tt.raw), tt.raw)
	}
}

func TestNormalizeSchemeList(t *testing.T) {
	assert.Equal(t, []Scheme{SchemeAny}, NormalizeSchemeList(nil, "Global"))
	assert.Equal(t, []Scheme{SchemeA}, NormalizeSchemeList(nil, "A"))
	assert.Equal(t, []Scheme{SchemeA, SchemeB}, NormalizeSchemeList([]string{"A", "B"}, ""))
	assert.Equal(t, []Scheme{SchemeAny}, NormalizeSchemeList([]string{"Any"}, ""))
	assert.Equal(t, []Scheme{SchemeAny}, NormalizeSchemeList(nil, ""))
}

func TestSchemeCompatible(t *testing.T) {
	assert.True(t, SchemeCompatible(SchemeA, []Scheme{SchemeAny}))
	assert.True(t, SchemeCompatible(SchemeB, []Scheme{SchemeA, SchemeB}))
	assert.False(t, SchemeCompatible(SchemeP, []Scheme{SchemeA, SchemeB}))
}

func TestEmployee_IsAPGDD10(t *testing.T) {
	e := &Employee{Scheme: SchemeA, ProductTypeID: "APO"}
	assert.True(t, e.IsAPGDD10())

	e2 := &Employee{Scheme: SchemeB, ProductTypeID: "APO"}
	assert.False(t, e2.IsAPGDD10())
}

func TestEmployee_IsForeignCorporalOrSergeant(t *testing.T) {
	assert.True(t, (&Employee{Local: false, RankID: "CPL"}).IsForeignCorporalOrSergeant())
	assert.True(t, (&Employee{Local: false, RankID: "SGT"}).IsForeignCorporalOrSergeant())
	assert.False(t, (&Employee{Local: true, RankID: "CPL"}).IsForeignCorporalOrSergeant())
	assert.False(t, (&Employee{Local: false, RankID: "PTE"}).IsForeignCorporalOrSergeant())
}

func TestEmployee_ClaimForRequirement(t *testing.T) {
	e := &Employee{}
	assert.False(t, e.IsOwned())
	e.ClaimForRequirement("req-1")
	assert.True(t, e.IsOwned())
	assert.Equal(t, "req-1", e.OwnedByRequirement())
}
