package hours

import (
	"testing"
	"time"

	"github.com/paiban/roster/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02 15:04", s)
	require.NoError(t, err)
	return d
}

// Scenario A: pattern-aware normal split, scheme A, 4-day pattern.
func TestCompute_ScenarioA_FourDayPattern(t *testing.T) {
	start := mustDate(t, "2026-01-05 08:00")
	end := mustDate(t, "2026-01-05 20:00")

	h, err := Compute(Input{
		Start:            start,
		End:              end,
		Scheme:           model.SchemeA,
		WorkDaysPerCycle: 4,
		WeekPosition:     1,
	})
	require.NoError(t, err)

	assert.Equal(t, 12.0, h.Gross)
	assert.Equal(t, 1.0, h.Lunch)
	assert.Equal(t, 11.0, h.Normal)
	assert.Equal(t, 0.0, h.OT)
	assert.Equal(t, 0.0, h.RestDayPay)
	assert.Equal(t, 12.0, h.Paid)
}

// Scenario B: six consecutive 12h shifts, scheme A — the 6th day in the
// ISO week converts to rest-day pay.
func TestCompute_ScenarioB_SixthDayRestDayPay(t *testing.T) {
	start := mustDate(t, "2026-01-10 08:00")
	end := mustDate(t, "2026-01-10 20:00")

	h, err := Compute(Input{
		Start:            start,
		End:              end,
		Scheme:           model.SchemeA,
		WorkDaysPerCycle: 6,
		WeekPosition:     6,
	})
	require.NoError(t, err)

	assert.Equal(t, 12.0, h.Gross)
	assert.Equal(t, 1.0, h.Lunch)
	assert.Equal(t, 0.0, h.Normal)
	assert.Equal(t, 3.0, h.OT)
	assert.Equal(t, 8.0, h.RestDayPay)
	assert.Equal(t, 12.0, h.Paid)
}

func TestCompute_FiveDayPattern(t *testing.T) {
	start := mustDate(t, "2026-01-05 08:00")
	end := mustDate(t, "2026-01-05 20:00")

	h, err := Compute(Input{
		Start:            start,
		End:              end,
		Scheme:           model.SchemeB,
		WorkDaysPerCycle: 5,
		WeekPosition:     3,
	})
	require.NoError(t, err)

	assert.Equal(t, 8.8, h.Normal)
	assert.Equal(t, 2.2, h.OT)
	assert.Equal(t, 0.0, h.RestDayPay)
}

func TestCompute_ShortShift_NoLunch(t *testing.T) {
	start := mustDate(t, "2026-01-05 10:00")
	end := mustDate(t, "2026-01-05 14:00")

	h, err := Compute(Input{
		Start:            start,
		End:              end,
		Scheme:           model.SchemeA,
		WorkDaysPerCycle: 5,
		WeekPosition:     1,
	})
	require.NoError(t, err)

	assert.Equal(t, 4.0, h.Gross)
	assert.Equal(t, 0.0, h.Lunch)
	assert.Equal(t, 4.0, h.Normal)
	assert.Equal(t, 0.0, h.OT)
}

func TestCompute_PartTime_FifthDayIsAllOT(t *testing.T) {
	start := mustDate(t, "2026-01-05 08:00")
	end := mustDate(t, "2026-01-05 16:00")

	h, err := Compute(Input{
		Start:            start,
		End:              end,
		Scheme:           model.SchemeP,
		WorkDaysPerCycle: 5,
		WeekPosition:     5,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, h.Normal)
	assert.True(t, h.OT > 0)
}

func TestCompute_PartTime_SixDayThreshold(t *testing.T) {
	start := mustDate(t, "2026-01-05 08:00")
	end := mustDate(t, "2026-01-05 14:00")

	h, err := Compute(Input{
		Start:            start,
		End:              end,
		Scheme:           model.SchemeP,
		WorkDaysPerCycle: 6,
		WeekPosition:     1,
	})
	require.NoError(t, err)

	// Threshold 4.996 splits net 6.0 into 4.996 normal / 1.004 OT, which
	// round2 reports as 5.0 / 1.0.
	assert.Equal(t, 5.0, h.Normal)
	assert.InDelta(t, 1.0, h.OT, 0.001)
}

func TestWeekPosition(t *testing.T) {
	dates := []string{"2026-01-05", "2026-01-06", "2026-01-07"}
	assert.Equal(t, 1, WeekPosition(dates, "2026-01-05"))
	assert.Equal(t, 3, WeekPosition(dates, "2026-01-07"))
	assert.Equal(t, 4, WeekPosition(dates, "2026-01-08"))
}
