// Package hours implements the canonical working-hours breakdown shared
// by the solver's hour-accounting constraints and the output builder.
// Every caller goes through Compute so regulatory correctness of the
// whole system reduces to the correctness of this one function.
package hours

import (
	"time"

	"github.com/paiban/roster/pkg/model"
	"github.com/shopspring/decimal"
)

var (
	six   = decimal.NewFromInt(6)
	eight = decimal.NewFromInt(8)
	dot75 = decimal.NewFromFloat(0.75)
	one   = decimal.NewFromInt(1)
	zero  = decimal.Zero
)

// fullTimeThresholds maps work-days-per-cycle to the per-shift normal
// hour threshold for schemes A and B (§4.5-C2).
var fullTimeThresholds = map[int]decimal.Decimal{
	4: decimal.NewFromFloat(11.0),
	5: decimal.NewFromFloat(8.8),
}

const fullTimeDefaultThreshold = 8.8 // used for 6+ day cycles and the <4-day fallback

// partTimeThresholds maps work-days-per-cycle to the per-shift normal
// hour threshold for scheme P.
var partTimeThresholds = map[int]decimal.Decimal{
	4: decimal.NewFromFloat(8.745),
	5: decimal.NewFromFloat(5.996),
	6: decimal.NewFromFloat(4.996),
	7: decimal.NewFromFloat(4.283),
}

const restDayPayHours = 8.0

// Input is everything the hour engine needs to price one shift.
type Input struct {
	Start time.Time
	End   time.Time

	Scheme model.Scheme

	// WorkDaysPerCycle is the employee's (post-rotation) pattern's
	// non-rest day count, workPattern.WorkDays().
	WorkDaysPerCycle int

	// WeekPosition is the 1-based rank of this shift's date among the
	// employee's work-day assignments in its ISO calendar week, counting
	// only dates up to and including this one.
	WeekPosition int
}

// Compute prices a single shift into the canonical {gross, lunch,
// normal, ot, restDayPay, paid} breakdown.
func Compute(in Input) (model.Hours, error) {
	gross, err := grossHoursDecimal(in.Start, in.End)
	if err != nil {
		return model.Hours{}, err
	}

	lunch := lunchHoursDecimal(gross)
	net := gross.Sub(lunch)
	if net.IsNegative() {
		net = zero
	}

	var normal, ot, restDayPay decimal.Decimal

	switch in.Scheme {
	case model.SchemeP:
		normal, ot = partTimeSplit(net, in.WorkDaysPerCycle, in.WeekPosition)
	default:
		normal, ot, restDayPay = fullTimeSplit(net, in.WorkDaysPerCycle, in.WeekPosition)
	}

	paid := gross

	return model.Hours{
		Gross:      round2(gross),
		Lunch:      round2(lunch),
		Normal:     round2(normal),
		OT:         round2(ot),
		RestDayPay: round2(restDayPay),
		Paid:       round2(paid),
	}, nil
}

func fullTimeSplit(net decimal.Decimal, workDaysPerCycle, weekPosition int) (normal, ot, restDayPay decimal.Decimal) {
	if workDaysPerCycle >= 6 && weekPosition >= 6 {
		restDayPay = decimal.NewFromFloat(restDayPayHours)
		ot = maxDecimal(zero, net.Sub(restDayPay))
		return zero, ot, restDayPay
	}

	threshold, ok := fullTimeThresholds[workDaysPerCycle]
	if !ok {
		threshold = decimal.NewFromFloat(fullTimeDefaultThreshold)
	}

	normal = minDecimal(net, threshold)
	ot = maxDecimal(zero, net.Sub(threshold))
	return normal, ot, zero
}

func partTimeSplit(net decimal.Decimal, workDaysPerCycle, weekPosition int) (normal, ot decimal.Decimal) {
	// The 5th+ consecutive day of a 5-day part-time pattern is entirely OT.
	if workDaysPerCycle == 5 && weekPosition >= 5 {
		return zero, net
	}

	threshold, ok := partTimeThresholds[workDaysPerCycle]
	if !ok {
		if workDaysPerCycle < 4 {
			threshold = partTimeThresholds[4]
		} else {
			threshold = partTimeThresholds[7]
		}
	}

	normal = minDecimal(net, threshold)
	ot = maxDecimal(zero, net.Sub(threshold))
	return normal, ot
}

func grossHoursDecimal(start, end time.Time) (decimal.Decimal, error) {
	seconds := end.Sub(start).Seconds()
	return decimal.NewFromFloat(seconds / 3600.0), nil
}

// lunchHoursDecimal applies the MOM step function: 0 up to 6h, 0.75 up
// to 8h, 1.0 beyond. The thresholds are fixed here; no caller-supplied
// option overrides them.
func lunchHoursDecimal(gross decimal.Decimal) decimal.Decimal {
	switch {
	case gross.GreaterThan(eight):
		return one
	case gross.GreaterThan(six):
		return dot75
	default:
		return zero
	}
}

func minDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

func maxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// round2 rounds to two decimal places at the output boundary; internal
// math stays in full decimal precision, so thresholds such as 8.745 are
// applied exactly before rounding.
func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
