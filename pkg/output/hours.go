package output

import (
	"fmt"

	"github.com/paiban/roster/pkg/model"
)

// buildEmployeeHours sums normal hours per ISO week and overtime hours
// per calendar month, per employee (§4.6 meta.employeeHours).
func buildEmployeeHours(byEmployee map[string][]model.Assignment) (map[string]EmployeeHours, error) {
	out := make(map[string]EmployeeHours, len(byEmployee))
	for empID, assignments := range byEmployee {
		weekly := map[string]float64{}
		monthly := map[string]float64{}

		for _, a := range assignments {
			d, err := model.ParseDate(model.FormatDate(a.Start))
			if err != nil {
				return nil, err
			}
			week := model.ISOWeekOf(d)
			ym := model.YearMonthOf(d)
			weekly[isoWeekKey(week)] += a.Hours.Normal
			monthly[yearMonthKey(ym)] += a.Hours.OT
		}

		out[empID] = EmployeeHours{WeeklyNormal: weekly, MonthlyOT: monthly}
	}
	return out, nil
}

func isoWeekKey(w model.ISOWeek) string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}

func yearMonthKey(ym model.YearMonth) string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}
