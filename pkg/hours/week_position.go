package hours

import (
	"sort"

	"github.com/paiban/roster/pkg/model"
)

// WeekPosition returns the 1-based rank of date among workDatesInWeek
// (this employee's other work-day dates, plus date itself, all in the
// same ISO week), counting only dates up to and including date. Dates
// need not be pre-sorted or de-duplicated.
func WeekPosition(workDatesInWeek []string, date string) int {
	seen := map[string]bool{date: true}
	all := []string{date}
	for _, d := range workDatesInWeek {
		if !seen[d] {
			seen[d] = true
			all = append(all, d)
		}
	}
	sort.Strings(all)

	position := 0
	for _, d := range all {
		if d > date {
			break
		}
		position++
	}
	return position
}

// WorkDatesInISOWeek filters dates to those whose ISO week matches week.
func WorkDatesInISOWeek(dates []string, week model.ISOWeek) ([]string, error) {
	var out []string
	for _, d := range dates {
		parsed, err := model.ParseDate(d)
		if err != nil {
			return nil, err
		}
		if model.ISOWeekOf(parsed) == week {
			out = append(out, d)
		}
	}
	return out, nil
}
