package daterange

import (
	"fmt"
	"time"
)

var layouts = []string{
	"1/2/2006",
	"2006-01-02",
}

// Parse reads a day written either as m/d/Y (ex. 1/5/2024, 01/05/2024) or as
// YYYY-MM-DD. The result is midnight of that day in `loc`.
func Parse(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected mm/dd/yyyy or yyyy-mm-dd", s)
}

// Build returns `start` followed by the next count-1 days. A count below 2
// returns only `start`.
func Build(start time.Time, count int) []time.Time {
	if count < 1 {
		count = 1
	}
	dates := make([]time.Time, count)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

// Weekdays drops saturdays and sundays, no earnings are published on those days.
func Weekdays(dates []time.Time) []time.Time {
	var out []time.Time
	for _, d := range dates {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		out = append(out, d)
	}
	return out
}
