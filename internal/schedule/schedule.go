// Package schedule derives sprint windows from calendar quarters.
package schedule

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for all calendar dates.
const DateLayout = "2006-01-02"

// Window is one generated sprint slot inside a quarter. Start and End are
// inclusive.
type Window struct {
	Number int
	Start  time.Time
	End    time.Time
}

// QuarterBounds returns the first and last day of a calendar quarter.
func QuarterBounds(year, quarter int) (time.Time, time.Time) {
	startMonth := time.Month((quarter-1)*3 + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0).AddDate(0, 0, -1)
	return start, end
}

// Windows lays out consecutive sprints of the given length from firstStart
// until the quarter runs out. A sprint whose end would spill past the quarter
// is dropped rather than truncated, so the last days of a quarter may be
// uncovered.
func Windows(year, quarter, weeks int, firstStart time.Time) []Window {
	_, quarterEnd := QuarterBounds(year, quarter)

	var out []Window
	start := firstStart
	for n := 1; ; n++ {
		if !start.Before(quarterEnd) {
			break
		}
		end := start.AddDate(0, 0, weeks*7-1)
		if end.After(quarterEnd) {
			break
		}
		out = append(out, Window{Number: n, Start: start, End: end})
		start = end.AddDate(0, 0, 1)
	}
	return out
}

// SprintName formats the canonical name for a generated sprint.
func SprintName(year, quarter, number int) string {
	return fmt.Sprintf("%d Q%d Sprint %d", year, quarter, number)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
