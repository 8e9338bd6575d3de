// Package capacity computes sprint capacity reports from sprint windows,
// member baselines and recorded holidays.
package capacity

import (
	"math"
	"time"
)

// The work week runs Sunday through Thursday; Friday and Saturday are the
// weekend.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

// WorkingDays counts the working days in the inclusive [start, end] window.
// An inverted window counts zero days.
func WorkingDays(start, end time.Time) int {
	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !IsWeekend(d) {
			n++
		}
	}
	return n
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// MemberInput is one team member's contribution baseline.
type MemberInput struct {
	ID              int64
	Name            string
	DefaultCapacity int
}

// MemberCapacity is the per-member breakdown in a capacity report.
type MemberCapacity struct {
	MemberID         int64   `json:"member_id"`
	MemberName       string  `json:"member_name"`
	DefaultCapacity  int     `json:"default_capacity"`
	TotalWorkingDays int     `json:"total_working_days"`
	Holidays         int     `json:"holidays"`
	AvailableDays    int     `json:"available_days"`
	Capacity         float64 `json:"capacity"`
}

// Report is the full capacity picture for one sprint.
type Report struct {
	SprintID         int64            `json:"sprint_id"`
	SprintName       string           `json:"sprint_name"`
	StartDate        string           `json:"start_date"`
	EndDate          string           `json:"end_date"`
	TotalWorkingDays int              `json:"total_working_days"`
	LoadFactor       float64          `json:"load_factor"`
	Members          []MemberCapacity `json:"member_capacities"`
	TotalCapacity    float64          `json:"total_capacity"`
}

// Compute builds a sprint capacity report. Each member's capacity is
//
//	round1(default_capacity * available_days * load_factor / 10)
//
// where available_days subtracts the member's recorded holidays from the
// sprint's working days. The subtraction is not clamped, so over-recorded
// holidays surface as negative availability instead of being hidden. The
// total is the rounded sum of the already-rounded member capacities.
func Compute(sprintID int64, sprintName string, start, end time.Time, loadFactor float64, members []MemberInput, holidayCounts map[int64]int) Report {
	workingDays := WorkingDays(start, end)

	report := Report{
		SprintID:         sprintID,
		SprintName:       sprintName,
		StartDate:        start.Format("2006-01-02"),
		EndDate:          end.Format("2006-01-02"),
		TotalWorkingDays: workingDays,
		LoadFactor:       loadFactor,
		Members:          make([]MemberCapacity, 0, len(members)),
	}

	var total float64
	for _, m := range members {
		holidays := holidayCounts[m.ID]
		available := workingDays - holidays
		memberCap := Round1(float64(m.DefaultCapacity) * float64(available) * loadFactor / 10)

		report.Members = append(report.Members, MemberCapacity{
			MemberID:         m.ID,
			MemberName:       m.Name,
			DefaultCapacity:  m.DefaultCapacity,
			TotalWorkingDays: workingDays,
			Holidays:         holidays,
			AvailableDays:    available,
			Capacity:         memberCap,
		})
		total += memberCap
	}
	report.TotalCapacity = Round1(total)

	return report
}
