package capacity

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		day     string
		weekend bool
	}{
		{"2025-06-01", false}, // Sunday
		{"2025-06-02", false}, // Monday
		{"2025-06-05", false}, // Thursday
		{"2025-06-06", true},  // Friday
		{"2025-06-07", true},  // Saturday
	}
	for _, tt := range tests {
		if got := IsWeekend(date(tt.day)); got != tt.weekend {
			t.Errorf("IsWeekend(%s) = %v, want %v", tt.day, got, tt.weekend)
		}
	}
}

func TestWorkingDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"single work week Sun-Thu", "2025-06-01", "2025-06-05", 5},
		{"full calendar week", "2025-06-01", "2025-06-07", 5},
		{"weekend only", "2025-06-06", "2025-06-07", 0},
		{"ten days spanning one weekend", "2025-06-04", "2025-06-13", 7},
		{"single working day", "2025-06-02", "2025-06-02", 1},
		{"inverted window", "2025-06-05", "2025-06-01", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorkingDays(date(tt.start), date(tt.end)); got != tt.want {
				t.Errorf("WorkingDays(%s, %s) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{4.48, 4.5},
		{2.8, 2.8},
		{3.04, 3.0},
		{-1.25, -1.3},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round1(tt.in); got != tt.want {
			t.Errorf("Round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComputeTwoMemberSprint(t *testing.T) {
	// Ten calendar days spanning one weekend: 7 working days.
	members := []MemberInput{
		{ID: 1, Name: "Avi", DefaultCapacity: 8},
		{ID: 2, Name: "Noa", DefaultCapacity: 5},
	}
	report := Compute(42, "2025 Q2 Sprint 5", date("2025-06-04"), date("2025-06-13"), 0.8, members, nil)

	if report.TotalWorkingDays != 7 {
		t.Fatalf("TotalWorkingDays = %d, want 7", report.TotalWorkingDays)
	}
	if got := report.Members[0].Capacity; got != 4.5 {
		t.Errorf("member 1 capacity = %v, want 4.5", got)
	}
	if got := report.Members[1].Capacity; got != 2.8 {
		t.Errorf("member 2 capacity = %v, want 2.8", got)
	}
	if report.TotalCapacity != 7.3 {
		t.Errorf("TotalCapacity = %v, want 7.3", report.TotalCapacity)
	}
}

func TestComputeTotalSumsRoundedMemberValues(t *testing.T) {
	// Each member's raw capacity is 19*2*0.8/10 = 3.04, rounded to 3.0.
	// The total must be the rounded sum of the rounded values (9.0), not the
	// rounding of the raw sum (9.12 -> 9.1).
	members := []MemberInput{
		{ID: 1, Name: "A", DefaultCapacity: 19},
		{ID: 2, Name: "B", DefaultCapacity: 19},
		{ID: 3, Name: "C", DefaultCapacity: 19},
	}
	holidays := map[int64]int{1: 3, 2: 3, 3: 3}

	// 2025-06-01 to 2025-06-07 has 5 working days; 3 holidays each leaves 2.
	report := Compute(1, "s", date("2025-06-01"), date("2025-06-07"), 0.8, members, holidays)

	for i, m := range report.Members {
		if m.Capacity != 3.0 {
			t.Errorf("member %d capacity = %v, want 3.0", i, m.Capacity)
		}
	}
	if report.TotalCapacity != 9.0 {
		t.Errorf("TotalCapacity = %v, want 9.0", report.TotalCapacity)
	}
}

func TestComputeHolidaysReduceCapacity(t *testing.T) {
	members := []MemberInput{{ID: 7, Name: "Dana", DefaultCapacity: 10}}
	holidays := map[int64]int{7: 2}

	report := Compute(1, "s", date("2025-06-01"), date("2025-06-05"), 1.0, members, holidays)

	m := report.Members[0]
	if m.Holidays != 2 {
		t.Errorf("Holidays = %d, want 2", m.Holidays)
	}
	if m.AvailableDays != 3 {
		t.Errorf("AvailableDays = %d, want 3", m.AvailableDays)
	}
	if m.Capacity != 3.0 {
		t.Errorf("Capacity = %v, want 3.0", m.Capacity)
	}
}

func TestComputeNegativeAvailabilityNotClamped(t *testing.T) {
	members := []MemberInput{{ID: 3, Name: "Omer", DefaultCapacity: 10}}
	holidays := map[int64]int{3: 7}

	// 5 working days minus 7 holidays: the over-recording must stay visible.
	report := Compute(1, "s", date("2025-06-01"), date("2025-06-05"), 0.8, members, holidays)

	m := report.Members[0]
	if m.AvailableDays != -2 {
		t.Errorf("AvailableDays = %d, want -2", m.AvailableDays)
	}
	if m.Capacity != -1.6 {
		t.Errorf("Capacity = %v, want -1.6", m.Capacity)
	}
	if report.TotalCapacity != -1.6 {
		t.Errorf("TotalCapacity = %v, want -1.6", report.TotalCapacity)
	}
}

func TestComputeZeroMembers(t *testing.T) {
	report := Compute(1, "s", date("2025-06-01"), date("2025-06-05"), 0.8, nil, nil)
	if len(report.Members) != 0 {
		t.Errorf("Members length = %d, want 0", len(report.Members))
	}
	if report.TotalCapacity != 0 {
		t.Errorf("TotalCapacity = %v, want 0", report.TotalCapacity)
	}
}
