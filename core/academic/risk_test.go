package academic

import "testing"

func records(statuses ...AttendanceStatus) []AttendanceRecord {
	recs := make([]AttendanceRecord, 0, len(statuses))
	for _, s := range statuses {
		recs = append(recs, AttendanceRecord{StudentID: "st1", CourseID: "crs1", Status: s})
	}
	return recs
}

func TestAttendancePercentage(t *testing.T) {
	tests := []struct {
		name string
		recs []AttendanceRecord
		want int
	}{
		{name: "no records yet", recs: nil, want: 100},
		{name: "all present", recs: records(AttendancePresent, AttendancePresent), want: 100},
		{name: "present and absent", recs: records(AttendancePresent, AttendanceAbsent), want: 50},
		// late counts half: (1 + 0.5) / 2 = 75
		{name: "present and late", recs: records(AttendancePresent, AttendanceLate), want: 75},
		// excused counts full, like present
		{name: "excused counts full", recs: records(AttendanceExcused, AttendanceAbsent), want: 50},
		{name: "all absent", recs: records(AttendanceAbsent, AttendanceAbsent, AttendanceAbsent), want: 0},
		// (1 + 0.5 + 1 + 0) / 4 = 62.5 -> 63
		{name: "mixed rounds up", recs: records(AttendancePresent, AttendanceLate, AttendanceExcused, AttendanceAbsent), want: 63},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttendancePercentage(tt.recs); got != tt.want {
				t.Errorf("AttendancePercentage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsAttendanceAtRisk(t *testing.T) {
	tests := []struct {
		name      string
		pct, min  int
		want      bool
	}{
		{name: "below threshold", pct: 79, min: 80, want: true},
		{name: "on threshold", pct: 80, min: 80, want: false},
		{name: "above threshold", pct: 81, min: 80, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAttendanceAtRisk(tt.pct, tt.min); got != tt.want {
				t.Errorf("IsAttendanceAtRisk(%d, %d) = %v, want %v", tt.pct, tt.min, got, tt.want)
			}
		})
	}
}

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name   string
		scores [NumCutPeriods]float64
		want   float64
	}{
		{name: "zeroes", scores: [NumCutPeriods]float64{}, want: 0},
		{name: "straight fives", scores: [NumCutPeriods]float64{5, 5, 5}, want: 5},
		// 3*0.3 + 4*0.3 + 2*0.4 = 2.9
		{name: "mixed", scores: [NumCutPeriods]float64{3, 4, 2}, want: 2.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedAverage(GradeRecord{Scores: tt.scores})
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("WeightedAverage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsGradeAtRisk(t *testing.T) {
	if !IsGradeAtRisk(2.9, 3.0) {
		t.Error("IsGradeAtRisk(2.9, 3.0) = false, want true")
	}
	if IsGradeAtRisk(3.0, 3.0) {
		t.Error("IsGradeAtRisk(3.0, 3.0) = true, want false")
	}
}
