package academic

import "math"

// Regulatory holds the institution-wide thresholds used for at-risk
// classification. Immutable process-wide configuration, not per-course.
type Regulatory struct {
	MinAttendancePct int
	MinPassingGrade  float64
}

// AttendancePercentage computes a student's attendance percentage over the
// recorded sessions of one course. Present and excused count as full credit,
// late as half credit, absent as none. The exact weighting determines who is
// flagged at risk, so it must not drift between views.
//
// No records yet means no evidence of risk: the percentage is 100.
func AttendancePercentage(records []AttendanceRecord) int {
	if len(records) == 0 {
		return 100
	}
	var credit float64
	for _, r := range records {
		switch r.Status {
		case AttendancePresent, AttendanceExcused:
			credit++
		case AttendanceLate:
			credit += 0.5
		}
	}
	return int(math.Round(100 * credit / float64(len(records))))
}

// IsAttendanceAtRisk reports whether a percentage falls below the regulatory
// minimum. The comparison is strict: exactly on the threshold is not at risk.
func IsAttendanceAtRisk(percentage, minAttendancePct int) bool {
	return percentage < minAttendancePct
}

// WeightedAverage computes the final score of a grade record from its
// per-corte scores and the institutional cut weights.
func WeightedAverage(g GradeRecord) float64 {
	var sum float64
	for i, score := range g.Scores {
		sum += score * CutWeights[i]
	}
	return sum / 100
}

// IsGradeAtRisk reports whether a weighted average falls below the minimum
// passing grade. Strict comparison, as for attendance.
func IsGradeAtRisk(weightedAverage, minPassingGrade float64) bool {
	return weightedAverage < minPassingGrade
}
