package service

import "github.com/noah-isme/manan-api/internal/models"

// ClassifyRisk derives a student's tier from their metrics. A threshold is
// crossed only when the metric is strictly below it. Students with a
// missing metric are reported as safe.
func ClassifyRisk(metrics models.AcademicMetrics, settings models.RiskSettings) models.RiskTier {
	if metrics.AttendancePercent == nil || metrics.CGPA == nil {
		return models.RiskTierSafe
	}

	lowAttendance := *metrics.AttendancePercent < settings.AttendanceThreshold
	lowCGPA := *metrics.CGPA < settings.CGPAThreshold

	switch {
	case lowAttendance && lowCGPA:
		return models.RiskTierCritical
	case lowAttendance:
		return models.RiskTierAtRisk
	case lowCGPA:
		return models.RiskTierWarning
	default:
		return models.RiskTierSafe
	}
}

// ResolveBatchTargets picks every student whose tier needs attention. When
// none do, every student is targeted and fellBack is true.
func ResolveBatchTargets(students []models.Student, settings models.RiskSettings) (ids []uint, fellBack bool) {
	ids = make([]uint, 0, len(students))
	for _, student := range students {
		if ClassifyRisk(student.Metrics(), settings).NeedsAttention() {
			ids = append(ids, student.ID)
		}
	}
	if len(ids) > 0 {
		return ids, false
	}

	for _, student := range students {
		ids = append(ids, student.ID)
	}
	return ids, true
}
