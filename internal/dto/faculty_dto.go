package dto

import (
	"time"

	"github.com/noah-isme/manan-api/internal/models"
)

// FacultyStatsResponse holds the dashboard counters for a teacher.
type FacultyStatsResponse struct {
	TeacherID      uint      `json:"teacher_id"`
	TotalStudents  int64     `json:"total_students"`
	ActiveCourses  int64     `json:"active_courses"`
	UnsolvedDoubts int64     `json:"unsolved_doubts"`
	GeneratedAt    time.Time `json:"generated_at"`
	CacheHit       bool      `json:"cache_hit"`
}

// ClassifiedStudentResponse is a student row annotated with its risk tier.
type ClassifiedStudentResponse struct {
	ID                uint            `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	RollNumber        string          `json:"roll_number"`
	Branch            string          `json:"branch"`
	Year              int             `json:"year"`
	AttendancePercent *float64        `json:"attendance_percent"`
	CGPA              *float64        `json:"cgpa"`
	RiskTier          models.RiskTier `json:"risk_tier"`
}

// RosterResponse lists classified students together with per-tier totals.
type RosterResponse struct {
	Students     []ClassifiedStudentResponse `json:"students"`
	TierCounts   map[models.RiskTier]int     `json:"tier_counts"`
	AtRiskCount  int                         `json:"at_risk_count"`
	Thresholds   RiskSettingsResponse        `json:"thresholds"`
	ClassifiedAt time.Time                   `json:"classified_at"`
}

// StudentMetricsUpdateRequest updates a student's own academic metrics.
type StudentMetricsUpdateRequest struct {
	AttendancePercent *float64 `json:"attendance_percent" validate:"omitempty,gte=0,lte=100"`
	CGPA              *float64 `json:"cgpa" validate:"omitempty,gte=0,lte=10"`
}

// NewClassifiedStudentResponse annotates a student with a tier.
func NewClassifiedStudentResponse(student models.Student, tier models.RiskTier) ClassifiedStudentResponse {
	return ClassifiedStudentResponse{
		ID:                student.ID,
		Name:              student.Name,
		Email:             student.Email,
		RollNumber:        student.RollNumber,
		Branch:            student.Branch,
		Year:              student.Year,
		AttendancePercent: student.AttendancePercent,
		CGPA:              student.CGPA,
		RiskTier:          tier,
	}
}
