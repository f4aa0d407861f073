package models

import "time"

// Student is a learner tracked by the academic directory. Academic metrics
// are pointers so that a missing value is never confused with zero.
type Student struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:255;not null" json:"name"`
	Email             string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	RollNumber        string    `gorm:"size:64" json:"roll_number"`
	Branch            string    `gorm:"size:128" json:"branch"`
	Year              int       `json:"year"`
	AttendancePercent *float64  `json:"attendance_percent"`
	CGPA              *float64  `gorm:"column:cgpa" json:"cgpa"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Metrics returns the academic metrics used for risk classification.
func (s Student) Metrics() AcademicMetrics {
	return AcademicMetrics{AttendancePercent: s.AttendancePercent, CGPA: s.CGPA}
}

// AcademicMetrics groups the values compared against risk thresholds.
type AcademicMetrics struct {
	AttendancePercent *float64 `json:"attendance_percent"`
	CGPA              *float64 `json:"cgpa"`
}
