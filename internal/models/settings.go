package models

import "time"

// RiskSettingsID is the primary key of the single settings row.
const RiskSettingsID uint = 1

// Default thresholds applied until an administrator saves settings.
const (
	DefaultAttendanceThreshold = 75.0
	DefaultCGPAThreshold       = 5.0
)

// RiskSettings holds the institution-wide thresholds and platform flags.
type RiskSettings struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	AttendanceThreshold float64   `gorm:"not null" json:"attendance_threshold"`
	CGPAThreshold       float64   `gorm:"column:cgpa_threshold;not null" json:"cgpa_threshold"`
	MaintenanceMode     bool      `gorm:"not null;default:false" json:"maintenance_mode"`
	ExamMode            bool      `gorm:"not null;default:false" json:"exam_mode"`
	UpdatedBy           *uint     `json:"updated_by,omitempty"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultRiskSettings returns the settings used before any save.
func DefaultRiskSettings() RiskSettings {
	return RiskSettings{
		ID:                  RiskSettingsID,
		AttendanceThreshold: DefaultAttendanceThreshold,
		CGPAThreshold:       DefaultCGPAThreshold,
	}
}
