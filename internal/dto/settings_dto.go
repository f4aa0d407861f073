package dto

import (
	"time"

	"github.com/noah-isme/manan-api/internal/models"
)

// RiskSettingsRequest is the administrator save payload.
type RiskSettingsRequest struct {
	AttendanceThreshold *float64 `json:"attendance_threshold" validate:"required,gte=0,lte=100"`
	CGPAThreshold       *float64 `json:"cgpa_threshold" validate:"required,gte=0,lte=10"`
	MaintenanceMode     bool     `json:"maintenance_mode"`
	ExamMode            bool     `json:"exam_mode"`
}

// RiskSettingsResponse exposes the current thresholds and flags.
type RiskSettingsResponse struct {
	AttendanceThreshold float64    `json:"attendance_threshold"`
	CGPAThreshold       float64    `json:"cgpa_threshold"`
	MaintenanceMode     bool       `json:"maintenance_mode"`
	ExamMode            bool       `json:"exam_mode"`
	UpdatedBy           *uint      `json:"updated_by,omitempty"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

// PlatformStatusResponse is the subset of settings visible to every user.
type PlatformStatusResponse struct {
	MaintenanceMode bool `json:"maintenance_mode"`
	ExamMode        bool `json:"exam_mode"`
}

// NewRiskSettingsResponse converts the settings model into a DTO.
func NewRiskSettingsResponse(model models.RiskSettings) RiskSettingsResponse {
	response := RiskSettingsResponse{
		AttendanceThreshold: model.AttendanceThreshold,
		CGPAThreshold:       model.CGPAThreshold,
		MaintenanceMode:     model.MaintenanceMode,
		ExamMode:            model.ExamMode,
		UpdatedBy:           model.UpdatedBy,
	}
	if !model.UpdatedAt.IsZero() {
		updatedAt := model.UpdatedAt
		response.UpdatedAt = &updatedAt
	}
	return response
}
