package dto

import (
	"time"

	"github.com/noah-isme/manan-api/internal/models"
)

// DoubtCreateRequest is the payload a student sends to raise a doubt.
type DoubtCreateRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	Question string `json:"question" validate:"required,max=4000"`
}

// DoubtResolveRequest closes a doubt, optionally attaching an answer.
type DoubtResolveRequest struct {
	Answer string `json:"answer" validate:"omitempty,max=8000"`
}

// DoubtAnswerRequest attaches a faculty answer without closing the doubt.
type DoubtAnswerRequest struct {
	Answer string `json:"answer" validate:"required,max=8000"`
}

// DoubtResponse is the serialized representation of a doubt.
type DoubtResponse struct {
	ID            uint               `json:"id"`
	StudentID     uint               `json:"student_id"`
	CourseID      uint               `json:"course_id"`
	CourseTitle   string             `json:"course_title,omitempty"`
	Question      string             `json:"question"`
	Status        models.DoubtStatus `json:"status"`
	FacultyAnswer *string            `json:"faculty_answer"`
	ResolvedBy    *uint              `json:"resolved_by,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	ResolvedAt    *time.Time         `json:"resolved_at"`
}

// NewDoubtResponse converts a doubt model into a DTO.
func NewDoubtResponse(model models.Doubt) DoubtResponse {
	return DoubtResponse{
		ID:            model.ID,
		StudentID:     model.StudentID,
		CourseID:      model.CourseID,
		CourseTitle:   model.Course.Title,
		Question:      model.Question,
		Status:        model.Status,
		FacultyAnswer: model.FacultyAnswer,
		ResolvedBy:    model.ResolvedBy,
		CreatedAt:     model.CreatedAt,
		ResolvedAt:    model.ResolvedAt,
	}
}

// NewDoubtResponseSlice converts a slice of doubts into DTOs.
func NewDoubtResponseSlice(items []models.Doubt) []DoubtResponse {
	out := make([]DoubtResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewDoubtResponse(item))
	}
	return out
}
