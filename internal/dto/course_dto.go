package dto

import (
	"time"

	"github.com/noah-isme/manan-api/internal/models"
)

// CourseCreateRequest creates a course owned by the caller. Description is
// an HTML fragment; unsafe elements and attributes are stripped on save.
type CourseCreateRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	TeacherName string `json:"teacher_name" validate:"omitempty,max=255"`
}

// CourseResponse is the serialized form of a course.
type CourseResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TeacherID   uint      `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	DoubtsCount int       `json:"doubts_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCourseResponse converts a course model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		TeacherID:   model.TeacherID,
		TeacherName: model.TeacherName,
		DoubtsCount: model.DoubtsCount,
		CreatedAt:   model.CreatedAt,
	}
}

// NewCourseResponseSlice converts courses into DTOs.
func NewCourseResponseSlice(items []models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewCourseResponse(item))
	}
	return out
}

// EnrollmentResponse reports the outcome of an enrollment request.
type EnrollmentResponse struct {
	CourseID  uint `json:"course_id"`
	StudentID uint `json:"student_id"`
	Created   bool `json:"created"`
}
