package models

import "time"

// DoubtStatus is the lifecycle state of a doubt ticket.
type DoubtStatus string

// Doubt lifecycle states. Resolved is terminal.
const (
	DoubtStatusOpen     DoubtStatus = "open"
	DoubtStatusResolved DoubtStatus = "resolved"
)

// Doubt is a question raised by a student against a course.
type Doubt struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	StudentID     uint        `gorm:"index;not null" json:"student_id"`
	CourseID      uint        `gorm:"index;not null" json:"course_id"`
	Question      string      `gorm:"type:text;not null" json:"question"`
	Status        DoubtStatus `gorm:"size:16;index;not null;default:open" json:"status"`
	FacultyAnswer *string     `gorm:"type:text" json:"faculty_answer"`
	ResolvedBy    *uint       `json:"resolved_by"`
	ResolvedAt    *time.Time  `json:"resolved_at"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Course        Course      `gorm:"foreignKey:CourseID" json:"-"`
}

// IsResolved reports whether the doubt reached its terminal state.
func (d Doubt) IsResolved() bool {
	return d.Status == DoubtStatusResolved
}
