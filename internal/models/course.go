package models

import "time"

// Course is a class owned by exactly one teacher.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	TeacherID   uint      `gorm:"index;not null" json:"teacher_id"`
	TeacherName string    `gorm:"size:255" json:"teacher_name"`
	DoubtsCount int       `gorm:"not null;default:0" json:"doubts_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Enrollment links a student to a course.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CourseID   uint      `gorm:"uniqueIndex:idx_enrollment_course_student;not null" json:"course_id"`
	StudentID  uint      `gorm:"uniqueIndex:idx_enrollment_course_student;index;not null" json:"student_id"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolled_at"`
}
