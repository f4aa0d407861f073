package service

import "errors"

// Sentinel errors returned by the services. Handlers map them with errors.Is.
var (
	ErrValidation           = errors.New("validation failed")
	ErrDoubtNotFound        = errors.New("doubt not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrStudentNotFound      = errors.New("student not found")
	ErrDoubtAlreadyResolved = errors.New("doubt already resolved")
	ErrForbidden            = errors.New("forbidden")
	ErrNoRecipients         = errors.New("no recipients to notify")
	ErrIdempotencyKeyReused = errors.New("idempotency key already used")
)

// Roles carried in the access token.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// ActivityActor represents the authenticated user performing an action.
type ActivityActor struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the actor bypasses ownership checks.
func (a ActivityActor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsFaculty reports whether the actor is a teacher or an administrator.
func (a ActivityActor) IsFaculty() bool {
	return a.Role == RoleTeacher || a.Role == RoleAdmin
}

// teacherScope returns nil for administrators so that queries span every course.
func teacherScope(actor ActivityActor) *uint {
	if actor.IsAdmin() {
		return nil
	}
	id := actor.ID
	return &id
}
