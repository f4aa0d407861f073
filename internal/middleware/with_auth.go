package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Auth role constants used by WithAuth.
const (
	AuthRoleAny     = "any"
	AuthRoleStudent = "student"
	AuthRoleFaculty = "faculty"
	AuthRoleAdmin   = "admin"
)

// AuthOptions configures WithAuth. Every role requires an authenticated
// user unless AllowAnonymous is set on AuthRoleAny.
type AuthOptions struct {
	Role           string
	AllowAnonymous bool
}

func (o AuthOptions) roles() roleSet {
	switch strings.ToLower(strings.TrimSpace(o.Role)) {
	case "", AuthRoleAny:
		return nil
	case AuthRoleFaculty:
		return newRoleSet("teacher", "admin")
	default:
		return newRoleSet(o.Role)
	}
}

// WithAuth wraps a single handler with the same guard RequireRole applies to
// groups. The faculty role admits teachers and administrators.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	allowed := opts.roles()
	requireUser := allowed != nil || !opts.AllowAnonymous

	return func(c *fiber.Ctx) error {
		if handled, err := allowed.guard(c, requireUser); handled {
			return err
		}
		return handler(c)
	}
}
