package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/manan-api/internal/utils"
)

// roleSet is a normalized set of roles. A nil set admits any role.
type roleSet map[string]struct{}

func newRoleSet(roles ...string) roleSet {
	set := make(roleSet, len(roles))
	for _, role := range roles {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

func (s roleSet) permits(role string) bool {
	if s == nil {
		return true
	}
	_, ok := s[role]
	return ok
}

// guard answers 401 for requests without a user and 403 for users whose
// role is outside the set. When handled is true the response is written
// and the chain must stop.
func (s roleSet) guard(c *fiber.Ctx, requireUser bool) (handled bool, err error) {
	if requireUser && c.Locals("user_id") == nil {
		return true, utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
	}
	if !s.permits(normalizeRoleValue(c.Locals("user_role"))) {
		return true, utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
	}
	return false, nil
}

// RequireRole guards a route group so that only authenticated users holding
// one of the listed roles reach it.
func RequireRole(roles ...string) fiber.Handler {
	allowed := newRoleSet(roles...)
	return func(c *fiber.Ctx) error {
		if handled, err := allowed.guard(c, true); handled {
			return err
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
