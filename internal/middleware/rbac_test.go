package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		userID  interface{}
		role    string
		allowed []string
		want    int
	}{
		{name: "padded mixed-case role", userID: uint(1), role: " Admin ", allowed: []string{"admin", "teacher"}, want: fiber.StatusOK},
		{name: "role outside set", userID: uint(5), role: "student", allowed: []string{"admin", "teacher"}, want: fiber.StatusForbidden},
		{name: "no identity", allowed: []string{"admin"}, want: fiber.StatusUnauthorized},
		{name: "role without user", role: "admin", allowed: []string{"admin"}, want: fiber.StatusUnauthorized},
		{name: "user without role", userID: uint(3), allowed: []string{"student"}, want: fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reached := false
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				if tc.userID != nil {
					c.Locals("user_id", tc.userID)
				}
				if tc.role != "" {
					c.Locals("user_role", tc.role)
				}
				return c.Next()
			})
			app.Use(RequireRole(tc.allowed...))
			app.Get("/", func(c *fiber.Ctx) error {
				reached = true
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
			assert.Equal(t, tc.want == fiber.StatusOK, reached)
		})
	}
}

func TestRoleSetPermits(t *testing.T) {
	set := newRoleSet(" Teacher", "ADMIN ", "")
	assert.Len(t, set, 2)
	assert.True(t, set.permits("teacher"))
	assert.True(t, set.permits("admin"))
	assert.False(t, set.permits("student"))
	assert.False(t, set.permits(""))

	var anyone roleSet
	assert.True(t, anyone.permits("student"))
	assert.True(t, anyone.permits(""))
}

func TestAuthOptionsFacultyExpandsToTeacherAndAdmin(t *testing.T) {
	faculty := AuthOptions{Role: AuthRoleFaculty}.roles()
	assert.True(t, faculty.permits("teacher"))
	assert.True(t, faculty.permits("admin"))
	assert.False(t, faculty.permits("student"))
	assert.Nil(t, AuthOptions{Role: AuthRoleAny}.roles())
}
