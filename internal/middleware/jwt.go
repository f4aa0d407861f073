package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/manan-api/internal/utils"
)

var knownRoles = map[string]struct{}{
	"student": {},
	"teacher": {},
	"admin":   {},
}

// JWTProtected validates HS256 bearer tokens and stores the subject and role
// in the request locals as user_id and user_role.
func JWTProtected(secret string) fiber.Handler {
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}

	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "bearer "
		if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimSpace(authorization[len(bearer):]), claims, keyFunc,
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := subjectFromClaims(claims)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}

		role := roleFromClaims(claims)
		if _, ok := knownRoles[role]; !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token role")
		}

		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		return c.Next()
	}
}

func subjectFromClaims(claims jwt.MapClaims) (uint, error) {
	for _, key := range []string{"sub", "user_id", "id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case float64:
			if v > 0 {
				return uint(v), nil
			}
		case string:
			parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
			if err == nil && parsed > 0 {
				return uint(parsed), nil
			}
		}
	}
	return 0, errors.New("subject missing")
}

func roleFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		switch v := claims[key].(type) {
		case string:
			return strings.ToLower(strings.TrimSpace(v))
		case []interface{}:
			for _, item := range v {
				if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
					return strings.ToLower(strings.TrimSpace(str))
				}
			}
		}
	}
	return ""
}
