package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequireAdmin guards mutating routes: requests must carry a valid
// "Authorization: Bearer <token>" header issued by the TokenManager.
func RequireAdmin(m *TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		if _, err := m.Verify(token); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		return c.Next()
	}
}
