package middleware

import (
	"github.com/gofiber/fiber/v2"

	"studio-backend/internal/auth"
)

// RequireReader visitor 또는 full 역할 필수
func RequireReader() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !auth.RoleFromContext(c).CanRead() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Sign in is required",
			})
		}
		return c.Next()
	}
}

// RequireFull full 역할 필수
func RequireFull() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !auth.RoleFromContext(c).CanWrite() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Full access is required",
			})
		}
		return c.Next()
	}
}
