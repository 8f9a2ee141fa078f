package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"planforge_backend/internal/model"
	"planforge_backend/pkg/utils/jwt"
)

// AuthMiddleware validates the bearer access token and stores claims in ctx.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header",
			})
		}

		claims, err := jwt.ValidateAccessToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("user", claims)
		return c.Next()
	}
}

// OptionalAuth stores claims when a valid token is present but never rejects.
// Public catalog pages use it to enrich responses for logged-in users.
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header != "" {
			tokenString := strings.TrimPrefix(header, "Bearer ")
			if claims, err := jwt.ValidateAccessToken(tokenString); err == nil {
				c.Locals("user", claims)
			}
		}
		return c.Next()
	}
}

// RequireAdmin gates staff-only endpoints. Role checks live here and in
// model.UserRole.IsStaff, nowhere else.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(*jwt.Claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if !model.UserRole(claims.Role).IsStaff() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}

		return c.Next()
	}
}
