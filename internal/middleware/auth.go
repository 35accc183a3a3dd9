package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/kaskroutek/internal/utils"
)

const adminContextKey = "currentAdmin"

// AdminAuth validates the bearer token and stores the admin claims in context.
func AdminAuth(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims, err := utils.ParseToken(jwtSecret, strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(adminContextKey, claims)
		return c.Next()
	}
}

// CurrentAdmin returns the claims stored by AdminAuth.
func CurrentAdmin(c *fiber.Ctx) (*utils.AdminClaims, bool) {
	claims, ok := c.Locals(adminContextKey).(*utils.AdminClaims)
	return claims, ok
}
