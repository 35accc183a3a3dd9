package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/kaskroutek/internal/i18n"
	"github.com/example/kaskroutek/internal/middleware"
	"github.com/example/kaskroutek/internal/services"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an admin and returns a JWT.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	admin, token, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"admin": admin,
			"token": token,
		},
	})
}

// Me returns the identity carried by the bearer token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentAdmin(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, i18n.T(Lang(c), i18n.KeyUnauthorized))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":       claims.AdminID,
			"username": claims.Username,
		},
	})
}
