package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/kaskroutek/internal/utils"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/admin", AdminAuth("secret"), func(c *fiber.Ctx) error {
		claims, ok := CurrentAdmin(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(claims.Username)
	})
	return app
}

func TestAdminAuth(t *testing.T) {
	app := newApp()
	valid, err := utils.GenerateToken("secret", uuid.New(), "chef", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	forged, _ := utils.GenerateToken("other", uuid.New(), "chef", time.Hour)

	cases := map[string]struct {
		header string
		status int
	}{
		"missing": {"", fiber.StatusUnauthorized},
		"scheme":  {"Basic abc", fiber.StatusUnauthorized},
		"forged":  {"Bearer " + forged, fiber.StatusUnauthorized},
		"valid":   {"Bearer " + valid, fiber.StatusOK},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("status %d, want %d", resp.StatusCode, tc.status)
			}
		})
	}
}
