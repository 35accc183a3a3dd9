package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/kaskroutek/internal/i18n"
	"github.com/example/kaskroutek/internal/services"
	"github.com/example/kaskroutek/internal/validation"
)

// NotifyHandler relays order notifications to Telegram synchronously.
type NotifyHandler struct {
	telegram *services.TelegramService
}

// NewNotifyHandler constructs NotifyHandler.
func NewNotifyHandler(telegram *services.TelegramService) *NotifyHandler {
	return &NotifyHandler{telegram: telegram}
}

// Send validates the payload and forwards it to the admin chat.
func (h *NotifyHandler) Send(c *fiber.Ctx) error {
	lang := Lang(c)

	var req services.OrderNotification
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := validation.New().Struct(req); err != nil {
		return &services.ValidationError{Fields: validation.Fields(err)}
	}

	if err := h.telegram.NotifyOrder(c.UserContext(), req); err != nil {
		log.Printf("[Telegram] relay failed: %v", err)
		return fail(c, fiber.StatusInternalServerError, i18n.T(lang, i18n.KeyNotificationFailed))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": i18n.T(lang, i18n.KeyNotificationSent),
	})
}
