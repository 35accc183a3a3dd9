package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/kaskroutek/internal/i18n"
	"github.com/example/kaskroutek/internal/services"
)

// Lang returns the language requested via ?lang= or Accept-Language.
func Lang(c *fiber.Ctx) i18n.Language {
	return i18n.Detect(c.Query("lang"), c.Get(fiber.HeaderAcceptLanguage))
}

// ErrorHandler renders service errors as {"success": false, "error": ...} with a localised message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	lang := Lang(c)

	var validationErr *services.ValidationError
	var persistenceErr *services.PersistenceError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   i18n.T(lang, i18n.KeyValidationFailed),
			"fields":  validationErr.Fields,
		})
	case errors.Is(err, services.ErrInsufficientPoints):
		return fail(c, fiber.StatusConflict, i18n.T(lang, i18n.KeyNotEnoughPoints))
	case errors.Is(err, services.ErrNotFound):
		return fail(c, fiber.StatusNotFound, i18n.T(lang, i18n.KeyNotFound))
	case errors.Is(err, services.ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, i18n.T(lang, i18n.KeyInvalidCredentials))
	case errors.As(err, &persistenceErr):
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
		return fail(c, fiber.StatusInternalServerError, i18n.T(lang, i18n.KeyRetryLater))
	case errors.As(err, &fiberErr):
		return fail(c, fiberErr.Code, fiberErr.Message)
	}

	log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	return fail(c, fiber.StatusInternalServerError, i18n.T(lang, i18n.KeyRetryLater))
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func invalidBody(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusBadRequest, i18n.T(Lang(c), i18n.KeyInvalidRequest))
}
