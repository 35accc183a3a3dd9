package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/kaskroutek/internal/i18n"
	"github.com/example/kaskroutek/internal/models"
	"github.com/example/kaskroutek/internal/services"
)

// TimerHandler serves pickup and shipping slots.
type TimerHandler struct {
	resolver *services.TimerResolver
}

// NewTimerHandler constructs TimerHandler.
func NewTimerHandler(resolver *services.TimerResolver) *TimerHandler {
	return &TimerHandler{resolver: resolver}
}

func timerKind(c *fiber.Ctx) (models.TimerKind, error) {
	kind := models.TimerKind(c.Params("kind"))
	if !kind.Valid() {
		return "", fiber.NewError(fiber.StatusNotFound, i18n.T(Lang(c), i18n.KeyNotFound))
	}
	return kind, nil
}

// Available lists the slots a customer can choose right now.
func (h *TimerHandler) Available(c *fiber.Ctx) error {
	kind, err := timerKind(c)
	if err != nil {
		return err
	}
	slots, err := h.resolver.Available(c.UserContext(), kind)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    slots,
		"cutoff":  int(h.resolver.Cutoff(kind).Minutes()),
	})
}

// List returns every slot of the collection.
func (h *TimerHandler) List(c *fiber.Ctx) error {
	kind, err := timerKind(c)
	if err != nil {
		return err
	}
	slots, err := h.resolver.ListSlots(c.UserContext(), kind)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": slots})
}

// Create adds a slot.
func (h *TimerHandler) Create(c *fiber.Ctx) error {
	kind, err := timerKind(c)
	if err != nil {
		return err
	}
	var req services.SlotInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	slot, err := h.resolver.CreateSlot(c.UserContext(), kind, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": slot})
}

// Update rewrites a slot.
func (h *TimerHandler) Update(c *fiber.Ctx) error {
	kind, err := timerKind(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req services.SlotInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	slot, err := h.resolver.UpdateSlot(c.UserContext(), kind, id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": slot})
}

// Delete removes a slot.
func (h *TimerHandler) Delete(c *fiber.Ctx) error {
	kind, err := timerKind(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.resolver.DeleteSlot(c.UserContext(), kind, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// Recompute refreshes today's active flags for both collections.
func (h *TimerHandler) Recompute(c *fiber.Ctx) error {
	updated, err := h.resolver.RecomputeAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"updated": updated}})
}
