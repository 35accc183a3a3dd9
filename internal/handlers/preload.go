package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/kaskroutek/internal/models"
	"github.com/example/kaskroutek/internal/services"
	"github.com/example/kaskroutek/internal/store"
)

// PreloadHandler returns everything the storefront needs on first paint.
type PreloadHandler struct {
	catalog  store.Catalog
	resolver *services.TimerResolver
}

// NewPreloadHandler constructs PreloadHandler.
func NewPreloadHandler(catalog store.Catalog, resolver *services.TimerResolver) *PreloadHandler {
	return &PreloadHandler{catalog: catalog, resolver: resolver}
}

// Health reports liveness.
func (h *PreloadHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "status": "ok"})
}

// Preload returns breads, toppings and today's selectable slots.
// Timer flags are recomputed first; a failure there is logged and the stored flags are used.
func (h *PreloadHandler) Preload(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if _, err := h.resolver.RecomputeAll(ctx); err != nil {
		log.Printf("[Timers] recompute on preload failed: %v", err)
	}

	breads, err := h.catalog.ListBreads(ctx)
	if err != nil {
		return catalogErr(err)
	}
	toppings, err := h.catalog.ListToppings(ctx)
	if err != nil {
		return catalogErr(err)
	}

	timers := make(fiber.Map, len(models.TimerKinds))
	for _, kind := range models.TimerKinds {
		slots, err := h.resolver.Available(ctx, kind)
		if err != nil {
			return err
		}
		timers[string(kind)] = slots
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"breads":   breads,
			"toppings": toppings,
			"timers":   timers,
		},
	})
}
