package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/kaskroutek/internal/services"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	ledger *services.Ledger
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(ledger *services.Ledger) *AdminHandler {
	return &AdminHandler{ledger: ledger}
}

// DashboardStats returns order counts by status and revenue of delivered orders.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.ledger.Dashboard(c.UserContext())
	if err != nil {
		return err
	}

	var total int64
	for _, n := range stats.CountByStatus {
		total += n
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_orders":      total,
			"orders_by_status":  stats.CountByStatus,
			"delivered_revenue": stats.DeliveredRevenue,
		},
	})
}
