package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/kaskroutek/internal/i18n"
	"github.com/example/kaskroutek/internal/models"
	"github.com/example/kaskroutek/internal/services"
	"github.com/example/kaskroutek/internal/store"
	"github.com/example/kaskroutek/internal/utils"
)

// OrderHandler manages checkout and the admin order board.
type OrderHandler struct {
	ledger *services.Ledger
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(ledger *services.Ledger) *OrderHandler {
	return &OrderHandler{ledger: ledger}
}

// Checkout places the customer's cart.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var req services.CheckoutInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	lang := Lang(c)
	req.Language = lang

	orders, err := h.ledger.Checkout(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": i18n.T(lang, i18n.KeyOrderPlaced),
		"data":    orders,
	})
}

// statusGroups maps the admin dashboard tabs onto order statuses.
var statusGroups = map[string][]models.OrderStatus{
	"active": {
		models.StatusAwaitingConfirmation,
		models.StatusConfirmed,
		models.StatusInPreparation,
		models.StatusDelivery,
	},
	"delivered": {models.StatusDelivered},
	"cancelled": {models.StatusCancelled},
}

// ListOrders returns paginated orders. ?status= takes a tab name or a comma separated status list.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	filter := store.OrderFilter{
		PhoneNumber: c.Query("phone"),
		Limit:       pg.Limit,
		Offset:      pg.Offset,
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		if group, ok := statusGroups[raw]; ok {
			filter.Statuses = group
		} else {
			for _, s := range strings.Split(raw, ",") {
				filter.Statuses = append(filter.Statuses, models.OrderStatus(strings.TrimSpace(s)))
			}
		}
	}

	orders, total, err := h.ledger.ListOrders(c.UserContext(), filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       orders,
		"pagination": pg.Meta(total),
	})
}

// GetOrder returns a single order by ID.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	order, err := h.ledger.GetOrder(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

type statusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// UpdateStatus moves an order to the requested status.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	order, err := h.ledger.TransitionOrderStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": i18n.T(Lang(c), i18n.KeyStatusUpdated),
		"data":    order,
	})
}

// Cancel cancels an order.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	order, err := h.ledger.CancelOrder(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

// Uncancel restores a cancelled order to confirmed.
func (h *OrderHandler) Uncancel(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	order, err := h.ledger.UncancelOrder(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}
