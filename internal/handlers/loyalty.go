package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/kaskroutek/internal/i18n"
	"github.com/example/kaskroutek/internal/services"
	"github.com/example/kaskroutek/internal/utils"
)

// LoyaltyHandler exposes balances, rewards and admin point adjustments.
type LoyaltyHandler struct {
	ledger *services.Ledger
}

// NewLoyaltyHandler constructs LoyaltyHandler.
func NewLoyaltyHandler(ledger *services.Ledger) *LoyaltyHandler {
	return &LoyaltyHandler{ledger: ledger}
}

// Balance returns the points balance of :phone.
func (h *LoyaltyHandler) Balance(c *fiber.Ctx) error {
	account, err := h.ledger.GetLoyaltyAccount(c.UserContext(), c.Params("phone"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": account})
}

// Rewards returns the rewards page of :phone.
func (h *LoyaltyHandler) Rewards(c *fiber.Ctx) error {
	summary, err := h.ledger.RewardsSummary(c.UserContext(), c.Params("phone"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": summary})
}

// ListAccounts returns paginated loyalty accounts.
func (h *LoyaltyHandler) ListAccounts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	accounts, total, err := h.ledger.ListLoyaltyAccounts(c.UserContext(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       accounts,
		"pagination": pg.Meta(total),
	})
}

// Transactions returns the ledger entries of :phone.
func (h *LoyaltyHandler) Transactions(c *fiber.Ctx) error {
	txs, err := h.ledger.ListPointsTransactions(c.UserContext(), c.Params("phone"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": txs})
}

type adjustRequest struct {
	PhoneNumber  string          `json:"phone_number"`
	CustomerName string          `json:"customer_name"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
}

// Adjust credits points to a customer.
func (h *LoyaltyHandler) Adjust(c *fiber.Ctx) error {
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	account, err := h.ledger.AdminAdjustPoints(c.UserContext(), req.PhoneNumber, req.CustomerName, req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": i18n.T(Lang(c), i18n.KeyPointsAdjusted),
		"data":    account,
	})
}

// Subtract debits points from a customer.
func (h *LoyaltyHandler) Subtract(c *fiber.Ctx) error {
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	account, err := h.ledger.AdminSubtractPoints(c.UserContext(), req.PhoneNumber, req.Amount, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": i18n.T(Lang(c), i18n.KeyPointsAdjusted),
		"data":    account,
	})
}
