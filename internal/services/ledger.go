package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/kaskroutek/internal/i18n"
	"github.com/example/kaskroutek/internal/models"
	"github.com/example/kaskroutek/internal/store"
	"github.com/example/kaskroutek/internal/validation"
)

// Business constants of the loyalty programme.
const (
	// EarnRatePercent of a delivered cash order's total is credited as points.
	EarnRatePercent = 5
	// PointValue is the currency value of one point when paying with points.
	PointValue = 1
	// MaxNoteLength caps the order note, in characters.
	MaxNoteLength = 50
	// MaxItemQuantity caps the units of one cart line. Keep in sync with CartItemInput.
	MaxItemQuantity = 50
)

const (
	ReasonRedeemAtCheckout    = "Redeem at checkout"
	ReasonOrderDelivered      = "Order delivered"
	ReasonAdminManualAdd      = "Admin manual add"
	ReasonAdminManualSubtract = "Admin manual subtract"
)

// EarnRate is EarnRatePercent as a decimal fraction.
var EarnRate = decimal.New(EarnRatePercent, -2)

// Notifier accepts order notifications for asynchronous delivery.
type Notifier interface {
	Enqueue(n OrderNotification) error
}

// CartItemInput is one cart line.
type CartItemInput struct {
	BreadID       uuid.UUID   `json:"bread_id"`
	ToppingIDs    []uuid.UUID `json:"topping_ids"`
	IsDoubleBread bool        `json:"is_double_bread"`
	Quantity      int         `json:"quantity" validate:"min=1,max=50"`
}

// CheckoutInput is everything the customer submits at checkout.
type CheckoutInput struct {
	CustomerName   string                `json:"customer_name" validate:"required"`
	PhoneNumber    string                `json:"phone_number" validate:"required,phone8"`
	Items          []CartItemInput       `json:"items" validate:"required,min=1,dive"`
	PaymentMethod  models.PaymentMethod  `json:"payment_method" validate:"required,oneof=cash points"`
	DeliveryMethod models.DeliveryMethod `json:"delivery_method" validate:"oneof=pickup shipping"`
	PickupTime     *time.Time            `json:"pickup_time"`
	ShippingTime   *time.Time            `json:"shipping_time"`
	Note           string                `json:"note"`
	Language       i18n.Language         `json:"-"`
}

// Ledger owns orders and the loyalty points ledger.
type Ledger struct {
	store    store.Store
	notifier Notifier
	validate *validatorv10.Validate
	loc      *time.Location
	now      func() time.Time
}

// NewLedger constructs Ledger. notifier may be nil.
func NewLedger(s store.Store, notifier Notifier, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{
		store:    s,
		notifier: notifier,
		validate: validation.New(),
		loc:      loc,
		now:      time.Now,
	}
}

type resolvedLine struct {
	input     CartItemInput
	bread     models.Bread
	toppings  []models.Topping
	unitPrice decimal.Decimal
}

// Checkout validates the cart, prices it from the catalog, redeems points when paying
// with points, and creates one order per unit. Everything runs in one transaction:
// if any order write fails the redemption is rolled back.
func (l *Ledger) Checkout(ctx context.Context, in CheckoutInput) ([]models.Order, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Note = truncateRunes(strings.TrimSpace(in.Note), MaxNoteLength)
	if in.DeliveryMethod == "" {
		in.DeliveryMethod = models.DeliveryPickup
	}

	if err := l.validate.Struct(in); err != nil {
		return nil, &ValidationError{Fields: validation.Fields(err)}
	}
	for i, item := range in.Items {
		if item.BreadID == uuid.Nil {
			return nil, invalid(fmt.Sprintf("items[%d].bread_id", i), "is required")
		}
	}

	var (
		lines   []resolvedLine
		created []models.Order
	)
	err := l.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		lines, err = resolveCart(ctx, tx, in.Items)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, line := range lines {
			total = total.Add(line.unitPrice.Mul(decimal.NewFromInt(int64(line.input.Quantity))))
		}

		if in.PaymentMethod == models.PaymentPoints {
			points := total.Div(decimal.NewFromInt(PointValue)).Round(2)
			if _, err := tx.DeductPoints(ctx, in.PhoneNumber, points); err != nil {
				return err
			}
			spend := &models.PointsTransaction{
				PhoneNumber: in.PhoneNumber,
				Amount:      points.Neg(),
				Type:        models.PointsSpend,
				Reason:      ReasonRedeemAtCheckout,
			}
			if err := tx.AppendPointsTransaction(ctx, spend); err != nil {
				return err
			}
		}

		created = created[:0]
		for _, line := range lines {
			for q := 0; q < line.input.Quantity; q++ {
				order := l.buildOrder(in, line)
				if err := tx.CreateOrder(ctx, &order); err != nil {
					return err
				}
				created = append(created, order)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("checkout", err)
	}

	log.Printf("[Ledger] Checkout for %s created %d orders (%s)", in.PhoneNumber, len(created), in.PaymentMethod)
	l.notifyCheckout(in, lines)
	return created, nil
}

func resolveCart(ctx context.Context, tx store.Store, items []CartItemInput) ([]resolvedLine, error) {
	lines := make([]resolvedLine, 0, len(items))
	for i, item := range items {
		bread, err := tx.GetBread(ctx, item.BreadID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalid(fmt.Sprintf("items[%d].bread_id", i), "unknown bread")
		}
		if err != nil {
			return nil, err
		}

		toppings := make([]models.Topping, 0, len(item.ToppingIDs))
		for j, id := range item.ToppingIDs {
			topping, err := tx.GetTopping(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return nil, invalid(fmt.Sprintf("items[%d].topping_ids[%d]", i, j), "unknown topping")
			}
			if err != nil {
				return nil, err
			}
			toppings = append(toppings, *topping)
		}

		lines = append(lines, resolvedLine{
			input:     item,
			bread:     *bread,
			toppings:  toppings,
			unitPrice: ComputeItemPrice(*bread, item.IsDoubleBread, toppings),
		})
	}
	return lines, nil
}

func (l *Ledger) buildOrder(in CheckoutInput, line resolvedLine) models.Order {
	snapshots := make([]models.ToppingSnapshot, len(line.toppings))
	for i, t := range line.toppings {
		snapshots[i] = models.ToppingSnapshot{ID: t.ID, Name: t.Name, Price: t.Price, Category: t.Category}
	}

	order := models.Order{
		CustomerName:   in.CustomerName,
		PhoneNumber:    in.PhoneNumber,
		BreadID:        line.bread.ID,
		BreadName:      line.bread.Name,
		BreadPrice:     line.bread.Price,
		Toppings:       snapshots,
		TotalPrice:     line.unitPrice,
		Status:         models.StatusAwaitingConfirmation,
		PaymentMethod:  in.PaymentMethod,
		IsDoubleBread:  line.input.IsDoubleBread,
		Note:           in.Note,
		DeliveryMethod: in.DeliveryMethod,
	}
	if in.DeliveryMethod == models.DeliveryShipping {
		order.ShippingTime = in.ShippingTime
	} else {
		order.PickupTime = in.PickupTime
	}
	return order
}

// notifyCheckout hands one notification per cart line to the notifier. Failures are logged only.
func (l *Ledger) notifyCheckout(in CheckoutInput, lines []resolvedLine) {
	if l.notifier == nil {
		return
	}

	placedAt := l.now().In(l.loc).Format("01/02/2006, 15:04:05")
	for _, line := range lines {
		toppingNames := make([]string, len(line.toppings))
		for i, t := range line.toppings {
			toppingNames[i] = t.Name
		}

		n := OrderNotification{
			Username:       in.CustomerName,
			PhoneNumber:    in.PhoneNumber,
			Sandwich:       DescribeSandwich(line.bread.Name, line.input.IsDoubleBread, toppingNames, in.Language),
			Price:          line.unitPrice,
			Quantity:       line.input.Quantity,
			Time:           placedAt,
			PaymentMethod:  string(in.PaymentMethod),
			Note:           in.Note,
			DeliveryMethod: string(in.DeliveryMethod),
		}
		if in.DeliveryMethod == models.DeliveryShipping {
			n.ShippingTime = in.ShippingTime
		} else {
			n.PickupTime = in.PickupTime
		}

		if err := l.notifier.Enqueue(n); err != nil {
			log.Printf("[Ledger] Failed to enqueue notification for %s: %v", in.PhoneNumber, err)
		}
	}
}

// TransitionOrderStatus moves an order to status. The first entry into delivered stamps
// delivered_at and, for cash orders, credits total × EarnRate points with an earn entry.
func (l *Ledger) TransitionOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, invalid("status", "unknown status")
	}

	err := l.store.Transaction(ctx, func(tx store.Store) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}

		var deliveredAt *time.Time
		firstDelivery := status == models.StatusDelivered && order.DeliveredAt == nil
		if firstDelivery {
			now := l.now()
			deliveredAt = &now
		}

		if err := tx.UpdateOrderStatus(ctx, order.ID, status, deliveredAt); err != nil {
			return err
		}

		if !firstDelivery || order.PaymentMethod != models.PaymentCash {
			return nil
		}

		earned := order.TotalPrice.Mul(EarnRate).Round(2)
		if !earned.IsPositive() {
			return nil
		}
		if _, err := tx.AddPoints(ctx, order.PhoneNumber, order.CustomerName, earned); err != nil {
			return err
		}
		orderRef := order.ID
		return tx.AppendPointsTransaction(ctx, &models.PointsTransaction{
			PhoneNumber:    order.PhoneNumber,
			Amount:         earned,
			Type:           models.PointsEarn,
			Reason:         ReasonOrderDelivered,
			RelatedOrderID: &orderRef,
		})
	})
	if err != nil {
		return nil, storeErr("transition order status", err)
	}

	order, err := l.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, storeErr("load order", err)
	}
	log.Printf("[Ledger] Order %s is now %s", order.ID, order.Status)
	return order, nil
}

// CancelOrder moves the order to cancelled. No points move.
func (l *Ledger) CancelOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return l.TransitionOrderStatus(ctx, orderID, models.StatusCancelled)
}

// UncancelOrder restores a cancelled order to confirmed. No points move.
func (l *Ledger) UncancelOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := l.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, storeErr("load order", err)
	}
	if order.Status != models.StatusCancelled {
		return nil, invalid("status", "order is not cancelled")
	}
	return l.TransitionOrderStatus(ctx, orderID, models.StatusConfirmed)
}

// CreateOrUpdateLoyaltyPoints adds delta to the account of phone, creating it if needed.
// It does not log a points transaction; callers must.
func (l *Ledger) CreateOrUpdateLoyaltyPoints(ctx context.Context, phone, customerName string, delta decimal.Decimal) (*models.LoyaltyAccount, error) {
	account, err := l.store.AddPoints(ctx, phone, strings.TrimSpace(customerName), delta)
	if err != nil {
		return nil, storeErr("upsert loyalty points", err)
	}
	return account, nil
}

// AdminAdjustPoints credits amount points to phone and logs an adjustment_add entry.
func (l *Ledger) AdminAdjustPoints(ctx context.Context, phone, customerName string, amount decimal.Decimal) (*models.LoyaltyAccount, error) {
	if err := checkAdjustment(phone, amount); err != nil {
		return nil, err
	}
	amount = amount.Round(2)

	var account *models.LoyaltyAccount
	err := l.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		account, err = tx.AddPoints(ctx, phone, strings.TrimSpace(customerName), amount)
		if err != nil {
			return err
		}
		return tx.AppendPointsTransaction(ctx, &models.PointsTransaction{
			PhoneNumber: phone,
			Amount:      amount,
			Type:        models.PointsAdjustmentAdd,
			Reason:      ReasonAdminManualAdd,
		})
	})
	if err != nil {
		return nil, storeErr("admin adjust points", err)
	}
	log.Printf("[Ledger] Admin added %s points to %s", amount, phone)
	return account, nil
}

// AdminSubtractPoints debits amount points from phone, never below zero, and logs an
// adjustment_subtract entry.
func (l *Ledger) AdminSubtractPoints(ctx context.Context, phone string, amount decimal.Decimal, reason string) (*models.LoyaltyAccount, error) {
	if err := checkAdjustment(phone, amount); err != nil {
		return nil, err
	}
	amount = amount.Round(2)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = ReasonAdminManualSubtract
	}

	var account *models.LoyaltyAccount
	err := l.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		account, err = tx.DeductPoints(ctx, phone, amount)
		if err != nil {
			return err
		}
		return tx.AppendPointsTransaction(ctx, &models.PointsTransaction{
			PhoneNumber: phone,
			Amount:      amount.Neg(),
			Type:        models.PointsAdjustmentSubtract,
			Reason:      reason,
		})
	})
	if err != nil {
		return nil, storeErr("admin subtract points", err)
	}
	log.Printf("[Ledger] Admin subtracted %s points from %s", amount, phone)
	return account, nil
}

func checkAdjustment(phone string, amount decimal.Decimal) error {
	fields := map[string]string{}
	if !validation.IsPhone(phone) {
		fields["phone_number"] = "must be exactly 8 digits"
	}
	if !amount.IsPositive() {
		fields["amount"] = "must be greater than 0"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// GetLoyaltyAccount returns the account of phone. A phone without an account has a zero balance.
func (l *Ledger) GetLoyaltyAccount(ctx context.Context, phone string) (*models.LoyaltyAccount, error) {
	if !validation.IsPhone(phone) {
		return nil, invalid("phone_number", "must be exactly 8 digits")
	}
	account, err := l.store.GetLoyaltyAccount(ctx, phone)
	if errors.Is(err, store.ErrNotFound) {
		return &models.LoyaltyAccount{PhoneNumber: phone, TotalPoints: decimal.Zero}, nil
	}
	if err != nil {
		return nil, storeErr("load loyalty account", err)
	}
	return account, nil
}

// ListLoyaltyAccounts pages through every account, richest first.
func (l *Ledger) ListLoyaltyAccounts(ctx context.Context, limit, offset int) ([]models.LoyaltyAccount, int64, error) {
	accounts, total, err := l.store.ListLoyaltyAccounts(ctx, limit, offset)
	if err != nil {
		return nil, 0, storeErr("list loyalty accounts", err)
	}
	return accounts, total, nil
}

// ListPointsTransactions returns the ledger entries of phone, newest first.
func (l *Ledger) ListPointsTransactions(ctx context.Context, phone string) ([]models.PointsTransaction, error) {
	if !validation.IsPhone(phone) {
		return nil, invalid("phone_number", "must be exactly 8 digits")
	}
	txs, err := l.store.ListPointsTransactions(ctx, phone)
	if err != nil {
		return nil, storeErr("list points transactions", err)
	}
	return txs, nil
}

// RewardsTotals sums a customer's activity.
type RewardsTotals struct {
	SpentCash    decimal.Decimal `json:"spent_cash"`
	SpentPoints  decimal.Decimal `json:"spent_points"`
	EarnedPoints decimal.Decimal `json:"earned_points"`
}

// RewardsSummary is the customer facing rewards page.
type RewardsSummary struct {
	Account      *models.LoyaltyAccount     `json:"account"`
	Transactions []models.PointsTransaction `json:"transactions"`
	Orders       []models.Order             `json:"orders"`
	Totals       RewardsTotals              `json:"totals"`
}

// RewardsSummary collects balance, ledger, orders and totals for phone.
func (l *Ledger) RewardsSummary(ctx context.Context, phone string) (*RewardsSummary, error) {
	account, err := l.GetLoyaltyAccount(ctx, phone)
	if err != nil {
		return nil, err
	}
	txs, err := l.ListPointsTransactions(ctx, phone)
	if err != nil {
		return nil, err
	}
	orders, _, err := l.store.ListOrders(ctx, store.OrderFilter{PhoneNumber: phone})
	if err != nil {
		return nil, storeErr("list orders", err)
	}

	totals := RewardsTotals{SpentCash: decimal.Zero, SpentPoints: decimal.Zero, EarnedPoints: decimal.Zero}
	for _, order := range orders {
		if order.Status == models.StatusDelivered && order.PaymentMethod == models.PaymentCash {
			totals.SpentCash = totals.SpentCash.Add(order.TotalPrice)
		}
	}
	for _, tx := range txs {
		switch tx.Type {
		case models.PointsSpend:
			totals.SpentPoints = totals.SpentPoints.Add(tx.Amount.Abs())
		case models.PointsEarn:
			totals.EarnedPoints = totals.EarnedPoints.Add(tx.Amount)
		}
	}

	return &RewardsSummary{
		Account:      account,
		Transactions: txs,
		Orders:       orders,
		Totals:       totals,
	}, nil
}

// GetOrder returns one order.
func (l *Ledger) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := l.store.GetOrder(ctx, id)
	if err != nil {
		return nil, storeErr("load order", err)
	}
	return order, nil
}

// ListOrders pages through orders matching filter, newest first.
func (l *Ledger) ListOrders(ctx context.Context, filter store.OrderFilter) ([]models.Order, int64, error) {
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, 0, invalid("status", "unknown status")
		}
	}
	orders, total, err := l.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, 0, storeErr("list orders", err)
	}
	return orders, total, nil
}

// Dashboard returns order counts by status and delivered revenue.
func (l *Ledger) Dashboard(ctx context.Context) (*store.OrderStats, error) {
	stats, err := l.store.OrderStats(ctx)
	if err != nil {
		return nil, storeErr("order stats", err)
	}
	return stats, nil
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
