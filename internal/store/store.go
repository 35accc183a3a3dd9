// Package store persists the catalog, orders, the loyalty ledger, timer slots and admin users.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/kaskroutek/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientPoints is returned by DeductPoints when the balance is too low.
	ErrInsufficientPoints = errors.New("insufficient points")
)

// OrderFilter narrows ListOrders. A zero Limit returns every match.
type OrderFilter struct {
	Statuses    []models.OrderStatus
	PhoneNumber string
	Limit       int
	Offset      int
}

// OrderStats aggregates orders for the admin dashboard.
type OrderStats struct {
	CountByStatus    map[models.OrderStatus]int64 `json:"count_by_status"`
	DeliveredRevenue decimal.Decimal              `json:"delivered_revenue"`
}

type Catalog interface {
	ListBreads(ctx context.Context) ([]models.Bread, error)
	GetBread(ctx context.Context, id uuid.UUID) (*models.Bread, error)
	CreateBread(ctx context.Context, bread *models.Bread) error
	UpdateBread(ctx context.Context, bread *models.Bread) error
	DeleteBread(ctx context.Context, id uuid.UUID) error

	ListToppings(ctx context.Context) ([]models.Topping, error)
	GetTopping(ctx context.Context, id uuid.UUID) (*models.Topping, error)
	CreateTopping(ctx context.Context, topping *models.Topping) error
	UpdateTopping(ctx context.Context, topping *models.Topping) error
	DeleteTopping(ctx context.Context, id uuid.UUID) error
}

type Orders interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// LockOrder reads the order and holds a row lock until the enclosing transaction ends.
	LockOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, deliveredAt *time.Time) error
	OrderStats(ctx context.Context) (*OrderStats, error)
}

type Loyalty interface {
	GetLoyaltyAccount(ctx context.Context, phone string) (*models.LoyaltyAccount, error)
	ListLoyaltyAccounts(ctx context.Context, limit, offset int) ([]models.LoyaltyAccount, int64, error)
	// AddPoints atomically creates the account or adds delta to it. An empty name keeps the stored one.
	AddPoints(ctx context.Context, phone, name string, delta decimal.Decimal) (*models.LoyaltyAccount, error)
	// DeductPoints subtracts amount only if the balance covers it, otherwise ErrInsufficientPoints.
	DeductPoints(ctx context.Context, phone string, amount decimal.Decimal) (*models.LoyaltyAccount, error)
	AppendPointsTransaction(ctx context.Context, tx *models.PointsTransaction) error
	// ListPointsTransactions returns the ledger of a phone number, newest first.
	ListPointsTransactions(ctx context.Context, phone string) ([]models.PointsTransaction, error)
}

type Timers interface {
	ListTimerSlots(ctx context.Context, kind models.TimerKind) ([]models.TimerSlot, error)
	ListTimerSlotsForDay(ctx context.Context, kind models.TimerKind, day time.Weekday) ([]models.TimerSlot, error)
	GetTimerSlot(ctx context.Context, kind models.TimerKind, id uuid.UUID) (*models.TimerSlot, error)
	CreateTimerSlot(ctx context.Context, kind models.TimerKind, slot *models.TimerSlot) error
	UpdateTimerSlot(ctx context.Context, kind models.TimerKind, slot *models.TimerSlot) error
	DeleteTimerSlot(ctx context.Context, kind models.TimerKind, id uuid.UUID) error
	SetTimerActive(ctx context.Context, kind models.TimerKind, id uuid.UUID, active bool) error
}

type Admins interface {
	GetAdminByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	CreateAdmin(ctx context.Context, admin *models.AdminUser) error
}

// Store is the full persistence surface used by the services.
type Store interface {
	Catalog
	Orders
	Loyalty
	Timers
	Admins

	// Transaction runs fn against a transactional view of the store.
	// Returning an error from fn rolls back every write made through that view.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
