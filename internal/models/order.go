package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderStatus is the lifecycle state of an order row.
type OrderStatus string

const (
	StatusAwaitingConfirmation OrderStatus = "awaiting_confirmation"
	StatusConfirmed            OrderStatus = "confirmed"
	StatusInPreparation        OrderStatus = "in_preparation"
	StatusDelivery             OrderStatus = "delivery"
	StatusDelivered            OrderStatus = "delivered"
	StatusCancelled            OrderStatus = "cancelled"
)

// OrderStatuses lists every status in workflow order.
var OrderStatuses = []OrderStatus{
	StatusAwaitingConfirmation,
	StatusConfirmed,
	StatusInPreparation,
	StatusDelivery,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// PaymentMethod is how the customer settles an order.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentPoints PaymentMethod = "points"
)

// DeliveryMethod is how the order reaches the customer.
type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryShipping DeliveryMethod = "shipping"
)

// ToppingSnapshot is the copy of a topping embedded in an order at checkout time.
type ToppingSnapshot struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category ToppingCategory `json:"category"`
}

// Order is one sandwich unit. A cart line with quantity N produces N orders.
type Order struct {
	BaseModel
	CustomerName   string                               `gorm:"not null" json:"customer_name"`
	PhoneNumber    string                               `gorm:"size:8;index;not null" json:"phone_number"`
	BreadID        uuid.UUID                            `gorm:"type:uuid;index" json:"bread_id"`
	Bread          *Bread                               `json:"bread,omitempty"`
	BreadName      string                               `json:"bread_name"`
	BreadPrice     decimal.Decimal                      `gorm:"type:numeric(10,2)" json:"bread_price"`
	Toppings       datatypes.JSONSlice[ToppingSnapshot] `json:"toppings"`
	TotalPrice     decimal.Decimal                      `gorm:"type:numeric(10,2);not null" json:"total_price"`
	Status         OrderStatus                          `gorm:"size:32;index;not null" json:"status"`
	PaymentMethod  PaymentMethod                        `gorm:"size:16;not null" json:"payment_method"`
	IsDoubleBread  bool                                 `json:"is_double_bread"`
	Note           string                               `gorm:"size:50" json:"note,omitempty"`
	DeliveryMethod DeliveryMethod                       `gorm:"size:16;not null" json:"delivery_method"`
	PickupTime     *time.Time                           `json:"pickup_time,omitempty"`
	ShippingTime   *time.Time                           `json:"shipping_time,omitempty"`
	DeliveredAt    *time.Time                           `json:"delivered_at,omitempty"`
}
