package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PointsTransactionType classifies a ledger entry.
type PointsTransactionType string

const (
	PointsEarn               PointsTransactionType = "earn"
	PointsSpend              PointsTransactionType = "spend"
	PointsAdjustmentAdd      PointsTransactionType = "adjustment_add"
	PointsAdjustmentSubtract PointsTransactionType = "adjustment_subtract"
)

// LoyaltyAccount caches the running points balance of a phone number.
type LoyaltyAccount struct {
	BaseModel
	PhoneNumber  string          `gorm:"size:8;uniqueIndex;not null" json:"phone_number"`
	CustomerName string          `json:"customer_name"`
	TotalPoints  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_points"`
}

func (LoyaltyAccount) TableName() string { return "loyalty_points" }

// PointsTransaction is an append-only ledger entry. Amount is negative for spend and subtract.
type PointsTransaction struct {
	BaseModel
	PhoneNumber    string                `gorm:"size:8;index;not null" json:"phone_number"`
	Amount         decimal.Decimal       `gorm:"type:numeric(12,2);not null" json:"amount"`
	Type           PointsTransactionType `gorm:"size:32;not null" json:"type"`
	Reason         string                `json:"reason,omitempty"`
	RelatedOrderID *uuid.UUID            `gorm:"type:uuid" json:"related_order_id,omitempty"`
}
