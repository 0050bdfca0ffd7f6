package dto

import (
	"time"

	"github.com/nazim1903/Businesstracker/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// Money fields are pointers so that a missing value can be told apart from zero.
type CreateOrderRequest struct {
	CustomerID   string           `json:"customerId"   validate:"required,uuid"`
	ProductName  string           `json:"productName"  validate:"required,max=200"`
	Details      string           `json:"details"`
	GoldKarat    *string          `json:"goldKarat"`
	DiamondCarat *string          `json:"diamondCarat"`
	DiamondType  *string          `json:"diamondType"`
	Size         *string          `json:"size"`
	Deposit      *decimal.Decimal `json:"deposit"      validate:"omitempty,min=0"`
	TotalPrice   *decimal.Decimal `json:"totalPrice"   validate:"omitempty,min=0"`
	CostPrice    *decimal.Decimal `json:"costPrice"    validate:"omitempty,min=0"`
	Images       []string         `json:"images"`
	CreatedAt    *time.Time       `json:"createdAt"`
}

// UpdateOrderRequest replaces the editable fields of an open order. The
// customer and the deposit cannot be changed here.
type UpdateOrderRequest struct {
	ProductName  string           `json:"productName"  validate:"required,max=200"`
	Details      string           `json:"details"`
	GoldKarat    *string          `json:"goldKarat"`
	DiamondCarat *string          `json:"diamondCarat"`
	DiamondType  *string          `json:"diamondType"`
	Size         *string          `json:"size"`
	TotalPrice   *decimal.Decimal `json:"totalPrice"   validate:"omitempty,min=0"`
	CostPrice    *decimal.Decimal `json:"costPrice"    validate:"omitempty,min=0"`
	Status       string           `json:"status"       validate:"omitempty,oneof=pending in_progress"`
	Images       []string         `json:"images"`
}

// CompleteOrderRequest transfers an order into a recognized sale. Amount is the
// remaining balance received; CostPrice overrides the order's cost.
type CompleteOrderRequest struct {
	Amount      *decimal.Decimal `json:"amount"      validate:"omitempty,min=0"`
	CostPrice   *decimal.Decimal `json:"costPrice"   validate:"omitempty,min=0"`
	Date        *time.Time       `json:"date"`
	Description string           `json:"description" validate:"max=500"`
}

type OrderFilter struct {
	CustomerID string `form:"customerId" validate:"omitempty,uuid"`
	Status     string `form:"status"     validate:"omitempty,oneof=pending in_progress completed cancelled"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// CompletionResult holds the three records written by a completion transfer.
type CompletionResult struct {
	Order   model.Order   `json:"order"`
	Payment model.Payment `json:"payment"`
	Product model.Product `json:"product"`
}
