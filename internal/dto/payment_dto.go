package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest records a payment outside the completion flow. CustomerID may
// be empty for company_payment and personal_account.
type PaymentRequest struct {
	CustomerID  string           `json:"customerId"  validate:"omitempty,uuid"`
	Amount      *decimal.Decimal `json:"amount"      validate:"omitempty,min=0"`
	Date        *time.Time       `json:"date"`
	Description string           `json:"description" validate:"max=500"`
	Type        string           `json:"type"        validate:"required,oneof=incoming outgoing deposit company_payment personal_account"`
	Status      string           `json:"status"      validate:"omitempty,oneof=pending completed cancelled"`
	OrderID     string           `json:"orderId"     validate:"omitempty,uuid"`
}

// UpdatePaymentRequest edits a payment. Type, customer and order link are fixed
// at creation.
type UpdatePaymentRequest struct {
	Amount      *decimal.Decimal `json:"amount"      validate:"omitempty,min=0"`
	Date        *time.Time       `json:"date"`
	Description string           `json:"description" validate:"max=500"`
	Status      string           `json:"status"      validate:"required,oneof=pending completed cancelled"`
}

type PaymentFilter struct {
	CustomerID string `form:"customerId"`
	OrderID    string `form:"orderId" validate:"omitempty,uuid"`
	Type       string `form:"type"    validate:"omitempty,oneof=incoming outgoing deposit company_payment personal_account"`
	Status     string `form:"status"  validate:"omitempty,oneof=pending completed cancelled"`
}
