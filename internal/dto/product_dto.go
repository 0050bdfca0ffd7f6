package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	Code       string           `json:"code"       validate:"max=64"`
	Product    string           `json:"product"    validate:"required,max=200"`
	CostPrice  *decimal.Decimal `json:"costPrice"  validate:"omitempty,min=0"`
	SalePrice  *decimal.Decimal `json:"salePrice"  validate:"omitempty,min=0"`
	CustomerID string           `json:"customerId" validate:"required,uuid"`
	CreatedAt  *time.Time       `json:"createdAt"`
}

type ProductFilter struct {
	CustomerID string `form:"customerId" validate:"omitempty,uuid"`
}
