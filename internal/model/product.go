package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a recognized sale. Profit is always SalePrice - CostPrice and is
// recomputed by Recompute on every write.
type Product struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code       string          `gorm:"type:varchar(64);index" json:"code"`
	Name       string          `gorm:"column:product;not null" json:"product"`
	CostPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"costPrice"`
	SalePrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"salePrice"`
	Profit     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"profit"`
	CustomerID uuid.UUID       `gorm:"type:uuid;index;not null" json:"customerId"`
	CreatedAt  time.Time       `gorm:"index" json:"createdAt"`
	ModifiedAt time.Time       `json:"modifiedAt"`
}

func (p *Product) Recompute() {
	p.Profit = p.SalePrice.Sub(p.CostPrice)
}

func (p *Product) Clone() *Product {
	out := *p
	return &out
}
