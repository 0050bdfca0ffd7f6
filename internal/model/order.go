package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order statuses. Completed and cancelled are terminal.
const (
	OrderPending    = "pending"
	OrderInProgress = "in_progress"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

// OpenOrderStatuses are the statuses from which an order can still be
// completed, cancelled or edited.
var OpenOrderStatuses = []string{OrderPending, OrderInProgress}

// Order is a custom piece taken from a customer, possibly against a deposit.
// Deposit mirrors the amount of the order's completed deposit Payment (nil when
// there is none). CostPrice is nil only on restored records that never carried
// one. DepositTransferred is set only by the completion transfer and implies
// Status == "completed".
type Order struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID   uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`
	ProductName  string    `gorm:"not null" json:"productName"`
	Details      string    `json:"details"`
	GoldKarat    *string   `gorm:"type:varchar(32)" json:"goldKarat,omitempty"`
	DiamondCarat *string   `gorm:"type:varchar(32)" json:"diamondCarat,omitempty"`
	DiamondType  *string   `gorm:"type:varchar(64)" json:"diamondType,omitempty"`
	Size         *string   `gorm:"type:varchar(32)" json:"size,omitempty"`

	Deposit    *decimal.Decimal `gorm:"type:decimal(12,2)" json:"deposit"`
	TotalPrice decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
	CostPrice  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"costPrice"`

	Status             string    `gorm:"type:varchar(20);not null;index" json:"status"`
	DepositTransferred bool      `gorm:"not null;index" json:"depositTransferred"`
	CreatedAt          time.Time `gorm:"index" json:"createdAt"`
	ModifiedAt         time.Time `json:"modifiedAt"`

	// Images are opaque references owned by the attachment collaborator.
	Images datatypes.JSONSlice[string] `json:"images,omitempty"`
}

// IsOpen reports whether the order is still pending or in progress.
func (o *Order) IsOpen() bool {
	return o.Status == OrderPending || o.Status == OrderInProgress
}

func (o *Order) Clone() *Order {
	out := *o
	out.GoldKarat = cloneString(o.GoldKarat)
	out.DiamondCarat = cloneString(o.DiamondCarat)
	out.DiamondType = cloneString(o.DiamondType)
	out.Size = cloneString(o.Size)
	if o.Deposit != nil {
		d := *o.Deposit
		out.Deposit = &d
	}
	if o.CostPrice != nil {
		c := *o.CostPrice
		out.CostPrice = &c
	}
	if o.Images != nil {
		out.Images = append(datatypes.JSONSlice[string]{}, o.Images...)
	}
	return &out
}

func IsOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderInProgress, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}
