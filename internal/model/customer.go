package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer owns orders, products and payments through their CustomerID.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (c *Customer) Clone() *Customer {
	out := *c
	out.Email = cloneString(c.Email)
	out.Phone = cloneString(c.Phone)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
