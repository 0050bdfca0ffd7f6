package dto

import "time"

type CustomerRequest struct {
	Name      string     `json:"name"      validate:"required,max=200"`
	Email     *string    `json:"email"     validate:"omitempty,email"`
	Phone     *string    `json:"phone"     validate:"omitempty,max=50"`
	CreatedAt *time.Time `json:"createdAt"`
}
