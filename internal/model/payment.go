package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment types.
const (
	PaymentIncoming        = "incoming"
	PaymentOutgoing        = "outgoing"
	PaymentDeposit         = "deposit"
	PaymentCompany         = "company_payment"
	PaymentPersonalAccount = "personal_account"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentCancelled = "cancelled"
)

// Reserved ledger subjects used as CustomerID for transfers that do not
// involve a customer.
const (
	SubjectCompany  = "COMPANY"
	SubjectPersonal = "PERSONAL"
)

// Payment is a single cash movement. CustomerID holds either a customer UUID or
// one of the reserved subjects. A deposit always carries OrderID.
type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID  string          `gorm:"type:varchar(64);index;not null" json:"customerId"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date        time.Time       `gorm:"index" json:"date"`
	Description string          `json:"description"`
	Type        string          `gorm:"type:varchar(20);not null;index" json:"type"`
	Status      string          `gorm:"type:varchar(20);not null" json:"status"`
	OrderID     *uuid.UUID      `gorm:"type:uuid;index" json:"orderId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// IsCompleted reports whether the payment counts towards cash-flow totals.
func (p *Payment) IsCompleted() bool { return p.Status == PaymentCompleted }

// HasSubject reports whether the payment belongs to a reserved subject rather
// than a customer.
func (p *Payment) HasSubject() bool {
	return p.CustomerID == SubjectCompany || p.CustomerID == SubjectPersonal
}

func (p *Payment) Clone() *Payment {
	out := *p
	if p.OrderID != nil {
		id := *p.OrderID
		out.OrderID = &id
	}
	return &out
}

func IsPaymentType(t string) bool {
	switch t {
	case PaymentIncoming, PaymentOutgoing, PaymentDeposit, PaymentCompany, PaymentPersonalAccount:
		return true
	}
	return false
}

func IsPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentCancelled:
		return true
	}
	return false
}

// SubjectFor returns the reserved subject for company and personal payment
// types, and "" for every other type.
func SubjectFor(paymentType string) string {
	switch paymentType {
	case PaymentCompany:
		return SubjectCompany
	case PaymentPersonalAccount:
		return SubjectPersonal
	}
	return ""
}
