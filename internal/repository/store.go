package repository

import (
	"context"
	"errors"

	"github.com/nazim1903/Businesstracker/internal/model"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by the Get* methods when no record has the id.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned by Apply when a guarded write no longer holds.
	// Nothing from the batch is applied.
	ErrConflict = errors.New("write precondition failed")
)

type OrderFilter struct {
	CustomerID *uuid.UUID
	Status     string
}

type PaymentFilter struct {
	// CustomerID matches a customer UUID or a reserved subject.
	CustomerID string
	OrderID    *uuid.UUID
	Type       string
	Status     string
}

type ProductFilter struct {
	CustomerID *uuid.UUID
}

// Reader is the read side of the entity store. Lists are ordered newest first
// (payments by date).
type Reader interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)

	ListCustomers(ctx context.Context) ([]model.Customer, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]model.Order, error)
	ListPayments(ctx context.Context, f PaymentFilter) ([]model.Payment, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]model.Product, error)
}

// Store is a durable keyed store for the four collections. Apply executes a
// batch as one atomic unit; Snapshot reads all collections at one point in time.
type Store interface {
	Reader
	Apply(ctx context.Context, b *Batch) error
	Snapshot(ctx context.Context) (*model.Dataset, error)
}

func (f OrderFilter) match(o *model.Order) bool {
	if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
		return false
	}
	return f.Status == "" || o.Status == f.Status
}

func (f PaymentFilter) match(p *model.Payment) bool {
	if f.CustomerID != "" && p.CustomerID != f.CustomerID {
		return false
	}
	if f.OrderID != nil && (p.OrderID == nil || *p.OrderID != *f.OrderID) {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	return f.Status == "" || p.Status == f.Status
}

func (f ProductFilter) match(p *model.Product) bool {
	return f.CustomerID == nil || p.CustomerID == *f.CustomerID
}
