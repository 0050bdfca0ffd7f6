package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/model"
	"github.com/nazim1903/Businesstracker/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LedgerService enforces the cross-entity rules between customers, orders,
// payments and products. Every multi-record effect is written as one batch.
type LedgerService interface {
	CreateCustomer(ctx context.Context, req dto.CustomerRequest) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, req dto.CustomerRequest) (*model.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error

	CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*model.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, req dto.UpdateOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, f dto.OrderFilter) ([]model.Order, error)
	CompleteOrderPayment(ctx context.Context, id uuid.UUID, req dto.CompleteOrderRequest) (*dto.CompletionResult, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	RecordPayment(ctx context.Context, req dto.PaymentRequest) (*model.Payment, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, req dto.UpdatePaymentRequest) (*model.Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	ListPayments(ctx context.Context, f dto.PaymentFilter) ([]model.Payment, error)
	DeletePayment(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, req dto.ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req dto.ProductRequest) (*model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, f dto.ProductFilter) ([]model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// LedgerConfig carries the engine's collaborators and deployment settings.
// Zero values get defaults in NewLedgerService.
type LedgerConfig struct {
	// DefaultCostRatio prices the recognized sale when neither the completion
	// request nor the order carries a cost price.
	DefaultCostRatio decimal.Decimal
	Locks            *LockSet
	Now              func() time.Time
	NewID            func() uuid.UUID
	// OnCommit runs after every successfully applied batch.
	OnCommit func(ctx context.Context)
}

// DefaultCostRatio is the fallback cost ratio used when none is configured.
var DefaultCostRatio = decimal.NewFromFloat(0.7)

type ledgerService struct {
	store     repository.Store
	costRatio decimal.Decimal
	locks     *LockSet
	clock     func() time.Time
	newID     func() uuid.UUID
	onCommit  func(ctx context.Context)
}

func NewLedgerService(store repository.Store, cfg LedgerConfig) LedgerService {
	s := &ledgerService{
		store:     store,
		costRatio: cfg.DefaultCostRatio,
		locks:     cfg.Locks,
		clock:     cfg.Now,
		newID:     cfg.NewID,
		onCommit:  cfg.OnCommit,
	}
	if s.costRatio.IsZero() {
		s.costRatio = DefaultCostRatio
	}
	if s.locks == nil {
		s.locks = NewLockSet()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.New
	}
	return s
}

// now is truncated to microseconds, the precision postgres keeps.
func (s *ledgerService) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

// apply writes b atomically. Guard failures (repository.ErrConflict,
// repository.ErrNotFound) are returned as is for the caller to translate; any
// other store error becomes an AtomicityError.
func (s *ledgerService) apply(ctx context.Context, op string, b *repository.Batch) error {
	err := s.store.Apply(ctx, b)
	if err == nil {
		if s.onCommit != nil {
			s.onCommit(ctx)
		}
		return nil
	}
	if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrNotFound) {
		return err
	}
	log.Error().Err(err).Str("op", op).Int("writes", b.Len()).Msg("batch apply failed")
	return &AtomicityError{Op: op, Err: err}
}

// ── Lookups ─────────────────────────────────────────────────────────────────

func (s *ledgerService) customer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, err := s.store.GetCustomer(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Entity: "customer", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (s *ledgerService) order(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Entity: "order", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *ledgerService) payment(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	p, err := s.store.GetPayment(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Entity: "payment", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (s *ledgerService) product(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Entity: "product", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ── Validation helpers ──────────────────────────────────────────────────────

// requireAmount checks that a money field is present and not negative.
func requireAmount(fe fieldErrors, field string, v *decimal.Decimal) decimal.Decimal {
	switch {
	case v == nil:
		fe.add(field, "required")
		return decimal.Zero
	case v.IsNegative():
		fe.add(field, "min")
	}
	return *v
}

func parseID(fe fieldErrors, field, raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		fe.add(field, "uuid")
	}
	return id
}

func optionalTime(t *time.Time, fallback time.Time) time.Time {
	if t == nil || t.IsZero() {
		return fallback
	}
	return t.UTC().Truncate(time.Microsecond)
}
