package service

import (
	"context"
	"errors"
	"strings"

	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/model"
	"github.com/nazim1903/Businesstracker/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// existsGuard only requires the order to still be there.
var existsGuard = repository.OrderGuard{}

// ── RecordPayment ─────────────────────────────────────────────────────────────
// Manual entries outside the completion flow. Company and personal transfers
// are booked against a reserved subject; every other type needs a customer.
// A completed deposit sets order.deposit in the same batch.

func (s *ledgerService) RecordPayment(ctx context.Context, req dto.PaymentRequest) (*model.Payment, error) {
	fe := fieldErrors{}
	fe.merge(dto.Validate(req))
	amount := requireAmount(fe, "Amount", req.Amount)

	subject := model.SubjectFor(req.Type)
	var customerID uuid.UUID
	if subject == "" {
		if req.CustomerID == "" {
			fe.add("CustomerID", "required")
		} else {
			customerID = parseID(fe, "CustomerID", req.CustomerID)
		}
	}

	var orderID *uuid.UUID
	switch {
	case req.OrderID != "" && subject != "":
		fe.add("OrderID", "excluded")
	case req.OrderID != "":
		id := parseID(fe, "OrderID", req.OrderID)
		orderID = &id
	case req.Type == model.PaymentDeposit:
		fe.add("OrderID", "required")
	}
	status := req.Status
	if status == "" {
		status = model.PaymentCompleted
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	var lockIDs []uuid.UUID
	if subject == "" {
		lockIDs = append(lockIDs, customerID)
	}
	if orderID != nil {
		lockIDs = append(lockIDs, *orderID)
	}
	unlock := s.locks.Lock(lockIDs...)
	defer unlock()

	now := s.now()
	p := &model.Payment{
		ID:          s.newID(),
		CustomerID:  subject,
		Amount:      amount,
		Date:        optionalTime(req.Date, now),
		Description: strings.TrimSpace(req.Description),
		Type:        req.Type,
		Status:      status,
		OrderID:     orderID,
		CreatedAt:   now,
	}
	b := repository.NewBatch()

	if subject == "" {
		if _, err := s.customer(ctx, customerID); err != nil {
			return nil, err
		}
		p.CustomerID = customerID.String()
		b.ExpectCustomer(customerID)
	}

	if orderID != nil {
		o, err := s.order(ctx, *orderID)
		if err != nil {
			return nil, err
		}
		if o.CustomerID != customerID {
			return nil, &ValidationError{Fields: map[string]string{"OrderID": "customer_mismatch"}}
		}
		if req.Type == model.PaymentDeposit {
			if err := s.attachDeposit(ctx, b, o, p); err != nil {
				return nil, err
			}
		} else {
			b.ExpectOrder(o.ID)
		}
	}
	b.PutPayment(p)

	if err := s.apply(ctx, "record payment", b); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, s.missingReference(ctx, customerID, orderID)
		case errors.Is(err, repository.ErrConflict):
			return nil, s.staleOrder(ctx, *orderID)
		}
		return nil, err
	}

	log.Info().
		Str("payment_id", p.ID.String()).
		Str("type", p.Type).
		Str("subject", p.CustomerID).
		Str("amount", p.Amount.String()).
		Msg("payment recorded")
	return p, nil
}

// missingReference names the record whose existence check failed a batch.
func (s *ledgerService) missingReference(ctx context.Context, customerID uuid.UUID, orderID *uuid.UUID) error {
	if customerID != uuid.Nil {
		if _, err := s.customer(ctx, customerID); err != nil {
			return err
		}
	}
	if orderID != nil {
		if _, err := s.order(ctx, *orderID); err != nil {
			return err
		}
	}
	return &AtomicityError{Op: "reference check", Err: repository.ErrNotFound}
}

// attachDeposit checks that o can take the deposit p and, when p is completed,
// queues the guarded order update that mirrors it.
func (s *ledgerService) attachDeposit(ctx context.Context, b *repository.Batch, o *model.Order, p *model.Payment) error {
	if !o.IsOpen() || o.DepositTransferred {
		return &InvalidStateError{OrderID: o.ID, Status: o.Status}
	}
	existing, err := s.store.ListPayments(ctx, repository.PaymentFilter{OrderID: &o.ID, Type: model.PaymentDeposit})
	if err != nil {
		return &AtomicityError{Op: "record payment", Err: err}
	}
	if len(existing) > 0 {
		return &ValidationError{Fields: map[string]string{"OrderID": "deposit_exists"}}
	}
	if p.Amount.GreaterThan(o.TotalPrice) {
		return &ValidationError{Fields: map[string]string{"Amount": "lte_total_price"}}
	}
	if !p.IsCompleted() {
		return nil
	}
	updated := o.Clone()
	amount := p.Amount
	updated.Deposit = &amount
	updated.ModifiedAt = p.CreatedAt
	b.PutOrderIf(updated, openGuard)
	return nil
}

// ── UpdatePayment ─────────────────────────────────────────────────────────────
// Type, subject and order link are fixed. A deposit keeps order.deposit equal
// to its amount while completed and clears it otherwise.

func (s *ledgerService) UpdatePayment(ctx context.Context, id uuid.UUID, req dto.UpdatePaymentRequest) (*model.Payment, error) {
	fe := fieldErrors{}
	fe.merge(dto.Validate(req))
	amount := requireAmount(fe, "Amount", req.Amount)
	if err := fe.err(); err != nil {
		return nil, err
	}

	p, err := s.payment(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(paymentLocks(p)...)
	defer unlock()

	if p, err = s.payment(ctx, id); err != nil {
		return nil, err
	}
	p.Amount = amount
	p.Date = optionalTime(req.Date, p.Date)
	p.Description = strings.TrimSpace(req.Description)
	p.Status = req.Status

	b := repository.NewBatch()
	if customerID, ok := paymentCustomer(p); ok {
		b.ExpectCustomer(customerID)
	}
	if p.Type == model.PaymentDeposit && p.OrderID != nil {
		o, err := s.order(ctx, *p.OrderID)
		if err != nil {
			return nil, err
		}
		if o.DepositTransferred && !depositEqual(o.Deposit, p) {
			return nil, &AlreadyCompletedError{OrderID: o.ID}
		}
		if p.IsCompleted() && p.Amount.GreaterThan(o.TotalPrice) {
			return nil, &ValidationError{Fields: map[string]string{"Amount": "lte_total_price"}}
		}
		updated := o.Clone()
		updated.Deposit = nil
		if p.IsCompleted() {
			amount := p.Amount
			updated.Deposit = &amount
		}
		updated.ModifiedAt = s.now()
		b.PutOrderIf(updated, existsGuard)
	}
	b.PutPaymentIf(p)

	if err := s.apply(ctx, "update payment", b); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, &NotFoundError{Entity: "customer", ID: p.CustomerID}
		case errors.Is(err, repository.ErrConflict):
			// A cascade delete removed the payment or its order after our read.
			return nil, s.stalePayment(ctx, p)
		}
		return nil, err
	}
	return p, nil
}

// paymentLocks returns the ids a write to p must hold: the payment, its order
// and its customer, so cascade deletes of either are serialized with it.
func paymentLocks(p *model.Payment) []uuid.UUID {
	ids := []uuid.UUID{p.ID}
	if p.OrderID != nil {
		ids = append(ids, *p.OrderID)
	}
	if customerID, ok := paymentCustomer(p); ok {
		ids = append(ids, customerID)
	}
	return ids
}

// paymentCustomer returns the customer p belongs to; false for reserved
// subjects.
func paymentCustomer(p *model.Payment) (uuid.UUID, bool) {
	if p.HasSubject() {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(p.CustomerID)
	return id, err == nil
}

// stalePayment explains a failed payment or order guard from current state.
func (s *ledgerService) stalePayment(ctx context.Context, p *model.Payment) error {
	if _, err := s.payment(ctx, p.ID); err != nil {
		return err
	}
	if p.OrderID != nil {
		if _, err := s.order(ctx, *p.OrderID); err != nil {
			return err
		}
	}
	return &AtomicityError{Op: "payment guard", Err: repository.ErrConflict}
}

// depositEqual reports whether order deposit d already reflects p.
func depositEqual(d *decimal.Decimal, p *model.Payment) bool {
	if !p.IsCompleted() {
		return d == nil
	}
	return d != nil && d.Equal(p.Amount)
}

func (s *ledgerService) GetPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return s.payment(ctx, id)
}

func (s *ledgerService) ListPayments(ctx context.Context, f dto.PaymentFilter) ([]model.Payment, error) {
	fe := fieldErrors{}
	fe.merge(dto.Validate(f))
	rf := repository.PaymentFilter{CustomerID: strings.TrimSpace(f.CustomerID), Type: f.Type, Status: f.Status}
	if f.OrderID != "" {
		id := parseID(fe, "OrderID", f.OrderID)
		rf.OrderID = &id
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	return s.store.ListPayments(ctx, rf)
}

// ── DeletePayment ─────────────────────────────────────────────────────────────
// Deleting a deposit resets its order (deposit = nil, depositTransferred =
// false) in the same batch. A missing id is a successful no-op.

func (s *ledgerService) DeletePayment(ctx context.Context, id uuid.UUID) error {
	p, err := s.payment(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(paymentLocks(p)...)
	defer unlock()

	if p, err = s.payment(ctx, id); errors.Is(err, ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	b := repository.NewBatch().DeletePayment(id)
	reversed := false
	if p.Type == model.PaymentDeposit && p.OrderID != nil {
		o, err := s.order(ctx, *p.OrderID)
		switch {
		case errors.Is(err, ErrNotFound):
			// Orphaned deposit; nothing to reverse.
		case err != nil:
			return err
		default:
			updated := o.Clone()
			updated.Deposit = nil
			updated.DepositTransferred = false
			updated.ModifiedAt = s.now()
			b.PutOrderIf(updated, existsGuard)
			reversed = true
		}
	}

	if err := s.apply(ctx, "delete payment", b); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return &AtomicityError{Op: "delete payment", Err: err}
		}
		return err
	}
	log.Info().Str("payment_id", id.String()).Bool("deposit_reversed", reversed).Msg("payment deleted")
	return nil
}
