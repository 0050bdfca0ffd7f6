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
	"gorm.io/datatypes"
)

var notTransferred = false

// openGuard matches an order that can still be edited, cancelled or completed.
var openGuard = repository.OrderGuard{
	Statuses:           model.OpenOrderStatuses,
	DepositTransferred: &notTransferred,
}

// ── CreateOrder ───────────────────────────────────────────────────────────────
// Order and, when a deposit is taken, its completed deposit payment are
// written in one batch.

func (s *ledgerService) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*model.Order, error) {
	fe := fieldErrors{}
	fe.merge(dto.Validate(req))
	customerID := parseID(fe, "CustomerID", req.CustomerID)
	if strings.TrimSpace(req.ProductName) == "" {
		fe.add("ProductName", "required")
	}
	total := requireAmount(fe, "TotalPrice", req.TotalPrice)
	cost := requireAmount(fe, "CostPrice", req.CostPrice)
	var deposit *decimal.Decimal
	if req.Deposit != nil {
		switch {
		case req.Deposit.IsNegative():
			fe.add("Deposit", "min")
		case req.Deposit.GreaterThan(total):
			fe.add("Deposit", "lte_total_price")
		case req.Deposit.IsPositive():
			d := *req.Deposit
			deposit = &d
		}
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(customerID)
	defer unlock()

	if _, err := s.customer(ctx, customerID); err != nil {
		return nil, err
	}

	now := s.now()
	o := &model.Order{
		ID:           s.newID(),
		CustomerID:   customerID,
		ProductName:  strings.TrimSpace(req.ProductName),
		Details:      req.Details,
		GoldKarat:    trimmed(req.GoldKarat),
		DiamondCarat: trimmed(req.DiamondCarat),
		DiamondType:  trimmed(req.DiamondType),
		Size:         trimmed(req.Size),
		Deposit:      deposit,
		TotalPrice:   total,
		CostPrice:    &cost,
		Status:       model.OrderPending,
		CreatedAt:    optionalTime(req.CreatedAt, now),
		ModifiedAt:   now,
		Images:       imageRefs(req.Images),
	}

	b := repository.NewBatch().ExpectCustomer(customerID).PutOrder(o)
	if deposit != nil {
		orderID := o.ID
		b.PutPayment(&model.Payment{
			ID:          s.newID(),
			CustomerID:  customerID.String(),
			Amount:      *deposit,
			Date:        now,
			Description: "Deposit for " + o.ProductName,
			Type:        model.PaymentDeposit,
			Status:      model.PaymentCompleted,
			OrderID:     &orderID,
			CreatedAt:   now,
		})
	}
	if err := s.apply(ctx, "create order", b); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "customer", ID: customerID.String()}
		}
		return nil, err
	}

	ev := log.Info().Str("order_id", o.ID.String()).Str("customer_id", customerID.String())
	if deposit != nil {
		ev = ev.Str("deposit", deposit.String())
	}
	ev.Msg("order created")
	return o, nil
}

// ── UpdateOrder ───────────────────────────────────────────────────────────────

func (s *ledgerService) UpdateOrder(ctx context.Context, id uuid.UUID, req dto.UpdateOrderRequest) (*model.Order, error) {
	fe := fieldErrors{}
	fe.merge(dto.Validate(req))
	if strings.TrimSpace(req.ProductName) == "" {
		fe.add("ProductName", "required")
	}
	total := requireAmount(fe, "TotalPrice", req.TotalPrice)
	cost := requireAmount(fe, "CostPrice", req.CostPrice)
	if req.Status != "" && req.Status != model.OrderPending && req.Status != model.OrderInProgress {
		fe.add("Status", "oneof")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	o, err := s.order(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsOpen() || o.DepositTransferred {
		return nil, &InvalidStateError{OrderID: id, Status: o.Status}
	}
	if o.Deposit != nil && o.Deposit.GreaterThan(total) {
		return nil, &ValidationError{Fields: map[string]string{"TotalPrice": "gte_deposit"}}
	}

	o.ProductName = strings.TrimSpace(req.ProductName)
	o.Details = req.Details
	o.GoldKarat = trimmed(req.GoldKarat)
	o.DiamondCarat = trimmed(req.DiamondCarat)
	o.DiamondType = trimmed(req.DiamondType)
	o.Size = trimmed(req.Size)
	o.TotalPrice = total
	o.CostPrice = &cost
	if req.Status != "" {
		o.Status = req.Status
	}
	o.Images = imageRefs(req.Images)
	o.ModifiedAt = s.now()

	if err := s.apply(ctx, "update order", repository.NewBatch().PutOrderIf(o, openGuard)); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, s.staleOrder(ctx, id)
		}
		return nil, err
	}
	return o, nil
}

func (s *ledgerService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.order(ctx, id)
}

func (s *ledgerService) ListOrders(ctx context.Context, f dto.OrderFilter) ([]model.Order, error) {
	fe := fieldErrors{}
	fe.merge(dto.Validate(f))
	var rf repository.OrderFilter
	if f.CustomerID != "" {
		id := parseID(fe, "CustomerID", f.CustomerID)
		rf.CustomerID = &id
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	rf.Status = f.Status
	return s.store.ListOrders(ctx, rf)
}

// ── CompleteOrderPayment ──────────────────────────────────────────────────────
// The transfer recognizing an order as a sale, in one batch:
//   1. incoming payment for the remaining balance (the deposit stays as is)
//   2. product dated at the order's creation, profit = sale - cost
//   3. order -> completed, depositTransferred = true
// The order update is guarded, so a second completion can never apply.

func (s *ledgerService) CompleteOrderPayment(ctx context.Context, id uuid.UUID, req dto.CompleteOrderRequest) (*dto.CompletionResult, error) {
	fe := fieldErrors{}
	fe.merge(dto.Validate(req))
	amount := requireAmount(fe, "Amount", req.Amount)
	if req.CostPrice != nil && req.CostPrice.IsNegative() {
		fe.add("CostPrice", "min")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	o, err := s.order(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(o.CustomerID, id)
	defer unlock()

	// Re-read under the lock: a concurrent completion may have won.
	if o, err = s.order(ctx, id); err != nil {
		return nil, err
	}
	if err := completable(o); err != nil {
		log.Warn().Err(err).Str("order_id", id.String()).Msg("completion rejected")
		return nil, err
	}

	// The override wins, then the order's own cost. Only an order that carries
	// no cost at all (restored legacy data) is priced with the ratio.
	var cost decimal.Decimal
	switch {
	case req.CostPrice != nil:
		cost = *req.CostPrice
	case o.CostPrice != nil:
		cost = *o.CostPrice
	default:
		cost = o.TotalPrice.Mul(s.costRatio).Round(2)
	}

	now := s.now()
	orderID := o.ID
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Final payment for " + o.ProductName
	}
	payment := &model.Payment{
		ID:          s.newID(),
		CustomerID:  o.CustomerID.String(),
		Amount:      amount,
		Date:        optionalTime(req.Date, now),
		Description: description,
		Type:        model.PaymentIncoming,
		Status:      model.PaymentCompleted,
		OrderID:     &orderID,
		CreatedAt:   now,
	}
	product := &model.Product{
		ID:         s.newID(),
		Code:       strings.ToUpper("SALE-" + o.ID.String()),
		Name:       o.ProductName,
		CostPrice:  cost,
		SalePrice:  o.TotalPrice,
		CustomerID: o.CustomerID,
		CreatedAt:  o.CreatedAt,
		ModifiedAt: now,
	}
	product.Recompute()

	completed := o.Clone()
	completed.Status = model.OrderCompleted
	completed.DepositTransferred = true
	completed.ModifiedAt = now

	b := repository.NewBatch().
		PutOrderIf(completed, openGuard).
		ExpectCustomer(o.CustomerID).
		PutPayment(payment).
		PutProduct(product)
	if err := s.apply(ctx, "complete order", b); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			// Another process moved the order between our read and the write.
			return nil, s.staleOrder(ctx, id)
		case errors.Is(err, repository.ErrNotFound):
			return nil, &NotFoundError{Entity: "customer", ID: o.CustomerID.String()}
		}
		return nil, err
	}

	log.Info().
		Str("order_id", id.String()).
		Str("payment_id", payment.ID.String()).
		Str("product_id", product.ID.String()).
		Str("sale_price", product.SalePrice.String()).
		Str("profit", product.Profit.String()).
		Msg("order completed and transferred to sales")
	return &dto.CompletionResult{Order: *completed, Payment: *payment, Product: *product}, nil
}

// completable returns the error a completion of o must fail with, if any.
func completable(o *model.Order) error {
	switch {
	case o.DepositTransferred || o.Status == model.OrderCompleted:
		return &AlreadyCompletedError{OrderID: o.ID}
	case !o.IsOpen():
		return &InvalidStateError{OrderID: o.ID, Status: o.Status}
	}
	return nil
}

// staleOrder explains a failed order guard from the order's current state.
func (s *ledgerService) staleOrder(ctx context.Context, id uuid.UUID) error {
	o, err := s.order(ctx, id)
	if err != nil {
		return err
	}
	if err := completable(o); err != nil {
		return err
	}
	return &AtomicityError{Op: "order guard", Err: repository.ErrConflict}
}

// ── CancelOrder ───────────────────────────────────────────────────────────────
// A status change only: deposits stay recorded. Refunds are separate outgoing
// payments.

func (s *ledgerService) CancelOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	o, err := s.order(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsOpen() || o.DepositTransferred {
		log.Warn().Str("order_id", id.String()).Str("status", o.Status).Msg("cancel rejected")
		return nil, &InvalidStateError{OrderID: id, Status: o.Status}
	}
	o.Status = model.OrderCancelled
	o.ModifiedAt = s.now()

	if err := s.apply(ctx, "cancel order", repository.NewBatch().PutOrderIf(o, openGuard)); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			cur, gerr := s.order(ctx, id)
			if gerr != nil {
				return nil, gerr
			}
			return nil, &InvalidStateError{OrderID: id, Status: cur.Status}
		}
		return nil, err
	}
	log.Info().Str("order_id", id.String()).Msg("order cancelled")
	return o, nil
}

// ── DeleteOrder ───────────────────────────────────────────────────────────────
// Removes the order and its payments. Products recognized from an earlier
// completion stay.

func (s *ledgerService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	b := repository.NewBatch().DeleteOrderPayments(id).DeleteOrder(id)
	if err := s.apply(ctx, "delete order", b); err != nil {
		return err
	}
	log.Info().Str("order_id", id.String()).Msg("order deleted with its payments")
	return nil
}

func imageRefs(refs []string) datatypes.JSONSlice[string] {
	if len(refs) == 0 {
		return nil
	}
	return datatypes.JSONSlice[string](append([]string(nil), refs...))
}
