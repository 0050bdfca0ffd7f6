package repository

import (
	"slices"

	"github.com/nazim1903/Businesstracker/internal/model"

	"github.com/google/uuid"
)

type opKind int

const (
	opPutCustomer opKind = iota
	opPutOrder
	opPutPayment
	opPutProduct
	opDeleteCustomer
	opDeleteOrder
	opDeletePayment
	opDeleteProduct
	opDeleteOrderPayments
	opDeleteCustomerRecords
	opExpectCustomer
	opExpectOrder
	opTruncate
)

// OrderGuard is a compare-and-set condition on the stored version of an order.
// The zero guard only requires the order to exist.
type OrderGuard struct {
	// Statuses the stored order must be in; empty means any.
	Statuses []string
	// DepositTransferred the stored order must have; nil means any.
	DepositTransferred *bool
}

func (g OrderGuard) allows(o *model.Order) bool {
	if len(g.Statuses) > 0 && !slices.Contains(g.Statuses, o.Status) {
		return false
	}
	return g.DepositTransferred == nil || o.DepositTransferred == *g.DepositTransferred
}

type op struct {
	kind     opKind
	id       uuid.UUID
	customer *model.Customer
	order    *model.Order
	guard    *OrderGuard
	payment  *model.Payment
	product  *model.Product
	// mustExist makes a payment or product put replace only a stored record.
	mustExist bool
}

// Batch is an ordered list of writes applied by Store.Apply as a single
// all-or-nothing unit. Records are copied when added.
type Batch struct {
	ops []op
}

func NewBatch() *Batch { return &Batch{} }

func (b *Batch) Len() int { return len(b.ops) }

func (b *Batch) PutCustomer(c *model.Customer) *Batch {
	b.ops = append(b.ops, op{kind: opPutCustomer, id: c.ID, customer: c.Clone()})
	return b
}

func (b *Batch) PutOrder(o *model.Order) *Batch {
	b.ops = append(b.ops, op{kind: opPutOrder, id: o.ID, order: o.Clone()})
	return b
}

// PutOrderIf replaces an existing order only if its stored version satisfies g.
// A missing order or a failed guard aborts the batch with ErrConflict.
func (b *Batch) PutOrderIf(o *model.Order, g OrderGuard) *Batch {
	b.ops = append(b.ops, op{kind: opPutOrder, id: o.ID, order: o.Clone(), guard: &g})
	return b
}

func (b *Batch) PutPayment(p *model.Payment) *Batch {
	b.ops = append(b.ops, op{kind: opPutPayment, id: p.ID, payment: p.Clone()})
	return b
}

// PutPaymentIf replaces a payment only if it is still stored. A payment
// removed in the meantime aborts the batch with ErrConflict instead of being
// written back.
func (b *Batch) PutPaymentIf(p *model.Payment) *Batch {
	b.ops = append(b.ops, op{kind: opPutPayment, id: p.ID, payment: p.Clone(), mustExist: true})
	return b
}

func (b *Batch) PutProduct(p *model.Product) *Batch {
	b.ops = append(b.ops, op{kind: opPutProduct, id: p.ID, product: p.Clone()})
	return b
}

// PutProductIf is PutPaymentIf for products.
func (b *Batch) PutProductIf(p *model.Product) *Batch {
	b.ops = append(b.ops, op{kind: opPutProduct, id: p.ID, product: p.Clone(), mustExist: true})
	return b
}

func (b *Batch) DeleteCustomer(id uuid.UUID) *Batch {
	b.ops = append(b.ops, op{kind: opDeleteCustomer, id: id})
	return b
}

func (b *Batch) DeleteOrder(id uuid.UUID) *Batch {
	b.ops = append(b.ops, op{kind: opDeleteOrder, id: id})
	return b
}

func (b *Batch) DeletePayment(id uuid.UUID) *Batch {
	b.ops = append(b.ops, op{kind: opDeletePayment, id: id})
	return b
}

func (b *Batch) DeleteProduct(id uuid.UUID) *Batch {
	b.ops = append(b.ops, op{kind: opDeleteProduct, id: id})
	return b
}

// DeleteOrderPayments removes every payment whose OrderID is orderID.
func (b *Batch) DeleteOrderPayments(orderID uuid.UUID) *Batch {
	b.ops = append(b.ops, op{kind: opDeleteOrderPayments, id: orderID})
	return b
}

// DeleteCustomerRecords removes every order, product and payment that belongs
// to the customer, including payments linked to the customer's orders.
func (b *Batch) DeleteCustomerRecords(customerID uuid.UUID) *Batch {
	b.ops = append(b.ops, op{kind: opDeleteCustomerRecords, id: customerID})
	return b
}

// ExpectCustomer aborts the batch with ErrNotFound unless the customer exists
// when the batch is applied.
func (b *Batch) ExpectCustomer(id uuid.UUID) *Batch {
	b.ops = append(b.ops, op{kind: opExpectCustomer, id: id})
	return b
}

// ExpectOrder aborts the batch with ErrNotFound unless the order exists when
// the batch is applied.
func (b *Batch) ExpectOrder(id uuid.UUID) *Batch {
	b.ops = append(b.ops, op{kind: opExpectOrder, id: id})
	return b
}

// Truncate empties all four collections.
func (b *Batch) Truncate() *Batch {
	b.ops = append(b.ops, op{kind: opTruncate})
	return b
}
