package repository

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/nazim1903/Businesstracker/internal/model"

	"github.com/google/uuid"
)

// MemoryStore keeps the four collections in process memory. Reads take the
// read lock and return copies; Apply stages the batch on copies of the
// collections and swaps them in only when every operation succeeded.
type MemoryStore struct {
	mu   sync.RWMutex
	data tables
}

type tables struct {
	customers map[uuid.UUID]*model.Customer
	orders    map[uuid.UUID]*model.Order
	payments  map[uuid.UUID]*model.Payment
	products  map[uuid.UUID]*model.Product
}

func newTables() tables {
	return tables{
		customers: make(map[uuid.UUID]*model.Customer),
		orders:    make(map[uuid.UUID]*model.Order),
		payments:  make(map[uuid.UUID]*model.Payment),
		products:  make(map[uuid.UUID]*model.Product),
	}
}

// Stored records are never mutated in place, so copying the maps is enough to
// isolate a staged batch from concurrent readers.
func (t tables) clone() tables {
	return tables{
		customers: maps.Clone(t.customers),
		orders:    maps.Clone(t.orders),
		payments:  maps.Clone(t.payments),
		products:  maps.Clone(t.products),
	}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newTables()}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) GetCustomer(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.data.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (m *MemoryStore) GetOrder(_ context.Context, id uuid.UUID) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.data.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o.Clone(), nil
}

func (m *MemoryStore) GetPayment(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.data.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (m *MemoryStore) GetProduct(_ context.Context, id uuid.UUID) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.data.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (m *MemoryStore) ListCustomers(_ context.Context) ([]model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return listCustomers(m.data), nil
}

func (m *MemoryStore) ListOrders(_ context.Context, f OrderFilter) ([]model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Order, 0)
	for _, o := range m.data.orders {
		if f.match(o) {
			out = append(out, *o.Clone())
		}
	}
	sortNewest(out, func(o model.Order) (time.Time, uuid.UUID) { return o.CreatedAt, o.ID })
	return out, nil
}

func (m *MemoryStore) ListPayments(_ context.Context, f PaymentFilter) ([]model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Payment, 0)
	for _, p := range m.data.payments {
		if f.match(p) {
			out = append(out, *p.Clone())
		}
	}
	sortNewest(out, func(p model.Payment) (time.Time, uuid.UUID) { return p.Date, p.ID })
	return out, nil
}

func (m *MemoryStore) ListProducts(_ context.Context, f ProductFilter) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Product, 0)
	for _, p := range m.data.products {
		if f.match(p) {
			out = append(out, *p.Clone())
		}
	}
	sortNewest(out, func(p model.Product) (time.Time, uuid.UUID) { return p.CreatedAt, p.ID })
	return out, nil
}

func (m *MemoryStore) Snapshot(ctx context.Context) (*model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	ds := &model.Dataset{
		Customers: listCustomers(m.data),
		Orders:    make([]model.Order, 0, len(m.data.orders)),
		Payments:  make([]model.Payment, 0, len(m.data.payments)),
		Products:  make([]model.Product, 0, len(m.data.products)),
	}
	for _, o := range m.data.orders {
		ds.Orders = append(ds.Orders, *o.Clone())
	}
	for _, p := range m.data.payments {
		ds.Payments = append(ds.Payments, *p.Clone())
	}
	for _, p := range m.data.products {
		ds.Products = append(ds.Products, *p.Clone())
	}
	sortNewest(ds.Orders, func(o model.Order) (time.Time, uuid.UUID) { return o.CreatedAt, o.ID })
	sortNewest(ds.Payments, func(p model.Payment) (time.Time, uuid.UUID) { return p.Date, p.ID })
	sortNewest(ds.Products, func(p model.Product) (time.Time, uuid.UUID) { return p.CreatedAt, p.ID })
	return ds, nil
}

func (m *MemoryStore) Apply(ctx context.Context, b *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := m.data.clone()
	for _, o := range b.ops {
		if err := staged.apply(o); err != nil {
			return err
		}
	}
	m.data = staged
	return nil
}

func (t *tables) apply(o op) error {
	switch o.kind {
	case opPutCustomer:
		t.customers[o.id] = o.customer.Clone()
	case opPutOrder:
		if o.guard != nil {
			cur, ok := t.orders[o.id]
			if !ok || !o.guard.allows(cur) {
				return ErrConflict
			}
		}
		t.orders[o.id] = o.order.Clone()
	case opPutPayment:
		if _, ok := t.payments[o.id]; o.mustExist && !ok {
			return ErrConflict
		}
		t.payments[o.id] = o.payment.Clone()
	case opPutProduct:
		if _, ok := t.products[o.id]; o.mustExist && !ok {
			return ErrConflict
		}
		t.products[o.id] = o.product.Clone()
	case opDeleteCustomer:
		delete(t.customers, o.id)
	case opDeleteOrder:
		delete(t.orders, o.id)
	case opDeletePayment:
		delete(t.payments, o.id)
	case opDeleteProduct:
		delete(t.products, o.id)
	case opDeleteOrderPayments:
		for id, p := range t.payments {
			if p.OrderID != nil && *p.OrderID == o.id {
				delete(t.payments, id)
			}
		}
	case opDeleteCustomerRecords:
		owned := make(map[uuid.UUID]bool)
		for id, ord := range t.orders {
			if ord.CustomerID == o.id {
				owned[id] = true
				delete(t.orders, id)
			}
		}
		subject := o.id.String()
		for id, p := range t.payments {
			if p.CustomerID == subject || (p.OrderID != nil && owned[*p.OrderID]) {
				delete(t.payments, id)
			}
		}
		for id, p := range t.products {
			if p.CustomerID == o.id {
				delete(t.products, id)
			}
		}
	case opExpectCustomer:
		if _, ok := t.customers[o.id]; !ok {
			return ErrNotFound
		}
	case opExpectOrder:
		if _, ok := t.orders[o.id]; !ok {
			return ErrNotFound
		}
	case opTruncate:
		*t = newTables()
	}
	return nil
}

func listCustomers(t tables) []model.Customer {
	out := make([]model.Customer, 0, len(t.customers))
	for _, c := range t.customers {
		out = append(out, *c.Clone())
	}
	sortNewest(out, func(c model.Customer) (time.Time, uuid.UUID) { return c.CreatedAt, c.ID })
	return out
}

// sortNewest orders records by descending timestamp, breaking ties by id so
// listings are stable across calls.
func sortNewest[T any](s []T, key func(T) (time.Time, uuid.UUID)) {
	sort.SliceStable(s, func(i, j int) bool {
		ti, idi := key(s[i])
		tj, idj := key(s[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi.String() < idj.String()
	})
}
