package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/model"
	"github.com/nazim1903/Businesstracker/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ReportCache is the optional dashboard cache. infra.ReportCache satisfies it.
type ReportCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64) (*dto.DashboardReport, bool)
	Set(ctx context.Context, gen int64, r *dto.DashboardReport)
	Invalidate(ctx context.Context)
}

// ReportService computes read-only cash-flow reports. It never writes to the
// store.
type ReportService interface {
	Dashboard(ctx context.Context) (*dto.DashboardReport, error)
	CustomerReport(ctx context.Context, customerID uuid.UUID) (*dto.CustomerReport, error)
	OrderReport(ctx context.Context, orderID uuid.UUID) (*dto.OrderReport, error)
}

type reportService struct {
	store repository.Store
	cache ReportCache
	now   func() time.Time
}

// NewReportService builds the aggregator. cache may be nil.
func NewReportService(store repository.Store, cache ReportCache) ReportService {
	return &reportService{store: store, cache: cache, now: time.Now}
}

func (s *reportService) Dashboard(ctx context.Context) (*dto.DashboardReport, error) {
	// The generation is read before the snapshot: a write committed in between
	// bumps it, so the report built here is cached under a stale key.
	var gen int64
	cached := s.cache != nil
	if cached {
		g, err := s.cache.Generation(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("report cache unavailable, computing directly")
			cached = false
		}
		gen = g
	}
	if cached {
		if r, ok := s.cache.Get(ctx, gen); ok {
			return r, nil
		}
	}

	ds, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	r := BuildDashboard(ds)
	r.GeneratedAt = s.now().UTC()
	if cached {
		s.cache.Set(ctx, gen, r)
	}
	return r, nil
}

func (s *reportService) CustomerReport(ctx context.Context, customerID uuid.UUID) (*dto.CustomerReport, error) {
	ds, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	var customer *model.Customer
	for i := range ds.Customers {
		if ds.Customers[i].ID == customerID {
			customer = &ds.Customers[i]
			break
		}
	}
	if customer == nil {
		return nil, &NotFoundError{Entity: "customer", ID: customerID.String()}
	}

	r := &dto.CustomerReport{
		Customer: *customer,
		Products: []model.Product{},
		Payments: []model.Payment{},
		Orders:   []model.Order{},
	}
	for _, p := range ds.Products {
		if p.CustomerID == customerID {
			r.Products = append(r.Products, p)
		}
	}
	for _, p := range ds.Payments {
		if p.CustomerID == customerID.String() {
			r.Payments = append(r.Payments, p)
		}
	}
	for _, o := range ds.Orders {
		if o.CustomerID == customerID {
			r.Orders = append(r.Orders, o)
		}
	}
	r.TotalSales, r.TotalReceived, r.PendingBalance = balanceOf(r.Products, r.Payments, customerID.String())
	return r, nil
}

func (s *reportService) OrderReport(ctx context.Context, orderID uuid.UUID) (*dto.OrderReport, error) {
	ds, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	order, ok := ds.OrderIndex()[orderID]
	if !ok {
		return nil, &NotFoundError{Entity: "order", ID: orderID.String()}
	}
	r := &dto.OrderReport{Order: *order, Payments: []model.Payment{}, TotalPaid: decimal.Zero}
	found := false
	for _, c := range ds.Customers {
		if c.ID == order.CustomerID {
			r.Customer, found = c, true
			break
		}
	}
	if !found {
		return nil, &NotFoundError{Entity: "customer", ID: order.CustomerID.String()}
	}
	for _, p := range ds.Payments {
		if p.OrderID == nil || *p.OrderID != orderID {
			continue
		}
		r.Payments = append(r.Payments, p)
		if p.IsCompleted() && (p.Type == model.PaymentIncoming || p.Type == model.PaymentDeposit) {
			r.TotalPaid = r.TotalPaid.Add(p.Amount)
		}
	}
	sort.SliceStable(r.Payments, func(i, j int) bool { return r.Payments[i].Date.Before(r.Payments[j].Date) })
	r.Outstanding = decimal.Max(decimal.Zero, order.TotalPrice.Sub(r.TotalPaid))
	return r, nil
}

// BuildDashboard aggregates ds. It is pure and does not depend on the order of
// records in ds; list outputs are sorted.
func BuildDashboard(ds *model.Dataset) *dto.DashboardReport {
	r := &dto.DashboardReport{
		TotalIncoming:             decimal.Zero,
		TotalOutgoing:             decimal.Zero,
		TotalCompanyPayments:      decimal.Zero,
		TotalPersonalPayments:     decimal.Zero,
		ActiveDeposits:            []model.Payment{},
		ActiveDepositsTotal:       decimal.Zero,
		ActiveOrdersWithDeposits:  []dto.ActiveOrderDeposit{},
		CustomerBalances:          []dto.CustomerBalance{},
		TotalPendingFromCustomers: decimal.Zero,
		TotalProfit:               decimal.Zero,
	}
	orders := ds.OrderIndex()
	customerNames := make(map[uuid.UUID]string, len(ds.Customers))
	for _, c := range ds.Customers {
		customerNames[c.ID] = c.Name
	}

	depositByOrder := make(map[uuid.UUID]decimal.Decimal)
	for _, p := range ds.Payments {
		if !p.IsCompleted() {
			continue
		}
		switch p.Type {
		case model.PaymentIncoming:
			r.TotalIncoming = r.TotalIncoming.Add(p.Amount)
		case model.PaymentDeposit:
			r.TotalIncoming = r.TotalIncoming.Add(p.Amount)
			if p.OrderID == nil {
				continue
			}
			depositByOrder[*p.OrderID] = depositByOrder[*p.OrderID].Add(p.Amount)
			if o, ok := orders[*p.OrderID]; ok && !o.DepositTransferred {
				r.ActiveDeposits = append(r.ActiveDeposits, p)
				r.ActiveDepositsTotal = r.ActiveDepositsTotal.Add(p.Amount)
			}
		case model.PaymentOutgoing:
			r.TotalOutgoing = r.TotalOutgoing.Add(p.Amount)
		case model.PaymentCompany:
			r.TotalCompanyPayments = r.TotalCompanyPayments.Add(p.Amount)
		case model.PaymentPersonalAccount:
			r.TotalPersonalPayments = r.TotalPersonalPayments.Add(p.Amount)
		}
	}
	r.CurrentBalance = r.TotalIncoming.
		Sub(r.TotalOutgoing).
		Sub(r.TotalCompanyPayments).
		Sub(r.TotalPersonalPayments)
	sort.Slice(r.ActiveDeposits, func(i, j int) bool {
		a, b := r.ActiveDeposits[i], r.ActiveDeposits[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.ID.String() < b.ID.String()
	})

	for _, o := range ds.Orders {
		if !o.IsOpen() || o.DepositTransferred || o.Deposit == nil {
			continue
		}
		amount, ok := depositByOrder[o.ID]
		if !ok || !amount.IsPositive() {
			continue
		}
		r.ActiveOrdersWithDeposits = append(r.ActiveOrdersWithDeposits, dto.ActiveOrderDeposit{
			OrderID:       o.ID.String(),
			CustomerID:    o.CustomerID.String(),
			CustomerName:  customerNames[o.CustomerID],
			ProductName:   o.ProductName,
			Status:        o.Status,
			TotalPrice:    o.TotalPrice,
			DepositAmount: amount,
		})
	}
	sort.Slice(r.ActiveOrdersWithDeposits, func(i, j int) bool {
		return r.ActiveOrdersWithDeposits[i].OrderID < r.ActiveOrdersWithDeposits[j].OrderID
	})

	for _, c := range ds.Customers {
		sales, received, pending := balanceOf(ds.Products, ds.Payments, c.ID.String())
		if !pending.IsPositive() {
			continue
		}
		r.CustomerBalances = append(r.CustomerBalances, dto.CustomerBalance{
			CustomerID:     c.ID.String(),
			CustomerName:   c.Name,
			TotalSales:     sales,
			TotalReceived:  received,
			PendingBalance: pending,
		})
		r.TotalPendingFromCustomers = r.TotalPendingFromCustomers.Add(pending)
	}
	sort.Slice(r.CustomerBalances, func(i, j int) bool {
		a, b := r.CustomerBalances[i], r.CustomerBalances[j]
		if c := a.PendingBalance.Cmp(b.PendingBalance); c != 0 {
			return c > 0
		}
		return a.CustomerID < b.CustomerID
	})

	for _, p := range ds.Products {
		r.TotalProfit = r.TotalProfit.Add(p.SalePrice.Sub(p.CostPrice))
	}
	r.HalfProfit = r.TotalProfit.Div(decimal.NewFromInt(2))
	return r
}

// balanceOf returns sales, money received and the pending balance (never
// negative) of one customer.
func balanceOf(products []model.Product, payments []model.Payment, customerID string) (sales, received, pending decimal.Decimal) {
	for _, p := range products {
		if p.CustomerID.String() == customerID {
			sales = sales.Add(p.SalePrice)
		}
	}
	for _, p := range payments {
		if p.CustomerID != customerID || !p.IsCompleted() {
			continue
		}
		if p.Type == model.PaymentIncoming || p.Type == model.PaymentDeposit {
			received = received.Add(p.Amount)
		}
	}
	pending = sales.Sub(received)
	if pending.IsNegative() {
		pending = decimal.Zero
	}
	return sales, received, pending
}
