package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/model"
	"github.com/nazim1903/Businesstracker/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// testClock advances one second per call so records get distinct timestamps.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	store   *flakyStore
	ledger  LedgerService
	reports ReportService
	backup  BackupService
	commits *atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &flakyStore{Store: repository.NewMemoryStore()}
	locks := NewLockSet()
	commits := &atomic.Int32{}
	onCommit := func(context.Context) { commits.Add(1) }
	clock := &testClock{t: testNow}
	return &fixture{
		store: store,
		ledger: NewLedgerService(store, LedgerConfig{
			Locks:    locks,
			Now:      clock.Now,
			OnCommit: onCommit,
		}),
		reports: NewReportService(store, nil),
		backup:  NewBackupService(store, locks, onCommit),
		commits: commits,
	}
}

func (f *fixture) customer(t *testing.T, name string) *model.Customer {
	t.Helper()
	c, err := f.ledger.CreateCustomer(context.Background(), dto.CustomerRequest{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) order(t *testing.T, c *model.Customer, total, cost, deposit string) *model.Order {
	t.Helper()
	req := dto.CreateOrderRequest{
		CustomerID:  c.ID.String(),
		ProductName: "Ring",
		TotalPrice:  decp(total),
		CostPrice:   decp(cost),
	}
	if deposit != "" {
		req.Deposit = decp(deposit)
	}
	o, err := f.ledger.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	return o
}

func (f *fixture) snapshot(t *testing.T) *model.Dataset {
	t.Helper()
	ds, err := f.store.Snapshot(context.Background())
	require.NoError(t, err)
	return ds
}

func (f *fixture) depositsFor(t *testing.T, orderID uuid.UUID) []model.Payment {
	t.Helper()
	ps, err := f.store.ListPayments(context.Background(), repository.PaymentFilter{OrderID: &orderID, Type: model.PaymentDeposit})
	require.NoError(t, err)
	return ps
}

var errStoreDown = errors.New("store unavailable")

// flakyStore fails the next Apply calls when failApply is set.
type flakyStore struct {
	repository.Store
	failApply atomic.Bool
}

func (s *flakyStore) Apply(ctx context.Context, b *repository.Batch) error {
	if s.failApply.Load() {
		return errStoreDown
	}
	return s.Store.Apply(ctx, b)
}
