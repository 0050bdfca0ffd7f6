package service

import (
	"context"
	"testing"

	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Customers ─────────────────────────────────────────────────────────────────

func TestCreateCustomer_RequiresName(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.CreateCustomer(context.Background(), dto.CustomerRequest{Name: "   "})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "Name")
	assert.Empty(t, f.snapshot(t).Customers)
}

func TestUpdateCustomer_UnknownID(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.UpdateCustomer(context.Background(), uuid.New(), dto.CustomerRequest{Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCustomer_CascadesEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.customer(t, "Victim")
	keep := f.customer(t, "Keep")
	o := f.order(t, c, "1000", "600", "200")
	_, err := f.ledger.CompleteOrderPayment(ctx, o.ID, dto.CompleteOrderRequest{Amount: decp("800")})
	require.NoError(t, err)
	f.order(t, c, "300", "100", "50")
	kept := f.order(t, keep, "500", "200", "100")
	_, err = f.ledger.RecordPayment(ctx, dto.PaymentRequest{Type: model.PaymentCompany, Amount: decp("40")})
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteCustomer(ctx, c.ID))

	ds := f.snapshot(t)
	require.Len(t, ds.Customers, 1)
	for _, o := range ds.Orders {
		assert.NotEqual(t, c.ID, o.CustomerID)
	}
	for _, p := range ds.Products {
		assert.NotEqual(t, c.ID, p.CustomerID)
	}
	for _, p := range ds.Payments {
		assert.NotEqual(t, c.ID.String(), p.CustomerID)
	}
	assert.Len(t, ds.Orders, 1)
	assert.Equal(t, kept.ID, ds.Orders[0].ID)
	assert.Len(t, ds.Payments, 2, "the other customer's deposit and the company payment stay")

	// Idempotent.
	assert.NoError(t, f.ledger.DeleteCustomer(ctx, c.ID))
}

// ── Orders ────────────────────────────────────────────────────────────────────

func TestCreateOrder_WithDepositRecordsOneDepositPayment(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Alice")
	o := f.order(t, c, "1000", "600", "200")

	assert.Equal(t, model.OrderPending, o.Status)
	assert.False(t, o.DepositTransferred)
	require.NotNil(t, o.Deposit)
	assert.True(t, o.Deposit.Equal(dec("200")))

	deposits := f.depositsFor(t, o.ID)
	require.Len(t, deposits, 1)
	p := deposits[0]
	assert.Equal(t, model.PaymentCompleted, p.Status)
	assert.True(t, p.Amount.Equal(dec("200")))
	assert.Equal(t, c.ID.String(), p.CustomerID)
	assert.Equal(t, "Deposit for Ring", p.Description)
}

func TestCreateOrder_ZeroDepositRecordsNoPayment(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, f.customer(t, "A"), "1000", "600", "0")

	assert.Nil(t, o.Deposit)
	assert.Empty(t, f.depositsFor(t, o.ID))
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "A")
	cases := map[string]struct {
		req   dto.CreateOrderRequest
		field string
	}{
		"deposit above total": {
			req:   dto.CreateOrderRequest{CustomerID: c.ID.String(), ProductName: "R", TotalPrice: decp("100"), CostPrice: decp("50"), Deposit: decp("101")},
			field: "Deposit",
		},
		"negative price": {
			req:   dto.CreateOrderRequest{CustomerID: c.ID.String(), ProductName: "R", TotalPrice: decp("-1"), CostPrice: decp("50")},
			field: "TotalPrice",
		},
		"missing cost": {
			req:   dto.CreateOrderRequest{CustomerID: c.ID.String(), ProductName: "R", TotalPrice: decp("100")},
			field: "CostPrice",
		},
		"missing product name": {
			req:   dto.CreateOrderRequest{CustomerID: c.ID.String(), TotalPrice: decp("100"), CostPrice: decp("50")},
			field: "ProductName",
		},
		"bad customer id": {
			req:   dto.CreateOrderRequest{CustomerID: "nope", ProductName: "R", TotalPrice: decp("100"), CostPrice: decp("50")},
			field: "CustomerID",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.ledger.CreateOrder(context.Background(), tc.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
	assert.Empty(t, f.snapshot(t).Orders)
	assert.Empty(t, f.snapshot(t).Payments)
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.CreateOrder(context.Background(), dto.CreateOrderRequest{
		CustomerID: uuid.NewString(), ProductName: "R", TotalPrice: decp("100"), CostPrice: decp("50"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrder_StoreFailureIsAtomicityError(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "A")
	f.store.failApply.Store(true)

	_, err := f.ledger.CreateOrder(context.Background(), dto.CreateOrderRequest{
		CustomerID: c.ID.String(), ProductName: "R", TotalPrice: decp("100"), CostPrice: decp("50"), Deposit: decp("10"),
	})
	var aerr *AtomicityError
	require.ErrorAs(t, err, &aerr)
	assert.ErrorIs(t, err, errStoreDown)

	ds := f.snapshot(t)
	assert.Empty(t, ds.Orders)
	assert.Empty(t, ds.Payments)
}

func TestUpdateOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.order(t, f.customer(t, "A"), "1000", "600", "200")

	updated, err := f.ledger.UpdateOrder(ctx, o.ID, dto.UpdateOrderRequest{
		ProductName: "Ring v2", TotalPrice: decp("1200"), CostPrice: decp("700"), Status: model.OrderInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderInProgress, updated.Status)
	assert.True(t, updated.TotalPrice.Equal(dec("1200")))
	require.NotNil(t, updated.Deposit, "deposit is not editable here")
	assert.True(t, updated.Deposit.Equal(dec("200")))

	_, err = f.ledger.UpdateOrder(ctx, o.ID, dto.UpdateOrderRequest{
		ProductName: "Ring", TotalPrice: decp("150"), CostPrice: decp("100"),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr, "total below the recorded deposit")

	_, err = f.ledger.UpdateOrder(ctx, o.ID, dto.UpdateOrderRequest{
		ProductName: "Ring", TotalPrice: decp("1000"), CostPrice: decp("600"), Status: model.OrderCompleted,
	})
	require.ErrorAs(t, err, &verr, "completion only happens through the transfer")
}

func TestUpdateOrder_TerminalOrderRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.order(t, f.customer(t, "A"), "1000", "600", "")
	_, err := f.ledger.CancelOrder(ctx, o.ID)
	require.NoError(t, err)

	_, err = f.ledger.UpdateOrder(ctx, o.ID, dto.UpdateOrderRequest{
		ProductName: "R", TotalPrice: decp("1"), CostPrice: decp("1"), Status: model.OrderPending,
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelOrder_KeepsDeposit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.order(t, f.customer(t, "A"), "1000", "600", "200")

	cancelled, err := f.ledger.CancelOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)
	assert.Len(t, f.depositsFor(t, o.ID), 1)

	_, err = f.ledger.CancelOrder(ctx, o.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDeleteOrder_RemovesPaymentsKeepsProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.order(t, f.customer(t, "A"), "1000", "600", "200")
	res, err := f.ledger.CompleteOrderPayment(ctx, o.ID, dto.CompleteOrderRequest{Amount: decp("800")})
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteOrder(ctx, o.ID))

	ds := f.snapshot(t)
	assert.Empty(t, ds.Orders)
	assert.Empty(t, ds.Payments)
	require.Len(t, ds.Products, 1)
	assert.Equal(t, res.Product.ID, ds.Products[0].ID)

	assert.NoError(t, f.ledger.DeleteOrder(ctx, o.ID))
}

// ── Payments ──────────────────────────────────────────────────────────────────

func TestRecordPayment_ReservedSubjects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	company, err := f.ledger.RecordPayment(ctx, dto.PaymentRequest{Type: model.PaymentCompany, Amount: decp("10")})
	require.NoError(t, err)
	assert.Equal(t, model.SubjectCompany, company.CustomerID)
	assert.Equal(t, model.PaymentCompleted, company.Status)

	personal, err := f.ledger.RecordPayment(ctx, dto.PaymentRequest{Type: model.PaymentPersonalAccount, Amount: decp("5")})
	require.NoError(t, err)
	assert.Equal(t, model.SubjectPersonal, personal.CustomerID)
}

func TestRecordPayment_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.customer(t, "A")

	_, err := f.ledger.RecordPayment(ctx, dto.PaymentRequest{Type: model.PaymentIncoming, Amount: decp("10")})
	assert.ErrorIs(t, err, ErrValidation, "customer required")

	_, err = f.ledger.RecordPayment(ctx, dto.PaymentRequest{Type: model.PaymentIncoming, Amount: decp("-1"), CustomerID: c.ID.String()})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.ledger.RecordPayment(ctx, dto.PaymentRequest{Type: "gift", Amount: decp("1"), CustomerID: c.ID.String()})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.ledger.RecordPayment(ctx, dto.PaymentRequest{Type: model.PaymentIncoming, Amount: decp("1"), CustomerID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.ledger.RecordPayment(ctx, dto.PaymentRequest{Type: model.PaymentDeposit, Amount: decp("1"), CustomerID: c.ID.String()})
	assert.ErrorIs(t, err, ErrValidation, "deposit needs an order")
}

func TestRecordPayment_StandaloneDepositSetsOrderDeposit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.customer(t, "A")
	o := f.order(t, c, "1000", "600", "")

	p, err := f.ledger.RecordPayment(ctx, dto.PaymentRequest{
		Type: model.PaymentDeposit, Amount: decp("300"), CustomerID: c.ID.String(), OrderID: o.ID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, p.OrderID)

	got, err := f.ledger.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Deposit)
	assert.True(t, got.Deposit.Equal(dec("300")))

	_, err = f.ledger.RecordPayment(ctx, dto.PaymentRequest{
		Type: model.PaymentDeposit, Amount: decp("10"), CustomerID: c.ID.String(), OrderID: o.ID.String(),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "deposit_exists", verr.Fields["OrderID"])
}

func TestRecordPayment_OrderOfAnotherCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.customer(t, "A")
	b := f.customer(t, "B")
	o := f.order(t, a, "1000", "600", "")

	_, err := f.ledger.RecordPayment(ctx, dto.PaymentRequest{
		Type: model.PaymentIncoming, Amount: decp("1"), CustomerID: b.ID.String(), OrderID: o.ID.String(),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdatePayment_MirrorsDepositIntoOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.order(t, f.customer(t, "A"), "1000", "600", "200")
	dep := f.depositsFor(t, o.ID)[0]

	_, err := f.ledger.UpdatePayment(ctx, dep.ID, dto.UpdatePaymentRequest{Amount: decp("250"), Status: model.PaymentCompleted})
	require.NoError(t, err)
	got, err := f.ledger.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Deposit)
	assert.True(t, got.Deposit.Equal(dec("250")))

	_, err = f.ledger.UpdatePayment(ctx, dep.ID, dto.UpdatePaymentRequest{Amount: decp("250"), Status: model.PaymentCancelled})
	require.NoError(t, err)
	got, err = f.ledger.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Deposit, "a deposit that is not completed is not held")
}

func TestDeletePayment_ReversesDepositAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.order(t, f.customer(t, "A"), "1000", "600", "200")
	dep := f.depositsFor(t, o.ID)[0]

	require.NoError(t, f.ledger.DeletePayment(ctx, dep.ID))

	got, err := f.ledger.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Deposit)
	assert.False(t, got.DepositTransferred)
	assert.True(t, got.ModifiedAt.After(o.ModifiedAt))

	commits := f.commits.Load()
	require.NoError(t, f.ledger.DeletePayment(ctx, dep.ID))
	assert.Equal(t, commits, f.commits.Load(), "second delete writes nothing")
}

func TestDeletePayment_ResetsTransferFlagOfCompletedOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.order(t, f.customer(t, "A"), "1000", "600", "200")
	_, err := f.ledger.CompleteOrderPayment(ctx, o.ID, dto.CompleteOrderRequest{Amount: decp("800")})
	require.NoError(t, err)
	dep := f.depositsFor(t, o.ID)[0]

	require.NoError(t, f.ledger.DeletePayment(ctx, dep.ID))

	got, err := f.ledger.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Deposit)
	assert.False(t, got.DepositTransferred)
	assert.Equal(t, model.OrderCompleted, got.Status)
}

func TestDeletePayment_StoreFailureLeavesBothRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.order(t, f.customer(t, "A"), "1000", "600", "200")
	dep := f.depositsFor(t, o.ID)[0]
	f.store.failApply.Store(true)

	err := f.ledger.DeletePayment(ctx, dep.ID)
	assert.ErrorIs(t, err, ErrAtomicity)

	f.store.failApply.Store(false)
	assert.Len(t, f.depositsFor(t, o.ID), 1)
	got, err := f.ledger.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Deposit)
}

// ── Products ──────────────────────────────────────────────────────────────────

func TestProducts_ProfitRecomputedAndCodeUpperCased(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.customer(t, "A")
	b := f.customer(t, "B")

	p, err := f.ledger.CreateProduct(ctx, dto.ProductRequest{
		Code: " br-01 ", Product: "Bracelet", CostPrice: decp("120.50"), SalePrice: decp("200"), CustomerID: a.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "BR-01", p.Code)
	assert.True(t, p.Profit.Equal(dec("79.50")))

	p, err = f.ledger.UpdateProduct(ctx, p.ID, dto.ProductRequest{
		Code: "br-01", Product: "Bracelet", CostPrice: decp("150"), SalePrice: decp("140"), CustomerID: b.ID.String(),
	})
	require.NoError(t, err)
	assert.True(t, p.Profit.Equal(dec("-10")))
	assert.Equal(t, b.ID, p.CustomerID)

	_, err = f.ledger.UpdateProduct(ctx, p.ID, dto.ProductRequest{
		Product: "Bracelet", CostPrice: decp("1"), SalePrice: decp("2"), CustomerID: uuid.NewString(),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.ledger.DeleteProduct(ctx, p.ID))
	require.NoError(t, f.ledger.DeleteProduct(ctx, p.ID))
	_, err = f.ledger.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
