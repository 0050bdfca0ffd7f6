package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/model"
	"github.com/nazim1903/Businesstracker/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport_EmptyStoreHasAllCollections(t *testing.T) {
	f := newFixture(t)
	doc, err := f.backup.Export(context.Background())
	require.NoError(t, err)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"customers":[],"products":[],"payments":[],"orders":[],"version":"1.0.0"}`, string(raw))
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	c := src.customer(t, "Alice")
	o := src.order(t, c, "1000", "600", "200")
	_, err := src.ledger.CompleteOrderPayment(ctx, o.ID, dto.CompleteOrderRequest{Amount: decp("800")})
	require.NoError(t, err)
	src.order(t, c, "300", "100", "")
	_, err = src.ledger.RecordPayment(ctx, dto.PaymentRequest{Type: model.PaymentPersonalAccount, Amount: decp("15")})
	require.NoError(t, err)

	doc, err := src.backup.Export(ctx)
	require.NoError(t, err)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	dst := newFixture(t)
	dst.customer(t, "Replaced")
	var in dto.BackupDocument
	require.NoError(t, json.Unmarshal(raw, &in))
	commits := dst.commits.Load()

	summary, err := dst.backup.Import(ctx, &in)
	require.NoError(t, err)
	assert.Equal(t, &dto.ImportSummary{Version: BackupVersion, Customers: 1, Products: 1, Payments: 3, Orders: 2}, summary)
	assert.Equal(t, commits+1, dst.commits.Load())

	want, err := src.reports.Dashboard(ctx)
	require.NoError(t, err)
	got, err := dst.reports.Dashboard(ctx)
	require.NoError(t, err)
	want.GeneratedAt = got.GeneratedAt
	wantJSON, _ := json.Marshal(want)
	gotJSON, _ := json.Marshal(got)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))

	customers, err := dst.ledger.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, c.ID, customers[0].ID)

	// The imported data keeps working with the ledger rules.
	_, err = dst.ledger.CompleteOrderPayment(ctx, o.ID, dto.CompleteOrderRequest{Amount: decp("1")})
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestImport_RecomputesProfit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cid := uuid.New()
	doc := &dto.BackupDocument{
		Version: BackupVersion,
		Dataset: model.Dataset{
			Customers: []model.Customer{{ID: cid, Name: "A", CreatedAt: testNow}},
			Products: []model.Product{{
				ID: uuid.New(), Name: "Ring", CustomerID: cid,
				CostPrice: dec("100"), SalePrice: dec("250"), Profit: dec("9999"),
			}},
		},
	}
	_, err := f.backup.Import(ctx, doc)
	require.NoError(t, err)

	ps, err := f.store.ListProducts(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.True(t, ps[0].Profit.Equal(dec("150")))
}

func TestImport_RejectsInvalidDocuments(t *testing.T) {
	id := uuid.New()
	cases := map[string]struct {
		doc   *dto.BackupDocument
		field string
	}{
		"missing version": {
			doc:   &dto.BackupDocument{},
			field: "version",
		},
		"unknown version": {
			doc:   &dto.BackupDocument{Version: "2.0.0"},
			field: "version",
		},
		"duplicate ids": {
			doc: &dto.BackupDocument{Version: BackupVersion, Dataset: model.Dataset{
				Customers: []model.Customer{{ID: id, Name: "A"}, {ID: id, Name: "B"}},
			}},
			field: "customers",
		},
		"missing id": {
			doc: &dto.BackupDocument{Version: BackupVersion, Dataset: model.Dataset{
				Orders: []model.Order{{Status: model.OrderPending}},
			}},
			field: "orders",
		},
		"bad payment type": {
			doc: &dto.BackupDocument{Version: BackupVersion, Dataset: model.Dataset{
				Payments: []model.Payment{{ID: uuid.New(), Type: "gift", Status: model.PaymentCompleted}},
			}},
			field: "payments",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			existing := f.customer(t, "Kept")

			_, err := f.backup.Import(context.Background(), tc.doc)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)

			got, err := f.ledger.GetCustomer(context.Background(), existing.ID)
			require.NoError(t, err, "a rejected import leaves the store untouched")
			assert.Equal(t, "Kept", got.Name)
		})
	}
}

func TestImport_StoreFailureKeepsPreviousData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	existing := f.customer(t, "Kept")
	f.store.failApply.Store(true)

	_, err := f.backup.Import(ctx, &dto.BackupDocument{Version: BackupVersion})
	assert.ErrorIs(t, err, ErrAtomicity)

	f.store.failApply.Store(false)
	_, err = f.ledger.GetCustomer(ctx, existing.ID)
	assert.NoError(t, err)
}
