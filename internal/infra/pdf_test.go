package infra

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDashboard() *dto.DashboardReport {
	return &dto.DashboardReport{
		TotalIncoming:       decimal.RequireFromString("1000"),
		TotalOutgoing:       decimal.RequireFromString("120.50"),
		CurrentBalance:      decimal.RequireFromString("879.50"),
		ActiveDepositsTotal: decimal.RequireFromString("200"),
		ActiveOrdersWithDeposits: []dto.ActiveOrderDeposit{{
			OrderID: uuid.NewString(), CustomerName: "Alice", ProductName: strings.Repeat("Necklace ", 20),
			Status: model.OrderPending, TotalPrice: decimal.RequireFromString("900"), DepositAmount: decimal.RequireFromString("200"),
		}},
		CustomerBalances: []dto.CustomerBalance{{
			CustomerID: uuid.NewString(), CustomerName: "Bob", TotalSales: decimal.RequireFromString("500"),
			PendingBalance: decimal.RequireFromString("500"),
		}},
		TotalProfit: decimal.RequireFromString("400"),
		HalfProfit:  decimal.RequireFromString("200"),
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteCashFlowPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCashFlowPDF(&buf, sampleDashboard()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWriteCashFlowPDF_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCashFlowPDF(&buf, &dto.DashboardReport{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWriteStatementPDF(t *testing.T) {
	cid := uuid.New()
	r := &dto.CustomerReport{
		Customer: model.Customer{ID: cid, Name: "Alice"},
		Products: []model.Product{{ID: uuid.New(), Code: "SALE-X", Name: "Ring", CostPrice: decimal.NewFromInt(600),
			SalePrice: decimal.NewFromInt(1000), Profit: decimal.NewFromInt(400), CustomerID: cid}},
		Payments: []model.Payment{{ID: uuid.New(), CustomerID: cid.String(), Amount: decimal.NewFromInt(200),
			Type: model.PaymentDeposit, Status: model.PaymentCompleted, Date: time.Now()}},
		TotalSales:     decimal.NewFromInt(1000),
		TotalReceived:  decimal.NewFromInt(200),
		PendingBalance: decimal.NewFromInt(800),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteStatementPDF(&buf, r))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWriteOrderStatementPDF(t *testing.T) {
	cid, oid := uuid.New(), uuid.New()
	email, karat, carat, kind, size := "alice@example.com", "18k", "0.5", "round", "52"
	deposit := decimal.NewFromInt(200)
	r := &dto.OrderReport{
		Customer: model.Customer{ID: cid, Name: "Alice", Email: &email},
		Order: model.Order{
			ID: oid, CustomerID: cid, ProductName: "Engagement ring", Details: "Engrave inside:\nA & B",
			GoldKarat: &karat, DiamondCarat: &carat, DiamondType: &kind, Size: &size,
			Deposit: &deposit, TotalPrice: decimal.NewFromInt(1000), Status: model.OrderCompleted,
			DepositTransferred: true, Images: []string{"img-1", "img-2"},
		},
		Payments: []model.Payment{
			{ID: uuid.New(), CustomerID: cid.String(), Amount: deposit, Type: model.PaymentDeposit,
				Status: model.PaymentCompleted, OrderID: &oid, Date: time.Now()},
			{ID: uuid.New(), CustomerID: cid.String(), Amount: decimal.NewFromInt(800), Type: model.PaymentIncoming,
				Status: model.PaymentCompleted, OrderID: &oid, Date: time.Now(), Description: "Final payment"},
		},
		TotalPaid:   decimal.NewFromInt(1000),
		Outstanding: decimal.Zero,
	}
	var buf bytes.Buffer
	require.NoError(t, WriteOrderStatementPDF(&buf, r))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	// Optional attributes and payments may all be missing.
	buf.Reset()
	bare := &dto.OrderReport{
		Customer: model.Customer{ID: cid, Name: "Bob"},
		Order:    model.Order{ID: oid, CustomerID: cid, ProductName: "Chain", Status: model.OrderPending},
	}
	require.NoError(t, WriteOrderStatementPDF(&buf, bare))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "In Progress", statusLabel(model.OrderInProgress))
	assert.Equal(t, "Completed", statusLabel(model.OrderCompleted))
	assert.Equal(t, "", statusLabel(""))
}

func TestSavePDF_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	path, err := SavePDF(dir, "cash.pdf", func(w io.Writer) error {
		return WriteCashFlowPDF(w, sampleDashboard())
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cash.pdf"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}
