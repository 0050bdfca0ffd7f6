package dto

import (
	"time"

	"github.com/nazim1903/Businesstracker/internal/model"

	"github.com/shopspring/decimal"
)

// ActiveOrderDeposit is an open order holding a deposit not yet recognized as
// sale revenue.
type ActiveOrderDeposit struct {
	OrderID       string          `json:"orderId"`
	CustomerID    string          `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	ProductName   string          `json:"productName"`
	Status        string          `json:"status"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	DepositAmount decimal.Decimal `json:"depositAmount"`
}

type CustomerBalance struct {
	CustomerID     string          `json:"customerId"`
	CustomerName   string          `json:"customerName"`
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalReceived  decimal.Decimal `json:"totalReceived"`
	PendingBalance decimal.Decimal `json:"pendingBalance"`
}

// DashboardReport is the cash-flow summary over all four collections.
type DashboardReport struct {
	TotalIncoming         decimal.Decimal `json:"totalIncoming"`
	TotalOutgoing         decimal.Decimal `json:"totalOutgoing"`
	TotalCompanyPayments  decimal.Decimal `json:"totalCompanyPayments"`
	TotalPersonalPayments decimal.Decimal `json:"totalPersonalPayments"`
	CurrentBalance        decimal.Decimal `json:"currentBalance"`

	ActiveDeposits           []model.Payment      `json:"activeDeposits"`
	ActiveDepositsTotal      decimal.Decimal      `json:"activeDepositsTotal"`
	ActiveOrdersWithDeposits []ActiveOrderDeposit `json:"activeOrdersWithDeposits"`

	// CustomerBalances lists only customers with a positive pending balance.
	CustomerBalances          []CustomerBalance `json:"customerBalances"`
	TotalPendingFromCustomers decimal.Decimal   `json:"totalPendingFromCustomers"`

	TotalProfit decimal.Decimal `json:"totalProfit"`
	HalfProfit  decimal.Decimal `json:"halfProfit"`

	GeneratedAt time.Time `json:"generatedAt"`
}

type CustomerReport struct {
	Customer       model.Customer  `json:"customer"`
	Products       []model.Product `json:"products"`
	Payments       []model.Payment `json:"payments"`
	Orders         []model.Order   `json:"orders"`
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalReceived  decimal.Decimal `json:"totalReceived"`
	PendingBalance decimal.Decimal `json:"pendingBalance"`
}

// OrderReport is one order with its customer and the payments booked against
// it. TotalPaid counts completed incoming and deposit payments; Outstanding is
// never negative.
type OrderReport struct {
	Order       model.Order     `json:"order"`
	Customer    model.Customer  `json:"customer"`
	Payments    []model.Payment `json:"payments"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}
