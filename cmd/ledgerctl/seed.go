package main

import (
	"fmt"

	"github.com/nazim1903/Businesstracker/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

// seedCmd creates demo data through the ledger, so every rule applies.
func seedCmd(c *cli.Context, e *env) error {
	ctx := c.Context
	email := "demo@example.com"
	customer, err := e.ledger.CreateCustomer(ctx, dto.CustomerRequest{Name: "Demo Customer", Email: &email})
	if err != nil {
		return err
	}

	dec := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	karat := "18k"
	ring, err := e.ledger.CreateOrder(ctx, dto.CreateOrderRequest{
		CustomerID:  customer.ID.String(),
		ProductName: "Engagement ring",
		GoldKarat:   &karat,
		Deposit:     dec("200"),
		TotalPrice:  dec("1000"),
		CostPrice:   dec("600"),
	})
	if err != nil {
		return err
	}
	if _, err := e.ledger.CompleteOrderPayment(ctx, ring.ID, dto.CompleteOrderRequest{Amount: dec("800")}); err != nil {
		return err
	}

	necklace, err := e.ledger.CreateOrder(ctx, dto.CreateOrderRequest{
		CustomerID:  customer.ID.String(),
		ProductName: "Necklace",
		Deposit:     dec("150"),
		TotalPrice:  dec("500"),
		CostPrice:   dec("300"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "seeded customer %s: completed order %s, open order %s\n",
		customer.ID, ring.ID, necklace.ID)
	return nil
}
