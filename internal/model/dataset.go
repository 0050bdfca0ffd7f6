package model

import "github.com/google/uuid"

// Dataset is the full content of the four collections read as one unit.
type Dataset struct {
	Customers []Customer `json:"customers"`
	Products  []Product  `json:"products"`
	Payments  []Payment  `json:"payments"`
	Orders    []Order    `json:"orders"`
}

// OrderIndex maps order ids to orders for lookups during aggregation.
func (d *Dataset) OrderIndex() map[uuid.UUID]*Order {
	idx := make(map[uuid.UUID]*Order, len(d.Orders))
	for i := range d.Orders {
		idx[d.Orders[i].ID] = &d.Orders[i]
	}
	return idx
}
