package dto

import "github.com/nazim1903/Businesstracker/internal/model"

// BackupDocument is the export/import shape:
// { customers, products, payments, orders, version }.
type BackupDocument struct {
	model.Dataset
	Version string `json:"version"`
}

type ImportSummary struct {
	Version   string `json:"version"`
	Customers int    `json:"customers"`
	Products  int    `json:"products"`
	Payments  int    `json:"payments"`
	Orders    int    `json:"orders"`
}
