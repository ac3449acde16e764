package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentUnit is one physical item awaiting shipment.
type ShipmentUnit struct {
	Name     string
	WeightKg float64
}

// ShipmentLine counts the units shipped under one product name.
type ShipmentLine struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ShipmentReport groups shipment units by name in first-seen order.
type ShipmentReport struct {
	Lines         []ShipmentLine `json:"lines"`
	TotalWeightKg float64        `json:"total_weight_kg"`
}

// ReceiptLine is one cart item as charged.
type ReceiptLine struct {
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Receipt is the outcome of a successful checkout.
type Receipt struct {
	ID          string          `json:"id"`
	CartID      string          `json:"cart_id"`
	Customer    string          `json:"customer"`
	Lines       []ReceiptLine   `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Total       decimal.Decimal `json:"total"`
	Balance     decimal.Decimal `json:"balance"`
	Shipment    *ShipmentReport `json:"shipment,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
