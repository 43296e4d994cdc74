package dto

import "github.com/shopspring/decimal"

// TransferItemRequest línea de un traslado a crear.
type TransferItemRequest struct {
	ProductVariationID string          `json:"product_variation_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	SerialNumbers      []string        `json:"serial_numbers,omitempty"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	FromLocationID string                `json:"from_location_id"`
	ToLocationID   string                `json:"to_location_id"`
	Notes          string                `json:"notes,omitempty"`
	Items          []TransferItemRequest `json:"items"`
}

// ReceiveTransferRequest body para la recepción: seriales físicamente
// presentados en destino (vacío para traslados sin seriales).
type ReceiveTransferRequest struct {
	SerialNumbers []string `json:"serial_numbers,omitempty"`
}
