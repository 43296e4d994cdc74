package dto

import "github.com/shopspring/decimal"

// ReceiptItemRequest línea de una recepción a crear. SerialNumbers viaja como
// lista provisional; se materializa en filas de seriales al aprobar.
type ReceiptItemRequest struct {
	ProductID          string          `json:"product_id,omitempty"`
	ProductVariationID string          `json:"product_variation_id"`
	QuantityReceived   decimal.Decimal `json:"quantity_received"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
	PurchaseLineItemID string          `json:"purchase_line_item_id,omitempty"`
	SerialNumbers      []string        `json:"serial_numbers,omitempty"`
}

// CreateReceiptRequest body para POST /api/receipts. purchase_id vacío habilita
// la recepción directa sin orden de compra.
type CreateReceiptRequest struct {
	LocationID string               `json:"location_id"`
	SupplierID string               `json:"supplier_id,omitempty"`
	PurchaseID string               `json:"purchase_id,omitempty"`
	Notes      string               `json:"notes,omitempty"`
	Items      []ReceiptItemRequest `json:"items"`
}
