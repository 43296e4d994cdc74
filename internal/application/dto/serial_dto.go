package dto

import "github.com/shopspring/decimal"

// CreateSerialRequest body para registrar una unidad serializada.
type CreateSerialRequest struct {
	ProductID          string          `json:"product_id,omitempty"`
	ProductVariationID string          `json:"product_variation_id"`
	SerialNumber       string          `json:"serial_number"`
	IMEI               string          `json:"imei,omitempty"`
	Condition          string          `json:"condition,omitempty"`
	LocationID         string          `json:"location_id"`
	PurchaseCost       decimal.Decimal `json:"purchase_cost,omitempty"`
	Notes              string          `json:"notes,omitempty"`
}

// BulkCreateSerialRequest lote de unidades; el fallo de una no aborta el resto.
type BulkCreateSerialRequest struct {
	Serials []CreateSerialRequest `json:"serials"`
}

// SellSerialRequest body para marcar una unidad como vendida.
type SellSerialRequest struct {
	SoldTo         string `json:"sold_to,omitempty"`
	SaleID         string `json:"sale_id,omitempty"`
	WarrantyMonths int    `json:"warranty_months,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// ReturnSerialRequest body para una devolución de cliente.
type ReturnSerialRequest struct {
	Condition   string `json:"condition,omitempty"`
	ReferenceID string `json:"reference_id,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// WarrantyReturnSerialRequest body para una devolución por garantía.
type WarrantyReturnSerialRequest struct {
	ReferenceID string `json:"reference_id,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// DamageSerialRequest body para marcar una unidad como dañada.
type DamageSerialRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ValidateSerialsRequest pre-chequeo de recepción de traslado.
type ValidateSerialsRequest struct {
	TransferID    string   `json:"transfer_id"`
	SerialNumbers []string `json:"serial_numbers"`
}
