package dto

import "github.com/shopspring/decimal"

// ApplyMovementRequest body para POST /api/ledger/movements.
// Kind: correction, sale, customer_return, supplier_return (las recepciones y
// traslados mutan stock solo a través de sus workflows).
type ApplyMovementRequest struct {
	ProductVariationID string          `json:"product_variation_id"`
	LocationID         string          `json:"location_id"`
	Delta              decimal.Decimal `json:"delta"`
	Kind               string          `json:"kind"`
	ReferenceType      string          `json:"reference_type,omitempty"`
	ReferenceID        string          `json:"reference_id,omitempty"`
}

// BalanceResponse saldo resultante tras aplicar un movimiento.
type BalanceResponse struct {
	ProductVariationID string          `json:"product_variation_id"`
	LocationID         string          `json:"location_id"`
	Balance            decimal.Decimal `json:"balance"`
}
