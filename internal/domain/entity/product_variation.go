package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductVariation es una variación vendible de un producto (SKU).
// PurchaseCost guarda el último costo unitario de compra: la aprobación de una
// recepción lo sobrescribe (política last-cost, no promedio ponderado).
type ProductVariation struct {
	ID           string
	BusinessID   string
	ProductID    string
	SKU          string
	Name         string
	IsSerialized bool
	PurchaseCost decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
