package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// VariationStock es el saldo actual de una variación de producto en una ubicación.
// Invariante: QtyAvailable == suma de los deltas de todos los MovementEvent
// comprometidos para la pareja (variación, ubicación). Solo lo muta el StockLedger.
type VariationStock struct {
	BusinessID         string
	ProductVariationID string
	LocationID         string
	QtyAvailable       decimal.Decimal
	UpdatedAt          time.Time
}
