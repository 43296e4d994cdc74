package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del traslado entre ubicaciones.
const (
	TransferStatusDraft     = "draft"
	TransferStatusChecked   = "checked"
	TransferStatusSent      = "sent"
	TransferStatusReceived  = "received"
	TransferStatusCompleted = "completed"
	TransferStatusCancelled = "cancelled"
)

// Transfer es un traslado de stock entre dos ubicaciones. El stock sale del
// origen solo en send y entra al destino solo en receive; entre ambos la
// mercancía está "en vuelo" (seriales en in_transit).
type Transfer struct {
	ID             string
	BusinessID     string
	FromLocationID string
	ToLocationID   string
	Status         string
	CreatedBy      string
	CheckedBy      string
	SentBy         string
	ReceivedBy     string
	CompletedBy    string
	CreatedAt      time.Time
	CheckedAt      *time.Time
	SentAt         *time.Time
	ReceivedAt     *time.Time
	CompletedAt    *time.Time
	Notes          string
	Items          []*TransferItem
}

// TransferItem es una línea del traslado. SerialNumbers lista los seriales
// incluidos cuando la variación es serializada (deben sumar Quantity unidades).
type TransferItem struct {
	ID                 string
	TransferID         string
	ProductVariationID string
	Quantity           decimal.Decimal
	SerialNumbers      []string
}

// IsTerminal indica si el estado no admite más transiciones.
func (t *Transfer) IsTerminal() bool {
	return t.Status == TransferStatusCompleted || t.Status == TransferStatusCancelled
}
