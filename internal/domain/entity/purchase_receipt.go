package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una recepción de mercancía (GRN).
const (
	ReceiptStatusPending  = "pending"
	ReceiptStatusApproved = "approved"
)

// PurchaseReceipt es la nota de recepción de mercancía (GRN). En estado pending
// no afecta stock ni seriales; solo la aprobación muta el StockLedger y
// materializa los seriales escalonados de sus ítems.
type PurchaseReceipt struct {
	ID            string
	BusinessID    string
	PurchaseID    string // vacío en recepción directa sin orden de compra
	SupplierID    string
	LocationID    string
	ReceiptNumber string // GRN-NNNNNN, secuencia monótona por empresa
	Status        string
	ReceivedBy    string
	ReceivedAt    time.Time
	ApprovedBy    string
	ApprovedAt    *time.Time
	Notes         string
	Items         []*ReceiptItem
}

// ReceiptItem es una línea de la recepción. StagedSerials guarda los números de
// serie como lista provisional de strings mientras la recepción está pending;
// se promueven a filas SerialNumber únicamente al aprobar.
type ReceiptItem struct {
	ID                  string
	ReceiptID           string
	ProductID           string
	ProductVariationID  string
	QuantityReceived    decimal.Decimal
	UnitCost            decimal.Decimal
	PurchaseLineItemID  string
	StagedSerials       []string
}
