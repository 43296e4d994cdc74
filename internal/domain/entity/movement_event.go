package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock. Cada mutación de saldo registra exactamente uno.
const (
	MovementKindCorrection      = "correction"       // ajuste manual / saldo inicial
	MovementKindPurchaseReceipt = "purchase_receipt" // recepción de compra aprobada
	MovementKindSale            = "sale"             // venta
	MovementKindTransferOut     = "transfer_out"     // salida por traslado
	MovementKindTransferIn      = "transfer_in"      // entrada por traslado
	MovementKindCustomerReturn  = "customer_return"  // devolución de cliente
	MovementKindSupplierReturn  = "supplier_return"  // devolución a proveedor
)

// MovementEvent es el registro inmutable de un cambio de stock comprometido.
// Se crea una sola vez por mutación; nunca se edita ni se borra.
type MovementEvent struct {
	ID                 string
	BusinessID         string
	ProductVariationID string
	LocationID         string
	Kind               string
	QuantityDelta      decimal.Decimal // con signo: entradas positivas, salidas negativas
	ReferenceType      string          // purchase_receipt, transfer, sale, correction...
	ReferenceID        string
	OccurredAt         time.Time
	RecordedBy         string // UserID
}

// IsValidMovementKind indica si el tipo de movimiento es uno de los conocidos.
func IsValidMovementKind(kind string) bool {
	switch kind {
	case MovementKindCorrection, MovementKindPurchaseReceipt, MovementKindSale,
		MovementKindTransferOut, MovementKindTransferIn,
		MovementKindCustomerReturn, MovementKindSupplierReturn:
		return true
	}
	return false
}

// MovementKindPrecedence define el orden de desempate al reproducir eventos con
// el mismo timestamp: correcciones < recepciones < ventas/traslados.
func MovementKindPrecedence(kind string) int {
	switch kind {
	case MovementKindCorrection:
		return 0
	case MovementKindPurchaseReceipt:
		return 1
	default:
		return 2
	}
}
