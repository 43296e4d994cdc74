package entity

import "time"

// Tipos de movimiento de una unidad serializada.
const (
	SerialMovePurchase       = "purchase"
	SerialMoveSale           = "sale"
	SerialMoveTransferOut    = "transfer_out"
	SerialMoveTransferIn     = "transfer_in"
	SerialMoveCustomerReturn = "customer_return"
	SerialMoveSupplierReturn = "supplier_return"
	SerialMoveDamage         = "damage"
)

// SerialMovement es el registro inmutable de una transición de un SerialNumber,
// cruzado por referencia con la venta, traslado o compra que la originó.
type SerialMovement struct {
	ID             string
	BusinessID     string
	SerialNumberID string
	MovementType   string
	FromLocationID string
	ToLocationID   string
	ReferenceType  string
	ReferenceID    string
	MovedBy        string
	Notes          string
	MovedAt        time.Time
}
