package entity

import "time"

// PurchaseOrder es la referencia mínima a una orden de compra que el motor
// necesita: validar pertenencia a la empresa al crear una recepción y conocer
// al solicitante para la regla de segregación de funciones en la aprobación.
// El módulo de compras completo es un colaborador externo.
type PurchaseOrder struct {
	ID          string
	BusinessID  string
	SupplierID  string
	RequestedBy string
	Status      string
	CreatedAt   time.Time
}
