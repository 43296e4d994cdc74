package entity

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una unidad serializada.
const (
	SerialStatusInStock        = "in_stock"
	SerialStatusSold           = "sold"
	SerialStatusInTransit      = "in_transit"
	SerialStatusReturned       = "returned"
	SerialStatusDamaged        = "damaged"
	SerialStatusWarrantyReturn = "warranty_return"
)

// Condiciones físicas de una unidad.
const (
	SerialConditionNew         = "new"
	SerialConditionUsed        = "used"
	SerialConditionRefurbished = "refurbished"
	SerialConditionDamaged     = "damaged"
	SerialConditionDefective   = "defective"
)

// serialNumberPattern: 3–191 caracteres alfanuméricos más guion y guion bajo.
var serialNumberPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,191}$`)

// IsValidSerialNumber valida el formato de un número de serie.
func IsValidSerialNumber(s string) bool {
	return serialNumberPattern.MatchString(s)
}

// SerialNumber representa una unidad física rastreable individualmente.
// Invariante: Status y CurrentLocationID deben ser consistentes con el último
// SerialMovement; una unidad in_transit conserva su ubicación de origen hasta
// completar la recepción del traslado.
type SerialNumber struct {
	ID                 string
	BusinessID         string
	ProductID          string
	ProductVariationID string
	SerialNumber       string // único por empresa
	IMEI               string
	Status             string
	Condition          string
	CurrentLocationID  string // vacío mientras no aplica (ej. vendida)
	PurchaseID         string
	PurchaseReceiptID  string
	PurchaseCost       decimal.Decimal
	SoldAt             *time.Time
	SoldTo             string
	WarrantyEndsAt     *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
