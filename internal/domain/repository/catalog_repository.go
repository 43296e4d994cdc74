package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// LocationRepository puerto del catálogo de ubicaciones.
type LocationRepository interface {
	Create(location *entity.Location) error
	GetByID(id string) (*entity.Location, error)
	List(businessID string) ([]*entity.Location, error)
}

// ProductVariationRepository puerto del catálogo de variaciones.
type ProductVariationRepository interface {
	Create(variation *entity.ProductVariation) error
	GetByID(id string) (*entity.ProductVariation, error)
	// UpdatePurchaseCost sobrescribe el último costo de compra (política last-cost).
	UpdatePurchaseCost(id string, cost decimal.Decimal) error
	List(businessID string, limit, offset int) ([]*entity.ProductVariation, error)
}
