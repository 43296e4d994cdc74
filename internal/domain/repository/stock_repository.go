package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// VariationStockRepository puerto de persistencia del saldo por (variación, ubicación).
type VariationStockRepository interface {
	Get(businessID, variationID, locationID string) (*entity.VariationStock, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); devuelve saldo cero si no existe.
	GetForUpdate(businessID, variationID, locationID string) (*entity.VariationStock, error)
	Upsert(stock *entity.VariationStock) error
	ListByLocation(businessID, locationID string, limit, offset int) ([]*entity.VariationStock, error)
}

// MovementEventRepository puerto del registro inmutable de movimientos.
type MovementEventRepository interface {
	Create(event *entity.MovementEvent) error
	// ListForReplay devuelve todos los eventos de la pareja ordenados por
	// occurred_at y, a igual timestamp, por precedencia de tipo.
	ListForReplay(businessID, variationID, locationID string) ([]*entity.MovementEvent, error)
	ListByVariation(businessID, variationID string, limit, offset int) ([]*entity.MovementEvent, error)
	ListByLocation(businessID, locationID string, limit, offset int) ([]*entity.MovementEvent, error)
	SumCorrections(businessID, variationID, locationID string) (decimal.Decimal, error)
}
