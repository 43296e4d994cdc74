package ledger

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre el libro de stock (saldos y
// movimientos). Los repositorios van atados al pool; no requiere transacción.
type QueryUseCase struct {
	stockRepo repository.VariationStockRepository
	movRepo   repository.MovementEventRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(stockRepo repository.VariationStockRepository, movRepo repository.MovementEventRepository) *QueryUseCase {
	return &QueryUseCase{stockRepo: stockRepo, movRepo: movRepo}
}

// GetBalance devuelve el saldo de la pareja (variación, ubicación); cero si no
// hay fila todavía.
func (uc *QueryUseCase) GetBalance(ctx context.Context, businessID, variationID, locationID string) (*entity.VariationStock, error) {
	_ = ctx
	if businessID == "" || variationID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.stockRepo.Get(businessID, variationID, locationID)
}

// StockByLocation lista los saldos de una ubicación.
func (uc *QueryUseCase) StockByLocation(ctx context.Context, businessID, locationID string, limit, offset int) ([]*entity.VariationStock, error) {
	_ = ctx
	if businessID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.stockRepo.ListByLocation(businessID, locationID, limit, offset)
}

// ListMovementsByVariation historial paginado de movimientos de una variación
// (todas las ubicaciones, más reciente primero).
func (uc *QueryUseCase) ListMovementsByVariation(ctx context.Context, businessID, variationID string, limit, offset int) ([]*entity.MovementEvent, error) {
	_ = ctx
	if businessID == "" || variationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.ListByVariation(businessID, variationID, limit, offset)
}

// ListMovementsByLocation historial paginado de movimientos de una ubicación.
func (uc *QueryUseCase) ListMovementsByLocation(ctx context.Context, businessID, locationID string, limit, offset int) ([]*entity.MovementEvent, error) {
	_ = ctx
	if businessID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.ListByLocation(businessID, locationID, limit, offset)
}
