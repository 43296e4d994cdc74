// Package catalog expone lecturas del catálogo (ubicaciones y variaciones)
// para la capa HTTP. La mutación del catálogo es del colaborador externo de
// administración; el motor solo necesita leerlo para validar pertenencia.
package catalog

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// QueryUseCase lecturas del catálogo.
type QueryUseCase struct {
	locationRepo  repository.LocationRepository
	variationRepo repository.ProductVariationRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(locationRepo repository.LocationRepository, variationRepo repository.ProductVariationRepository) *QueryUseCase {
	return &QueryUseCase{locationRepo: locationRepo, variationRepo: variationRepo}
}

// ListLocations devuelve las ubicaciones de la empresa.
func (uc *QueryUseCase) ListLocations(ctx context.Context, businessID string) ([]*entity.Location, error) {
	_ = ctx
	if businessID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.locationRepo.List(businessID)
}

// ListVariations listado paginado de variaciones de la empresa.
func (uc *QueryUseCase) ListVariations(ctx context.Context, businessID string, limit, offset int) ([]*entity.ProductVariation, error) {
	_ = ctx
	if businessID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.variationRepo.List(businessID, limit, offset)
}

// GetVariation devuelve una variación verificando pertenencia a la empresa.
func (uc *QueryUseCase) GetVariation(ctx context.Context, businessID, variationID string) (*entity.ProductVariation, error) {
	_ = ctx
	if businessID == "" || variationID == "" {
		return nil, domain.ErrInvalidInput
	}
	v, err := uc.variationRepo.GetByID(variationID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	if v.BusinessID != businessID {
		return nil, domain.ErrForbidden
	}
	return v, nil
}
