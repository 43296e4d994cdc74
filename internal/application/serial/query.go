package serial

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre unidades serializadas y su
// historial. Los repositorios van atados al pool.
type QueryUseCase struct {
	serialRepo    repository.SerialNumberRepository
	serialMovRepo repository.SerialMovementRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(serialRepo repository.SerialNumberRepository, serialMovRepo repository.SerialMovementRepository) *QueryUseCase {
	return &QueryUseCase{serialRepo: serialRepo, serialMovRepo: serialMovRepo}
}

// GetBySerial busca la unidad por (empresa, número de serie).
func (uc *QueryUseCase) GetBySerial(ctx context.Context, businessID, serialNumber string) (*entity.SerialNumber, error) {
	_ = ctx
	if businessID == "" || serialNumber == "" {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.serialRepo.GetBySerial(businessID, serialNumber)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// List lista unidades con filtros opcionales de estado, ubicación y variación.
func (uc *QueryUseCase) List(ctx context.Context, businessID string, filter repository.SerialFilter, limit, offset int) ([]*entity.SerialNumber, error) {
	_ = ctx
	if businessID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.serialRepo.List(businessID, filter, limit, offset)
}

// Trail devuelve el historial cronológico de transiciones de la unidad.
func (uc *QueryUseCase) Trail(ctx context.Context, businessID, serialNumber string) ([]*entity.SerialMovement, error) {
	s, err := uc.GetBySerial(ctx, businessID, serialNumber)
	if err != nil {
		return nil, err
	}
	return uc.serialMovRepo.ListBySerial(s.ID)
}
