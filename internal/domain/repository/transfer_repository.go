package repository

import "github.com/jhoicas/inventario-core/internal/domain/entity"

// TransferRepository puerto de persistencia de traslados.
type TransferRepository interface {
	Create(transfer *entity.Transfer) error
	GetByID(id string) (*entity.Transfer, error)
	// GetByIDForUpdate bloquea la cabecera del traslado durante una transición.
	GetByIDForUpdate(id string) (*entity.Transfer, error)
	UpdateStatus(transfer *entity.Transfer) error
	List(businessID string, status string, limit, offset int) ([]*entity.Transfer, error)
}
