package repository

import "github.com/jhoicas/inventario-core/internal/domain/entity"

// SerialNumberRepository puerto de persistencia de unidades serializadas.
type SerialNumberRepository interface {
	Create(serial *entity.SerialNumber) error
	GetByID(id string) (*entity.SerialNumber, error)
	// GetBySerial busca por (empresa, número de serie); nil si no existe.
	GetBySerial(businessID, serialNumber string) (*entity.SerialNumber, error)
	// GetBySerialForUpdate igual que GetBySerial pero bloqueando la fila.
	GetBySerialForUpdate(businessID, serialNumber string) (*entity.SerialNumber, error)
	Update(serial *entity.SerialNumber) error
	List(businessID string, filter SerialFilter, limit, offset int) ([]*entity.SerialNumber, error)
}

// SerialFilter filtros opcionales para listar seriales.
type SerialFilter struct {
	Status             string
	LocationID         string
	ProductVariationID string
}

// SerialMovementRepository puerto del historial de transiciones de seriales.
type SerialMovementRepository interface {
	Create(movement *entity.SerialMovement) error
	ListBySerial(serialNumberID string) ([]*entity.SerialMovement, error)
}
