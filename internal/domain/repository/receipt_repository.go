package repository

import "github.com/jhoicas/inventario-core/internal/domain/entity"

// PurchaseReceiptRepository puerto de persistencia de recepciones (GRN).
type PurchaseReceiptRepository interface {
	// Create persiste la recepción y sus ítems. Devuelve domain.ErrDuplicate si
	// el número de recepción ya existe para la empresa (índice único).
	Create(receipt *entity.PurchaseReceipt) error
	GetByID(id string) (*entity.PurchaseReceipt, error)
	// GetByIDForUpdate bloquea la cabecera para la aprobación (check-then-set
	// bajo la misma transacción).
	GetByIDForUpdate(id string) (*entity.PurchaseReceipt, error)
	// LastReceiptNumber devuelve el mayor receipt_number de la empresa ("" si no hay).
	LastReceiptNumber(businessID string) (string, error)
	UpdateStatus(receipt *entity.PurchaseReceipt) error
	List(businessID string, status string, limit, offset int) ([]*entity.PurchaseReceipt, error)
}
