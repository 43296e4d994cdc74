package repository

import "github.com/jhoicas/inventario-core/internal/domain/entity"

// PurchaseOrderRepository puerto de solo lectura sobre órdenes de compra.
type PurchaseOrderRepository interface {
	GetByID(id string) (*entity.PurchaseOrder, error)
}
