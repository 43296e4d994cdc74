package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo lectura mínima de órdenes de compra (el módulo de compras
// completo es un colaborador externo; el motor solo valida pertenencia y
// conoce al solicitante).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// GetByID obtiene una orden de compra; nil si no existe.
func (r *PurchaseOrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	query := `SELECT id, business_id, supplier_id, requested_by, status, created_at FROM purchase_orders WHERE id = $1`
	var po entity.PurchaseOrder
	var supplierID, requestedBy *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&po.ID, &po.BusinessID, &supplierID, &requestedBy, &po.Status, &po.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	po.SupplierID = deref(supplierID)
	po.RequestedBy = deref(requestedBy)
	return &po, nil
}
