package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.PurchaseReceiptRepository = (*PurchaseReceiptRepo)(nil)

// PurchaseReceiptRepo implementación de recepciones (GRN) sobre PostgreSQL
// (usable con pool o tx). Los seriales escalonados de cada ítem viajan como
// JSONB hasta materializarse en la aprobación.
type PurchaseReceiptRepo struct {
	q Querier
}

// NewPurchaseReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseReceiptRepository(q Querier) *PurchaseReceiptRepo {
	return &PurchaseReceiptRepo{q: q}
}

const receiptColumns = `id, business_id, purchase_id, supplier_id, location_id, receipt_number, status, received_by, received_at, approved_by, approved_at, notes`

// Create persiste la recepción y sus ítems. ErrDuplicate si el número ya
// existe para la empresa (índice único business_id + receipt_number).
func (r *PurchaseReceiptRepo) Create(receipt *entity.PurchaseReceipt) error {
	query := `
		INSERT INTO purchase_receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		receipt.ID, receipt.BusinessID, nullable(receipt.PurchaseID), nullable(receipt.SupplierID),
		receipt.LocationID, receipt.ReceiptNumber, receipt.Status,
		receipt.ReceivedBy, receipt.ReceivedAt, nullable(receipt.ApprovedBy), receipt.ApprovedAt,
		receipt.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase receipt: %w", err)
	}
	for _, item := range receipt.Items {
		staged, err := json.Marshal(item.StagedSerials)
		if err != nil {
			return fmt.Errorf("marshal staged serials: %w", err)
		}
		itemQuery := `
			INSERT INTO purchase_receipt_items (id, receipt_id, product_id, product_variation_id, quantity_received, unit_cost, purchase_line_item_id, staged_serials)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err = r.q.Exec(context.Background(), itemQuery,
			item.ID, receipt.ID, nullable(item.ProductID), item.ProductVariationID,
			item.QuantityReceived, item.UnitCost, nullable(item.PurchaseLineItemID), staged,
		)
		if err != nil {
			return fmt.Errorf("insert receipt item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la recepción con sus ítems; nil si no existe.
func (r *PurchaseReceiptRepo) GetByID(id string) (*entity.PurchaseReceipt, error) {
	return r.get(id, false)
}

// GetByIDForUpdate igual que GetByID pero bloqueando la cabecera (la
// aprobación hace check-then-set bajo la misma transacción).
func (r *PurchaseReceiptRepo) GetByIDForUpdate(id string) (*entity.PurchaseReceipt, error) {
	return r.get(id, true)
}

func (r *PurchaseReceiptRepo) get(id string, forUpdate bool) (*entity.PurchaseReceipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM purchase_receipts WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	receipt, err := scanReceipt(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	items, err := r.listItems(id)
	if err != nil {
		return nil, err
	}
	receipt.Items = items
	return receipt, nil
}

func (r *PurchaseReceiptRepo) listItems(receiptID string) ([]*entity.ReceiptItem, error) {
	query := `
		SELECT id, receipt_id, product_id, product_variation_id, quantity_received, unit_cost, purchase_line_item_id, staged_serials
		FROM purchase_receipt_items WHERE receipt_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, receiptID)
	if err != nil {
		return nil, fmt.Errorf("list receipt items: %w", err)
	}
	defer rows.Close()
	var items []*entity.ReceiptItem
	for rows.Next() {
		var item entity.ReceiptItem
		var productID, lineItemID *string
		var staged []byte
		if err := rows.Scan(&item.ID, &item.ReceiptID, &productID, &item.ProductVariationID,
			&item.QuantityReceived, &item.UnitCost, &lineItemID, &staged); err != nil {
			return nil, fmt.Errorf("scan receipt item: %w", err)
		}
		item.ProductID = deref(productID)
		item.PurchaseLineItemID = deref(lineItemID)
		if len(staged) > 0 {
			if err := json.Unmarshal(staged, &item.StagedSerials); err != nil {
				return nil, fmt.Errorf("unmarshal staged serials: %w", err)
			}
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// LastReceiptNumber devuelve el mayor receipt_number de la empresa ("" si no hay).
func (r *PurchaseReceiptRepo) LastReceiptNumber(businessID string) (string, error) {
	query := `
		SELECT receipt_number FROM purchase_receipts
		WHERE business_id = $1
		ORDER BY receipt_number DESC
		LIMIT 1`
	var number string
	err := r.q.QueryRow(context.Background(), query, businessID).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last receipt number: %w", err)
	}
	return number, nil
}

// UpdateStatus persiste la transición de estado y los datos del aprobador.
func (r *PurchaseReceiptRepo) UpdateStatus(receipt *entity.PurchaseReceipt) error {
	query := `
		UPDATE purchase_receipts
		SET status = $2, approved_by = $3, approved_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		receipt.ID, receipt.Status, nullable(receipt.ApprovedBy), receipt.ApprovedAt)
	if err != nil {
		return fmt.Errorf("update receipt status: %w", err)
	}
	return nil
}

// List listado paginado por empresa, opcionalmente por estado (sin ítems).
func (r *PurchaseReceiptRepo) List(businessID string, status string, limit, offset int) ([]*entity.PurchaseReceipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM purchase_receipts WHERE business_id = $1`
	args := []any{businessID}
	pos := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY received_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseReceipt
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, receipt)
	}
	return list, rows.Err()
}

func scanReceipt(row scannable) (*entity.PurchaseReceipt, error) {
	var receipt entity.PurchaseReceipt
	var purchaseID, supplierID, approvedBy *string
	err := row.Scan(
		&receipt.ID, &receipt.BusinessID, &purchaseID, &supplierID, &receipt.LocationID,
		&receipt.ReceiptNumber, &receipt.Status, &receipt.ReceivedBy, &receipt.ReceivedAt,
		&approvedBy, &receipt.ApprovedAt, &receipt.Notes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan receipt: %w", err)
	}
	receipt.PurchaseID = deref(purchaseID)
	receipt.SupplierID = deref(supplierID)
	receipt.ApprovedBy = deref(approvedBy)
	return &receipt, nil
}
