package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación de traslados sobre PostgreSQL (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, business_id, from_location_id, to_location_id, status, created_by, checked_by, sent_by, received_by, completed_by, created_at, checked_at, sent_at, received_at, completed_at, notes`

// Create persiste el traslado y sus líneas.
func (r *TransferRepo) Create(t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.BusinessID, t.FromLocationID, t.ToLocationID, t.Status,
		t.CreatedBy, nullable(t.CheckedBy), nullable(t.SentBy), nullable(t.ReceivedBy), nullable(t.CompletedBy),
		t.CreatedAt, t.CheckedAt, t.SentAt, t.ReceivedAt, t.CompletedAt, t.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	for _, item := range t.Items {
		serials, err := json.Marshal(item.SerialNumbers)
		if err != nil {
			return fmt.Errorf("marshal transfer serials: %w", err)
		}
		itemQuery := `
			INSERT INTO transfer_items (id, transfer_id, product_variation_id, quantity, serial_numbers)
			VALUES ($1, $2, $3, $4, $5)`
		_, err = r.q.Exec(context.Background(), itemQuery,
			item.ID, t.ID, item.ProductVariationID, item.Quantity, serials)
		if err != nil {
			return fmt.Errorf("insert transfer item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el traslado con sus líneas; nil si no existe.
func (r *TransferRepo) GetByID(id string) (*entity.Transfer, error) {
	return r.get(id, false)
}

// GetByIDForUpdate igual que GetByID pero bloqueando la cabecera: dos
// transiciones concurrentes sobre el mismo traslado se serializan aquí.
func (r *TransferRepo) GetByIDForUpdate(id string) (*entity.Transfer, error) {
	return r.get(id, true)
}

func (r *TransferRepo) get(id string, forUpdate bool) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	t, err := scanTransfer(r.q.QueryRow(context.Background(), query, id))
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
	t.Items = items
	return t, nil
}

func (r *TransferRepo) listItems(transferID string) ([]*entity.TransferItem, error) {
	query := `
		SELECT id, transfer_id, product_variation_id, quantity, serial_numbers
		FROM transfer_items WHERE transfer_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, transferID)
	if err != nil {
		return nil, fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	var items []*entity.TransferItem
	for rows.Next() {
		var item entity.TransferItem
		var serials []byte
		if err := rows.Scan(&item.ID, &item.TransferID, &item.ProductVariationID,
			&item.Quantity, &serials); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		if len(serials) > 0 {
			if err := json.Unmarshal(serials, &item.SerialNumbers); err != nil {
				return nil, fmt.Errorf("unmarshal transfer serials: %w", err)
			}
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// UpdateStatus persiste la transición de estado, actores y timestamps.
func (r *TransferRepo) UpdateStatus(t *entity.Transfer) error {
	query := `
		UPDATE transfers
		SET status = $2, checked_by = $3, sent_by = $4, received_by = $5, completed_by = $6,
			checked_at = $7, sent_at = $8, received_at = $9, completed_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.Status, nullable(t.CheckedBy), nullable(t.SentBy), nullable(t.ReceivedBy), nullable(t.CompletedBy),
		t.CheckedAt, t.SentAt, t.ReceivedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	return nil
}

// List listado paginado por empresa, opcionalmente por estado (sin líneas).
func (r *TransferRepo) List(businessID string, status string, limit, offset int) ([]*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE business_id = $1`
	args := []any{businessID}
	pos := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTransfer(row scannable) (*entity.Transfer, error) {
	var t entity.Transfer
	var checkedBy, sentBy, receivedBy, completedBy *string
	err := row.Scan(
		&t.ID, &t.BusinessID, &t.FromLocationID, &t.ToLocationID, &t.Status,
		&t.CreatedBy, &checkedBy, &sentBy, &receivedBy, &completedBy,
		&t.CreatedAt, &t.CheckedAt, &t.SentAt, &t.ReceivedAt, &t.CompletedAt, &t.Notes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan transfer: %w", err)
	}
	t.CheckedBy = deref(checkedBy)
	t.SentBy = deref(sentBy)
	t.ReceivedBy = deref(receivedBy)
	t.CompletedBy = deref(completedBy)
	return &t, nil
}
