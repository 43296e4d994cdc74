package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.SerialMovementRepository = (*SerialMovementRepo)(nil)

// SerialMovementRepo historial inmutable de transiciones de seriales sobre
// PostgreSQL (usable con pool o tx).
type SerialMovementRepo struct {
	q Querier
}

// NewSerialMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSerialMovementRepository(q Querier) *SerialMovementRepo {
	return &SerialMovementRepo{q: q}
}

const serialMovementColumns = `id, business_id, serial_number_id, movement_type, from_location_id, to_location_id, reference_type, reference_id, moved_by, notes, moved_at`

// Create persiste una transición.
func (r *SerialMovementRepo) Create(m *entity.SerialMovement) error {
	query := `
		INSERT INTO serial_movements (` + serialMovementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.BusinessID, m.SerialNumberID, m.MovementType,
		nullable(m.FromLocationID), nullable(m.ToLocationID),
		nullable(m.ReferenceType), nullable(m.ReferenceID),
		nullable(m.MovedBy), m.Notes, m.MovedAt,
	)
	if err != nil {
		return fmt.Errorf("insert serial movement: %w", err)
	}
	return nil
}

// ListBySerial historial de una unidad, más antiguo primero.
func (r *SerialMovementRepo) ListBySerial(serialNumberID string) ([]*entity.SerialMovement, error) {
	query := `
		SELECT ` + serialMovementColumns + `
		FROM serial_movements
		WHERE serial_number_id = $1
		ORDER BY moved_at`
	rows, err := r.q.Query(context.Background(), query, serialNumberID)
	if err != nil {
		return nil, fmt.Errorf("list serial movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.SerialMovement
	for rows.Next() {
		var m entity.SerialMovement
		var from, to, refType, refID, movedBy *string
		if err := rows.Scan(&m.ID, &m.BusinessID, &m.SerialNumberID, &m.MovementType,
			&from, &to, &refType, &refID, &movedBy, &m.Notes, &m.MovedAt); err != nil {
			return nil, fmt.Errorf("scan serial movement: %w", err)
		}
		m.FromLocationID = deref(from)
		m.ToLocationID = deref(to)
		m.ReferenceType = deref(refType)
		m.ReferenceID = deref(refID)
		m.MovedBy = deref(movedBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}
