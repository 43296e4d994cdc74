package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.MovementEventRepository = (*MovementEventRepo)(nil)

// MovementEventRepo registro inmutable de movimientos sobre PostgreSQL
// (usable con pool o tx). Solo inserta y lee; nunca actualiza ni borra.
type MovementEventRepo struct {
	q Querier
}

// NewMovementEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementEventRepository(q Querier) *MovementEventRepo {
	return &MovementEventRepo{q: q}
}

const movementEventColumns = `id, business_id, product_variation_id, location_id, kind, quantity_delta, reference_type, reference_id, occurred_at, recorded_by`

// Create persiste un evento de movimiento.
func (r *MovementEventRepo) Create(event *entity.MovementEvent) error {
	query := `
		INSERT INTO movement_events (` + movementEventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	recordedBy := (*string)(nil)
	if event.RecordedBy != "" {
		recordedBy = &event.RecordedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		event.ID, event.BusinessID, event.ProductVariationID, event.LocationID,
		event.Kind, event.QuantityDelta, event.ReferenceType, event.ReferenceID,
		event.OccurredAt, recordedBy,
	)
	if err != nil {
		return fmt.Errorf("create movement event: %w", err)
	}
	return nil
}

// ListForReplay devuelve todos los eventos de la pareja en orden de
// reproducción: occurred_at ascendente y, a igual timestamp, correcciones
// antes que recepciones antes que ventas/traslados.
func (r *MovementEventRepo) ListForReplay(businessID, variationID, locationID string) ([]*entity.MovementEvent, error) {
	query := `
		SELECT ` + movementEventColumns + `
		FROM movement_events
		WHERE business_id = $1 AND product_variation_id = $2 AND location_id = $3
		ORDER BY occurred_at,
			CASE kind WHEN 'correction' THEN 0 WHEN 'purchase_receipt' THEN 1 ELSE 2 END,
			id`
	rows, err := r.q.Query(context.Background(), query, businessID, variationID, locationID)
	if err != nil {
		return nil, fmt.Errorf("list events for replay: %w", err)
	}
	defer rows.Close()
	return scanMovementEvents(rows)
}

// ListByVariation lista movimientos de una variación, más recientes primero.
func (r *MovementEventRepo) ListByVariation(businessID, variationID string, limit, offset int) ([]*entity.MovementEvent, error) {
	query := `
		SELECT ` + movementEventColumns + `
		FROM movement_events
		WHERE business_id = $1 AND product_variation_id = $2
		ORDER BY occurred_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, businessID, variationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list events by variation: %w", err)
	}
	defer rows.Close()
	return scanMovementEvents(rows)
}

// ListByLocation lista movimientos de una ubicación, más recientes primero.
func (r *MovementEventRepo) ListByLocation(businessID, locationID string, limit, offset int) ([]*entity.MovementEvent, error) {
	query := `
		SELECT ` + movementEventColumns + `
		FROM movement_events
		WHERE business_id = $1 AND location_id = $2
		ORDER BY occurred_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, businessID, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list events by location: %w", err)
	}
	defer rows.Close()
	return scanMovementEvents(rows)
}

// SumCorrections suma los deltas de las correcciones de la pareja (saldo de
// apertura de la conciliación).
func (r *MovementEventRepo) SumCorrections(businessID, variationID, locationID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity_delta), 0)
		FROM movement_events
		WHERE business_id = $1 AND product_variation_id = $2 AND location_id = $3
		  AND kind = 'correction'`
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, businessID, variationID, locationID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum corrections: %w", err)
	}
	return sum, nil
}

func scanMovementEvents(rows pgx.Rows) ([]*entity.MovementEvent, error) {
	var list []*entity.MovementEvent
	for rows.Next() {
		var m entity.MovementEvent
		var recordedBy *string
		if err := rows.Scan(&m.ID, &m.BusinessID, &m.ProductVariationID, &m.LocationID,
			&m.Kind, &m.QuantityDelta, &m.ReferenceType, &m.ReferenceID,
			&m.OccurredAt, &recordedBy); err != nil {
			return nil, fmt.Errorf("scan movement event: %w", err)
		}
		if recordedBy != nil {
			m.RecordedBy = *recordedBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
