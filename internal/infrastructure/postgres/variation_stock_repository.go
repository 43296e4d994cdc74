package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.VariationStockRepository = (*VariationStockRepo)(nil)

// VariationStockRepo implementación del saldo por (variación, ubicación) sobre
// PostgreSQL (usable con pool o tx).
type VariationStockRepo struct {
	q Querier
}

// NewVariationStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVariationStockRepository(q Querier) *VariationStockRepo {
	return &VariationStockRepo{q: q}
}

const variationStockColumns = `business_id, product_variation_id, location_id, qty_available, updated_at`

// Get obtiene el saldo actual; saldo cero si la fila no existe.
func (r *VariationStockRepo) Get(businessID, variationID, locationID string) (*entity.VariationStock, error) {
	return r.get(businessID, variationID, locationID, false)
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE).
func (r *VariationStockRepo) GetForUpdate(businessID, variationID, locationID string) (*entity.VariationStock, error) {
	return r.get(businessID, variationID, locationID, true)
}

func (r *VariationStockRepo) get(businessID, variationID, locationID string, forUpdate bool) (*entity.VariationStock, error) {
	query := `
		SELECT ` + variationStockColumns + `
		FROM variation_stock
		WHERE business_id = $1 AND product_variation_id = $2 AND location_id = $3`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var s entity.VariationStock
	err := r.q.QueryRow(context.Background(), query, businessID, variationID, locationID).Scan(
		&s.BusinessID, &s.ProductVariationID, &s.LocationID, &s.QtyAvailable, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.VariationStock{
				BusinessID:         businessID,
				ProductVariationID: variationID,
				LocationID:         locationID,
				QtyAvailable:       decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("get variation stock: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza el saldo (por variación y ubicación).
func (r *VariationStockRepo) Upsert(stock *entity.VariationStock) error {
	query := `
		INSERT INTO variation_stock (business_id, product_variation_id, location_id, qty_available, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (business_id, product_variation_id, location_id)
		DO UPDATE SET qty_available = EXCLUDED.qty_available, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		stock.BusinessID, stock.ProductVariationID, stock.LocationID, stock.QtyAvailable)
	if err != nil {
		return fmt.Errorf("upsert variation stock: %w", err)
	}
	return nil
}

// ListByLocation lista los saldos de una ubicación.
func (r *VariationStockRepo) ListByLocation(businessID, locationID string, limit, offset int) ([]*entity.VariationStock, error) {
	query := `
		SELECT ` + variationStockColumns + `
		FROM variation_stock
		WHERE business_id = $1 AND location_id = $2
		ORDER BY product_variation_id
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, businessID, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock by location: %w", err)
	}
	defer rows.Close()
	var list []*entity.VariationStock
	for rows.Next() {
		var s entity.VariationStock
		if err := rows.Scan(&s.BusinessID, &s.ProductVariationID, &s.LocationID, &s.QtyAvailable, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan variation stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
