package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.ProductVariationRepository = (*ProductVariationRepo)(nil)

// ProductVariationRepo catálogo de variaciones sobre PostgreSQL (usable con pool o tx).
type ProductVariationRepo struct {
	q Querier
}

// NewProductVariationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductVariationRepository(q Querier) *ProductVariationRepo {
	return &ProductVariationRepo{q: q}
}

const variationColumns = `id, business_id, product_id, sku, name, is_serialized, purchase_cost, created_at, updated_at`

// Create persiste una variación. PurchaseCost inicia en 0.
func (r *ProductVariationRepo) Create(v *entity.ProductVariation) error {
	query := `
		INSERT INTO product_variations (` + variationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		v.ID, v.BusinessID, nullable(v.ProductID), v.SKU, v.Name, v.IsSerialized,
		v.PurchaseCost, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product variation: %w", err)
	}
	return nil
}

// GetByID obtiene una variación; nil si no existe.
func (r *ProductVariationRepo) GetByID(id string) (*entity.ProductVariation, error) {
	query := `SELECT ` + variationColumns + ` FROM product_variations WHERE id = $1`
	var v entity.ProductVariation
	var productID *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&v.ID, &v.BusinessID, &productID, &v.SKU, &v.Name, &v.IsSerialized,
		&v.PurchaseCost, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product variation: %w", err)
	}
	v.ProductID = deref(productID)
	return &v, nil
}

// UpdatePurchaseCost sobrescribe el último costo de compra (política last-cost:
// la aprobación de cada recepción pisa el valor anterior).
func (r *ProductVariationRepo) UpdatePurchaseCost(id string, cost decimal.Decimal) error {
	query := `UPDATE product_variations SET purchase_cost = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, cost)
	if err != nil {
		return fmt.Errorf("update purchase cost: %w", err)
	}
	return nil
}

// List lista las variaciones de una empresa.
func (r *ProductVariationRepo) List(businessID string, limit, offset int) ([]*entity.ProductVariation, error) {
	query := `SELECT ` + variationColumns + ` FROM product_variations WHERE business_id = $1 ORDER BY sku LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, businessID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list product variations: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductVariation
	for rows.Next() {
		var v entity.ProductVariation
		var productID *string
		if err := rows.Scan(&v.ID, &v.BusinessID, &productID, &v.SKU, &v.Name, &v.IsSerialized,
			&v.PurchaseCost, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product variation: %w", err)
		}
		v.ProductID = deref(productID)
		list = append(list, &v)
	}
	return list, rows.Err()
}
