package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.SerialNumberRepository = (*SerialNumberRepo)(nil)

// SerialNumberRepo implementación de unidades serializadas sobre PostgreSQL
// (usable con pool o tx).
type SerialNumberRepo struct {
	q Querier
}

// NewSerialNumberRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSerialNumberRepository(q Querier) *SerialNumberRepo {
	return &SerialNumberRepo{q: q}
}

const serialColumns = `id, business_id, product_id, product_variation_id, serial_number, imei, status, condition, current_location_id, purchase_id, purchase_receipt_id, purchase_cost, sold_at, sold_to, warranty_ends_at, created_at, updated_at`

// Create persiste una unidad. El índice único (business_id, serial_number)
// respalda la unicidad por empresa; la violación se traduce a ErrDuplicateSerial.
func (r *SerialNumberRepo) Create(s *entity.SerialNumber) error {
	query := `
		INSERT INTO serial_numbers (` + serialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.BusinessID, nullable(s.ProductID), s.ProductVariationID, s.SerialNumber,
		nullable(s.IMEI), s.Status, s.Condition, nullable(s.CurrentLocationID),
		nullable(s.PurchaseID), nullable(s.PurchaseReceiptID), s.PurchaseCost,
		s.SoldAt, nullable(s.SoldTo), s.WarrantyEndsAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSerial
		}
		return fmt.Errorf("insert serial number: %w", err)
	}
	return nil
}

// GetByID obtiene una unidad por ID; nil si no existe.
func (r *SerialNumberRepo) GetByID(id string) (*entity.SerialNumber, error) {
	query := `SELECT ` + serialColumns + ` FROM serial_numbers WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetBySerial busca por (empresa, número de serie); nil si no existe.
func (r *SerialNumberRepo) GetBySerial(businessID, serialNumber string) (*entity.SerialNumber, error) {
	query := `SELECT ` + serialColumns + ` FROM serial_numbers WHERE business_id = $1 AND serial_number = $2`
	return r.scanOne(r.q.QueryRow(context.Background(), query, businessID, serialNumber))
}

// GetBySerialForUpdate igual que GetBySerial pero bloqueando la fila.
func (r *SerialNumberRepo) GetBySerialForUpdate(businessID, serialNumber string) (*entity.SerialNumber, error) {
	query := `SELECT ` + serialColumns + ` FROM serial_numbers WHERE business_id = $1 AND serial_number = $2 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, businessID, serialNumber))
}

// Update persiste el estado, condición, ubicación y datos de venta de la unidad.
func (r *SerialNumberRepo) Update(s *entity.SerialNumber) error {
	query := `
		UPDATE serial_numbers
		SET status = $2, condition = $3, current_location_id = $4,
			sold_at = $5, sold_to = $6, warranty_ends_at = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.Status, s.Condition, nullable(s.CurrentLocationID),
		s.SoldAt, nullable(s.SoldTo), s.WarrantyEndsAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update serial number: %w", err)
	}
	return nil
}

// List lista unidades con filtros opcionales.
func (r *SerialNumberRepo) List(businessID string, filter repository.SerialFilter, limit, offset int) ([]*entity.SerialNumber, error) {
	query := `SELECT ` + serialColumns + ` FROM serial_numbers WHERE business_id = $1`
	args := []any{businessID}
	pos := 2
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	if filter.LocationID != "" {
		query += fmt.Sprintf(" AND current_location_id = $%d", pos)
		args = append(args, filter.LocationID)
		pos++
	}
	if filter.ProductVariationID != "" {
		query += fmt.Sprintf(" AND product_variation_id = $%d", pos)
		args = append(args, filter.ProductVariationID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list serial numbers: %w", err)
	}
	defer rows.Close()
	var list []*entity.SerialNumber
	for rows.Next() {
		s, err := scanSerial(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *SerialNumberRepo) scanOne(row pgx.Row) (*entity.SerialNumber, error) {
	s, err := scanSerial(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSerial(row scannable) (*entity.SerialNumber, error) {
	var s entity.SerialNumber
	var productID, imei, locationID, purchaseID, receiptID, soldTo *string
	err := row.Scan(
		&s.ID, &s.BusinessID, &productID, &s.ProductVariationID, &s.SerialNumber,
		&imei, &s.Status, &s.Condition, &locationID,
		&purchaseID, &receiptID, &s.PurchaseCost,
		&s.SoldAt, &soldTo, &s.WarrantyEndsAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan serial number: %w", err)
	}
	s.ProductID = deref(productID)
	s.IMEI = deref(imei)
	s.CurrentLocationID = deref(locationID)
	s.PurchaseID = deref(purchaseID)
	s.PurchaseReceiptID = deref(receiptID)
	s.SoldTo = deref(soldTo)
	return &s, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
