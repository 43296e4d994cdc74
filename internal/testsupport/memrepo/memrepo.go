// Package memrepo implementa los puertos de repositorio en memoria para los
// tests de los casos de uso. Un Store actúa a la vez como todos los
// repositorios y como TxRunner de cada paquete de aplicación; no simula
// rollback, por lo que los tests afirman efectos de rutas completas y
// validaciones previas, no de transacciones abortadas a mitad de camino.
package memrepo

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// Store agrupa todos los repositorios en memoria.
type Store struct {
	Stock      *StockRepo
	Movements  *MovementRepo
	Serials    *SerialRepo
	SerialMovs *SerialMovementRepo
	Receipts   *ReceiptRepo
	Transfers  *TransferRepo
	SOD        *SODRepo
	Locations  *LocationRepo
	Variations *VariationRepo
	Purchases  *PurchaseOrderRepo
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		Stock:      &StockRepo{rows: map[string]entity.VariationStock{}},
		Movements:  &MovementRepo{},
		Serials:    &SerialRepo{bySerial: map[string]entity.SerialNumber{}},
		SerialMovs: &SerialMovementRepo{},
		Receipts:   &ReceiptRepo{rows: map[string]*entity.PurchaseReceipt{}},
		Transfers:  &TransferRepo{byID: map[string]*entity.Transfer{}},
		SOD:        &SODRepo{byBusiness: map[string]entity.SODSettings{}},
		Locations:  &LocationRepo{byID: map[string]entity.Location{}},
		Variations: &VariationRepo{byID: map[string]entity.ProductVariation{}},
		Purchases:  &PurchaseOrderRepo{byID: map[string]entity.PurchaseOrder{}},
	}
}

// Run implementa ledger.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.VariationStockRepository,
	movRepo repository.MovementEventRepository,
) error) error {
	_ = ctx
	return fn(s.Stock, s.Movements)
}

// RunSerial implementa serial.TxRunner.
func (s *Store) RunSerial(ctx context.Context, fn func(
	serialRepo repository.SerialNumberRepository,
	serialMovRepo repository.SerialMovementRepository,
) error) error {
	_ = ctx
	return fn(s.Serials, s.SerialMovs)
}

// RunReceiving implementa receiving.TxRunner.
func (s *Store) RunReceiving(ctx context.Context, fn func(
	stockRepo repository.VariationStockRepository,
	movRepo repository.MovementEventRepository,
	variationRepo repository.ProductVariationRepository,
	receiptRepo repository.PurchaseReceiptRepository,
	serialRepo repository.SerialNumberRepository,
	serialMovRepo repository.SerialMovementRepository,
) error) error {
	_ = ctx
	return fn(s.Stock, s.Movements, s.Variations, s.Receipts, s.Serials, s.SerialMovs)
}

// RunTransfer implementa transfer.TxRunner.
func (s *Store) RunTransfer(ctx context.Context, fn func(
	stockRepo repository.VariationStockRepository,
	movRepo repository.MovementEventRepository,
	transferRepo repository.TransferRepository,
	serialRepo repository.SerialNumberRepository,
	serialMovRepo repository.SerialMovementRepository,
) error) error {
	_ = ctx
	return fn(s.Stock, s.Movements, s.Transfers, s.Serials, s.SerialMovs)
}

// ─────────────────────────────────────────────────────────────────────────────
// VariationStockRepository
// ─────────────────────────────────────────────────────────────────────────────

type StockRepo struct {
	rows map[string]entity.VariationStock
}

var _ repository.VariationStockRepository = (*StockRepo)(nil)

func stockKey(businessID, variationID, locationID string) string {
	return businessID + "|" + variationID + "|" + locationID
}

func (r *StockRepo) Get(businessID, variationID, locationID string) (*entity.VariationStock, error) {
	if row, ok := r.rows[stockKey(businessID, variationID, locationID)]; ok {
		copy := row
		return &copy, nil
	}
	return &entity.VariationStock{
		BusinessID:         businessID,
		ProductVariationID: variationID,
		LocationID:         locationID,
		QtyAvailable:       decimal.Zero,
	}, nil
}

func (r *StockRepo) GetForUpdate(businessID, variationID, locationID string) (*entity.VariationStock, error) {
	return r.Get(businessID, variationID, locationID)
}

func (r *StockRepo) Upsert(stock *entity.VariationStock) error {
	r.rows[stockKey(stock.BusinessID, stock.ProductVariationID, stock.LocationID)] = *stock
	return nil
}

func (r *StockRepo) ListByLocation(businessID, locationID string, limit, offset int) ([]*entity.VariationStock, error) {
	var list []*entity.VariationStock
	for _, row := range r.rows {
		if row.BusinessID == businessID && row.LocationID == locationID {
			copy := row
			list = append(list, &copy)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductVariationID < list[j].ProductVariationID })
	return paginate(list, limit, offset), nil
}

// ForceBalance sobrescribe el saldo directamente, saltándose el libro de stock.
// Existe solo para provocar varianzas en los tests de conciliación.
func (r *StockRepo) ForceBalance(businessID, variationID, locationID string, qty decimal.Decimal) {
	r.rows[stockKey(businessID, variationID, locationID)] = entity.VariationStock{
		BusinessID:         businessID,
		ProductVariationID: variationID,
		LocationID:         locationID,
		QtyAvailable:       qty,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// MovementEventRepository
// ─────────────────────────────────────────────────────────────────────────────

type MovementRepo struct {
	Events []*entity.MovementEvent
}

var _ repository.MovementEventRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Create(event *entity.MovementEvent) error {
	copy := *event
	r.Events = append(r.Events, &copy)
	return nil
}

func (r *MovementRepo) ListForReplay(businessID, variationID, locationID string) ([]*entity.MovementEvent, error) {
	var list []*entity.MovementEvent
	for _, e := range r.Events {
		if e.BusinessID == businessID && e.ProductVariationID == variationID && e.LocationID == locationID {
			list = append(list, e)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].OccurredAt.Equal(list[j].OccurredAt) {
			return list[i].OccurredAt.Before(list[j].OccurredAt)
		}
		return entity.MovementKindPrecedence(list[i].Kind) < entity.MovementKindPrecedence(list[j].Kind)
	})
	return list, nil
}

func (r *MovementRepo) ListByVariation(businessID, variationID string, limit, offset int) ([]*entity.MovementEvent, error) {
	var list []*entity.MovementEvent
	for _, e := range r.Events {
		if e.BusinessID == businessID && e.ProductVariationID == variationID {
			list = append(list, e)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].OccurredAt.After(list[j].OccurredAt) })
	return paginate(list, limit, offset), nil
}

func (r *MovementRepo) ListByLocation(businessID, locationID string, limit, offset int) ([]*entity.MovementEvent, error) {
	var list []*entity.MovementEvent
	for _, e := range r.Events {
		if e.BusinessID == businessID && e.LocationID == locationID {
			list = append(list, e)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].OccurredAt.After(list[j].OccurredAt) })
	return paginate(list, limit, offset), nil
}

func (r *MovementRepo) SumCorrections(businessID, variationID, locationID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range r.Events {
		if e.BusinessID == businessID && e.ProductVariationID == variationID &&
			e.LocationID == locationID && e.Kind == entity.MovementKindCorrection {
			sum = sum.Add(e.QuantityDelta)
		}
	}
	return sum, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SerialNumberRepository
// ─────────────────────────────────────────────────────────────────────────────

type SerialRepo struct {
	bySerial map[string]entity.SerialNumber
}

var _ repository.SerialNumberRepository = (*SerialRepo)(nil)

func serialKey(businessID, serialNumber string) string {
	return businessID + "|" + serialNumber
}

func (r *SerialRepo) Create(s *entity.SerialNumber) error {
	key := serialKey(s.BusinessID, s.SerialNumber)
	if _, ok := r.bySerial[key]; ok {
		return domain.ErrDuplicateSerial
	}
	r.bySerial[key] = *s
	return nil
}

func (r *SerialRepo) GetByID(id string) (*entity.SerialNumber, error) {
	for _, row := range r.bySerial {
		if row.ID == id {
			copy := row
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *SerialRepo) GetBySerial(businessID, serialNumber string) (*entity.SerialNumber, error) {
	if row, ok := r.bySerial[serialKey(businessID, serialNumber)]; ok {
		copy := row
		return &copy, nil
	}
	return nil, nil
}

func (r *SerialRepo) GetBySerialForUpdate(businessID, serialNumber string) (*entity.SerialNumber, error) {
	return r.GetBySerial(businessID, serialNumber)
}

func (r *SerialRepo) Update(s *entity.SerialNumber) error {
	key := serialKey(s.BusinessID, s.SerialNumber)
	if _, ok := r.bySerial[key]; !ok {
		return domain.ErrNotFound
	}
	r.bySerial[key] = *s
	return nil
}

func (r *SerialRepo) List(businessID string, filter repository.SerialFilter, limit, offset int) ([]*entity.SerialNumber, error) {
	var list []*entity.SerialNumber
	for _, row := range r.bySerial {
		if row.BusinessID != businessID {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.LocationID != "" && row.CurrentLocationID != filter.LocationID {
			continue
		}
		if filter.ProductVariationID != "" && row.ProductVariationID != filter.ProductVariationID {
			continue
		}
		copy := row
		list = append(list, &copy)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SerialNumber < list[j].SerialNumber })
	return paginate(list, limit, offset), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SerialMovementRepository
// ─────────────────────────────────────────────────────────────────────────────

type SerialMovementRepo struct {
	Movements []*entity.SerialMovement
}

var _ repository.SerialMovementRepository = (*SerialMovementRepo)(nil)

func (r *SerialMovementRepo) Create(m *entity.SerialMovement) error {
	copy := *m
	r.Movements = append(r.Movements, &copy)
	return nil
}

func (r *SerialMovementRepo) ListBySerial(serialNumberID string) ([]*entity.SerialMovement, error) {
	var list []*entity.SerialMovement
	for _, m := range r.Movements {
		if m.SerialNumberID == serialNumberID {
			list = append(list, m)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].MovedAt.Before(list[j].MovedAt) })
	return list, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// PurchaseReceiptRepository
// ─────────────────────────────────────────────────────────────────────────────

type ReceiptRepo struct {
	order []string // orden de inserción para List
	rows  map[string]*entity.PurchaseReceipt

	// CreateHook, si no es nil, corre antes de insertar; permite simular
	// colisiones del índice único (business_id, receipt_number) en los tests.
	CreateHook func(receipt *entity.PurchaseReceipt) error
}

var _ repository.PurchaseReceiptRepository = (*ReceiptRepo)(nil)

func (r *ReceiptRepo) Create(receipt *entity.PurchaseReceipt) error {
	if r.rows == nil {
		r.rows = map[string]*entity.PurchaseReceipt{}
	}
	if r.CreateHook != nil {
		if err := r.CreateHook(receipt); err != nil {
			return err
		}
	}
	for _, existing := range r.rows {
		if existing.BusinessID == receipt.BusinessID && existing.ReceiptNumber == receipt.ReceiptNumber {
			return domain.ErrDuplicate
		}
	}
	stored := *receipt
	stored.Items = append([]*entity.ReceiptItem(nil), receipt.Items...)
	r.rows[receipt.ID] = &stored
	r.order = append(r.order, receipt.ID)
	return nil
}

func (r *ReceiptRepo) GetByID(id string) (*entity.PurchaseReceipt, error) {
	stored, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	copy := *stored
	copy.Items = append([]*entity.ReceiptItem(nil), stored.Items...)
	return &copy, nil
}

func (r *ReceiptRepo) GetByIDForUpdate(id string) (*entity.PurchaseReceipt, error) {
	return r.GetByID(id)
}

func (r *ReceiptRepo) LastReceiptNumber(businessID string) (string, error) {
	last := ""
	for _, stored := range r.rows {
		if stored.BusinessID == businessID && strings.Compare(stored.ReceiptNumber, last) > 0 {
			last = stored.ReceiptNumber
		}
	}
	return last, nil
}

func (r *ReceiptRepo) UpdateStatus(receipt *entity.PurchaseReceipt) error {
	stored, ok := r.rows[receipt.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = receipt.Status
	stored.ApprovedBy = receipt.ApprovedBy
	stored.ApprovedAt = receipt.ApprovedAt
	return nil
}

func (r *ReceiptRepo) List(businessID string, status string, limit, offset int) ([]*entity.PurchaseReceipt, error) {
	var list []*entity.PurchaseReceipt
	for _, id := range r.order {
		stored := r.rows[id]
		if stored.BusinessID != businessID {
			continue
		}
		if status != "" && stored.Status != status {
			continue
		}
		copy := *stored
		list = append(list, &copy)
	}
	return paginate(list, limit, offset), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// TransferRepository
// ─────────────────────────────────────────────────────────────────────────────

type TransferRepo struct {
	order []string
	byID  map[string]*entity.Transfer
}

var _ repository.TransferRepository = (*TransferRepo)(nil)

func (r *TransferRepo) Create(t *entity.Transfer) error {
	stored := *t
	stored.Items = append([]*entity.TransferItem(nil), t.Items...)
	r.byID[t.ID] = &stored
	r.order = append(r.order, t.ID)
	return nil
}

func (r *TransferRepo) GetByID(id string) (*entity.Transfer, error) {
	stored, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	copy := *stored
	copy.Items = append([]*entity.TransferItem(nil), stored.Items...)
	return &copy, nil
}

func (r *TransferRepo) GetByIDForUpdate(id string) (*entity.Transfer, error) {
	return r.GetByID(id)
}

func (r *TransferRepo) UpdateStatus(t *entity.Transfer) error {
	stored, ok := r.byID[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = t.Status
	stored.CheckedBy, stored.SentBy = t.CheckedBy, t.SentBy
	stored.ReceivedBy, stored.CompletedBy = t.ReceivedBy, t.CompletedBy
	stored.CheckedAt, stored.SentAt = t.CheckedAt, t.SentAt
	stored.ReceivedAt, stored.CompletedAt = t.ReceivedAt, t.CompletedAt
	return nil
}

func (r *TransferRepo) List(businessID string, status string, limit, offset int) ([]*entity.Transfer, error) {
	var list []*entity.Transfer
	for _, id := range r.order {
		stored := r.byID[id]
		if stored.BusinessID != businessID {
			continue
		}
		if status != "" && stored.Status != status {
			continue
		}
		copy := *stored
		list = append(list, &copy)
	}
	return paginate(list, limit, offset), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SODSettingsRepository
// ─────────────────────────────────────────────────────────────────────────────

type SODRepo struct {
	byBusiness map[string]entity.SODSettings
}

var _ repository.SODSettingsRepository = (*SODRepo)(nil)

func (r *SODRepo) Get(businessID string) (*entity.SODSettings, error) {
	if row, ok := r.byBusiness[businessID]; ok {
		copy := row
		return &copy, nil
	}
	return nil, nil
}

func (r *SODRepo) Upsert(settings *entity.SODSettings) error {
	r.byBusiness[settings.BusinessID] = *settings
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// LocationRepository
// ─────────────────────────────────────────────────────────────────────────────

type LocationRepo struct {
	byID map[string]entity.Location
}

var _ repository.LocationRepository = (*LocationRepo)(nil)

func (r *LocationRepo) Create(l *entity.Location) error {
	r.byID[l.ID] = *l
	return nil
}

func (r *LocationRepo) GetByID(id string) (*entity.Location, error) {
	if row, ok := r.byID[id]; ok {
		copy := row
		return &copy, nil
	}
	return nil, nil
}

func (r *LocationRepo) List(businessID string) ([]*entity.Location, error) {
	var list []*entity.Location
	for _, row := range r.byID {
		if row.BusinessID == businessID {
			copy := row
			list = append(list, &copy)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ProductVariationRepository
// ─────────────────────────────────────────────────────────────────────────────

type VariationRepo struct {
	byID map[string]entity.ProductVariation
}

var _ repository.ProductVariationRepository = (*VariationRepo)(nil)

func (r *VariationRepo) Create(v *entity.ProductVariation) error {
	r.byID[v.ID] = *v
	return nil
}

func (r *VariationRepo) GetByID(id string) (*entity.ProductVariation, error) {
	if row, ok := r.byID[id]; ok {
		copy := row
		return &copy, nil
	}
	return nil, nil
}

func (r *VariationRepo) UpdatePurchaseCost(id string, cost decimal.Decimal) error {
	row, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	row.PurchaseCost = cost
	r.byID[id] = row
	return nil
}

func (r *VariationRepo) List(businessID string, limit, offset int) ([]*entity.ProductVariation, error) {
	var list []*entity.ProductVariation
	for _, row := range r.byID {
		if row.BusinessID == businessID {
			copy := row
			list = append(list, &copy)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return paginate(list, limit, offset), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// PurchaseOrderRepository
// ─────────────────────────────────────────────────────────────────────────────

type PurchaseOrderRepo struct {
	byID map[string]entity.PurchaseOrder
}

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// Add siembra una orden de compra para los tests.
func (r *PurchaseOrderRepo) Add(po entity.PurchaseOrder) {
	r.byID[po.ID] = po
}

func (r *PurchaseOrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	if row, ok := r.byID[id]; ok {
		copy := row
		return &copy, nil
	}
	return nil, nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
