package serial

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// LifecycleUseCase gobierna la máquina de estados de las unidades serializadas:
// in_stock → sold | in_transit | damaged; in_transit → in_stock (nueva
// ubicación); sold → returned | warranty_return. Cada transición emite un
// SerialMovement en la misma transacción.
type LifecycleUseCase struct {
	txRunner TxRunner
}

// NewLifecycleUseCase construye el caso de uso.
func NewLifecycleUseCase(txRunner TxRunner) *LifecycleUseCase {
	return &LifecycleUseCase{txRunner: txRunner}
}

// CreateSerialInput entrada para registrar una unidad serializada.
type CreateSerialInput struct {
	BusinessID         string
	ProductID          string
	ProductVariationID string
	SerialNumber       string
	IMEI               string
	Condition          string // vacío = new
	LocationID         string
	PurchaseID         string
	PurchaseReceiptID  string
	PurchaseCost       decimal.Decimal
	ReferenceType      string
	ReferenceID        string
	CreatedBy          string
	Notes              string
}

// CreateSerial registra una unidad nueva en su propia transacción.
func (uc *LifecycleUseCase) CreateSerial(ctx context.Context, input CreateSerialInput) (*entity.SerialNumber, error) {
	var created *entity.SerialNumber
	err := uc.txRunner.RunSerial(ctx, func(
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error {
		var err error
		created, err = uc.CreateSerialInTx(serialRepo, serialMovRepo, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateSerialInTx registra la unidad usando repositorios atados a la
// transacción del caller (aprobación de recepción). Falla con
// ErrDuplicateSerial si (empresa, serial) ya existe y con ErrInvalidInput si
// el formato no pasa la validación.
func (uc *LifecycleUseCase) CreateSerialInTx(
	serialRepo repository.SerialNumberRepository,
	serialMovRepo repository.SerialMovementRepository,
	input CreateSerialInput,
) (*entity.SerialNumber, error) {
	if input.BusinessID == "" || input.ProductVariationID == "" || input.LocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.IsValidSerialNumber(input.SerialNumber) {
		return nil, domain.ErrInvalidInput
	}
	condition := input.Condition
	if condition == "" {
		condition = entity.SerialConditionNew
	}
	now := time.Now()
	s := &entity.SerialNumber{
		ID:                 uuid.New().String(),
		BusinessID:         input.BusinessID,
		ProductID:          input.ProductID,
		ProductVariationID: input.ProductVariationID,
		SerialNumber:       input.SerialNumber,
		IMEI:               input.IMEI,
		Status:             entity.SerialStatusInStock,
		Condition:          condition,
		CurrentLocationID:  input.LocationID,
		PurchaseID:         input.PurchaseID,
		PurchaseReceiptID:  input.PurchaseReceiptID,
		PurchaseCost:       input.PurchaseCost,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	// El índice único (business_id, serial_number) respalda la unicidad; el
	// repositorio traduce la violación a domain.ErrDuplicateSerial.
	if err := serialRepo.Create(s); err != nil {
		return nil, err
	}
	mov := &entity.SerialMovement{
		ID:             uuid.New().String(),
		BusinessID:     input.BusinessID,
		SerialNumberID: s.ID,
		MovementType:   entity.SerialMovePurchase,
		ToLocationID:   input.LocationID,
		ReferenceType:  input.ReferenceType,
		ReferenceID:    input.ReferenceID,
		MovedBy:        input.CreatedBy,
		Notes:          input.Notes,
		MovedAt:        now,
	}
	if err := serialMovRepo.Create(mov); err != nil {
		return nil, err
	}
	return s, nil
}

// SellInput entrada para marcar una unidad como vendida.
type SellInput struct {
	BusinessID     string
	SerialNumber   string
	SoldTo         string
	SaleID         string
	WarrantyMonths int
	UserID         string
	Notes          string
}

// MarkSold pasa la unidad de in_stock a sold, calcula el fin de garantía a
// partir de WarrantyMonths y emite el movimiento de venta.
func (uc *LifecycleUseCase) MarkSold(ctx context.Context, input SellInput) (*entity.SerialNumber, error) {
	var updated *entity.SerialNumber
	err := uc.txRunner.RunSerial(ctx, func(
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error {
		s, err := getSerialLocked(serialRepo, input.BusinessID, input.SerialNumber)
		if err != nil {
			return err
		}
		if s.Status != entity.SerialStatusInStock {
			return domain.ErrInvalidStateTransition
		}
		now := time.Now()
		fromLocation := s.CurrentLocationID
		s.Status = entity.SerialStatusSold
		s.SoldAt = &now
		s.SoldTo = input.SoldTo
		if input.WarrantyMonths > 0 {
			ends := now.AddDate(0, input.WarrantyMonths, 0)
			s.WarrantyEndsAt = &ends
		}
		s.UpdatedAt = now
		if err := serialRepo.Update(s); err != nil {
			return err
		}
		updated = s
		return serialMovRepo.Create(&entity.SerialMovement{
			ID:             uuid.New().String(),
			BusinessID:     input.BusinessID,
			SerialNumberID: s.ID,
			MovementType:   entity.SerialMoveSale,
			FromLocationID: fromLocation,
			ReferenceType:  "sale",
			ReferenceID:    input.SaleID,
			MovedBy:        input.UserID,
			Notes:          input.Notes,
			MovedAt:        now,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkInTransitInTx pasa la unidad a in_transit sin cambiar su ubicación (la
// ubicación cambia solo al completar el traslado). Falla con
// ErrLocationMismatch si la unidad está físicamente en otra ubicación.
func (uc *LifecycleUseCase) MarkInTransitInTx(
	serialRepo repository.SerialNumberRepository,
	serialMovRepo repository.SerialMovementRepository,
	businessID, serialNumber, fromLocationID, transferID, userID string,
) error {
	s, err := getSerialLocked(serialRepo, businessID, serialNumber)
	if err != nil {
		return err
	}
	if s.Status != entity.SerialStatusInStock {
		return domain.ErrInvalidStateTransition
	}
	if s.CurrentLocationID != fromLocationID {
		return domain.ErrLocationMismatch
	}
	now := time.Now()
	s.Status = entity.SerialStatusInTransit
	s.UpdatedAt = now
	if err := serialRepo.Update(s); err != nil {
		return err
	}
	return serialMovRepo.Create(&entity.SerialMovement{
		ID:             uuid.New().String(),
		BusinessID:     businessID,
		SerialNumberID: s.ID,
		MovementType:   entity.SerialMoveTransferOut,
		FromLocationID: fromLocationID,
		ReferenceType:  "transfer",
		ReferenceID:    transferID,
		MovedBy:        userID,
		MovedAt:        now,
	})
}

// CompleteTransferInTx vuelve la unidad a in_stock en la ubicación destino.
func (uc *LifecycleUseCase) CompleteTransferInTx(
	serialRepo repository.SerialNumberRepository,
	serialMovRepo repository.SerialMovementRepository,
	businessID, serialNumber, toLocationID, transferID, userID string,
) error {
	s, err := getSerialLocked(serialRepo, businessID, serialNumber)
	if err != nil {
		return err
	}
	if s.Status != entity.SerialStatusInTransit {
		return domain.ErrInvalidStateTransition
	}
	now := time.Now()
	fromLocation := s.CurrentLocationID
	s.Status = entity.SerialStatusInStock
	s.CurrentLocationID = toLocationID
	s.UpdatedAt = now
	if err := serialRepo.Update(s); err != nil {
		return err
	}
	return serialMovRepo.Create(&entity.SerialMovement{
		ID:             uuid.New().String(),
		BusinessID:     businessID,
		SerialNumberID: s.ID,
		MovementType:   entity.SerialMoveTransferIn,
		FromLocationID: fromLocation,
		ToLocationID:   toLocationID,
		ReferenceType:  "transfer",
		ReferenceID:    transferID,
		MovedBy:        userID,
		MovedAt:        now,
	})
}

// ReturnInput entrada para una devolución de cliente.
type ReturnInput struct {
	BusinessID   string
	SerialNumber string
	Condition    string
	ReferenceID  string
	UserID       string
	Notes        string
}

// MarkReturned pasa la unidad de sold a returned con la condición reportada.
func (uc *LifecycleUseCase) MarkReturned(ctx context.Context, input ReturnInput) (*entity.SerialNumber, error) {
	var updated *entity.SerialNumber
	err := uc.txRunner.RunSerial(ctx, func(
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error {
		s, err := getSerialLocked(serialRepo, input.BusinessID, input.SerialNumber)
		if err != nil {
			return err
		}
		if s.Status != entity.SerialStatusSold {
			return domain.ErrInvalidStateTransition
		}
		now := time.Now()
		s.Status = entity.SerialStatusReturned
		if input.Condition != "" {
			s.Condition = input.Condition
		}
		s.UpdatedAt = now
		if err := serialRepo.Update(s); err != nil {
			return err
		}
		updated = s
		return serialMovRepo.Create(&entity.SerialMovement{
			ID:             uuid.New().String(),
			BusinessID:     input.BusinessID,
			SerialNumberID: s.ID,
			MovementType:   entity.SerialMoveCustomerReturn,
			ReferenceType:  "customer_return",
			ReferenceID:    input.ReferenceID,
			MovedBy:        input.UserID,
			Notes:          input.Notes,
			MovedAt:        now,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// WarrantyReturnInput entrada para una devolución por garantía.
type WarrantyReturnInput struct {
	BusinessID   string
	SerialNumber string
	ReferenceID  string
	UserID       string
	Notes        string
}

// MarkWarrantyReturn pasa la unidad de sold a warranty_return. Es una rama
// terminal: la unidad vuelve al proveedor bajo garantía, no al stock vendible.
func (uc *LifecycleUseCase) MarkWarrantyReturn(ctx context.Context, input WarrantyReturnInput) (*entity.SerialNumber, error) {
	var updated *entity.SerialNumber
	err := uc.txRunner.RunSerial(ctx, func(
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error {
		s, err := getSerialLocked(serialRepo, input.BusinessID, input.SerialNumber)
		if err != nil {
			return err
		}
		if s.Status != entity.SerialStatusSold {
			return domain.ErrInvalidStateTransition
		}
		now := time.Now()
		s.Status = entity.SerialStatusWarrantyReturn
		s.Condition = entity.SerialConditionDefective
		s.UpdatedAt = now
		if err := serialRepo.Update(s); err != nil {
			return err
		}
		updated = s
		return serialMovRepo.Create(&entity.SerialMovement{
			ID:             uuid.New().String(),
			BusinessID:     input.BusinessID,
			SerialNumberID: s.ID,
			MovementType:   entity.SerialMoveSupplierReturn,
			ReferenceType:  "warranty_return",
			ReferenceID:    input.ReferenceID,
			MovedBy:        input.UserID,
			Notes:          input.Notes,
			MovedAt:        now,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkDamaged pasa la unidad de in_stock a damaged.
func (uc *LifecycleUseCase) MarkDamaged(ctx context.Context, businessID, serialNumber, notes, userID string) (*entity.SerialNumber, error) {
	var updated *entity.SerialNumber
	err := uc.txRunner.RunSerial(ctx, func(
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error {
		s, err := getSerialLocked(serialRepo, businessID, serialNumber)
		if err != nil {
			return err
		}
		if s.Status != entity.SerialStatusInStock {
			return domain.ErrInvalidStateTransition
		}
		now := time.Now()
		s.Status = entity.SerialStatusDamaged
		s.Condition = entity.SerialConditionDamaged
		s.UpdatedAt = now
		if err := serialRepo.Update(s); err != nil {
			return err
		}
		updated = s
		return serialMovRepo.Create(&entity.SerialMovement{
			ID:             uuid.New().String(),
			BusinessID:     businessID,
			SerialNumberID: s.ID,
			MovementType:   entity.SerialMoveDamage,
			FromLocationID: s.CurrentLocationID,
			MovedBy:        userID,
			Notes:          notes,
			MovedAt:        now,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func getSerialLocked(serialRepo repository.SerialNumberRepository, businessID, serialNumber string) (*entity.SerialNumber, error) {
	s, err := serialRepo.GetBySerialForUpdate(businessID, serialNumber)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}
