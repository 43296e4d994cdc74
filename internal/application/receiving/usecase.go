package receiving

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/application/ledger"
	"github.com/jhoicas/inventario-core/internal/application/serial"
	appsod "github.com/jhoicas/inventario-core/internal/application/sod"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
	sodrules "github.com/jhoicas/inventario-core/internal/domain/sod"
)

// receiptNumberPrefix y ancho del sufijo de la secuencia GRN por empresa.
const receiptNumberPrefix = "GRN-"
const receiptNumberWidth = 6

// createMaxAttempts reintentos al crear: dos recepciones concurrentes pueden
// calcular el mismo candidato; el índice único (business_id, receipt_number)
// rechaza la segunda y se recalcula.
const createMaxAttempts = 3

// ReceiptUseCase implementa el workflow de recepción de compras en dos fases:
// la creación deja la recepción en pending sin tocar stock; la aprobación es la
// única acción que muta el StockLedger y materializa los seriales escalonados.
type ReceiptUseCase struct {
	txRunner      TxRunner
	ledgerUC      *ledger.StockLedgerUseCase
	serialUC      *serial.LifecycleUseCase
	sodUC         *appsod.ValidationUseCase
	locationRepo  repository.LocationRepository
	purchaseRepo  repository.PurchaseOrderRepository
	variationRepo repository.ProductVariationRepository
	receiptRepo   repository.PurchaseReceiptRepository
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(
	txRunner TxRunner,
	ledgerUC *ledger.StockLedgerUseCase,
	serialUC *serial.LifecycleUseCase,
	sodUC *appsod.ValidationUseCase,
	locationRepo repository.LocationRepository,
	purchaseRepo repository.PurchaseOrderRepository,
	variationRepo repository.ProductVariationRepository,
	receiptRepo repository.PurchaseReceiptRepository,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		txRunner:      txRunner,
		ledgerUC:      ledgerUC,
		serialUC:      serialUC,
		sodUC:         sodUC,
		locationRepo:  locationRepo,
		purchaseRepo:  purchaseRepo,
		variationRepo: variationRepo,
		receiptRepo:   receiptRepo,
	}
}

// ReceiptItemInput línea de la recepción a crear. SerialNumbers queda escalonado
// en el ítem (lista provisional); no se materializa hasta aprobar.
type ReceiptItemInput struct {
	ProductID          string
	ProductVariationID string
	QuantityReceived   decimal.Decimal
	UnitCost           decimal.Decimal
	PurchaseLineItemID string
	SerialNumbers      []string
}

// CreateReceiptInput entrada de la fase de creación. PurchaseID vacío habilita
// la recepción directa sin orden de compra.
type CreateReceiptInput struct {
	BusinessID string
	LocationID string
	SupplierID string
	PurchaseID string
	ReceivedBy string
	Notes      string
	Items      []ReceiptItemInput
}

// CreateReceipt valida pertenencia de ubicación y orden de compra, genera el
// número GRN monótono por empresa y persiste la recepción en pending.
// En esta fase no se muta stock ni se crean seriales.
func (uc *ReceiptUseCase) CreateReceipt(ctx context.Context, input CreateReceiptInput) (*entity.PurchaseReceipt, error) {
	if input.BusinessID == "" || input.LocationID == "" || input.ReceivedBy == "" || len(input.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, item := range input.Items {
		if item.ProductVariationID == "" || !item.QuantityReceived.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if len(item.SerialNumbers) > 0 {
			if !decimal.NewFromInt(int64(len(item.SerialNumbers))).Equal(item.QuantityReceived) {
				return nil, domain.ErrInvalidInput
			}
			for _, sn := range item.SerialNumbers {
				if !entity.IsValidSerialNumber(sn) {
					return nil, domain.ErrInvalidInput
				}
			}
		}
	}

	location, err := uc.locationRepo.GetByID(input.LocationID)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.ErrNotFound
	}
	if location.BusinessID != input.BusinessID {
		return nil, domain.ErrForbidden
	}
	supplierID := input.SupplierID
	if input.PurchaseID != "" {
		po, err := uc.purchaseRepo.GetByID(input.PurchaseID)
		if err != nil {
			return nil, err
		}
		if po == nil {
			return nil, domain.ErrNotFound
		}
		if po.BusinessID != input.BusinessID {
			return nil, domain.ErrForbidden
		}
		if supplierID == "" {
			supplierID = po.SupplierID
		}
	}

	now := time.Now()
	receipt := &entity.PurchaseReceipt{
		ID:         uuid.New().String(),
		BusinessID: input.BusinessID,
		PurchaseID: input.PurchaseID,
		SupplierID: supplierID,
		LocationID: input.LocationID,
		Status:     entity.ReceiptStatusPending,
		ReceivedBy: input.ReceivedBy,
		ReceivedAt: now,
		Notes:      input.Notes,
	}
	for _, item := range input.Items {
		receipt.Items = append(receipt.Items, &entity.ReceiptItem{
			ID:                 uuid.New().String(),
			ReceiptID:          receipt.ID,
			ProductID:          item.ProductID,
			ProductVariationID: item.ProductVariationID,
			QuantityReceived:   item.QuantityReceived,
			UnitCost:           item.UnitCost,
			PurchaseLineItemID: item.PurchaseLineItemID,
			StagedSerials:      item.SerialNumbers,
		})
	}

	// La generación del número lee el último sufijo e incrementa del lado del
	// cliente; bajo concurrencia el índice único detecta la colisión y se
	// reintenta. Cada intento corre en su propia transacción: cabecera, ítems y
	// número se comprometen juntos, así un fallo a mitad de los ítems no deja
	// una cabecera pending huérfana ni quema el número candidato.
	var lastErr error
	for attempt := 0; attempt < createMaxAttempts; attempt++ {
		err := uc.txRunner.RunReceiving(ctx, func(
			_ repository.VariationStockRepository,
			_ repository.MovementEventRepository,
			_ repository.ProductVariationRepository,
			receiptRepo repository.PurchaseReceiptRepository,
			_ repository.SerialNumberRepository,
			_ repository.SerialMovementRepository,
		) error {
			number, err := nextReceiptNumber(receiptRepo, input.BusinessID)
			if err != nil {
				return err
			}
			receipt.ReceiptNumber = number
			return receiptRepo.Create(receipt)
		})
		if err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return receipt, nil
	}
	return nil, fmt.Errorf("generar número de recepción: %w", lastErr)
}

func nextReceiptNumber(receiptRepo repository.PurchaseReceiptRepository, businessID string) (string, error) {
	last, err := receiptRepo.LastReceiptNumber(businessID)
	if err != nil {
		return "", err
	}
	next := 1
	if last != "" {
		suffix := strings.TrimPrefix(last, receiptNumberPrefix)
		if n, err := strconv.Atoi(suffix); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%0*d", receiptNumberPrefix, receiptNumberWidth, next), nil
}

// ApproveReceipt ejecuta la fase de aprobación en una sola transacción: bloquea
// la cabecera (check-then-set bajo la misma tx, a prueba de aprobaciones
// concurrentes), acredita el stock por ítem, sobrescribe el costo de compra de
// la variación con el último costo unitario y materializa los seriales
// escalonados. Re-aprobar falla con ErrAlreadyApproved: repetirla duplicaría stock.
func (uc *ReceiptUseCase) ApproveReceipt(ctx context.Context, businessID, receiptID, approverID string, approverRoles []string) (*entity.PurchaseReceipt, error) {
	if businessID == "" || receiptID == "" || approverID == "" {
		return nil, domain.ErrInvalidInput
	}

	var approved *entity.PurchaseReceipt
	err := uc.txRunner.RunReceiving(ctx, func(
		stockRepo repository.VariationStockRepository,
		movRepo repository.MovementEventRepository,
		variationRepo repository.ProductVariationRepository,
		receiptRepo repository.PurchaseReceiptRepository,
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error {
		receipt, err := receiptRepo.GetByIDForUpdate(receiptID)
		if err != nil {
			return err
		}
		if receipt == nil {
			return domain.ErrNotFound
		}
		if receipt.BusinessID != businessID {
			return domain.ErrForbidden
		}
		if receipt.Status != entity.ReceiptStatusPending {
			return domain.ErrAlreadyApproved
		}

		requestedBy := ""
		if receipt.PurchaseID != "" {
			po, err := uc.purchaseRepo.GetByID(receipt.PurchaseID)
			if err != nil {
				return err
			}
			if po != nil {
				requestedBy = po.RequestedBy
			}
		}
		result, err := uc.sodUC.Validate(ctx, businessID, approverID, sodrules.ActionApprove,
			sodrules.ReceiptRef{ReceivedBy: receipt.ReceivedBy, RequestedBy: requestedBy}, approverRoles)
		if err != nil {
			return err
		}
		if !result.Allowed {
			return sodrules.Denied(result)
		}

		now := time.Now()
		for _, item := range receipt.Items {
			_, err := uc.ledgerUC.ApplyInTx(stockRepo, movRepo, ledger.MovementInput{
				BusinessID:         businessID,
				ProductVariationID: item.ProductVariationID,
				LocationID:         receipt.LocationID,
				Delta:              item.QuantityReceived,
				Kind:               entity.MovementKindPurchaseReceipt,
				ReferenceType:      "purchase_receipt",
				ReferenceID:        receipt.ID,
				RecordedBy:         approverID,
				OccurredAt:         now,
			})
			if err != nil {
				return err
			}
			// Política last-cost: el último costo unitario sobrescribe el anterior.
			if err := variationRepo.UpdatePurchaseCost(item.ProductVariationID, item.UnitCost); err != nil {
				return err
			}
			for _, sn := range item.StagedSerials {
				_, err := uc.serialUC.CreateSerialInTx(serialRepo, serialMovRepo, serial.CreateSerialInput{
					BusinessID:         businessID,
					ProductID:          item.ProductID,
					ProductVariationID: item.ProductVariationID,
					SerialNumber:       sn,
					LocationID:         receipt.LocationID,
					PurchaseID:         receipt.PurchaseID,
					PurchaseReceiptID:  receipt.ID,
					PurchaseCost:       item.UnitCost,
					ReferenceType:      "purchase_receipt",
					ReferenceID:        receipt.ID,
					CreatedBy:          approverID,
				})
				if err != nil {
					return err
				}
			}
		}

		receipt.Status = entity.ReceiptStatusApproved
		receipt.ApprovedBy = approverID
		receipt.ApprovedAt = &now
		if err := receiptRepo.UpdateStatus(receipt); err != nil {
			return err
		}
		approved = receipt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// GetReceipt lectura para la capa HTTP.
func (uc *ReceiptUseCase) GetReceipt(ctx context.Context, businessID, receiptID string) (*entity.PurchaseReceipt, error) {
	_ = ctx
	receipt, err := uc.receiptRepo.GetByID(receiptID)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, domain.ErrNotFound
	}
	if receipt.BusinessID != businessID {
		return nil, domain.ErrForbidden
	}
	return receipt, nil
}

// ListReceipts listado paginado, opcionalmente por estado.
func (uc *ReceiptUseCase) ListReceipts(ctx context.Context, businessID, status string, limit, offset int) ([]*entity.PurchaseReceipt, error) {
	_ = ctx
	return uc.receiptRepo.List(businessID, status, limit, offset)
}

// ActorRef arma la referencia de actores de la recepción para la evaluación
// de la política de segregación de funciones (pre-chequeo desde la UI).
func (uc *ReceiptUseCase) ActorRef(ctx context.Context, businessID, receiptID string) (sodrules.ReceiptRef, error) {
	receipt, err := uc.GetReceipt(ctx, businessID, receiptID)
	if err != nil {
		return sodrules.ReceiptRef{}, err
	}
	ref := sodrules.ReceiptRef{ReceivedBy: receipt.ReceivedBy}
	if receipt.PurchaseID != "" {
		po, err := uc.purchaseRepo.GetByID(receipt.PurchaseID)
		if err != nil {
			return sodrules.ReceiptRef{}, err
		}
		if po != nil {
			ref.RequestedBy = po.RequestedBy
		}
	}
	return ref, nil
}
