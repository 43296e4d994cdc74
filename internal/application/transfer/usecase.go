package transfer

import (
	"context"
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

// WorkflowUseCase implementa la máquina de estados del traslado entre
// ubicaciones: draft → checked → sent → received → completed, con cancelled
// alcanzable desde estados no terminales. Cada transición consulta primero la
// política de segregación de funciones y bloquea la cabecera del traslado, de
// modo que dos transiciones concurrentes sobre el mismo traslado se serialicen.
type WorkflowUseCase struct {
	txRunner     TxRunner
	ledgerUC     *ledger.StockLedgerUseCase
	serialUC     *serial.LifecycleUseCase
	sodUC        *appsod.ValidationUseCase
	locationRepo repository.LocationRepository
	transferRepo repository.TransferRepository
}

// NewWorkflowUseCase construye el caso de uso.
func NewWorkflowUseCase(
	txRunner TxRunner,
	ledgerUC *ledger.StockLedgerUseCase,
	serialUC *serial.LifecycleUseCase,
	sodUC *appsod.ValidationUseCase,
	locationRepo repository.LocationRepository,
	transferRepo repository.TransferRepository,
) *WorkflowUseCase {
	return &WorkflowUseCase{
		txRunner:     txRunner,
		ledgerUC:     ledgerUC,
		serialUC:     serialUC,
		sodUC:        sodUC,
		locationRepo: locationRepo,
		transferRepo: transferRepo,
	}
}

// TransferItemInput línea del traslado a crear. SerialNumbers lista los
// seriales incluidos cuando la variación es serializada.
type TransferItemInput struct {
	ProductVariationID string
	Quantity           decimal.Decimal
	SerialNumbers      []string
}

// CreateTransferInput entrada de la creación (estado draft, sin tocar stock).
type CreateTransferInput struct {
	BusinessID     string
	FromLocationID string
	ToLocationID   string
	CreatedBy      string
	Notes          string
	Items          []TransferItemInput
}

// CreateTransfer valida ubicaciones y líneas, y persiste el traslado en draft.
func (uc *WorkflowUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*entity.Transfer, error) {
	if input.BusinessID == "" || input.CreatedBy == "" || len(input.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if input.FromLocationID == "" || input.ToLocationID == "" || input.FromLocationID == input.ToLocationID {
		return nil, domain.ErrInvalidInput
	}
	for _, item := range input.Items {
		if item.ProductVariationID == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if len(item.SerialNumbers) > 0 &&
			!decimal.NewFromInt(int64(len(item.SerialNumbers))).Equal(item.Quantity) {
			return nil, domain.ErrInvalidInput
		}
	}
	for _, locationID := range []string{input.FromLocationID, input.ToLocationID} {
		location, err := uc.locationRepo.GetByID(locationID)
		if err != nil {
			return nil, err
		}
		if location == nil {
			return nil, domain.ErrNotFound
		}
		if location.BusinessID != input.BusinessID {
			return nil, domain.ErrForbidden
		}
	}

	now := time.Now()
	transfer := &entity.Transfer{
		ID:             uuid.New().String(),
		BusinessID:     input.BusinessID,
		FromLocationID: input.FromLocationID,
		ToLocationID:   input.ToLocationID,
		Status:         entity.TransferStatusDraft,
		CreatedBy:      input.CreatedBy,
		CreatedAt:      now,
		Notes:          input.Notes,
	}
	for _, item := range input.Items {
		transfer.Items = append(transfer.Items, &entity.TransferItem{
			ID:                 uuid.New().String(),
			TransferID:         transfer.ID,
			ProductVariationID: item.ProductVariationID,
			Quantity:           item.Quantity,
			SerialNumbers:      item.SerialNumbers,
		})
	}
	// Cabecera y líneas se comprometen en la misma transacción: un fallo a
	// mitad de los ítems no deja un borrador huérfano.
	err := uc.txRunner.RunTransfer(ctx, func(
		_ repository.VariationStockRepository,
		_ repository.MovementEventRepository,
		transferRepo repository.TransferRepository,
		_ repository.SerialNumberRepository,
		_ repository.SerialMovementRepository,
	) error {
		return transferRepo.Create(transfer)
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// CheckTransfer transición draft → checked. No muta stock.
func (uc *WorkflowUseCase) CheckTransfer(ctx context.Context, businessID, transferID, userID string, userRoles []string) (*entity.Transfer, error) {
	return uc.transition(ctx, businessID, transferID, userID, userRoles, sodrules.ActionCheck,
		entity.TransferStatusDraft,
		func(t *entity.Transfer, _ txRepos, now time.Time) error {
			t.Status = entity.TransferStatusChecked
			t.CheckedBy = userID
			t.CheckedAt = &now
			return nil
		})
}

// SendTransfer transición checked → sent: la única que descuenta stock del
// origen. Los seriales de cada línea pasan a in_transit (conservan su
// ubicación hasta completar la recepción).
func (uc *WorkflowUseCase) SendTransfer(ctx context.Context, businessID, transferID, userID string, userRoles []string) (*entity.Transfer, error) {
	return uc.transition(ctx, businessID, transferID, userID, userRoles, sodrules.ActionSend,
		entity.TransferStatusChecked,
		func(t *entity.Transfer, repos txRepos, now time.Time) error {
			for _, item := range t.Items {
				_, err := uc.ledgerUC.ApplyInTx(repos.stockRepo, repos.movRepo, ledger.MovementInput{
					BusinessID:         businessID,
					ProductVariationID: item.ProductVariationID,
					LocationID:         t.FromLocationID,
					Delta:              item.Quantity.Neg(),
					Kind:               entity.MovementKindTransferOut,
					ReferenceType:      "transfer",
					ReferenceID:        t.ID,
					RecordedBy:         userID,
					OccurredAt:         now,
				})
				if err != nil {
					return err
				}
				for _, sn := range item.SerialNumbers {
					if err := uc.serialUC.MarkInTransitInTx(repos.serialRepo, repos.serialMovRepo,
						businessID, sn, t.FromLocationID, t.ID, userID); err != nil {
						return err
					}
				}
			}
			t.Status = entity.TransferStatusSent
			t.SentBy = userID
			t.SentAt = &now
			return nil
		})
}

// ReceiveTransfer transición sent → received: la única que acredita stock en el
// destino. Para líneas serializadas se valida primero el conjunto completo de
// seriales presentados contra los enviados; cualquier diferencia bloquea la
// recepción entera (sin recepciones parciales de conjuntos desparejos).
func (uc *WorkflowUseCase) ReceiveTransfer(ctx context.Context, businessID, transferID, userID string, userRoles []string, presentedSerials []string) (*entity.Transfer, error) {
	return uc.transition(ctx, businessID, transferID, userID, userRoles, sodrules.ActionReceive,
		entity.TransferStatusSent,
		func(t *entity.Transfer, repos txRepos, now time.Time) error {
			expected := []string{}
			for _, item := range t.Items {
				expected = append(expected, item.SerialNumbers...)
			}
			if len(expected) > 0 || len(presentedSerials) > 0 {
				validation, err := uc.serialUC.ValidateSerialNumbersForTransferInTx(
					repos.serialRepo, businessID, presentedSerials, expected)
				if err != nil {
					return err
				}
				if !validation.Valid {
					return &serial.MismatchError{Validation: validation}
				}
			}
			for _, item := range t.Items {
				_, err := uc.ledgerUC.ApplyInTx(repos.stockRepo, repos.movRepo, ledger.MovementInput{
					BusinessID:         businessID,
					ProductVariationID: item.ProductVariationID,
					LocationID:         t.ToLocationID,
					Delta:              item.Quantity,
					Kind:               entity.MovementKindTransferIn,
					ReferenceType:      "transfer",
					ReferenceID:        t.ID,
					RecordedBy:         userID,
					OccurredAt:         now,
				})
				if err != nil {
					return err
				}
				for _, sn := range item.SerialNumbers {
					if err := uc.serialUC.CompleteTransferInTx(repos.serialRepo, repos.serialMovRepo,
						businessID, sn, t.ToLocationID, t.ID, userID); err != nil {
						return err
					}
				}
			}
			t.Status = entity.TransferStatusReceived
			t.ReceivedBy = userID
			t.ReceivedAt = &now
			return nil
		})
}

// CompleteTransfer transición received → completed: confirmación supervisora.
// No muta stock (ya quedó correcto en receive); existe para que la recepción y
// el cierre final sean de personas distintas.
func (uc *WorkflowUseCase) CompleteTransfer(ctx context.Context, businessID, transferID, userID string, userRoles []string) (*entity.Transfer, error) {
	return uc.transition(ctx, businessID, transferID, userID, userRoles, sodrules.ActionComplete,
		entity.TransferStatusReceived,
		func(t *entity.Transfer, _ txRepos, now time.Time) error {
			t.Status = entity.TransferStatusCompleted
			t.CompletedBy = userID
			t.CompletedAt = &now
			return nil
		})
}

// CancelTransfer cancela un traslado no terminal. Si ya fue enviado, el stock
// descontado vuelve al origen y los seriales en tránsito regresan a in_stock
// allí mismo; después de received ya no se puede cancelar.
func (uc *WorkflowUseCase) CancelTransfer(ctx context.Context, businessID, transferID, userID string) (*entity.Transfer, error) {
	var cancelled *entity.Transfer
	err := uc.txRunner.RunTransfer(ctx, func(
		stockRepo repository.VariationStockRepository,
		movRepo repository.MovementEventRepository,
		transferRepo repository.TransferRepository,
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error {
		t, err := transferRepo.GetByIDForUpdate(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.BusinessID != businessID {
			return domain.ErrForbidden
		}
		switch t.Status {
		case entity.TransferStatusDraft, entity.TransferStatusChecked:
			// Nada que revertir.
		case entity.TransferStatusSent:
			now := time.Now()
			for _, item := range t.Items {
				_, err := uc.ledgerUC.ApplyInTx(stockRepo, movRepo, ledger.MovementInput{
					BusinessID:         businessID,
					ProductVariationID: item.ProductVariationID,
					LocationID:         t.FromLocationID,
					Delta:              item.Quantity,
					Kind:               entity.MovementKindTransferIn,
					ReferenceType:      "transfer_cancel",
					ReferenceID:        t.ID,
					RecordedBy:         userID,
					OccurredAt:         now,
				})
				if err != nil {
					return err
				}
				for _, sn := range item.SerialNumbers {
					if err := uc.serialUC.CompleteTransferInTx(serialRepo, serialMovRepo,
						businessID, sn, t.FromLocationID, t.ID, userID); err != nil {
						return err
					}
				}
			}
		default:
			return domain.ErrInvalidStateTransition
		}
		t.Status = entity.TransferStatusCancelled
		if err := transferRepo.UpdateStatus(t); err != nil {
			return err
		}
		cancelled = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// GetTransfer lectura para la capa HTTP.
func (uc *WorkflowUseCase) GetTransfer(ctx context.Context, businessID, transferID string) (*entity.Transfer, error) {
	_ = ctx
	t, err := uc.transferRepo.GetByID(transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if t.BusinessID != businessID {
		return nil, domain.ErrForbidden
	}
	return t, nil
}

// ListTransfers listado paginado, opcionalmente por estado.
func (uc *WorkflowUseCase) ListTransfers(ctx context.Context, businessID, status string, limit, offset int) ([]*entity.Transfer, error) {
	_ = ctx
	return uc.transferRepo.List(businessID, status, limit, offset)
}

// txRepos agrupa los repositorios atados a la transacción de una transición.
type txRepos struct {
	stockRepo     repository.VariationStockRepository
	movRepo       repository.MovementEventRepository
	serialRepo    repository.SerialNumberRepository
	serialMovRepo repository.SerialMovementRepository
}

// transition factoriza el patrón común: abrir tx, bloquear cabecera, verificar
// estado de partida, consultar la política SOD y aplicar la mutación. La
// denegación de la política se devuelve tal cual (código + sugerencia).
func (uc *WorkflowUseCase) transition(
	ctx context.Context,
	businessID, transferID, userID string,
	userRoles []string,
	action string,
	requiredStatus string,
	apply func(t *entity.Transfer, repos txRepos, now time.Time) error,
) (*entity.Transfer, error) {
	if businessID == "" || transferID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.Transfer
	err := uc.txRunner.RunTransfer(ctx, func(
		stockRepo repository.VariationStockRepository,
		movRepo repository.MovementEventRepository,
		transferRepo repository.TransferRepository,
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error {
		t, err := transferRepo.GetByIDForUpdate(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.BusinessID != businessID {
			return domain.ErrForbidden
		}
		if t.Status != requiredStatus {
			return domain.ErrInvalidStateTransition
		}

		verdict, err := uc.sodUC.Validate(ctx, businessID, userID, action,
			sodrules.TransferRef{
				CreatedBy:  t.CreatedBy,
				CheckedBy:  t.CheckedBy,
				SentBy:     t.SentBy,
				ReceivedBy: t.ReceivedBy,
			}, userRoles)
		if err != nil {
			return err
		}
		if !verdict.Allowed {
			return sodrules.Denied(verdict)
		}

		now := time.Now()
		if err := apply(t, txRepos{stockRepo, movRepo, serialRepo, serialMovRepo}, now); err != nil {
			return err
		}
		if err := transferRepo.UpdateStatus(t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
