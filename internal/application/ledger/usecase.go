package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
	"github.com/jhoicas/inventario-core/pkg/metrics"
)

// StockLedgerUseCase es el único punto de mutación del saldo de stock.
// Cada mutación comprometida actualiza variation_stock e inserta exactamente un
// MovementEvent dentro de la misma transacción (sin evento no hay saldo, y al revés).
type StockLedgerUseCase struct {
	txRunner TxRunner
}

// NewStockLedgerUseCase construye el caso de uso.
func NewStockLedgerUseCase(txRunner TxRunner) *StockLedgerUseCase {
	return &StockLedgerUseCase{txRunner: txRunner}
}

// MovementInput entrada para aplicar un movimiento de stock.
type MovementInput struct {
	BusinessID         string
	ProductVariationID string
	LocationID         string
	Delta              decimal.Decimal // con signo
	Kind               string
	ReferenceType      string
	ReferenceID        string
	RecordedBy         string
	OccurredAt         time.Time // cero = ahora
}

func (in *MovementInput) validate() error {
	if in.BusinessID == "" || in.ProductVariationID == "" || in.LocationID == "" {
		return domain.ErrInvalidInput
	}
	if in.Delta.IsZero() || !entity.IsValidMovementKind(in.Kind) {
		return domain.ErrInvalidInput
	}
	return nil
}

// ApplyMovement inicia una transacción, bloquea la fila de stock
// (SELECT FOR UPDATE), aplica el delta y registra el evento. Devuelve el nuevo saldo.
func (uc *StockLedgerUseCase) ApplyMovement(ctx context.Context, input MovementInput) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.VariationStockRepository,
		movRepo repository.MovementEventRepository,
	) error {
		var err error
		balance, err = uc.ApplyInTx(stockRepo, movRepo, input)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// ApplyInTx aplica el movimiento usando repositorios ya atados a la transacción
// del caller (aprobación de recepción, envío/recepción de traslado). El caller
// es dueño del Commit/Rollback.
func (uc *StockLedgerUseCase) ApplyInTx(
	stockRepo repository.VariationStockRepository,
	movRepo repository.MovementEventRepository,
	input MovementInput,
) (decimal.Decimal, error) {
	if err := input.validate(); err != nil {
		return decimal.Zero, err
	}
	now := time.Now()
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}

	// Bloquea la fila; si no existe se parte de saldo cero (upsert crea la fila).
	stock, err := stockRepo.GetForUpdate(input.BusinessID, input.ProductVariationID, input.LocationID)
	if err != nil {
		return decimal.Zero, err
	}
	newQty := stock.QtyAvailable.Add(input.Delta)
	if newQty.IsNegative() {
		return decimal.Zero, domain.ErrInsufficientStock
	}
	stock.BusinessID = input.BusinessID
	stock.QtyAvailable = newQty
	stock.UpdatedAt = now
	if err := stockRepo.Upsert(stock); err != nil {
		return decimal.Zero, err
	}

	event := &entity.MovementEvent{
		ID:                 uuid.New().String(),
		BusinessID:         input.BusinessID,
		ProductVariationID: input.ProductVariationID,
		LocationID:         input.LocationID,
		Kind:               input.Kind,
		QuantityDelta:      input.Delta,
		ReferenceType:      input.ReferenceType,
		ReferenceID:        input.ReferenceID,
		OccurredAt:         occurredAt,
		RecordedBy:         input.RecordedBy,
	}
	if err := movRepo.Create(event); err != nil {
		return decimal.Zero, err
	}
	metrics.MovementsApplied.WithLabelValues(input.Kind).Inc()
	return newQty, nil
}
