package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
	"github.com/jhoicas/inventario-core/pkg/metrics"
)

// ReconcileUseCase reproduce el historial de movimientos de una pareja
// (variación, ubicación) y compara el saldo calculado contra el almacenado.
// Es de solo lectura y diagnóstico: la varianza se expone, nunca se corrige sola.
type ReconcileUseCase struct {
	stockRepo repository.VariationStockRepository
	movRepo   repository.MovementEventRepository
}

// NewReconcileUseCase construye el caso de uso con repositorios de solo lectura
// (pueden ir atados al pool; no se requiere transacción).
func NewReconcileUseCase(stockRepo repository.VariationStockRepository, movRepo repository.MovementEventRepository) *ReconcileUseCase {
	return &ReconcileUseCase{stockRepo: stockRepo, movRepo: movRepo}
}

// ReconciliationLine es un evento reproducido con el saldo acumulado después de aplicarlo.
type ReconciliationLine struct {
	EventID        string          `json:"event_id"`
	Kind           string          `json:"kind"`
	QuantityDelta  decimal.Decimal `json:"quantity_delta"`
	ReferenceType  string          `json:"reference_type"`
	ReferenceID    string          `json:"reference_id"`
	OccurredAt     time.Time       `json:"occurred_at"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// ReconciliationReport resultado de la conciliación.
type ReconciliationReport struct {
	ProductVariationID string               `json:"product_variation_id"`
	LocationID         string               `json:"location_id"`
	OpeningBalance     decimal.Decimal      `json:"opening_balance"`  // suma de correcciones
	ComputedBalance    decimal.Decimal      `json:"computed_balance"` // saldo reproducido
	StoredBalance      decimal.Decimal      `json:"stored_balance"`   // saldo en variation_stock
	Variance           decimal.Decimal      `json:"variance"`         // stored - computed; 0 es el invariante
	EventCount         int                  `json:"event_count"`
	Lines              []ReconciliationLine `json:"transactions"`
}

// Reconcile reproduce los eventos en orden determinista. El saldo de apertura
// se siembra con la suma de las correcciones (puntos de partida asertados a
// mano); el resto de eventos se acumula en orden de occurred_at con desempate
// por precedencia de tipo. Variance != 0 indica una mutación directa no
// registrada o un bug aritmético, y se deja a investigación del operador.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, businessID, variationID, locationID string) (*ReconciliationReport, error) {
	if businessID == "" || variationID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	_ = ctx

	events, err := uc.movRepo.ListForReplay(businessID, variationID, locationID)
	if err != nil {
		return nil, err
	}
	// Orden determinista aunque el almacenamiento devuelva empates sin resolver.
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].OccurredAt.Equal(events[j].OccurredAt) {
			return events[i].OccurredAt.Before(events[j].OccurredAt)
		}
		return entity.MovementKindPrecedence(events[i].Kind) < entity.MovementKindPrecedence(events[j].Kind)
	})

	opening := decimal.Zero
	for _, ev := range events {
		if ev.Kind == entity.MovementKindCorrection {
			opening = opening.Add(ev.QuantityDelta)
		}
	}

	running := opening
	lines := make([]ReconciliationLine, 0, len(events))
	for _, ev := range events {
		if ev.Kind != entity.MovementKindCorrection {
			running = running.Add(ev.QuantityDelta)
		}
		lines = append(lines, ReconciliationLine{
			EventID:        ev.ID,
			Kind:           ev.Kind,
			QuantityDelta:  ev.QuantityDelta,
			ReferenceType:  ev.ReferenceType,
			ReferenceID:    ev.ReferenceID,
			OccurredAt:     ev.OccurredAt,
			RunningBalance: running,
		})
	}

	stock, err := uc.stockRepo.Get(businessID, variationID, locationID)
	if err != nil {
		return nil, err
	}
	stored := decimal.Zero
	if stock != nil {
		stored = stock.QtyAvailable
	}
	variance := stored.Sub(running)
	if !variance.IsZero() {
		metrics.ReconciliationVariances.Inc()
	}

	return &ReconciliationReport{
		ProductVariationID: variationID,
		LocationID:         locationID,
		OpeningBalance:     opening,
		ComputedBalance:    running,
		StoredBalance:      stored,
		Variance:           variance,
		EventCount:         len(events),
		Lines:              lines,
	}, nil
}
