package transfer

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// TxRunner ejecuta una función con los repositorios que una transición de
// traslado necesita, atados a una misma transacción: cabecera, saldos, eventos
// de movimiento y seriales confirman o revierten juntos.
type TxRunner interface {
	RunTransfer(ctx context.Context, fn func(
		stockRepo repository.VariationStockRepository,
		movRepo repository.MovementEventRepository,
		transferRepo repository.TransferRepository,
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error) error
}
