package ledger

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la actualización del saldo y la
// inserción del evento de movimiento confirmen o reviertan juntas.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.VariationStockRepository,
		movRepo repository.MovementEventRepository,
	) error) error
}
