package serial

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de seriales atados a esa tx: la transición de la unidad y su
// registro de movimiento confirman o revierten juntos.
type TxRunner interface {
	RunSerial(ctx context.Context, fn func(
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error) error
}
