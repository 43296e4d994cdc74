package receiving

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// TxRunner ejecuta una función con todos los repositorios que la aprobación de
// una recepción necesita, atados a una misma transacción: saldo, eventos de
// movimiento, costo de la variación, cabecera/ítems de la recepción y seriales
// confirman o revierten juntos.
type TxRunner interface {
	RunReceiving(ctx context.Context, fn func(
		stockRepo repository.VariationStockRepository,
		movRepo repository.MovementEventRepository,
		variationRepo repository.ProductVariationRepository,
		receiptRepo repository.PurchaseReceiptRepository,
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error) error
}
