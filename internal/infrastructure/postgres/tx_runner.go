package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-core/internal/application/ledger"
	"github.com/jhoicas/inventario-core/internal/application/receiving"
	"github.com/jhoicas/inventario-core/internal/application/serial"
	"github.com/jhoicas/inventario-core/internal/application/transfer"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// El runner implementa los puertos transaccionales de todos los casos de uso.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ serial.TxRunner = (*TxRunner)(nil)
var _ receiving.TxRunner = (*TxRunner)(nil)
var _ transfer.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL: la
// transacción es la unidad de cancelación — una transición que falla a mitad
// de camino no deja ni evento de movimiento ni transición de serial parciales.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run inicia una transacción con los repositorios del ledger de stock.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.VariationStockRepository,
	movRepo repository.MovementEventRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewVariationStockRepository(q), NewMovementEventRepository(q))
	})
}

// RunSerial inicia una transacción con los repositorios de seriales.
func (r *TxRunner) RunSerial(ctx context.Context, fn func(
	serialRepo repository.SerialNumberRepository,
	serialMovRepo repository.SerialMovementRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewSerialNumberRepository(q), NewSerialMovementRepository(q))
	})
}

// RunReceiving inicia una transacción con todos los repositorios que la
// aprobación de una recepción necesita.
func (r *TxRunner) RunReceiving(ctx context.Context, fn func(
	stockRepo repository.VariationStockRepository,
	movRepo repository.MovementEventRepository,
	variationRepo repository.ProductVariationRepository,
	receiptRepo repository.PurchaseReceiptRepository,
	serialRepo repository.SerialNumberRepository,
	serialMovRepo repository.SerialMovementRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(
			NewVariationStockRepository(q),
			NewMovementEventRepository(q),
			NewProductVariationRepository(q),
			NewPurchaseReceiptRepository(q),
			NewSerialNumberRepository(q),
			NewSerialMovementRepository(q),
		)
	})
}

// RunTransfer inicia una transacción con los repositorios de una transición de traslado.
func (r *TxRunner) RunTransfer(ctx context.Context, fn func(
	stockRepo repository.VariationStockRepository,
	movRepo repository.MovementEventRepository,
	transferRepo repository.TransferRepository,
	serialRepo repository.SerialNumberRepository,
	serialMovRepo repository.SerialMovementRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(
			NewVariationStockRepository(q),
			NewMovementEventRepository(q),
			NewTransferRepository(q),
			NewSerialNumberRepository(q),
			NewSerialMovementRepository(q),
		)
	})
}
