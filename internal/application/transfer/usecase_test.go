package transfer_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-core/internal/application/ledger"
	"github.com/jhoicas/inventario-core/internal/application/serial"
	appsod "github.com/jhoicas/inventario-core/internal/application/sod"
	"github.com/jhoicas/inventario-core/internal/application/transfer"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	sodrules "github.com/jhoicas/inventario-core/internal/domain/sod"
	"github.com/jhoicas/inventario-core/internal/testsupport/memrepo"
)

const (
	bizID = "00000000-0000-0000-0000-0000000000b1"
	varID = "00000000-0000-0000-0000-0000000000v1"
	locA  = "00000000-0000-0000-0000-00000000loca"
	locB  = "00000000-0000-0000-0000-00000000locb"

	uCreator  = "user-creator"
	uChecker  = "user-checker"
	uSender   = "user-sender"
	uReceiver = "user-receiver"
	uCloser   = "user-closer"
)

type fixture struct {
	store    *memrepo.Store
	uc       *transfer.WorkflowUseCase
	ledgerUC *ledger.StockLedgerUseCase
	serialUC *serial.LifecycleUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memrepo.NewStore()
	ledgerUC := ledger.NewStockLedgerUseCase(store)
	serialUC := serial.NewLifecycleUseCase(store)
	sodUC := appsod.NewValidationUseCase(store.SOD)
	uc := transfer.NewWorkflowUseCase(store, ledgerUC, serialUC, sodUC, store.Locations, store.Transfers)

	store.Locations.Create(&entity.Location{ID: locA, BusinessID: bizID, Name: "Bodega Central", IsActive: true})
	store.Locations.Create(&entity.Location{ID: locB, BusinessID: bizID, Name: "Sucursal Norte", IsActive: true})
	return &fixture{store: store, uc: uc, ledgerUC: ledgerUC, serialUC: serialUC}
}

// seedStock acredita saldo inicial en el origen vía corrección.
func (f *fixture) seedStock(t *testing.T, qty int64) {
	t.Helper()
	_, err := f.ledgerUC.ApplyMovement(context.Background(), ledger.MovementInput{
		BusinessID:         bizID,
		ProductVariationID: varID,
		LocationID:         locA,
		Delta:              decimal.NewFromInt(qty),
		Kind:               entity.MovementKindCorrection,
		RecordedBy:         uCreator,
	})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, locationID string) decimal.Decimal {
	t.Helper()
	stock, err := f.store.Stock.Get(bizID, varID, locationID)
	require.NoError(t, err)
	return stock.QtyAvailable
}

func createInput(qty int64, serials ...string) transfer.CreateTransferInput {
	return transfer.CreateTransferInput{
		BusinessID:     bizID,
		FromLocationID: locA,
		ToLocationID:   locB,
		CreatedBy:      uCreator,
		Items: []transfer.TransferItemInput{{
			ProductVariationID: varID,
			Quantity:           decimal.NewFromInt(qty),
			SerialNumbers:      serials,
		}},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Flujo completo
// ─────────────────────────────────────────────────────────────────────────────

func TestWorkflow_FlujoCompletoConservaElStockTotal(t *testing.T) {
	f := newFixture(t)
	f.seedStock(t, 100)
	ctx := context.Background()

	tr, err := f.uc.CreateTransfer(ctx, createInput(5))
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusDraft, tr.Status)

	// draft y checked no mueven stock.
	_, err = f.uc.CheckTransfer(ctx, bizID, tr.ID, uChecker, nil)
	require.NoError(t, err)
	assert.True(t, f.balance(t, locA).Equal(decimal.NewFromInt(100)))

	// send descuenta del origen; el destino sigue en cero.
	_, err = f.uc.SendTransfer(ctx, bizID, tr.ID, uSender, nil)
	require.NoError(t, err)
	assert.True(t, f.balance(t, locA).Equal(decimal.NewFromInt(95)))
	assert.True(t, f.balance(t, locB).IsZero())

	// receive acredita en el destino.
	_, err = f.uc.ReceiveTransfer(ctx, bizID, tr.ID, uReceiver, nil, nil)
	require.NoError(t, err)
	assert.True(t, f.balance(t, locA).Equal(decimal.NewFromInt(95)))
	assert.True(t, f.balance(t, locB).Equal(decimal.NewFromInt(5)))

	final, err := f.uc.CompleteTransfer(ctx, bizID, tr.ID, uCloser, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCompleted, final.Status)
	assert.Equal(t, uChecker, final.CheckedBy)
	assert.Equal(t, uSender, final.SentBy)
	assert.Equal(t, uReceiver, final.ReceivedBy)
	assert.Equal(t, uCloser, final.CompletedBy)

	// Conservación: lo que salió del origen entró al destino, ni más ni menos.
	total := f.balance(t, locA).Add(f.balance(t, locB))
	assert.True(t, total.Equal(decimal.NewFromInt(100)))
}

func TestWorkflow_TransicionesFueraDeOrdenFallan(t *testing.T) {
	f := newFixture(t)
	f.seedStock(t, 10)
	ctx := context.Background()

	tr, err := f.uc.CreateTransfer(ctx, createInput(2))
	require.NoError(t, err)

	// Enviar sin verificar, recibir sin enviar, completar sin recibir.
	_, err = f.uc.SendTransfer(ctx, bizID, tr.ID, uSender, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	_, err = f.uc.ReceiveTransfer(ctx, bizID, tr.ID, uReceiver, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	_, err = f.uc.CompleteTransfer(ctx, bizID, tr.ID, uCloser, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestWorkflow_RecibirDosVecesNoDuplicaStock(t *testing.T) {
	f := newFixture(t)
	f.seedStock(t, 10)
	ctx := context.Background()

	tr, err := f.uc.CreateTransfer(ctx, createInput(3))
	require.NoError(t, err)
	_, err = f.uc.CheckTransfer(ctx, bizID, tr.ID, uChecker, nil)
	require.NoError(t, err)
	_, err = f.uc.SendTransfer(ctx, bizID, tr.ID, uSender, nil)
	require.NoError(t, err)
	_, err = f.uc.ReceiveTransfer(ctx, bizID, tr.ID, uReceiver, nil, nil)
	require.NoError(t, err)

	_, err = f.uc.ReceiveTransfer(ctx, bizID, tr.ID, uReceiver, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.True(t, f.balance(t, locB).Equal(decimal.NewFromInt(3)))
}

func TestSendTransfer_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.seedStock(t, 2)
	ctx := context.Background()

	tr, err := f.uc.CreateTransfer(ctx, createInput(5))
	require.NoError(t, err)
	_, err = f.uc.CheckTransfer(ctx, bizID, tr.ID, uChecker, nil)
	require.NoError(t, err)

	_, err = f.uc.SendTransfer(ctx, bizID, tr.ID, uSender, nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// ─────────────────────────────────────────────────────────────────────────────
// Validación de entrada
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateTransfer_ValidaEntrada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Origen y destino iguales.
	in := createInput(1)
	in.ToLocationID = locA
	_, err := f.uc.CreateTransfer(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Cantidad no positiva.
	_, err = f.uc.CreateTransfer(ctx, createInput(0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Seriales que no cuadran con la cantidad.
	_, err = f.uc.CreateTransfer(ctx, createInput(2, "SN-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Ubicación inexistente.
	in = createInput(1)
	in.ToLocationID = "no-existe"
	_, err = f.uc.CreateTransfer(ctx, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Segregación de funciones
// ─────────────────────────────────────────────────────────────────────────────

func TestWorkflow_PoliticaDeniegaActoresRepetidos(t *testing.T) {
	f := newFixture(t)
	f.seedStock(t, 10)
	ctx := context.Background()

	tr, err := f.uc.CreateTransfer(ctx, createInput(1))
	require.NoError(t, err)

	// El creador no puede verificar su propio traslado.
	_, err = f.uc.CheckTransfer(ctx, bizID, tr.ID, uCreator, nil)
	var denied *sodrules.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "SOD_CREATOR_CANNOT_CHECK", denied.Result.Code)

	_, err = f.uc.CheckTransfer(ctx, bizID, tr.ID, uChecker, nil)
	require.NoError(t, err)

	// El verificador no puede enviar.
	_, err = f.uc.SendTransfer(ctx, bizID, tr.ID, uChecker, nil)
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "SOD_CHECKER_CANNOT_SEND", denied.Result.Code)

	_, err = f.uc.SendTransfer(ctx, bizID, tr.ID, uSender, nil)
	require.NoError(t, err)

	// El emisor no puede recibir.
	_, err = f.uc.ReceiveTransfer(ctx, bizID, tr.ID, uSender, nil, nil)
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "SOD_SENDER_CANNOT_RECEIVE", denied.Result.Code)

	_, err = f.uc.ReceiveTransfer(ctx, bizID, tr.ID, uReceiver, nil, nil)
	require.NoError(t, err)

	// El receptor no puede completar.
	_, err = f.uc.CompleteTransfer(ctx, bizID, tr.ID, uReceiver, nil)
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "SOD_RECEIVER_CANNOT_COMPLETE", denied.Result.Code)
}

func TestWorkflow_FlagPermiteAlCreadorVerificar(t *testing.T) {
	f := newFixture(t)
	f.seedStock(t, 10)
	ctx := context.Background()

	settings := entity.StrictSODSettings(bizID)
	settings.AllowCreatorCheck = true
	require.NoError(t, f.store.SOD.Upsert(settings))

	tr, err := f.uc.CreateTransfer(ctx, createInput(1))
	require.NoError(t, err)
	checked, err := f.uc.CheckTransfer(ctx, bizID, tr.ID, uCreator, nil)
	require.NoError(t, err)
	assert.Equal(t, uCreator, checked.CheckedBy)
}

func TestWorkflow_DenegacionNoMutaEstado(t *testing.T) {
	f := newFixture(t)
	f.seedStock(t, 10)
	ctx := context.Background()

	tr, err := f.uc.CreateTransfer(ctx, createInput(1))
	require.NoError(t, err)
	_, err = f.uc.CheckTransfer(ctx, bizID, tr.ID, uCreator, nil)
	require.Error(t, err)

	current, err := f.uc.GetTransfer(ctx, bizID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusDraft, current.Status)
	assert.Empty(t, current.CheckedBy)
}

// ─────────────────────────────────────────────────────────────────────────────
// Seriales en el traslado
// ─────────────────────────────────────────────────────────────────────────────

func (f *fixture) seedSerial(t *testing.T, sn string) {
	t.Helper()
	_, err := f.serialUC.CreateSerial(context.Background(), serial.CreateSerialInput{
		BusinessID:         bizID,
		ProductVariationID: varID,
		SerialNumber:       sn,
		LocationID:         locA,
		CreatedBy:          uCreator,
	})
	require.NoError(t, err)
}

func TestWorkflow_SerialesViajanConElTraslado(t *testing.T) {
	f := newFixture(t)
	f.seedStock(t, 10)
	f.seedSerial(t, "SN-1")
	f.seedSerial(t, "SN-2")
	ctx := context.Background()

	tr, err := f.uc.CreateTransfer(ctx, createInput(2, "SN-1", "SN-2"))
	require.NoError(t, err)
	_, err = f.uc.CheckTransfer(ctx, bizID, tr.ID, uChecker, nil)
	require.NoError(t, err)
	_, err = f.uc.SendTransfer(ctx, bizID, tr.ID, uSender, nil)
	require.NoError(t, err)

	// En tránsito: estado in_transit, ubicación todavía el origen.
	s, _ := f.store.Serials.GetBySerial(bizID, "SN-1")
	assert.Equal(t, entity.SerialStatusInTransit, s.Status)
	assert.Equal(t, locA, s.CurrentLocationID)

	_, err = f.uc.ReceiveTransfer(ctx, bizID, tr.ID, uReceiver, nil, []string{"SN-1", "SN-2"})
	require.NoError(t, err)

	for _, sn := range []string{"SN-1", "SN-2"} {
		s, _ := f.store.Serials.GetBySerial(bizID, sn)
		assert.Equal(t, entity.SerialStatusInStock, s.Status)
		assert.Equal(t, locB, s.CurrentLocationID)
	}
}

func TestReceiveTransfer_ConjuntoDesparejoBloqueaLaRecepcion(t *testing.T) {
	f := newFixture(t)
	f.seedStock(t, 10)
	f.seedSerial(t, "SN-1")
	f.seedSerial(t, "SN-2")
	ctx := context.Background()

	tr, err := f.uc.CreateTransfer(ctx, createInput(2, "SN-1", "SN-2"))
	require.NoError(t, err)
	_, err = f.uc.CheckTransfer(ctx, bizID, tr.ID, uChecker, nil)
	require.NoError(t, err)
	_, err = f.uc.SendTransfer(ctx, bizID, tr.ID, uSender, nil)
	require.NoError(t, err)

	// Falta SN-2 y sobra SN-X: la recepción entera se rechaza con los conjuntos.
	_, err = f.uc.ReceiveTransfer(ctx, bizID, tr.ID, uReceiver, nil, []string{"SN-1", "SN-X"})
	require.ErrorIs(t, err, domain.ErrSerialMismatch)
	var mismatch *serial.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []string{"SN-2"}, mismatch.Validation.Missing)
	assert.Equal(t, []string{"SN-X"}, mismatch.Validation.Extra)

	// Nada se acreditó en el destino.
	assert.True(t, f.balance(t, locB).IsZero())
	current, _ := f.uc.GetTransfer(ctx, bizID, tr.ID)
	assert.Equal(t, entity.TransferStatusSent, current.Status)
}

// ─────────────────────────────────────────────────────────────────────────────
// Cancelación
// ─────────────────────────────────────────────────────────────────────────────

func TestCancelTransfer_EnBorradorNoRevierteNada(t *testing.T) {
	f := newFixture(t)
	f.seedStock(t, 10)
	ctx := context.Background()

	tr, err := f.uc.CreateTransfer(ctx, createInput(2))
	require.NoError(t, err)
	cancelled, err := f.uc.CancelTransfer(ctx, bizID, tr.ID, uCreator)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, cancelled.Status)
	assert.True(t, f.balance(t, locA).Equal(decimal.NewFromInt(10)))
}

func TestCancelTransfer_DespuesDeEnviarRestauraElOrigen(t *testing.T) {
	f := newFixture(t)
	f.seedStock(t, 10)
	f.seedSerial(t, "SN-1")
	ctx := context.Background()

	tr, err := f.uc.CreateTransfer(ctx, createInput(1, "SN-1"))
	require.NoError(t, err)
	_, err = f.uc.CheckTransfer(ctx, bizID, tr.ID, uChecker, nil)
	require.NoError(t, err)
	_, err = f.uc.SendTransfer(ctx, bizID, tr.ID, uSender, nil)
	require.NoError(t, err)
	require.True(t, f.balance(t, locA).Equal(decimal.NewFromInt(9)))

	_, err = f.uc.CancelTransfer(ctx, bizID, tr.ID, uCreator)
	require.NoError(t, err)

	// El stock vuelve al origen con un evento de reversa, no borrando el anterior.
	assert.True(t, f.balance(t, locA).Equal(decimal.NewFromInt(10)))
	var reversal *entity.MovementEvent
	for _, e := range f.store.Movements.Events {
		if e.ReferenceType == "transfer_cancel" {
			reversal = e
		}
	}
	require.NotNil(t, reversal)
	assert.True(t, reversal.QuantityDelta.Equal(decimal.NewFromInt(1)))

	// El serial regresa a in_stock en el origen.
	s, _ := f.store.Serials.GetBySerial(bizID, "SN-1")
	assert.Equal(t, entity.SerialStatusInStock, s.Status)
	assert.Equal(t, locA, s.CurrentLocationID)
}

func TestCancelTransfer_DespuesDeRecibirFalla(t *testing.T) {
	f := newFixture(t)
	f.seedStock(t, 10)
	ctx := context.Background()

	tr, err := f.uc.CreateTransfer(ctx, createInput(1))
	require.NoError(t, err)
	_, err = f.uc.CheckTransfer(ctx, bizID, tr.ID, uChecker, nil)
	require.NoError(t, err)
	_, err = f.uc.SendTransfer(ctx, bizID, tr.ID, uSender, nil)
	require.NoError(t, err)
	_, err = f.uc.ReceiveTransfer(ctx, bizID, tr.ID, uReceiver, nil, nil)
	require.NoError(t, err)

	_, err = f.uc.CancelTransfer(ctx, bizID, tr.ID, uCreator)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}
