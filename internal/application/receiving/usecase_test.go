package receiving_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-core/internal/application/ledger"
	"github.com/jhoicas/inventario-core/internal/application/receiving"
	"github.com/jhoicas/inventario-core/internal/application/serial"
	appsod "github.com/jhoicas/inventario-core/internal/application/sod"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	sodrules "github.com/jhoicas/inventario-core/internal/domain/sod"
	"github.com/jhoicas/inventario-core/internal/testsupport/memrepo"
)

const (
	bizID      = "00000000-0000-0000-0000-0000000000b1"
	varID      = "00000000-0000-0000-0000-0000000000v1"
	locID      = "00000000-0000-0000-0000-0000000000l1"
	poID       = "00000000-0000-0000-0000-0000000000p1"
	uReceiver  = "user-receiver"
	uApprover  = "user-approver"
	uRequester = "user-requester"
)

type fixture struct {
	store *memrepo.Store
	uc    *receiving.ReceiptUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memrepo.NewStore()
	ledgerUC := ledger.NewStockLedgerUseCase(store)
	serialUC := serial.NewLifecycleUseCase(store)
	sodUC := appsod.NewValidationUseCase(store.SOD)
	uc := receiving.NewReceiptUseCase(
		store, ledgerUC, serialUC, sodUC,
		store.Locations, store.Purchases, store.Variations, store.Receipts,
	)

	store.Locations.Create(&entity.Location{ID: locID, BusinessID: bizID, Name: "Bodega Central", IsActive: true})
	store.Variations.Create(&entity.ProductVariation{
		ID: varID, BusinessID: bizID, SKU: "SKU-001", Name: "Teléfono X 128GB",
		PurchaseCost: decimal.NewFromInt(90),
	})
	return &fixture{store: store, uc: uc}
}

func createInput(items ...receiving.ReceiptItemInput) receiving.CreateReceiptInput {
	return receiving.CreateReceiptInput{
		BusinessID: bizID,
		LocationID: locID,
		ReceivedBy: uReceiver,
		Items:      items,
	}
}

func item(qty int64, serials ...string) receiving.ReceiptItemInput {
	return receiving.ReceiptItemInput{
		ProductVariationID: varID,
		QuantityReceived:   decimal.NewFromInt(qty),
		UnitCost:           decimal.NewFromInt(120),
		SerialNumbers:      serials,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Fase 1: creación
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateReceipt_QuedaPendienteSinTocarStock(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.uc.CreateReceipt(context.Background(), createInput(item(5)))
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptStatusPending, receipt.Status)
	assert.Equal(t, "GRN-000001", receipt.ReceiptNumber)

	// La creación no acredita stock ni emite eventos.
	stock, _ := f.store.Stock.Get(bizID, varID, locID)
	assert.True(t, stock.QtyAvailable.IsZero())
	assert.Empty(t, f.store.Movements.Events)
}

func TestCreateReceipt_NumeracionMonotonaPorEmpresa(t *testing.T) {
	f := newFixture(t)

	r1, err := f.uc.CreateReceipt(context.Background(), createInput(item(1)))
	require.NoError(t, err)
	r2, err := f.uc.CreateReceipt(context.Background(), createInput(item(1)))
	require.NoError(t, err)

	assert.Equal(t, "GRN-000001", r1.ReceiptNumber)
	assert.Equal(t, "GRN-000002", r2.ReceiptNumber)
}

func TestCreateReceipt_ReintentaNumeroEnColision(t *testing.T) {
	f := newFixture(t)

	// Simula una creación concurrente: el primer intento pierde la carrera por
	// GRN-000001 contra otra recepción que se cuela justo antes del insert.
	f.store.Receipts.CreateHook = func(receipt *entity.PurchaseReceipt) error {
		f.store.Receipts.CreateHook = nil
		rival := &entity.PurchaseReceipt{
			ID:            "recepcion-rival",
			BusinessID:    bizID,
			ReceiptNumber: receipt.ReceiptNumber,
			Status:        entity.ReceiptStatusPending,
		}
		require.NoError(t, f.store.Receipts.Create(rival))
		return domain.ErrDuplicate
	}

	receipt, err := f.uc.CreateReceipt(context.Background(), createInput(item(1)))
	require.NoError(t, err)
	assert.Equal(t, "GRN-000002", receipt.ReceiptNumber, "el reintento recalcula desde el último sufijo")
}

func TestCreateReceipt_AgotaReintentosDeNumeracion(t *testing.T) {
	f := newFixture(t)

	attempts := 0
	f.store.Receipts.CreateHook = func(*entity.PurchaseReceipt) error {
		attempts++
		return domain.ErrDuplicate
	}

	_, err := f.uc.CreateReceipt(context.Background(), createInput(item(1)))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, 3, attempts)

	// Tras agotar los reintentos no queda ninguna cabecera persistida.
	list, err := f.uc.ListReceipts(context.Background(), bizID, "", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateReceipt_SerialesDebenCuadrarConLaCantidad(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateReceipt(context.Background(), createInput(item(3, "SN-1", "SN-2")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "2 seriales para cantidad 3")

	_, err = f.uc.CreateReceipt(context.Background(), createInput(item(2, "SN-1", "??")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "serial con formato inválido")

	// Sin seriales es válido: el producto puede no estar serializado.
	_, err = f.uc.CreateReceipt(context.Background(), createInput(item(3)))
	assert.NoError(t, err)
}

func TestCreateReceipt_ValidaUbicacionYOrden(t *testing.T) {
	f := newFixture(t)

	in := createInput(item(1))
	in.LocationID = "no-existe"
	_, err := f.uc.CreateReceipt(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Ubicación de otra empresa.
	f.store.Locations.Create(&entity.Location{ID: "loc-ajena", BusinessID: "otra-empresa", Name: "Ajena"})
	in = createInput(item(1))
	in.LocationID = "loc-ajena"
	_, err = f.uc.CreateReceipt(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	in = createInput(item(1))
	in.PurchaseID = "po-inexistente"
	_, err = f.uc.CreateReceipt(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateReceipt_HeredaProveedorDeLaOrden(t *testing.T) {
	f := newFixture(t)
	f.store.Purchases.Add(entity.PurchaseOrder{
		ID: poID, BusinessID: bizID, SupplierID: "prov-1", RequestedBy: uRequester,
	})

	in := createInput(item(1))
	in.PurchaseID = poID
	receipt, err := f.uc.CreateReceipt(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "prov-1", receipt.SupplierID)
}

// ─────────────────────────────────────────────────────────────────────────────
// Fase 2: aprobación
// ─────────────────────────────────────────────────────────────────────────────

func TestApproveReceipt_AcreditaStockYMaterializaSeriales(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.uc.CreateReceipt(context.Background(), createInput(item(2, "SN-1", "SN-2")))
	require.NoError(t, err)

	approved, err := f.uc.ApproveReceipt(context.Background(), bizID, receipt.ID, uApprover, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptStatusApproved, approved.Status)
	assert.Equal(t, uApprover, approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)

	// Stock acreditado con evento de recepción.
	stock, _ := f.store.Stock.Get(bizID, varID, locID)
	assert.True(t, stock.QtyAvailable.Equal(decimal.NewFromInt(2)))
	require.Len(t, f.store.Movements.Events, 1)
	assert.Equal(t, entity.MovementKindPurchaseReceipt, f.store.Movements.Events[0].Kind)
	assert.Equal(t, receipt.ID, f.store.Movements.Events[0].ReferenceID)

	// Seriales escalonados materializados en la ubicación de la recepción.
	for _, sn := range []string{"SN-1", "SN-2"} {
		s, err := f.store.Serials.GetBySerial(bizID, sn)
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, entity.SerialStatusInStock, s.Status)
		assert.Equal(t, locID, s.CurrentLocationID)
		assert.Equal(t, receipt.ID, s.PurchaseReceiptID)
	}

	// Política last-cost: el costo de la variación queda en el último unitario.
	variation, _ := f.store.Variations.GetByID(varID)
	assert.True(t, variation.PurchaseCost.Equal(decimal.NewFromInt(120)))
}

func TestApproveReceipt_ReaprobarFalla(t *testing.T) {
	f := newFixture(t)
	receipt, err := f.uc.CreateReceipt(context.Background(), createInput(item(4)))
	require.NoError(t, err)

	_, err = f.uc.ApproveReceipt(context.Background(), bizID, receipt.ID, uApprover, nil)
	require.NoError(t, err)

	_, err = f.uc.ApproveReceipt(context.Background(), bizID, receipt.ID, uApprover, nil)
	assert.ErrorIs(t, err, domain.ErrAlreadyApproved)

	// La segunda aprobación no duplicó el stock.
	stock, _ := f.store.Stock.Get(bizID, varID, locID)
	assert.True(t, stock.QtyAvailable.Equal(decimal.NewFromInt(4)))
	assert.Len(t, f.store.Movements.Events, 1)
}

func TestApproveReceipt_ReceptorNoPuedeAprobar(t *testing.T) {
	f := newFixture(t)
	receipt, err := f.uc.CreateReceipt(context.Background(), createInput(item(1)))
	require.NoError(t, err)

	_, err = f.uc.ApproveReceipt(context.Background(), bizID, receipt.ID, uReceiver, nil)
	var denied *sodrules.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "SOD_RECEIVER_CANNOT_APPROVE", denied.Result.Code)

	// La denegación deja la recepción en pending y el stock intacto.
	stock, _ := f.store.Stock.Get(bizID, varID, locID)
	assert.True(t, stock.QtyAvailable.IsZero())
	current, err := f.uc.GetReceipt(context.Background(), bizID, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptStatusPending, current.Status)
}

func TestApproveReceipt_SolicitanteDeLaOrdenNoPuedeAprobar(t *testing.T) {
	f := newFixture(t)
	f.store.Purchases.Add(entity.PurchaseOrder{
		ID: poID, BusinessID: bizID, RequestedBy: uRequester,
	})

	in := createInput(item(1))
	in.PurchaseID = poID
	receipt, err := f.uc.CreateReceipt(context.Background(), in)
	require.NoError(t, err)

	_, err = f.uc.ApproveReceipt(context.Background(), bizID, receipt.ID, uRequester, nil)
	var denied *sodrules.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "SOD_REQUESTER_CANNOT_APPROVE", denied.Result.Code)
}

func TestApproveReceipt_FlagORolExentoPermiten(t *testing.T) {
	f := newFixture(t)

	// Flag de configuración: el receptor puede aprobar.
	settings := entity.StrictSODSettings(bizID)
	settings.AllowReceiverApprove = true
	require.NoError(t, f.store.SOD.Upsert(settings))

	receipt, err := f.uc.CreateReceipt(context.Background(), createInput(item(1)))
	require.NoError(t, err)
	_, err = f.uc.ApproveReceipt(context.Background(), bizID, receipt.ID, uReceiver, nil)
	assert.NoError(t, err)

	// Rol exento: salta todas las reglas aunque el flag esté apagado.
	settings = entity.StrictSODSettings(bizID)
	settings.ExemptRoles = []string{"owner"}
	require.NoError(t, f.store.SOD.Upsert(settings))

	receipt, err = f.uc.CreateReceipt(context.Background(), createInput(item(1)))
	require.NoError(t, err)
	_, err = f.uc.ApproveReceipt(context.Background(), bizID, receipt.ID, uReceiver, []string{"owner"})
	assert.NoError(t, err)
}

func TestApproveReceipt_EmpresaEquivocada(t *testing.T) {
	f := newFixture(t)
	receipt, err := f.uc.CreateReceipt(context.Background(), createInput(item(1)))
	require.NoError(t, err)

	_, err = f.uc.ApproveReceipt(context.Background(), "otra-empresa", receipt.ID, uApprover, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ─────────────────────────────────────────────────────────────────────────────
// Actores para el pre-chequeo de segregación
// ─────────────────────────────────────────────────────────────────────────────

func TestActorRef_IncluyeSolicitanteDeLaOrden(t *testing.T) {
	f := newFixture(t)
	f.store.Purchases.Add(entity.PurchaseOrder{ID: poID, BusinessID: bizID, RequestedBy: uRequester})

	in := createInput(item(1))
	in.PurchaseID = poID
	receipt, err := f.uc.CreateReceipt(context.Background(), in)
	require.NoError(t, err)

	ref, err := f.uc.ActorRef(context.Background(), bizID, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, uReceiver, ref.ReceivedBy)
	assert.Equal(t, uRequester, ref.RequestedBy)
}
