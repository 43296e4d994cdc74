package serial_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-core/internal/application/serial"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
	"github.com/jhoicas/inventario-core/internal/testsupport/memrepo"
)

const (
	bizID  = "00000000-0000-0000-0000-0000000000b1"
	varID  = "00000000-0000-0000-0000-0000000000v1"
	locA   = "00000000-0000-0000-0000-00000000loca"
	locB   = "00000000-0000-0000-0000-00000000locb"
	userID = "00000000-0000-0000-0000-0000000000u1"
)

func createInput(serialNumber string) serial.CreateSerialInput {
	return serial.CreateSerialInput{
		BusinessID:         bizID,
		ProductVariationID: varID,
		SerialNumber:       serialNumber,
		LocationID:         locA,
		PurchaseCost:       decimal.NewFromInt(100),
		CreatedBy:          userID,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Registro
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateSerial_RegistraEnInStockConMovimiento(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)

	s, err := uc.CreateSerial(context.Background(), createInput("SN-001"))
	require.NoError(t, err)
	assert.Equal(t, entity.SerialStatusInStock, s.Status)
	assert.Equal(t, entity.SerialConditionNew, s.Condition)
	assert.Equal(t, locA, s.CurrentLocationID)

	require.Len(t, store.SerialMovs.Movements, 1)
	assert.Equal(t, entity.SerialMovePurchase, store.SerialMovs.Movements[0].MovementType)
	assert.Equal(t, locA, store.SerialMovs.Movements[0].ToLocationID)
}

func TestCreateSerial_RechazaDuplicadoPorEmpresa(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)

	_, err := uc.CreateSerial(context.Background(), createInput("SN-001"))
	require.NoError(t, err)

	_, err = uc.CreateSerial(context.Background(), createInput("SN-001"))
	assert.ErrorIs(t, err, domain.ErrDuplicateSerial)

	// El mismo serial en otra empresa es válido.
	other := createInput("SN-001")
	other.BusinessID = "00000000-0000-0000-0000-0000000000b2"
	_, err = uc.CreateSerial(context.Background(), other)
	assert.NoError(t, err)
}

func TestCreateSerial_ValidaFormato(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)

	for _, bad := range []string{"", "ab", "SN 001", "SN#01", strings.Repeat("X", 192)} {
		_, err := uc.CreateSerial(context.Background(), createInput(bad))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "serial %q debe rechazarse", bad)
	}
	// Guion y guion bajo sí son válidos.
	_, err := uc.CreateSerial(context.Background(), createInput("SN_001-A"))
	assert.NoError(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Venta y devolución
// ─────────────────────────────────────────────────────────────────────────────

func TestMarkSold_TransicionYGarantia(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)
	_, err := uc.CreateSerial(context.Background(), createInput("SN-001"))
	require.NoError(t, err)

	s, err := uc.MarkSold(context.Background(), serial.SellInput{
		BusinessID:     bizID,
		SerialNumber:   "SN-001",
		SoldTo:         "cliente-1",
		WarrantyMonths: 12,
		UserID:         userID,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SerialStatusSold, s.Status)
	require.NotNil(t, s.SoldAt)
	require.NotNil(t, s.WarrantyEndsAt)
	assert.Equal(t, s.SoldAt.AddDate(0, 12, 0), *s.WarrantyEndsAt)

	// Vender dos veces la misma unidad es una transición inválida.
	_, err = uc.MarkSold(context.Background(), serial.SellInput{
		BusinessID: bizID, SerialNumber: "SN-001", UserID: userID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestMarkSold_SinGarantiaNoCalculaFecha(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)
	_, err := uc.CreateSerial(context.Background(), createInput("SN-001"))
	require.NoError(t, err)

	s, err := uc.MarkSold(context.Background(), serial.SellInput{
		BusinessID: bizID, SerialNumber: "SN-001", UserID: userID,
	})
	require.NoError(t, err)
	assert.Nil(t, s.WarrantyEndsAt)
}

func TestMarkReturned_SoloDesdeSold(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)
	_, err := uc.CreateSerial(context.Background(), createInput("SN-001"))
	require.NoError(t, err)

	// in_stock -> returned no es válido.
	_, err = uc.MarkReturned(context.Background(), serial.ReturnInput{
		BusinessID: bizID, SerialNumber: "SN-001", UserID: userID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = uc.MarkSold(context.Background(), serial.SellInput{
		BusinessID: bizID, SerialNumber: "SN-001", UserID: userID,
	})
	require.NoError(t, err)

	s, err := uc.MarkReturned(context.Background(), serial.ReturnInput{
		BusinessID:   bizID,
		SerialNumber: "SN-001",
		Condition:    entity.SerialConditionUsed,
		UserID:       userID,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SerialStatusReturned, s.Status)
	assert.Equal(t, entity.SerialConditionUsed, s.Condition)
}

func TestMarkWarrantyReturn_SoloDesdeSold(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)
	_, err := uc.CreateSerial(context.Background(), createInput("SN-001"))
	require.NoError(t, err)

	// in_stock -> warranty_return no es válido.
	_, err = uc.MarkWarrantyReturn(context.Background(), serial.WarrantyReturnInput{
		BusinessID: bizID, SerialNumber: "SN-001", UserID: userID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = uc.MarkSold(context.Background(), serial.SellInput{
		BusinessID: bizID, SerialNumber: "SN-001", UserID: userID,
	})
	require.NoError(t, err)

	s, err := uc.MarkWarrantyReturn(context.Background(), serial.WarrantyReturnInput{
		BusinessID:   bizID,
		SerialNumber: "SN-001",
		ReferenceID:  "rma-1",
		UserID:       userID,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SerialStatusWarrantyReturn, s.Status)
	assert.Equal(t, entity.SerialConditionDefective, s.Condition)

	// purchase + sale + supplier_return: una transición, un movimiento.
	require.Len(t, store.SerialMovs.Movements, 3)
	last := store.SerialMovs.Movements[2]
	assert.Equal(t, entity.SerialMoveSupplierReturn, last.MovementType)
	assert.Equal(t, "warranty_return", last.ReferenceType)
	assert.Equal(t, "rma-1", last.ReferenceID)

	// warranty_return es terminal: no se puede devolver ni vender de nuevo.
	_, err = uc.MarkReturned(context.Background(), serial.ReturnInput{
		BusinessID: bizID, SerialNumber: "SN-001", UserID: userID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestMarkDamaged_DesdeInStock(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)
	_, err := uc.CreateSerial(context.Background(), createInput("SN-001"))
	require.NoError(t, err)

	s, err := uc.MarkDamaged(context.Background(), bizID, "SN-001", "pantalla rota", userID)
	require.NoError(t, err)
	assert.Equal(t, entity.SerialStatusDamaged, s.Status)
	assert.Equal(t, entity.SerialConditionDamaged, s.Condition)
}

func TestLifecycle_SerialInexistente(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)

	_, err := uc.MarkSold(context.Background(), serial.SellInput{
		BusinessID: bizID, SerialNumber: "NO-EXISTE", UserID: userID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Tránsito entre ubicaciones
// ─────────────────────────────────────────────────────────────────────────────

func TestTransito_ConservaUbicacionHastaCompletar(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)
	_, err := uc.CreateSerial(context.Background(), createInput("SN-001"))
	require.NoError(t, err)

	err = store.RunSerial(context.Background(), func(
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error {
		return uc.MarkInTransitInTx(serialRepo, serialMovRepo, bizID, "SN-001", locA, "tr-1", userID)
	})
	require.NoError(t, err)

	s, err := store.Serials.GetBySerial(bizID, "SN-001")
	require.NoError(t, err)
	assert.Equal(t, entity.SerialStatusInTransit, s.Status)
	assert.Equal(t, locA, s.CurrentLocationID, "en tránsito conserva la ubicación de origen")

	err = store.RunSerial(context.Background(), func(
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error {
		return uc.CompleteTransferInTx(serialRepo, serialMovRepo, bizID, "SN-001", locB, "tr-1", userID)
	})
	require.NoError(t, err)

	s, err = store.Serials.GetBySerial(bizID, "SN-001")
	require.NoError(t, err)
	assert.Equal(t, entity.SerialStatusInStock, s.Status)
	assert.Equal(t, locB, s.CurrentLocationID)
}

func TestMarkInTransit_RechazaUbicacionEquivocada(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)
	_, err := uc.CreateSerial(context.Background(), createInput("SN-001"))
	require.NoError(t, err)

	err = store.RunSerial(context.Background(), func(
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error {
		return uc.MarkInTransitInTx(serialRepo, serialMovRepo, bizID, "SN-001", locB, "tr-1", userID)
	})
	assert.ErrorIs(t, err, domain.ErrLocationMismatch)
}

// ─────────────────────────────────────────────────────────────────────────────
// Lotes
// ─────────────────────────────────────────────────────────────────────────────

func TestBulkCreate_FalloParcialNoAbortaElLote(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)

	_, err := uc.CreateSerial(context.Background(), createInput("SN-DUP"))
	require.NoError(t, err)

	result := uc.BulkCreateSerialNumbers(context.Background(), []serial.CreateSerialInput{
		createInput("SN-001"),
		createInput("SN-DUP"),  // duplicado
		createInput("x"),       // formato inválido
		createInput("SN-002"),
	})

	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 2, result.ErrorCount)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "SN-DUP", result.Errors[0].SerialNumber)
	assert.Equal(t, "DUPLICATE_SERIAL", result.Errors[0].Code)
	assert.Equal(t, "x", result.Errors[1].SerialNumber)
	assert.Equal(t, "VALIDATION", result.Errors[1].Code)

	// Los válidos quedaron registrados aunque hubo fallos intermedios.
	for _, sn := range []string{"SN-001", "SN-002"} {
		s, err := store.Serials.GetBySerial(bizID, sn)
		require.NoError(t, err)
		require.NotNil(t, s)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Validación de seriales para recepción de traslado
// ─────────────────────────────────────────────────────────────────────────────

func TestValidateSerialNumbersForTransfer_ConjuntosDisjuntos(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)

	for _, sn := range []string{"SN-A", "SN-B", "SN-C"} {
		_, err := uc.CreateSerial(context.Background(), createInput(sn))
		require.NoError(t, err)
	}
	// Solo SN-A y SN-B salen en tránsito; SN-C sigue in_stock.
	for _, sn := range []string{"SN-A", "SN-B"} {
		err := store.RunSerial(context.Background(), func(
			serialRepo repository.SerialNumberRepository,
			serialMovRepo repository.SerialMovementRepository,
		) error {
			return uc.MarkInTransitInTx(serialRepo, serialMovRepo, bizID, sn, locA, "tr-1", userID)
		})
		require.NoError(t, err)
	}

	v, err := uc.ValidateSerialNumbersForTransfer(context.Background(), bizID,
		[]string{"SN-A", "SN-C", "SN-X"}, // presentados
		[]string{"SN-A", "SN-B", "SN-C"}, // esperados
	)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, []string{"SN-B"}, v.Missing)
	assert.Equal(t, []string{"SN-X"}, v.Extra)
	assert.Equal(t, []string{"SN-C"}, v.InvalidStatus, "SN-C no está in_transit")
}

func TestValidateSerialNumbersForTransfer_CoincidenciaExacta(t *testing.T) {
	store := memrepo.NewStore()
	uc := serial.NewLifecycleUseCase(store)

	_, err := uc.CreateSerial(context.Background(), createInput("SN-A"))
	require.NoError(t, err)
	err = store.RunSerial(context.Background(), func(
		serialRepo repository.SerialNumberRepository,
		serialMovRepo repository.SerialMovementRepository,
	) error {
		return uc.MarkInTransitInTx(serialRepo, serialMovRepo, bizID, "SN-A", locA, "tr-1", userID)
	})
	require.NoError(t, err)

	v, err := uc.ValidateSerialNumbersForTransfer(context.Background(), bizID,
		[]string{"SN-A"}, []string{"SN-A"})
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Empty(t, v.Missing)
	assert.Empty(t, v.Extra)
	assert.Empty(t, v.InvalidStatus)
}
