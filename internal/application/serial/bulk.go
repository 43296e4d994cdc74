package serial

import (
	"context"
	"errors"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// SerialError es el fallo de un serial individual dentro de un lote.
type SerialError struct {
	SerialNumber string `json:"serial_number"`
	Code         string `json:"code"`
	Message      string `json:"message"`
}

// BulkCreateResult resume un lote de creación: fallo parcial por diseño,
// no todo-o-nada.
type BulkCreateResult struct {
	Success    int                    `json:"success"`
	ErrorCount int                    `json:"error_count"`
	Errors     []SerialError          `json:"errors"`
	Created    []*entity.SerialNumber `json:"created"`
}

// BulkCreateSerialNumbers procesa la lista de forma independiente: cada serial
// corre en su propia transacción, así un serial inválido o duplicado no aborta
// el resto del lote.
func (uc *LifecycleUseCase) BulkCreateSerialNumbers(ctx context.Context, inputs []CreateSerialInput) *BulkCreateResult {
	result := &BulkCreateResult{Errors: []SerialError{}}
	for _, input := range inputs {
		created, err := uc.CreateSerial(ctx, input)
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, SerialError{
				SerialNumber: input.SerialNumber,
				Code:         bulkErrorCode(err),
				Message:      err.Error(),
			})
			continue
		}
		result.Success++
		result.Created = append(result.Created, created)
	}
	return result
}

func bulkErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateSerial):
		return "DUPLICATE_SERIAL"
	case errors.Is(err, domain.ErrInvalidInput):
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}

// MismatchError envuelve el detalle de una validación de seriales fallida para
// que la capa HTTP muestre los conjuntos exactos, no solo "no coinciden".
type MismatchError struct {
	Validation *SerialSetValidation
}

func (e *MismatchError) Error() string { return domain.ErrSerialMismatch.Error() }

// Is permite errors.Is(err, domain.ErrSerialMismatch).
func (e *MismatchError) Is(target error) bool { return target == domain.ErrSerialMismatch }

// SerialSetValidation resultado de contrastar los seriales presentados en la
// recepción de un traslado contra los enviados. La operación es válida solo si
// los tres conjuntos están vacíos.
type SerialSetValidation struct {
	Valid         bool     `json:"valid"`
	Missing       []string `json:"missing"`        // esperados pero ausentes
	Extra         []string `json:"extra"`          // presentados pero no esperados
	InvalidStatus []string `json:"invalid_status"` // presentados pero no in_transit
}

// ValidateSerialNumbersForTransferInTx calcula los tres conjuntos disjuntos
// usando el repositorio de la transacción del caller.
func (uc *LifecycleUseCase) ValidateSerialNumbersForTransferInTx(
	serialRepo repository.SerialNumberRepository,
	businessID string,
	presented, expected []string,
) (*SerialSetValidation, error) {
	expectedSet := make(map[string]bool, len(expected))
	for _, s := range expected {
		expectedSet[s] = true
	}
	presentedSet := make(map[string]bool, len(presented))
	for _, s := range presented {
		presentedSet[s] = true
	}

	v := &SerialSetValidation{Missing: []string{}, Extra: []string{}, InvalidStatus: []string{}}
	for _, s := range expected {
		if !presentedSet[s] {
			v.Missing = append(v.Missing, s)
		}
	}
	for _, s := range presented {
		if !expectedSet[s] {
			v.Extra = append(v.Extra, s)
			continue
		}
		unit, err := serialRepo.GetBySerial(businessID, s)
		if err != nil {
			return nil, err
		}
		if unit == nil || unit.Status != entity.SerialStatusInTransit {
			v.InvalidStatus = append(v.InvalidStatus, s)
		}
	}
	v.Valid = len(v.Missing) == 0 && len(v.Extra) == 0 && len(v.InvalidStatus) == 0
	return v, nil
}

// ValidateSerialNumbersForTransfer versión independiente para pre-chequeo desde
// la UI, fuera de transacción.
func (uc *LifecycleUseCase) ValidateSerialNumbersForTransfer(
	ctx context.Context, businessID string, presented, expected []string,
) (*SerialSetValidation, error) {
	var validation *SerialSetValidation
	err := uc.txRunner.RunSerial(ctx, func(
		serialRepo repository.SerialNumberRepository,
		_ repository.SerialMovementRepository,
	) error {
		var err error
		validation, err = uc.ValidateSerialNumbersForTransferInTx(serialRepo, businessID, presented, expected)
		return err
	})
	if err != nil {
		return nil, err
	}
	return validation, nil
}
