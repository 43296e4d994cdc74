package sod

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
	sodrules "github.com/jhoicas/inventario-core/internal/domain/sod"
)

// ValidationUseCase evalúa la política de segregación de funciones de una
// empresa. La configuración se carga en cada evaluación; si la empresa no tiene
// configuración persistida se construye en código el default estricto (todo en
// false) — nunca un singleton mutable compartido entre requests.
type ValidationUseCase struct {
	settingsRepo repository.SODSettingsRepository
}

// NewValidationUseCase construye el caso de uso.
func NewValidationUseCase(settingsRepo repository.SODSettingsRepository) *ValidationUseCase {
	return &ValidationUseCase{settingsRepo: settingsRepo}
}

// Validate evalúa una acción sobre una entidad para el actor dado. El resultado
// es consumible de forma independiente (pre-chequeo de UI) o por los workflows
// antes de cada transición.
func (uc *ValidationUseCase) Validate(
	ctx context.Context,
	businessID, userID, action string,
	ref sodrules.EntityRef,
	userRoles []string,
) (sodrules.Result, error) {
	_ = ctx
	settings, err := uc.loadSettings(businessID)
	if err != nil {
		return sodrules.Result{}, err
	}
	return sodrules.Evaluate(settings, action, ref, userID, userRoles), nil
}

// GetSettings devuelve la configuración efectiva de la empresa (default
// estricto si no hay nada persistido).
func (uc *ValidationUseCase) GetSettings(ctx context.Context, businessID string) (*entity.SODSettings, error) {
	_ = ctx
	return uc.loadSettings(businessID)
}

// UpdateSettings persiste la configuración (mutada por administradores de la
// empresa, colaborador externo al motor).
func (uc *ValidationUseCase) UpdateSettings(ctx context.Context, settings *entity.SODSettings, updatedBy string) error {
	_ = ctx
	if settings == nil || settings.BusinessID == "" {
		return domain.ErrInvalidInput
	}
	settings.UpdatedBy = updatedBy
	settings.UpdatedAt = time.Now()
	return uc.settingsRepo.Upsert(settings)
}

func (uc *ValidationUseCase) loadSettings(businessID string) (*entity.SODSettings, error) {
	if businessID == "" {
		return nil, domain.ErrInvalidInput
	}
	settings, err := uc.settingsRepo.Get(businessID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = entity.StrictSODSettings(businessID)
	}
	return settings, nil
}
