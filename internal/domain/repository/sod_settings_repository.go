package repository

import "github.com/jhoicas/inventario-core/internal/domain/entity"

// SODSettingsRepository puerto de configuración de segregación de funciones.
type SODSettingsRepository interface {
	// Get devuelve nil (sin error) si la empresa aún no tiene configuración.
	Get(businessID string) (*entity.SODSettings, error)
	Upsert(settings *entity.SODSettings) error
}
