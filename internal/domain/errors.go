package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Violaciones de regla del motor de inventario.
	// Bloquean la mutación completa; nunca dejan estado parcial.
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrDuplicateSerial        = errors.New("número de serie duplicado para la empresa")
	ErrInvalidStateTransition = errors.New("transición de estado inválida")
	ErrLocationMismatch       = errors.New("la unidad no está en la ubicación esperada")
	ErrSerialMismatch         = errors.New("los seriales presentados no coinciden con los enviados")
	ErrAlreadyApproved        = errors.New("la recepción ya fue aprobada")
)
