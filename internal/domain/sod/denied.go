package sod

// DeniedError envuelve una denegación de la política para que los workflows la
// propaguen sin perder el payload (código, razón y sugerencia se entregan tal
// cual al caller, no un 403 genérico).
type DeniedError struct {
	Result Result
}

func (e *DeniedError) Error() string {
	if e.Result.Reason != "" {
		return "segregación de funciones: " + e.Result.Reason
	}
	return "segregación de funciones: acción denegada"
}

// Denied construye el error a partir de un resultado no permitido.
func Denied(result Result) *DeniedError {
	return &DeniedError{Result: result}
}
