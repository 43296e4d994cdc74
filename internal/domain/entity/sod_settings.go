package entity

import "time"

// SODSettings es la configuración de segregación de funciones por empresa.
// Cada flag permite que la misma persona ejecute dos pasos que por defecto
// están separados. Los valores estrictos (todo en false) se construyen en
// código cuando la empresa aún no tiene configuración persistida.
type SODSettings struct {
	BusinessID string

	// Traslados
	AllowCreatorCheck     bool // el creador puede verificar
	AllowCreatorSend      bool // el creador puede enviar
	AllowCheckerSend      bool // quien verificó puede enviar
	AllowSenderReceive    bool // quien envió puede recibir
	AllowCreatorReceive   bool // el creador puede recibir
	AllowReceiverComplete bool // quien recibió puede dar el cierre final

	// Recepciones de compra (GRN)
	AllowReceiverApprove  bool // quien registró la recepción puede aprobarla
	AllowRequesterApprove bool // quien solicitó la compra puede aprobar la recepción

	// Roles exentos de todas las reglas (ej. "owner").
	ExemptRoles []string

	UpdatedAt time.Time
	UpdatedBy string
}

// StrictSODSettings devuelve la configuración por defecto, máximamente estricta:
// ningún flag habilitado y sin roles exentos.
func StrictSODSettings(businessID string) *SODSettings {
	return &SODSettings{BusinessID: businessID, ExemptRoles: []string{}}
}
