// Package sod implementa la evaluación pura de reglas de segregación de
// funciones (servicio de dominio, sin I/O). La política es configurable por
// empresa: cada denegación lleva un código estable y la sugerencia del campo
// exacto de configuración que un administrador podría habilitar.
package sod

import "github.com/jhoicas/inventario-core/internal/domain/entity"

// Acciones gobernadas por la política.
const (
	ActionCheck    = "check"
	ActionSend     = "send"
	ActionReceive  = "receive"
	ActionComplete = "complete"
	ActionApprove  = "approve"
)

// Result es el veredicto de la política. Allowed=false no es un error: es un
// resultado de primera clase con pista de remediación.
type Result struct {
	Allowed      bool   `json:"allowed"`
	Code         string `json:"code,omitempty"`   // SOD_<ROL>_CANNOT_<ACCION>
	Reason       string `json:"reason,omitempty"` // explicación humana
	Suggestion   string `json:"suggestion,omitempty"`
	Configurable bool   `json:"configurable"`
	RuleField    string `json:"rule_field,omitempty"` // campo de SODSettings que controla la regla
}

// EntityRef es la unión etiquetada de entidades evaluables; cada variante
// lleva su propio conjunto tipado de campos de actor.
type EntityRef interface{ sodEntity() }

// TransferRef referencia los actores de un traslado.
type TransferRef struct {
	CreatedBy  string
	CheckedBy  string
	SentBy     string
	ReceivedBy string
}

func (TransferRef) sodEntity() {}

// ReceiptRef referencia los actores de una recepción de compra (GRN).
// RequestedBy es quien solicitó la orden de compra vinculada (vacío si no hay).
type ReceiptRef struct {
	ReceivedBy  string
	RequestedBy string
}

func (ReceiptRef) sodEntity() {}

// rule describe una restricción: el actor en actorID no puede ejecutar la
// acción salvo que el flag allow esté habilitado.
type rule struct {
	actorID   string
	allow     bool
	code      string
	reason    string
	ruleField string
}

// Evaluate aplica la política sobre una acción. Orden: (1) roles exentos,
// (2) reglas específicas del tipo de entidad vía type switch.
func Evaluate(settings *entity.SODSettings, action string, ref EntityRef, userID string, userRoles []string) Result {
	if hasExemptRole(settings.ExemptRoles, userRoles) {
		return Result{
			Allowed:      true,
			Suggestion:   "permitido por rol exento en la configuración de segregación de funciones",
			Configurable: true,
			RuleField:    "exempt_roles",
		}
	}

	var rules []rule
	switch e := ref.(type) {
	case TransferRef:
		rules = transferRules(settings, action, e)
	case ReceiptRef:
		rules = receiptRules(settings, action, e)
	default:
		return Result{Allowed: true, Configurable: false}
	}

	for _, r := range rules {
		if r.actorID == "" || r.actorID != userID || r.allow {
			continue
		}
		return Result{
			Allowed:      false,
			Code:         r.code,
			Reason:       r.reason,
			Suggestion:   "un administrador puede habilitar '" + r.ruleField + "' en la configuración de segregación de funciones",
			Configurable: true,
			RuleField:    r.ruleField,
		}
	}
	return Result{Allowed: true, Configurable: true}
}

func transferRules(s *entity.SODSettings, action string, e TransferRef) []rule {
	switch action {
	case ActionCheck:
		return []rule{{e.CreatedBy, s.AllowCreatorCheck, "SOD_CREATOR_CANNOT_CHECK",
			"quien creó el traslado no puede verificarlo", "allow_creator_check"}}
	case ActionSend:
		return []rule{
			{e.CreatedBy, s.AllowCreatorSend, "SOD_CREATOR_CANNOT_SEND",
				"quien creó el traslado no puede enviarlo", "allow_creator_send"},
			{e.CheckedBy, s.AllowCheckerSend, "SOD_CHECKER_CANNOT_SEND",
				"quien verificó el traslado no puede enviarlo", "allow_checker_send"},
		}
	case ActionReceive:
		return []rule{
			{e.SentBy, s.AllowSenderReceive, "SOD_SENDER_CANNOT_RECEIVE",
				"quien envió el traslado no puede recibirlo", "allow_sender_receive"},
			{e.CreatedBy, s.AllowCreatorReceive, "SOD_CREATOR_CANNOT_RECEIVE",
				"quien creó el traslado no puede recibirlo", "allow_creator_receive"},
		}
	case ActionComplete:
		return []rule{{e.ReceivedBy, s.AllowReceiverComplete, "SOD_RECEIVER_CANNOT_COMPLETE",
			"quien recibió el traslado no puede dar el cierre final", "allow_receiver_complete"}}
	}
	return nil
}

func receiptRules(s *entity.SODSettings, action string, e ReceiptRef) []rule {
	if action != ActionApprove {
		return nil
	}
	return []rule{
		{e.ReceivedBy, s.AllowReceiverApprove, "SOD_RECEIVER_CANNOT_APPROVE",
			"quien registró la recepción no puede aprobarla", "allow_receiver_approve"},
		{e.RequestedBy, s.AllowRequesterApprove, "SOD_REQUESTER_CANNOT_APPROVE",
			"quien solicitó la compra no puede aprobar la recepción", "allow_requester_approve"},
	}
}

func hasExemptRole(exempt, roles []string) bool {
	for _, r := range roles {
		for _, e := range exempt {
			if r == e {
				return true
			}
		}
	}
	return false
}
