package sod_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/sod"
)

const (
	uCreator  = "user-creator"
	uChecker  = "user-checker"
	uSender   = "user-sender"
	uReceiver = "user-receiver"
	uOther    = "user-other"
)

func transferRef() sod.TransferRef {
	return sod.TransferRef{
		CreatedBy:  uCreator,
		CheckedBy:  uChecker,
		SentBy:     uSender,
		ReceivedBy: uReceiver,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Default estricto: toda separación aplica
// ─────────────────────────────────────────────────────────────────────────────

func TestEvaluate_DefaultEstricto_DeniegaCadaRegla(t *testing.T) {
	settings := entity.StrictSODSettings("biz-1")
	ref := transferRef()

	cases := []struct {
		name   string
		action string
		userID string
		code   string
		field  string
	}{
		{"creador no verifica", sod.ActionCheck, uCreator, "SOD_CREATOR_CANNOT_CHECK", "allow_creator_check"},
		{"creador no envía", sod.ActionSend, uCreator, "SOD_CREATOR_CANNOT_SEND", "allow_creator_send"},
		{"verificador no envía", sod.ActionSend, uChecker, "SOD_CHECKER_CANNOT_SEND", "allow_checker_send"},
		{"emisor no recibe", sod.ActionReceive, uSender, "SOD_SENDER_CANNOT_RECEIVE", "allow_sender_receive"},
		{"creador no recibe", sod.ActionReceive, uCreator, "SOD_CREATOR_CANNOT_RECEIVE", "allow_creator_receive"},
		{"receptor no completa", sod.ActionComplete, uReceiver, "SOD_RECEIVER_CANNOT_COMPLETE", "allow_receiver_complete"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := sod.Evaluate(settings, tc.action, ref, tc.userID, nil)
			assert.False(t, result.Allowed)
			assert.Equal(t, tc.code, result.Code)
			assert.Equal(t, tc.field, result.RuleField)
			assert.True(t, result.Configurable, "toda denegación debe ser configurable")
			assert.NotEmpty(t, result.Reason)
			assert.NotEmpty(t, result.Suggestion)
		})
	}
}

func TestEvaluate_RecepcionDeCompra_DefaultEstricto(t *testing.T) {
	settings := entity.StrictSODSettings("biz-1")
	ref := sod.ReceiptRef{ReceivedBy: uReceiver, RequestedBy: uCreator}

	result := sod.Evaluate(settings, sod.ActionApprove, ref, uReceiver, nil)
	assert.False(t, result.Allowed)
	assert.Equal(t, "SOD_RECEIVER_CANNOT_APPROVE", result.Code)

	result = sod.Evaluate(settings, sod.ActionApprove, ref, uCreator, nil)
	assert.False(t, result.Allowed)
	assert.Equal(t, "SOD_REQUESTER_CANNOT_APPROVE", result.Code)

	// Un tercero sin participación previa sí puede aprobar.
	result = sod.Evaluate(settings, sod.ActionApprove, ref, uOther, nil)
	assert.True(t, result.Allowed)
}

// Todos los códigos de denegación siguen el patrón SOD_<ROL>_CANNOT_<ACCION>.
func TestEvaluate_CodigosSiguenPatron(t *testing.T) {
	settings := entity.StrictSODSettings("biz-1")
	pattern := regexp.MustCompile(`^SOD_[A-Z]+_CANNOT_[A-Z]+$`)

	evaluations := []sod.Result{
		sod.Evaluate(settings, sod.ActionCheck, transferRef(), uCreator, nil),
		sod.Evaluate(settings, sod.ActionSend, transferRef(), uChecker, nil),
		sod.Evaluate(settings, sod.ActionReceive, transferRef(), uSender, nil),
		sod.Evaluate(settings, sod.ActionComplete, transferRef(), uReceiver, nil),
		sod.Evaluate(settings, sod.ActionApprove, sod.ReceiptRef{ReceivedBy: uReceiver}, uReceiver, nil),
	}
	for _, result := range evaluations {
		require.False(t, result.Allowed)
		assert.Regexp(t, pattern, result.Code)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Flags de configuración
// ─────────────────────────────────────────────────────────────────────────────

func TestEvaluate_FlagHabilitadoPermiteLaAccion(t *testing.T) {
	settings := entity.StrictSODSettings("biz-1")
	settings.AllowCreatorSend = true

	result := sod.Evaluate(settings, sod.ActionSend, transferRef(), uCreator, nil)
	assert.True(t, result.Allowed, "allow_creator_send habilita al creador a enviar")

	// El flag del creador no afecta la regla del verificador.
	result = sod.Evaluate(settings, sod.ActionSend, transferRef(), uChecker, nil)
	assert.False(t, result.Allowed)
	assert.Equal(t, "SOD_CHECKER_CANNOT_SEND", result.Code)
}

func TestEvaluate_UsuarioSinParticipacionSiemprePermitido(t *testing.T) {
	settings := entity.StrictSODSettings("biz-1")
	for _, action := range []string{sod.ActionCheck, sod.ActionSend, sod.ActionReceive, sod.ActionComplete} {
		result := sod.Evaluate(settings, action, transferRef(), uOther, nil)
		assert.True(t, result.Allowed, "acción %s debe permitirse a un tercero", action)
	}
}

// Actores vacíos (etapas aún no ejecutadas) no generan denegaciones.
func TestEvaluate_ActoresVaciosNoDeniegan(t *testing.T) {
	settings := entity.StrictSODSettings("biz-1")
	ref := sod.TransferRef{CreatedBy: uCreator} // sin checked/sent todavía

	result := sod.Evaluate(settings, sod.ActionReceive, ref, uOther, nil)
	assert.True(t, result.Allowed)
}

// ─────────────────────────────────────────────────────────────────────────────
// Roles exentos
// ─────────────────────────────────────────────────────────────────────────────

func TestEvaluate_RolExentoSaltaTodasLasReglas(t *testing.T) {
	settings := entity.StrictSODSettings("biz-1")
	settings.ExemptRoles = []string{"owner"}

	result := sod.Evaluate(settings, sod.ActionSend, transferRef(), uCreator, []string{"owner"})
	assert.True(t, result.Allowed)
	assert.Equal(t, "exempt_roles", result.RuleField)

	// El mismo usuario sin el rol sigue denegado.
	result = sod.Evaluate(settings, sod.ActionSend, transferRef(), uCreator, []string{"vendedor"})
	assert.False(t, result.Allowed)
}
