package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-core/internal/application/dto"
	"github.com/jhoicas/inventario-core/internal/application/receiving"
	appsod "github.com/jhoicas/inventario-core/internal/application/sod"
	"github.com/jhoicas/inventario-core/internal/application/transfer"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	sodrules "github.com/jhoicas/inventario-core/internal/domain/sod"
)

// SODHandler maneja la política de segregación de funciones (protegido).
type SODHandler struct {
	uc         *appsod.ValidationUseCase
	transferUC *transfer.WorkflowUseCase
	receiptUC  *receiving.ReceiptUseCase
}

// NewSODHandler construye el handler.
func NewSODHandler(uc *appsod.ValidationUseCase, transferUC *transfer.WorkflowUseCase, receiptUC *receiving.ReceiptUseCase) *SODHandler {
	return &SODHandler{uc: uc, transferUC: transferUC, receiptUC: receiptUC}
}

// Validate godoc
// @Summary      Pre-chequeo de segregación de funciones
// @Description  Evalúa si el usuario del token podría ejecutar la acción sobre
//
//	la entidad, sin ejecutarla. Permite a la UI deshabilitar botones con la
//	razón y el campo de configuración que los habilitaría.
//
// @Tags         sod
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SODValidateRequest  true  "action, entity_type, entity_id"
// @Success      200  {object}  sod.Result
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sod/validate [post]
func (h *SODHandler) Validate(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SODValidateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	var ref sodrules.EntityRef
	switch in.EntityType {
	case "transfer":
		t, err := h.transferUC.GetTransfer(c.Context(), businessID, in.EntityID)
		if err != nil {
			return sodError(c, err)
		}
		ref = sodrules.TransferRef{
			CreatedBy:  t.CreatedBy,
			CheckedBy:  t.CheckedBy,
			SentBy:     t.SentBy,
			ReceivedBy: t.ReceivedBy,
		}
	case "purchase_receipt":
		r, err := h.receiptUC.ActorRef(c.Context(), businessID, in.EntityID)
		if err != nil {
			return sodError(c, err)
		}
		ref = r
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "entity_type debe ser transfer o purchase_receipt"})
	}

	result, err := h.uc.Validate(c.Context(), businessID, userID, in.Action, ref, GetRoles(c))
	if err != nil {
		return sodError(c, err)
	}
	return c.JSON(result)
}

// GetSettings godoc
// @Summary      Configuración efectiva de segregación de funciones
// @Description  Si la empresa no tiene configuración persistida devuelve el
//
//	default estricto (todos los flags en false, sin roles exentos).
//
// @Tags         sod
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.SODSettings
// @Router       /api/sod/settings [get]
func (h *SODHandler) GetSettings(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	settings, err := h.uc.GetSettings(c.Context(), businessID)
	if err != nil {
		return sodError(c, err)
	}
	return c.JSON(settings)
}

// UpdateSettings godoc
// @Summary      Actualizar configuración de segregación de funciones
// @Tags         sod
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SODSettingsRequest  true  "flags por regla y roles exentos"
// @Success      200  {object}  entity.SODSettings
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sod/settings [put]
func (h *SODHandler) UpdateSettings(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SODSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	settings := &entity.SODSettings{
		BusinessID:            businessID,
		AllowCreatorCheck:     in.AllowCreatorCheck,
		AllowCreatorSend:      in.AllowCreatorSend,
		AllowCheckerSend:      in.AllowCheckerSend,
		AllowSenderReceive:    in.AllowSenderReceive,
		AllowCreatorReceive:   in.AllowCreatorReceive,
		AllowReceiverComplete: in.AllowReceiverComplete,
		AllowReceiverApprove:  in.AllowReceiverApprove,
		AllowRequesterApprove: in.AllowRequesterApprove,
		ExemptRoles:           in.ExemptRoles,
		UpdatedAt:             time.Now(),
	}
	if err := h.uc.UpdateSettings(c.Context(), settings, userID); err != nil {
		return sodError(c, err)
	}
	return c.JSON(settings)
}

func sodError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "entidad no encontrada"})
	}
	if errors.Is(err, domain.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
