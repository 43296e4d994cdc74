package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-core/internal/application/dto"
	"github.com/jhoicas/inventario-core/internal/application/serial"
	"github.com/jhoicas/inventario-core/internal/application/transfer"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	sodrules "github.com/jhoicas/inventario-core/internal/domain/sod"
)

// TransferHandler maneja las peticiones HTTP de traslados entre ubicaciones (protegido).
type TransferHandler struct {
	uc *transfer.WorkflowUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.WorkflowUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Crear traslado (draft)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "from_location_id, to_location_id, items"
// @Success      201   {object}  entity.Transfer
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]transfer.TransferItemInput, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, transfer.TransferItemInput{
			ProductVariationID: item.ProductVariationID,
			Quantity:           item.Quantity,
			SerialNumbers:      item.SerialNumbers,
		})
	}
	t, err := h.uc.CreateTransfer(c.Context(), transfer.CreateTransferInput{
		BusinessID:     businessID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		CreatedBy:      userID,
		Notes:          in.Notes,
		Items:          items,
	})
	if err != nil {
		return transferError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// Check godoc
// @Summary      Verificar traslado (draft → checked)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "UUID del traslado"
// @Success      200  {object}  entity.Transfer
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/check [post]
func (h *TransferHandler) Check(c *fiber.Ctx) error {
	return h.transition(c, h.uc.CheckTransfer)
}

// Send godoc
// @Summary      Enviar traslado (checked → sent)
// @Description  Descuenta stock en origen y marca los seriales in_transit en la
//
//	misma transacción.
//
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "UUID del traslado"
// @Success      200  {object}  entity.Transfer
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/send [post]
func (h *TransferHandler) Send(c *fiber.Ctx) error {
	return h.transition(c, h.uc.SendTransfer)
}

// Receive godoc
// @Summary      Recibir traslado (sent → received)
// @Description  Valida los seriales presentados contra los enviados, incrementa
//
//	stock en destino y completa el viaje de los seriales. Un mismatch devuelve
//	los conjuntos missing, extra e invalid_status en details.
//
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "UUID del traslado"
// @Param        body  body  dto.ReceiveTransferRequest  false  "seriales presentados en destino"
// @Success      200  {object}  entity.Transfer
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReceiveTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	t, err := h.uc.ReceiveTransfer(c.Context(), businessID, c.Params("id"), userID, GetRoles(c), in.SerialNumbers)
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(t)
}

// Complete godoc
// @Summary      Completar traslado (received → completed)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "UUID del traslado"
// @Success      200  {object}  entity.Transfer
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/complete [post]
func (h *TransferHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, h.uc.CompleteTransfer)
}

// Cancel godoc
// @Summary      Cancelar traslado
// @Description  Cancelable en draft, checked y sent. Si ya fue enviado, el stock
//
//	y los seriales regresan al origen en la misma transacción. Después de
//	received ya no se puede cancelar.
//
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "UUID del traslado"
// @Success      200  {object}  entity.Transfer
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	t, err := h.uc.CancelTransfer(c.Context(), businessID, c.Params("id"), userID)
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(t)
}

// GetByID godoc
// @Summary      Consultar traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "UUID del traslado"
// @Success      200  {object}  entity.Transfer
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	t, err := h.uc.GetTransfer(c.Context(), businessID, c.Params("id"))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(t)
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "draft | checked | sent | received | completed | cancelled"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.ListTransfers(c.Context(), businessID, c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(list), "transfers": list})
}

// transition factoriza check/send/complete: misma firma, distinta transición.
func (h *TransferHandler) transition(
	c *fiber.Ctx,
	fn func(ctx context.Context, businessID, transferID, userID string, userRoles []string) (*entity.Transfer, error),
) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	t, err := fn(c.Context(), businessID, c.Params("id"), userID, GetRoles(c))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(t)
}

// transferError traduce los errores del workflow de traslados. Las denegaciones
// de segregación de funciones y los mismatch de seriales entregan su payload
// completo en details.
func transferError(c *fiber.Ctx, err error) error {
	var denied *sodrules.DeniedError
	if errors.As(err, &denied) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    denied.Result.Code,
			Message: denied.Result.Reason,
			Details: denied.Result,
		})
	}
	var mismatch *serial.MismatchError
	if errors.As(err, &mismatch) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "SERIAL_MISMATCH",
			Message: "los seriales presentados no coinciden con los enviados",
			Details: mismatch.Validation,
		})
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "traslado o ubicación no encontrada"})
	}
	if errors.Is(err, domain.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	}
	if errors.Is(err, domain.ErrInvalidStateTransition) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "transición de estado no permitida"})
	}
	if errors.Is(err, domain.ErrInsufficientStock) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente en origen"})
	}
	if errors.Is(err, domain.ErrLocationMismatch) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOCATION_MISMATCH", Message: "la unidad no está en la ubicación de origen"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
