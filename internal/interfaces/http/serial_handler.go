package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-core/internal/application/dto"
	"github.com/jhoicas/inventario-core/internal/application/serial"
	"github.com/jhoicas/inventario-core/internal/application/transfer"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// SerialHandler maneja las peticiones HTTP de unidades serializadas (protegido).
type SerialHandler struct {
	uc         *serial.LifecycleUseCase
	query      *serial.QueryUseCase
	transferUC *transfer.WorkflowUseCase
}

// NewSerialHandler construye el handler.
func NewSerialHandler(uc *serial.LifecycleUseCase, query *serial.QueryUseCase, transferUC *transfer.WorkflowUseCase) *SerialHandler {
	return &SerialHandler{uc: uc, query: query, transferUC: transferUC}
}

// Create godoc
// @Summary      Registrar unidad serializada
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSerialRequest  true  "product_variation_id, serial_number, location_id"
// @Success      201   {object}  entity.SerialNumber
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/serials [post]
func (h *SerialHandler) Create(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateSerialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	created, err := h.uc.CreateSerial(c.Context(), serial.CreateSerialInput{
		BusinessID:         businessID,
		ProductID:          in.ProductID,
		ProductVariationID: in.ProductVariationID,
		SerialNumber:       in.SerialNumber,
		IMEI:               in.IMEI,
		Condition:          in.Condition,
		LocationID:         in.LocationID,
		PurchaseCost:       in.PurchaseCost,
		CreatedBy:          userID,
		Notes:              in.Notes,
	})
	if err != nil {
		return serialError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// BulkCreate godoc
// @Summary      Registrar lote de unidades serializadas
// @Description  El fallo de una unidad no aborta el resto: cada unidad corre en
//
//	su propia transacción y los errores se reportan por unidad.
//
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkCreateSerialRequest  true  "lote de unidades"
// @Success      200   {object}  serial.BulkCreateResult
// @Router       /api/serials/bulk [post]
func (h *SerialHandler) BulkCreate(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.BulkCreateSerialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inputs := make([]serial.CreateSerialInput, 0, len(in.Serials))
	for _, s := range in.Serials {
		inputs = append(inputs, serial.CreateSerialInput{
			BusinessID:         businessID,
			ProductID:          s.ProductID,
			ProductVariationID: s.ProductVariationID,
			SerialNumber:       s.SerialNumber,
			IMEI:               s.IMEI,
			Condition:          s.Condition,
			LocationID:         s.LocationID,
			PurchaseCost:       s.PurchaseCost,
			CreatedBy:          userID,
			Notes:              s.Notes,
		})
	}
	return c.JSON(h.uc.BulkCreateSerialNumbers(c.Context(), inputs))
}

// List godoc
// @Summary      Listar unidades serializadas
// @Tags         serials
// @Security     Bearer
// @Produce      json
// @Param        status        query  string  false  "in_stock, sold, in_transit, returned, damaged, warranty_return"
// @Param        location_id   query  string  false  "UUID de la ubicación"
// @Param        variation_id  query  string  false  "UUID de la variación"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/serials [get]
func (h *SerialHandler) List(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	filter := repository.SerialFilter{
		Status:             c.Query("status"),
		LocationID:         c.Query("location_id"),
		ProductVariationID: c.Query("variation_id"),
	}
	list, err := h.query.List(c.Context(), businessID, filter, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(list), "serials": list})
}

// GetBySerial godoc
// @Summary      Consultar unidad por número de serie
// @Tags         serials
// @Security     Bearer
// @Produce      json
// @Param        serial  path  string  true  "número de serie"
// @Success      200  {object}  entity.SerialNumber
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/serials/{serial} [get]
func (h *SerialHandler) GetBySerial(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	s, err := h.query.GetBySerial(c.Context(), businessID, c.Params("serial"))
	if err != nil {
		return serialError(c, err)
	}
	return c.JSON(s)
}

// Trail godoc
// @Summary      Historial de transiciones de una unidad
// @Tags         serials
// @Security     Bearer
// @Produce      json
// @Param        serial  path  string  true  "número de serie"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/serials/{serial}/trail [get]
func (h *SerialHandler) Trail(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	trail, err := h.query.Trail(c.Context(), businessID, c.Params("serial"))
	if err != nil {
		return serialError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(trail), "movements": trail})
}

// Sell godoc
// @Summary      Marcar unidad como vendida
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        serial  path  string  true  "número de serie"
// @Param        body    body  dto.SellSerialRequest  true  "sold_to, sale_id, warranty_months"
// @Success      200  {object}  entity.SerialNumber
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/serials/{serial}/sell [post]
func (h *SerialHandler) Sell(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SellSerialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	updated, err := h.uc.MarkSold(c.Context(), serial.SellInput{
		BusinessID:     businessID,
		SerialNumber:   c.Params("serial"),
		SoldTo:         in.SoldTo,
		SaleID:         in.SaleID,
		WarrantyMonths: in.WarrantyMonths,
		UserID:         userID,
		Notes:          in.Notes,
	})
	if err != nil {
		return serialError(c, err)
	}
	return c.JSON(updated)
}

// Return godoc
// @Summary      Devolución de cliente
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        serial  path  string  true  "número de serie"
// @Param        body    body  dto.ReturnSerialRequest  true  "condition, reference_id"
// @Success      200  {object}  entity.SerialNumber
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/serials/{serial}/return [post]
func (h *SerialHandler) Return(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReturnSerialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	updated, err := h.uc.MarkReturned(c.Context(), serial.ReturnInput{
		BusinessID:   businessID,
		SerialNumber: c.Params("serial"),
		Condition:    in.Condition,
		ReferenceID:  in.ReferenceID,
		UserID:       userID,
		Notes:        in.Notes,
	})
	if err != nil {
		return serialError(c, err)
	}
	return c.JSON(updated)
}

// WarrantyReturn godoc
// @Summary      Devolución por garantía
// @Description  Rama terminal de una unidad vendida: vuelve al proveedor bajo
//
//	garantía, no al stock vendible.
//
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        serial  path  string  true  "número de serie"
// @Param        body    body  dto.WarrantyReturnSerialRequest  false  "reference_id, notes"
// @Success      200  {object}  entity.SerialNumber
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/serials/{serial}/warranty-return [post]
func (h *SerialHandler) WarrantyReturn(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.WarrantyReturnSerialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	updated, err := h.uc.MarkWarrantyReturn(c.Context(), serial.WarrantyReturnInput{
		BusinessID:   businessID,
		SerialNumber: c.Params("serial"),
		ReferenceID:  in.ReferenceID,
		UserID:       userID,
		Notes:        in.Notes,
	})
	if err != nil {
		return serialError(c, err)
	}
	return c.JSON(updated)
}

// Damage godoc
// @Summary      Marcar unidad como dañada
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        serial  path  string  true  "número de serie"
// @Param        body    body  dto.DamageSerialRequest  false  "notes"
// @Success      200  {object}  entity.SerialNumber
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/serials/{serial}/damage [post]
func (h *SerialHandler) Damage(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.DamageSerialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	updated, err := h.uc.MarkDamaged(c.Context(), businessID, c.Params("serial"), in.Notes, userID)
	if err != nil {
		return serialError(c, err)
	}
	return c.JSON(updated)
}

// ValidateTransfer godoc
// @Summary      Pre-chequeo de seriales para la recepción de un traslado
// @Description  Contrasta los seriales presentados contra los enviados sin
//
//	ejecutar la recepción. Devuelve los conjuntos missing, extra e invalid_status.
//
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateSerialsRequest  true  "transfer_id y seriales presentados"
// @Success      200  {object}  serial.SerialSetValidation
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/serials/validate-transfer [post]
func (h *SerialHandler) ValidateTransfer(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ValidateSerialsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	t, err := h.transferUC.GetTransfer(c.Context(), businessID, in.TransferID)
	if err != nil {
		return serialError(c, err)
	}
	var expected []string
	for _, item := range t.Items {
		expected = append(expected, item.SerialNumbers...)
	}
	validation, err := h.uc.ValidateSerialNumbersForTransfer(c.Context(), businessID, in.SerialNumbers, expected)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(validation)
}

// serialError traduce los errores de dominio del ciclo de vida de seriales.
func serialError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "unidad no encontrada"})
	}
	if errors.Is(err, domain.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	}
	if errors.Is(err, domain.ErrDuplicateSerial) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_SERIAL", Message: "número de serie ya registrado para la empresa"})
	}
	if errors.Is(err, domain.ErrInvalidStateTransition) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "transición de estado no permitida"})
	}
	if errors.Is(err, domain.ErrLocationMismatch) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOCATION_MISMATCH", Message: "la unidad no está en la ubicación esperada"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
