package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-core/internal/application/dto"
	"github.com/jhoicas/inventario-core/internal/application/receiving"
	"github.com/jhoicas/inventario-core/internal/domain"
	sodrules "github.com/jhoicas/inventario-core/internal/domain/sod"
)

// ReceiptHandler maneja las peticiones HTTP de recepciones de compra (protegido).
type ReceiptHandler struct {
	uc *receiving.ReceiptUseCase
}

// NewReceiptHandler construye el handler.
func NewReceiptHandler(uc *receiving.ReceiptUseCase) *ReceiptHandler {
	return &ReceiptHandler{uc: uc}
}

// Create godoc
// @Summary      Crear recepción de compra (GRN)
// @Description  Fase 1 del workflow: la recepción queda en pending sin mutar
//
//	stock ni crear seriales. El número GRN se genera aquí.
//
// @Tags         receipts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceiptRequest  true  "location_id, items; purchase_id opcional"
// @Success      201   {object}  entity.PurchaseReceipt
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/receipts [post]
func (h *ReceiptHandler) Create(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]receiving.ReceiptItemInput, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, receiving.ReceiptItemInput{
			ProductID:          item.ProductID,
			ProductVariationID: item.ProductVariationID,
			QuantityReceived:   item.QuantityReceived,
			UnitCost:           item.UnitCost,
			PurchaseLineItemID: item.PurchaseLineItemID,
			SerialNumbers:      item.SerialNumbers,
		})
	}
	receipt, err := h.uc.CreateReceipt(c.Context(), receiving.CreateReceiptInput{
		BusinessID: businessID,
		LocationID: in.LocationID,
		SupplierID: in.SupplierID,
		PurchaseID: in.PurchaseID,
		ReceivedBy: userID,
		Notes:      in.Notes,
		Items:      items,
	})
	if err != nil {
		return receiptError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(receipt)
}

// Approve godoc
// @Summary      Aprobar recepción de compra
// @Description  Fase 2 del workflow: incrementa stock por línea, actualiza el
//
//	último costo de compra y materializa los seriales escalonados, todo en una
//	sola transacción. Idempotencia: una recepción ya aprobada responde 409.
//
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "UUID de la recepción"
// @Success      200  {object}  entity.PurchaseReceipt
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id}/approve [post]
func (h *ReceiptHandler) Approve(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	receipt, err := h.uc.ApproveReceipt(c.Context(), businessID, c.Params("id"), userID, GetRoles(c))
	if err != nil {
		return receiptError(c, err)
	}
	return c.JSON(receipt)
}

// GetByID godoc
// @Summary      Consultar recepción
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "UUID de la recepción"
// @Success      200  {object}  entity.PurchaseReceipt
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id} [get]
func (h *ReceiptHandler) GetByID(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	receipt, err := h.uc.GetReceipt(c.Context(), businessID, c.Params("id"))
	if err != nil {
		return receiptError(c, err)
	}
	return c.JSON(receipt)
}

// List godoc
// @Summary      Listar recepciones
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending | approved"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/receipts [get]
func (h *ReceiptHandler) List(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.ListReceipts(c.Context(), businessID, c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(list), "receipts": list})
}

// receiptError traduce los errores del workflow de recepción. Una denegación de
// segregación de funciones devuelve el veredicto completo (código, razón y
// campo de configuración sugerido) en details.
func receiptError(c *fiber.Ctx, err error) error {
	var denied *sodrules.DeniedError
	if errors.As(err, &denied) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    denied.Result.Code,
			Message: denied.Result.Reason,
			Details: denied.Result,
		})
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recepción, ubicación u orden de compra no encontrada"})
	}
	if errors.Is(err, domain.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	}
	if errors.Is(err, domain.ErrAlreadyApproved) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_APPROVED", Message: "la recepción ya fue aprobada"})
	}
	if errors.Is(err, domain.ErrDuplicateSerial) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_SERIAL", Message: "número de serie ya registrado para la empresa"})
	}
	if errors.Is(err, domain.ErrDuplicate) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "número de recepción en conflicto; reintente"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
