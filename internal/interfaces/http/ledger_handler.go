package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-core/internal/application/dto"
	"github.com/jhoicas/inventario-core/internal/application/ledger"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// LedgerHandler maneja las peticiones HTTP del libro de stock (protegido).
type LedgerHandler struct {
	uc         *ledger.StockLedgerUseCase
	query      *ledger.QueryUseCase
	reconciler *ledger.ReconcileUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.StockLedgerUseCase, query *ledger.QueryUseCase, reconciler *ledger.ReconcileUseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc, query: query, reconciler: reconciler}
}

// directKinds tipos aplicables directamente por la API. Las recepciones y los
// traslados mutan stock únicamente a través de sus workflows.
var directKinds = map[string]bool{
	entity.MovementKindCorrection:     true,
	entity.MovementKindSale:           true,
	entity.MovementKindCustomerReturn: true,
	entity.MovementKindSupplierReturn: true,
}

// ApplyMovement godoc
// @Summary      Aplicar movimiento de stock
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "product_variation_id, location_id, delta (con signo), kind"
// @Success      201   {object}  dto.BalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/movements [post]
func (h *LedgerHandler) ApplyMovement(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	userID := GetUserID(c)
	if businessID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if !directKinds[in.Kind] {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "kind no aplicable directamente; use el workflow correspondiente"})
	}
	balance, err := h.uc.ApplyMovement(c.Context(), ledger.MovementInput{
		BusinessID:         businessID,
		ProductVariationID: in.ProductVariationID,
		LocationID:         in.LocationID,
		Delta:              in.Delta,
		Kind:               in.Kind,
		ReferenceType:      in.ReferenceType,
		ReferenceID:        in.ReferenceID,
		RecordedBy:         userID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BalanceResponse{
		ProductVariationID: in.ProductVariationID,
		LocationID:         in.LocationID,
		Balance:            balance,
	})
}

// GetBalance godoc
// @Summary      Saldo de una variación en una ubicación
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        variation_id  query  string  true  "UUID de la variación"
// @Param        location_id   query  string  true  "UUID de la ubicación"
// @Success      200  {object}  dto.BalanceResponse
// @Router       /api/ledger/balance [get]
func (h *LedgerHandler) GetBalance(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	variationID := c.Query("variation_id")
	locationID := c.Query("location_id")
	stock, err := h.query.GetBalance(c.Context(), businessID, variationID, locationID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "variation_id y location_id son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.BalanceResponse{
		ProductVariationID: variationID,
		LocationID:         locationID,
		Balance:            stock.QtyAvailable,
	})
}

// ListStockByLocation godoc
// @Summary      Saldos de una ubicación
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true  "UUID de la ubicación"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/ledger/stock [get]
func (h *LedgerHandler) ListStockByLocation(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.query.StockByLocation(c.Context(), businessID, c.Query("location_id"), page.Limit, page.Offset)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "location_id es requerido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(list), "stock": list})
}

// ListMovements godoc
// @Summary      Historial de movimientos por variación o por ubicación
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        variation_id  query  string  false  "UUID de la variación"
// @Param        location_id   query  string  false  "UUID de la ubicación (si no hay variation_id)"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/ledger/movements [get]
func (h *LedgerHandler) ListMovements(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	var (
		list []*entity.MovementEvent
		err  error
	)
	if variationID := c.Query("variation_id"); variationID != "" {
		list, err = h.query.ListMovementsByVariation(c.Context(), businessID, variationID, page.Limit, page.Offset)
	} else {
		list, err = h.query.ListMovementsByLocation(c.Context(), businessID, c.Query("location_id"), page.Limit, page.Offset)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "variation_id o location_id es requerido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(list), "movements": list})
}

// Reconcile godoc
// @Summary      Conciliación del saldo de una pareja (variación, ubicación)
// @Description  Reproduce el historial de movimientos en orden determinista y
//
//	compara el saldo calculado contra el almacenado. Solo lectura.
//
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        variation_id  query  string  true  "UUID de la variación"
// @Param        location_id   query  string  true  "UUID de la ubicación"
// @Success      200  {object}  ledger.ReconciliationReport
// @Router       /api/ledger/reconcile [get]
func (h *LedgerHandler) Reconcile(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	report, err := h.reconciler.Reconcile(c.Context(), businessID, c.Query("variation_id"), c.Query("location_id"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "variation_id y location_id son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(report)
}
