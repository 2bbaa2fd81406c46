package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dynsoft/pharma-ledger/internal/application/dto"
	"github.com/dynsoft/pharma-ledger/internal/application/sales"
)

// SalesHandler ventas y devoluciones (protegido).
type SalesHandler struct {
	uc *sales.UseCase
}

// NewSalesHandler construye el handler.
func NewSalesHandler(uc *sales.UseCase) *SalesHandler {
	return &SalesHandler{uc: uc}
}

// CreateSale godoc
// @Summary      Registrar venta
// @Description  Descuenta stock con entradas SALE. Si una línea no tiene stock suficiente no se registra nada.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Líneas y forma de pago"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SalesHandler) CreateSale(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	lines := make([]sales.SaleLine, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, sales.SaleLine{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	sale, err := h.uc.CreateSale(c.Context(), GetActor(c), sales.SaleInput{
		CustomerID:    in.CustomerID,
		PaymentMethod: in.PaymentMethod,
		Items:         lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSaleResponse(sale))
}

// ListSales godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {array}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SalesHandler) ListSales(c *fiber.Ctx) error {
	page, ok, err := bindPage(c, dto.DefaultPageLimit)
	if !ok {
		return err
	}
	list, err := h.uc.ListSales(c.Context(), GetCompanyID(c), page)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.NewSaleResponse(s))
	}
	return c.JSON(out)
}

// GetSale godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SalesHandler) GetSale(c *fiber.Ctx) error {
	sale, err := h.uc.GetSale(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSaleResponse(sale))
}

// DeleteSale godoc
// @Summary      Eliminar venta
// @Description  Según la política de la agencia: forbidden rechaza siempre; admin_only repone el stock con ajustes.
// @Tags         sales
// @Security     Bearer
// @Param        id   path  string  true  "ID de la venta"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
func (h *SalesHandler) DeleteSale(c *fiber.Ctx) error {
	if err := h.uc.DeleteSale(c.Context(), GetActor(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReturnEligibility godoc
// @Summary      Plazo de devolución de una venta
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        saleId  path  string  true  "ID de la venta"
// @Success      200  {object}  dto.ReturnEligibilityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/returns/eligibility/{saleId} [get]
func (h *SalesHandler) ReturnEligibility(c *fiber.Ctx) error {
	saleID := c.Params("saleId")
	w, err := h.uc.CheckReturnEligibility(c.Context(), GetCompanyID(c), saleID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReturnEligibilityResponse{
		SaleID:          saleID,
		Eligible:        w.Eligible,
		DaysRemaining:   w.DaysRemaining,
		ReturnDelayDays: w.DelayDays,
		Deadline:        w.Deadline,
		Message:         w.Message,
	})
}

// CreateReturn godoc
// @Summary      Registrar devolución
// @Description  Reintegra stock con entradas RETURN. No puede superar lo vendido menos lo ya devuelto.
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReturnRequest  true  "Venta, líneas y motivo"
// @Success      201   {object}  dto.ReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/returns [post]
func (h *SalesHandler) CreateReturn(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	lines := make([]sales.ReturnLine, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, sales.ReturnLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	ret, err := h.uc.CreateReturn(c.Context(), GetActor(c), sales.ReturnInput{
		SaleID: in.SaleID,
		Items:  lines,
		Reason: in.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewReturnResponse(ret))
}

// ListReturns godoc
// @Summary      Listar devoluciones
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        sale_id  query  string  false  "Solo las de esta venta"
// @Param        limit    query  int     false  "Límite"  default(20)
// @Param        offset   query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.ReturnResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/returns [get]
func (h *SalesHandler) ListReturns(c *fiber.Ctx) error {
	page, ok, err := bindPage(c, dto.DefaultPageLimit)
	if !ok {
		return err
	}
	list, err := h.uc.ListReturns(c.Context(), GetCompanyID(c), c.Query("sale_id"), page)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ReturnResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.NewReturnResponse(r))
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de ventas y devoluciones
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Límite"  default(20)
// @Success      200  {array}   dto.OperationHistoryItem
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/returns/history [get]
func (h *SalesHandler) History(c *fiber.Ctx) error {
	page, ok, err := bindPage(c, dto.DefaultPageLimit)
	if !ok {
		return err
	}
	out, err := h.uc.OperationsHistory(c.Context(), GetCompanyID(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
