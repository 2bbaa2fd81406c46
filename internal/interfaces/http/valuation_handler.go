package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dynsoft/pharma-ledger/internal/application/inventory"
)

// ValuationHandler valorización del inventario (protegido).
type ValuationHandler struct {
	uc *inventory.ValuationUseCase
}

// NewValuationHandler construye el handler.
func NewValuationHandler(uc *inventory.ValuationUseCase) *ValuationHandler {
	return &ValuationHandler{uc: uc}
}

// Tenant godoc
// @Summary      Valorizar el inventario de la agencia
// @Description  Sin method se usa el método configurado en la agencia.
// @Tags         valuation
// @Security     Bearer
// @Produce      json
// @Param        method  query  string  false  "fifo | lifo | weighted_average"
// @Success      200  {object}  dto.ValuationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/valuation [get]
func (h *ValuationHandler) Tenant(c *fiber.Ctx) error {
	out, err := h.uc.Tenant(c.Context(), GetCompanyID(c), c.Query("method"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Product godoc
// @Summary      Valorizar un producto
// @Tags         valuation
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        method     query  string  false  "fifo | lifo | weighted_average"
// @Success      200  {object}  dto.ProductValuationDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/valuation/{productId} [get]
func (h *ValuationHandler) Product(c *fiber.Ctx) error {
	out, err := h.uc.Product(c.Context(), GetCompanyID(c), c.Params("productId"), c.Query("method"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
