package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dynsoft/pharma-ledger/internal/application/dto"
	"github.com/dynsoft/pharma-ledger/internal/application/inventory"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// PriceHandler cambios de precio y consulta del historial (protegido).
type PriceHandler struct {
	ledger *inventory.Ledger
}

// NewPriceHandler construye el handler.
func NewPriceHandler(ledger *inventory.Ledger) *PriceHandler {
	return &PriceHandler{ledger: ledger}
}

// Change godoc
// @Summary      Cambiar precios de un producto
// @Description  Registra compra y venta nuevas en el historial. Los valores anteriores se toman de la ficha.
// @Tags         prices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChangePriceRequest  true  "Precios nuevos"
// @Success      201   {object}  dto.PriceChangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/prices [post]
func (h *PriceHandler) Change(c *fiber.Ctx) error {
	var in dto.ChangePriceRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	change, err := h.ledger.ChangePrice(c.Context(), GetActor(c), inventory.PriceInput{
		ProductID:     in.ProductID,
		ChangeType:    entity.PriceChangeType(in.ChangeType),
		PurchasePrice: in.PurchasePrice,
		SellingPrice:  in.SellingPrice,
		EffectiveAt:   in.EffectiveAt,
		LotExpiration: in.LotExpiration,
		Notes:         in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPriceChangeResponse(change))
}

// List godoc
// @Summary      Historial de precios
// @Tags         prices
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  false  "Filtrar por producto"
// @Param        change_type  query  string  false  "INITIAL, MANUAL, SUPPLY, CATEGORY, PROMOTION, ADJUSTMENT"
// @Param        limit        query  int     false  "Límite"  default(100)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.PriceChangeResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/price-journal [get]
func (h *PriceHandler) List(c *fiber.Ctx) error {
	page, ok, err := bindPage(c, dto.DefaultJournalLimit)
	if !ok {
		return err
	}
	list, err := h.ledger.ListPrices(c.Context(), entity.PriceFilter{
		TenantID:   GetCompanyID(c),
		ProductID:  c.Query("product_id"),
		ChangeType: entity.PriceChangeType(c.Query("change_type")),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.PriceChangeResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.NewPriceChangeResponse(p))
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de precios de un producto
// @Tags         prices
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.PriceSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/prices/summary/{productId} [get]
func (h *PriceHandler) Summary(c *fiber.Ctx) error {
	s, err := h.ledger.Summarize(c.Context(), GetCompanyID(c), c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewPriceSummaryResponse(s))
}
