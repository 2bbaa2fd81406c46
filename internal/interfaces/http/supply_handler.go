package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dynsoft/pharma-ledger/internal/application/dto"
	"github.com/dynsoft/pharma-ledger/internal/application/supply"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// SupplyHandler aprovisionamientos de proveedor (protegido).
type SupplyHandler struct {
	uc *supply.UseCase
}

// NewSupplyHandler construye el handler.
func NewSupplyHandler(uc *supply.UseCase) *SupplyHandler {
	return &SupplyHandler{uc: uc}
}

func supplyMeta(supplierID, poRef, deliveryNote, invoice, notes string, creditNote bool, date *time.Time) entity.SupplyMetadata {
	m := entity.SupplyMetadata{
		SupplierID:         supplierID,
		PurchaseOrderRef:   poRef,
		DeliveryNoteNumber: deliveryNote,
		InvoiceNumber:      invoice,
		IsCreditNote:       creditNote,
		Notes:              notes,
	}
	if date != nil {
		m.SupplyDate = *date
	}
	return m
}

func supplyItems(in []dto.SupplyItemRequest) []supply.ItemInput {
	out := make([]supply.ItemInput, 0, len(in))
	for _, it := range in {
		out = append(out, supply.ItemInput{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			LotExpiration: it.LotExpiration,
		})
	}
	return out
}

// Create godoc
// @Summary      Crear aprovisionamiento (borrador)
// @Description  No toca stock ni precios hasta la validación.
// @Tags         supplies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSupplyRequest  true  "Cabecera y líneas"
// @Success      201   {object}  dto.SupplyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/supplies [post]
func (h *SupplyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSupplyRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	meta := supplyMeta(in.SupplierID, in.PurchaseOrderRef, in.DeliveryNoteNumber, in.InvoiceNumber, in.Notes, in.IsCreditNote, in.SupplyDate)
	s, err := h.uc.Create(c.Context(), GetActor(c), meta, supplyItems(in.Items))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSupplyResponse(s))
}

// List godoc
// @Summary      Listar aprovisionamientos
// @Tags         supplies
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending | validated"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.SupplyResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/supplies [get]
func (h *SupplyHandler) List(c *fiber.Ctx) error {
	page, ok, err := bindPage(c, dto.DefaultPageLimit)
	if !ok {
		return err
	}
	list, err := h.uc.List(c.Context(), GetCompanyID(c), c.Query("status"), page)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.SupplyResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.NewSupplyResponse(s))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener aprovisionamiento
// @Tags         supplies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del aprovisionamiento"
// @Success      200  {object}  dto.SupplyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/supplies/{id} [get]
func (h *SupplyHandler) GetByID(c *fiber.Ctx) error {
	s, err := h.uc.Get(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSupplyResponse(s))
}

// Update godoc
// @Summary      Editar aprovisionamiento en borrador
// @Tags         supplies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del aprovisionamiento"
// @Param        body  body  dto.UpdateSupplyRequest  true  "Cabecera y, opcionalmente, líneas"
// @Success      200   {object}  dto.SupplyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/supplies/{id} [put]
func (h *SupplyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSupplyRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	meta := supplyMeta(in.SupplierID, in.PurchaseOrderRef, in.DeliveryNoteNumber, in.InvoiceNumber, in.Notes, in.IsCreditNote, in.SupplyDate)
	var items *[]supply.ItemInput
	if in.Items != nil {
		lines := supplyItems(*in.Items)
		items = &lines
	}
	s, err := h.uc.Update(c.Context(), GetActor(c), c.Params("id"), meta, items)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSupplyResponse(s))
}

// Delete godoc
// @Summary      Eliminar aprovisionamiento en borrador
// @Tags         supplies
// @Security     Bearer
// @Param        id   path  string  true  "ID del aprovisionamiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/supplies/{id} [delete]
func (h *SupplyHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetActor(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddItem godoc
// @Summary      Agregar línea a un borrador
// @Tags         supplies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del aprovisionamiento"
// @Param        body  body  dto.SupplyItemRequest  true  "Línea"
// @Success      201   {object}  dto.SupplyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/supplies/{id}/items [post]
func (h *SupplyHandler) AddItem(c *fiber.Ctx) error {
	var in dto.SupplyItemRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	s, err := h.uc.AddItem(c.Context(), GetActor(c), c.Params("id"), supplyItems([]dto.SupplyItemRequest{in})[0])
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSupplyResponse(s))
}

// RemoveItem godoc
// @Summary      Quitar línea de un borrador
// @Tags         supplies
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID del aprovisionamiento"
// @Param        itemId  path  string  true  "ID de la línea"
// @Success      200  {object}  dto.SupplyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/supplies/{id}/items/{itemId} [delete]
func (h *SupplyHandler) RemoveItem(c *fiber.Ctx) error {
	s, err := h.uc.RemoveItem(c.Context(), GetActor(c), c.Params("id"), c.Params("itemId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSupplyResponse(s))
}

// Validate godoc
// @Summary      Validar aprovisionamiento
// @Description  Aplica todas las líneas de forma atómica: entradas SUPPLY en el diario de stock y en el historial de precios.
// @Tags         supplies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del aprovisionamiento"
// @Success      200  {object}  dto.SupplyResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/supplies/{id}/validate [post]
func (h *SupplyHandler) Validate(c *fiber.Ctx) error {
	s, err := h.uc.Validate(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSupplyResponse(s))
}
