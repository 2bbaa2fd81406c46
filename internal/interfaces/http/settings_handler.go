package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dynsoft/pharma-ledger/internal/application/dto"
	"github.com/dynsoft/pharma-ledger/internal/application/settings"
)

// SettingsHandler parámetros de la agencia (protegido).
type SettingsHandler struct {
	uc *settings.UseCase
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(uc *settings.UseCase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

// Get godoc
// @Summary      Parámetros de la agencia
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SettingsResponse
// @Router       /api/settings [get]
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	s, err := h.uc.Get(c.Context(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSettingsResponse(s))
}

// Update godoc
// @Summary      Actualizar parámetros de la agencia
// @Description  Solo administradores. Los campos ausentes conservan su valor.
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateSettingsRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.SettingsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/settings [put]
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSettingsRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	s, err := h.uc.Update(c.Context(), GetActor(c), settings.Patch{
		ValuationMethod:    in.ValuationMethod,
		ReturnDelayDays:    in.ReturnDelayDays,
		LowStockThreshold:  in.LowStockThreshold,
		Currency:           in.Currency,
		SaleDeletionPolicy: in.SaleDeletionPolicy,
		PharmacyName:       in.PharmacyName,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSettingsResponse(s))
}
