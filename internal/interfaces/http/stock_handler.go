package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
)

type indicatorService interface {
	ComputeIndicators(ctx context.Context, q dto.IndicatorQuery) ([]dto.StockIndicatorDTO, error)
}

type replenishmentService interface {
	GenerateReplenishmentList(ctx context.Context, q dto.IndicatorQuery) ([]dto.ReplenishmentSuggestionDTO, error)
}

// StockHandler expone indicadores de salud de stock y sugerencias de reposición (protegido).
type StockHandler struct {
	indicators    indicatorService
	replenishment replenishmentService
}

// NewStockHandler construye el handler.
func NewStockHandler(indicators indicatorService, replenishment replenishmentService) *StockHandler {
	return &StockHandler{indicators: indicators, replenishment: replenishment}
}

func parseIndicatorQuery(c *fiber.Ctx) (dto.IndicatorQuery, error) {
	var q dto.IndicatorQuery
	if err := c.QueryParser(&q); err != nil {
		return q, errInvalidQuery()
	}
	return q, validateRequest(q)
}

// GetIndicators godoc
// @Summary      Indicadores de salud de stock
// @Description  Consumo diario, días hasta ruptura, rotación, estado y sugerencia de reorden por ítem.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        period_days  query  int     false  "Ventana en días (1-365). Vacío = configuración."
// @Param        category_id  query  string  false  "Filtrar por categoría"
// @Param        epi          query  bool    false  "Solo EPIs"
// @Success      200  {array}   dto.StockIndicatorDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/indicators [get]
func (h *StockHandler) GetIndicators(c *fiber.Ctx) error {
	q, err := parseIndicatorQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.indicators.ComputeIndicators(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":      len(list),
		"indicators": list,
	})
}

// GetSuggestions godoc
// @Summary      Sugerencias de reposición
// @Description  Ítems críticos y bajos, críticos primero y luego por días hasta ruptura, con precio
//
//	de la última compra y costo estimado.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        period_days  query  int     false  "Ventana en días (1-365)"
// @Param        category_id  query  string  false  "Filtrar por categoría"
// @Param        epi          query  bool    false  "Solo EPIs"
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/suggestions [get]
func (h *StockHandler) GetSuggestions(c *fiber.Ctx) error {
	q, err := parseIndicatorQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":       len(list),
		"suggestions": list,
	})
}
