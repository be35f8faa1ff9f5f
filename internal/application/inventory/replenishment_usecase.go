package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// purchasesPerItem compras con precio consultadas por ítem para el precio de referencia.
const purchasesPerItem = 5

// ReplenishmentUseCase genera la lista de reposición a partir de los indicadores y del
// historial de compras.
type ReplenishmentUseCase struct {
	indicators *IndicatorsUseCase
	purchases  repository.PurchaseHistoryRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	indicators *IndicatorsUseCase,
	purchases repository.PurchaseHistoryRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		indicators: indicators,
		purchases:  purchases,
	}
}

// GenerateSuggestions devuelve las sugerencias de los ítems críticos y bajos, críticos primero.
func (uc *ReplenishmentUseCase) GenerateSuggestions(
	ctx context.Context,
	filter repository.CatalogFilter,
	periodDays int,
) ([]entity.ReplenishmentSuggestion, error) {
	snap, err := uc.indicators.Snapshot(ctx, filter, periodDays)
	if err != nil {
		return nil, err
	}

	// solo se consulta historial de los ítems que van a sugerirse
	var ids []string
	for _, ind := range snap.Indicators {
		if ind.Status == entity.StockStatusCritical || ind.Status == entity.StockStatusWarning {
			ids = append(ids, ind.ItemID)
		}
	}
	if len(ids) == 0 {
		return []entity.ReplenishmentSuggestion{}, nil
	}

	history, err := uc.purchases.ListLastPricedPurchases(ctx, ids, purchasesPerItem)
	if err != nil {
		return nil, fmt.Errorf("historial de compras: %w", err)
	}
	return domaininv.AggregateSuggestions(snap.Items, snap.Indicators, history), nil
}

// GenerateReplenishmentList devuelve las sugerencias con costo estimado y ranking de prioridad
// (1 = más urgente).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(
	ctx context.Context,
	q dto.IndicatorQuery,
) ([]dto.ReplenishmentSuggestionDTO, error) {
	suggestions, err := uc.GenerateSuggestions(ctx, repository.CatalogFilter{CategoryID: q.CategoryID, OnlyEPI: q.OnlyEPI}, q.PeriodDays)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(suggestions))
	for i, s := range suggestions {
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ItemID:             s.ItemID,
			Description:        s.Description,
			Unit:               s.Unit,
			Kind:               string(s.Kind),
			CurrentStock:       s.CurrentStock,
			MinStock:           s.MinStock,
			DaysUntilStockout:  s.DaysUntilStockout,
			SuggestedQuantity:  s.SuggestedQuantity,
			ReferencePrice:     s.ReferencePrice,
			EstimatedOrderCost: s.ReferencePrice.Mul(decimal.NewFromInt(int64(s.SuggestedQuantity))),
			LastSupplierID:     s.LastSupplierID,
			Priority:           i + 1,
		})
	}
	return out, nil
}
