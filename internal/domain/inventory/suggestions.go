package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// AggregateSuggestions filtra los indicadores crítico/bajo y los convierte en sugerencias de
// reposición con precio de referencia.
//
// items se usa como índice (itemID → descripción/unidad) y purchases trae el historial de compras
// por ítem. Orden: críticos primero; luego menor DaysUntilStockout; los desconocidos al final.
func AggregateSuggestions(
	items []entity.CatalogItem,
	indicators []entity.StockIndicator,
	purchases map[string][]entity.PurchaseRecord,
) []entity.ReplenishmentSuggestion {
	itemByID := make(map[string]entity.CatalogItem, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
	}

	out := make([]entity.ReplenishmentSuggestion, 0)
	for _, ind := range indicators {
		var kind entity.SuggestionKind
		switch ind.Status {
		case entity.StockStatusCritical:
			kind = entity.SuggestionCritical
		case entity.StockStatusWarning:
			kind = entity.SuggestionLow
		default:
			continue
		}

		qty := ind.ReorderSuggestion
		// todo ítem crítico debe salir con una cantidad accionable
		if kind == entity.SuggestionCritical && qty == 0 {
			qty = 1
		}

		price, supplierID := ReferencePrice(purchases[ind.ItemID])
		it := itemByID[ind.ItemID]
		out = append(out, entity.ReplenishmentSuggestion{
			ItemID:            ind.ItemID,
			Description:       it.Description,
			Unit:              it.Unit,
			Kind:              kind,
			CurrentStock:      ind.CurrentStock,
			MinStock:          ind.MinStock,
			DaysUntilStockout: ind.DaysUntilStockout,
			SuggestedQuantity: qty,
			ReferencePrice:    price,
			LastSupplierID:    supplierID,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kind != b.Kind {
			return a.Kind == entity.SuggestionCritical
		}
		switch {
		case a.DaysUntilStockout == nil:
			return false
		case b.DaysUntilStockout == nil:
			return true
		default:
			return *a.DaysUntilStockout < *b.DaysUntilStockout
		}
	})
	return out
}

// ReferencePrice devuelve el precio unitario de la compra más reciente que lo registró, junto con
// su proveedor. Sin compras con precio devuelve cero ("sin datos de precio").
func ReferencePrice(history []entity.PurchaseRecord) (decimal.Decimal, string) {
	var latest *entity.PurchaseRecord
	for i := range history {
		p := &history[i]
		if p.UnitPrice == nil {
			continue
		}
		if latest == nil || p.Date.After(latest.Date) {
			latest = p
		}
	}
	if latest == nil {
		return decimal.Zero, ""
	}
	return *latest.UnitPrice, latest.SupplierID
}
