package inventory

import (
	"math"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

const (
	// DefaultPeriodDays ventana de consumo por defecto.
	DefaultPeriodDays = 30
	// SafetyDays días de consumo que se mantienen como stock de seguridad.
	SafetyDays = 15
	// CoverageDays horizonte de consumo que debe cubrir una reposición.
	CoverageDays = 30

	floatTolerance = 1e-9
)

// ComputeIndicators calcula un StockIndicator por ítem (servicio de dominio, función pura).
//
// Solo se consideran salidas (OUT) con timestamp en [now - periodDays, now]. Es seguro invocarla
// de forma concurrente: no comparte estado mutable.
func ComputeIndicators(items []entity.CatalogItem, movements []entity.MovementRecord, periodDays int, now time.Time) ([]entity.StockIndicator, error) {
	if periodDays <= 0 {
		return nil, domain.NewValidationError("period_days", "la ventana debe ser un entero positivo")
	}
	consumed := ConsumptionByItem(movements, periodDays, now)

	out := make([]entity.StockIndicator, 0, len(items))
	for _, it := range items {
		out = append(out, ComputeIndicator(it, consumed[it.ID], periodDays))
	}
	return out, nil
}

// ConsumptionByItem suma las salidas por ítem dentro de la ventana.
func ConsumptionByItem(movements []entity.MovementRecord, periodDays int, now time.Time) map[string]int {
	since := now.AddDate(0, 0, -periodDays)
	consumed := make(map[string]int)
	for _, m := range movements {
		if m.Direction != entity.MovementOut {
			continue
		}
		if m.Timestamp.Before(since) || m.Timestamp.After(now) {
			continue
		}
		consumed[m.ItemID] += m.Quantity
	}
	return consumed
}

// ComputeIndicator deriva el indicador de un ítem dado su consumo total en la ventana.
func ComputeIndicator(item entity.CatalogItem, totalConsumed, periodDays int) entity.StockIndicator {
	minStock := item.MinStock()
	avg := float64(totalConsumed) / float64(periodDays)

	ind := entity.StockIndicator{
		ItemID:              item.ID,
		CurrentStock:        item.Quantity,
		MinStock:            minStock,
		MaxStock:            item.MaxStock(),
		AvgDailyConsumption: round2(avg),
		TurnoverRate:        round2(turnover(totalConsumed, item.Quantity)),
		Status:              Classify(item),
		ReorderSuggestion:   ReorderSuggestion(item.Quantity, minStock, avg),
	}
	if avg > 0 {
		days := int(math.Floor(float64(item.Quantity)/avg + floatTolerance))
		ind.DaysUntilStockout = &days
	}
	return ind
}

// turnover usa max(stock, 1) como denominador para no dividir por cero con stock agotado.
// Es una aproximación conocida: con stock cero la rotación queda sobrestimada.
func turnover(totalConsumed, currentStock int) float64 {
	den := currentStock
	if den < 1 {
		den = 1
	}
	return float64(totalConsumed) / float64(den)
}

// Classify aplica la política de estado en orden de precedencia:
// sin stock → critical; ≤ mínimo → warning; ≥ máximo → excess; en otro caso ok.
func Classify(item entity.CatalogItem) entity.StockStatus {
	switch q := item.Quantity; {
	case q == 0:
		return entity.StockStatusCritical
	case q <= item.MinStock():
		return entity.StockStatusWarning
	case q >= item.MaxStock():
		return entity.StockStatusExcess
	default:
		return entity.StockStatusOK
	}
}

// ReorderSuggestion cantidad a pedir para cubrir CoverageDays de consumo más SafetyDays de
// seguridad, descontando el stock actual. Cero si el stock no está bajo el punto de reorden.
//
//	safety = avg × 15
//	reorderPoint = min + safety
//	sugerencia = ceil(avg × 30 + safety − stock), mínimo 0
func ReorderSuggestion(currentStock, minStock int, avgDailyConsumption float64) int {
	safety := avgDailyConsumption * SafetyDays
	reorderPoint := float64(minStock) + safety
	if float64(currentStock) >= reorderPoint {
		return 0
	}
	need := avgDailyConsumption*CoverageDays + safety - float64(currentStock)
	// la tolerancia evita que 10.000000000000002 se convierta en 11
	qty := int(math.Ceil(need - floatTolerance))
	if qty < 0 {
		return 0
	}
	return qty
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
