package dto

import "github.com/shopspring/decimal"

// IndicatorQuery parámetros de GET /api/stock/indicators y /api/stock/suggestions.
type IndicatorQuery struct {
	PeriodDays int    `query:"period_days" validate:"omitempty,min=1,max=365"`
	CategoryID string `query:"category_id"`
	OnlyEPI    bool   `query:"epi"`
}

// StockIndicatorDTO indicador de salud de stock de un ítem.
// DaysUntilStockout es null cuando no hubo consumo en la ventana.
type StockIndicatorDTO struct {
	ItemID              string  `json:"item_id"`
	Code                string  `json:"code"`
	Description         string  `json:"description"`
	CurrentStock        int     `json:"current_stock"`
	MinStock            int     `json:"min_stock"`
	MaxStock            int     `json:"max_stock"`
	AvgDailyConsumption float64 `json:"avg_daily_consumption"` // redondeado a 2 decimales
	DaysUntilStockout   *int    `json:"days_until_stockout"`
	TurnoverRate        float64 `json:"turnover_rate"` // consumo / max(stock, 1)
	Status              string  `json:"status"`        // critical | warning | ok | excess
	ReorderSuggestion   int     `json:"reorder_suggestion"`
}

// ReplenishmentSuggestionDTO representa una sugerencia de reposición para un ítem crítico o bajo.
type ReplenishmentSuggestionDTO struct {
	ItemID             string          `json:"item_id"`
	Description        string          `json:"description"`
	Unit               string          `json:"unit"`
	Kind               string          `json:"kind"` // critical | low
	CurrentStock       int             `json:"current_stock"`
	MinStock           int             `json:"min_stock"`
	DaysUntilStockout  *int            `json:"days_until_stockout"`
	SuggestedQuantity  int             `json:"suggested_quantity"`
	ReferencePrice     decimal.Decimal `json:"reference_price"`      // 0 = sin datos de precio
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedQuantity * ReferencePrice
	LastSupplierID     string          `json:"last_supplier_id,omitempty"`
	Priority           int             `json:"priority"` // 1 = más urgente
}
