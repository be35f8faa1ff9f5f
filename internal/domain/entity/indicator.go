package entity

// StockStatus clasificación de salud del stock de un ítem.
type StockStatus string

const (
	StockStatusCritical StockStatus = "critical"
	StockStatusWarning  StockStatus = "warning"
	StockStatusOK       StockStatus = "ok"
	StockStatusExcess   StockStatus = "excess"
)

// StockIndicator indicador derivado (no persistido) de un ítem para una ventana de consumo.
// DaysUntilStockout es nil cuando no hay consumo en la ventana: sin consumo no hay horizonte.
type StockIndicator struct {
	ItemID              string
	CurrentStock        int
	MinStock            int
	MaxStock            int
	AvgDailyConsumption float64
	DaysUntilStockout   *int
	TurnoverRate        float64
	Status              StockStatus
	ReorderSuggestion   int
}
