package entity

import "github.com/shopspring/decimal"

// SuggestionKind tipo de sugerencia de reposición.
type SuggestionKind string

const (
	SuggestionCritical SuggestionKind = "critical"
	SuggestionLow      SuggestionKind = "low"
)

// ReplenishmentSuggestion sugerencia accionable de compra para un ítem en estado crítico o bajo.
// ReferencePrice en cero significa "sin datos de precio", no un error.
type ReplenishmentSuggestion struct {
	ItemID            string
	Description       string
	Unit              string
	Kind              SuggestionKind
	CurrentStock      int
	MinStock          int
	DaysUntilStockout *int
	SuggestedQuantity int
	ReferencePrice    decimal.Decimal
	LastSupplierID    string
}
