package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRecord es una compra histórica de un ítem (origen: entradas con nota fiscal).
// UnitPrice es nil cuando la entrada no registró precio.
type PurchaseRecord struct {
	ItemID     string
	Date       time.Time
	Quantity   int
	UnitPrice  *decimal.Decimal
	SupplierID string
}
