package repository

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// PurchaseHistoryRepository define el puerto de consulta de compras anteriores por ítem.
type PurchaseHistoryRepository interface {
	// ListLastPricedPurchases devuelve, por ítem, hasta perItem compras con precio unitario
	// registrado, de la más reciente a la más antigua. Las compras sin precio no cuentan para el
	// límite.
	ListLastPricedPurchases(ctx context.Context, itemIDs []string, perItem int) (map[string][]entity.PurchaseRecord, error)
}
