package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.PurchaseHistoryRepository = (*PurchaseHistoryRepo)(nil)

// PurchaseHistoryRepo consulta las entradas por compra (tabla purchase_entries).
type PurchaseHistoryRepo struct {
	q Querier
}

// NewPurchaseHistoryRepository construye el adaptador.
func NewPurchaseHistoryRepository(q Querier) *PurchaseHistoryRepo {
	return &PurchaseHistoryRepo{q: q}
}

// ListLastPricedPurchases devuelve hasta perItem compras con precio por ítem, de la más reciente a
// la más antigua. El filtro de precio va antes de numerar las filas.
func (r *PurchaseHistoryRepo) ListLastPricedPurchases(ctx context.Context, itemIDs []string, perItem int) (map[string][]entity.PurchaseRecord, error) {
	out := make(map[string][]entity.PurchaseRecord, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT item_id, purchased_at, quantity, unit_price, supplier_id
		FROM (
			SELECT item_id, purchased_at, quantity, unit_price, supplier_id,
			       row_number() OVER (PARTITION BY item_id ORDER BY purchased_at DESC) AS rn
			FROM purchase_entries
			WHERE item_id = ANY($1) AND unit_price IS NOT NULL
		) p
		WHERE rn <= $2
		ORDER BY item_id, purchased_at DESC`
	rows, err := r.q.Query(ctx, query, itemIDs, perItem)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p        entity.PurchaseRecord
			price    decimal.NullDecimal
			supplier *string
		)
		if err := rows.Scan(&p.ItemID, &p.Date, &p.Quantity, &price, &supplier); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		if price.Valid {
			v := price.Decimal
			p.UnitPrice = &v
		}
		p.SupplierID = derefString(supplier)
		out[p.ItemID] = append(out[p.ItemID], p)
	}
	return out, rows.Err()
}
