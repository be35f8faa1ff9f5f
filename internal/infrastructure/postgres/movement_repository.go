package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo lectura del libro de entradas/salidas (tabla stock_movements).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// ListMovements devuelve los movimientos con occurred_at en [since, until]; itemIDs vacío = todos.
func (r *MovementRepo) ListMovements(ctx context.Context, itemIDs []string, since, until time.Time) ([]entity.MovementRecord, error) {
	if itemIDs == nil {
		itemIDs = []string{}
	}
	query := `
		SELECT item_id, quantity, occurred_at, direction
		FROM stock_movements
		WHERE occurred_at BETWEEN $1 AND $2
		  AND (cardinality($3::text[]) = 0 OR item_id = ANY($3::text[]))
		ORDER BY occurred_at`
	rows, err := r.q.Query(ctx, query, since, until, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	list := make([]entity.MovementRecord, 0)
	for rows.Next() {
		var (
			m   entity.MovementRecord
			dir string
		)
		if err := rows.Scan(&m.ItemID, &m.Quantity, &m.Timestamp, &dir); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Direction = entity.MovementDirection(dir)
		list = append(list, m)
	}
	return list, rows.Err()
}
