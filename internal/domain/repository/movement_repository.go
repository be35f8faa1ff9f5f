package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// MovementRepository define el puerto de lectura del libro de entradas/salidas.
type MovementRepository interface {
	// ListMovements devuelve los movimientos de los ítems indicados con timestamp en [since, until].
	// itemIDs vacío = todos los ítems.
	ListMovements(ctx context.Context, itemIDs []string, since, until time.Time) ([]entity.MovementRecord, error)
}
