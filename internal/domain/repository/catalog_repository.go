package repository

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// CatalogFilter filtro de lectura del catálogo. CategoryID vacío = todas las categorías.
type CatalogFilter struct {
	CategoryID string
	OnlyEPI    bool
}

// CatalogRepository define el puerto de lectura/escritura de cantidades del catálogo (DIP).
// Las listas excluyen ítems con borrado lógico.
type CatalogRepository interface {
	ListItems(ctx context.Context, filter CatalogFilter) ([]entity.CatalogItem, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.CatalogItem, error)
	// WriteQuantity sobrescribe la cantidad contable de un ítem. Escritura individual, sin
	// garantía transaccional entre ítems.
	WriteQuantity(ctx context.Context, itemID string, quantity int) error
}
