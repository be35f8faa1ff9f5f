package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

const catalogColumns = `id, code, description, unit, COALESCE(category_id, ''), quantity, min_quantity, max_quantity, is_epi, created_at, updated_at, deleted_at`

// CatalogRepo implementación de CatalogRepository sobre PostgreSQL (usable con pool o tx).
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// ListItems lista los ítems vigentes (sin borrado lógico) ordenados por código.
func (r *CatalogRepo) ListItems(ctx context.Context, filter repository.CatalogFilter) ([]entity.CatalogItem, error) {
	query := `
		SELECT ` + catalogColumns + `
		FROM catalog_items
		WHERE deleted_at IS NULL
		  AND ($1::text = '' OR category_id = $1::text)
		  AND (NOT $2::bool OR is_epi)
		ORDER BY code, id`
	rows, err := r.q.Query(ctx, query, filter.CategoryID, filter.OnlyEPI)
	if err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	return collectCatalogItems(rows)
}

// GetByIDs devuelve los ítems vigentes indicados; los inexistentes se omiten.
func (r *CatalogRepo) GetByIDs(ctx context.Context, ids []string) ([]entity.CatalogItem, error) {
	if len(ids) == 0 {
		return []entity.CatalogItem{}, nil
	}
	query := `
		SELECT ` + catalogColumns + `
		FROM catalog_items
		WHERE deleted_at IS NULL AND id = ANY($1)
		ORDER BY code, id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get catalog items: %w", err)
	}
	return collectCatalogItems(rows)
}

// WriteQuantity sobrescribe la cantidad contable. ErrNotFound si el ítem no existe o está borrado.
func (r *CatalogRepo) WriteQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 0 {
		return domain.NewValidationError("quantity", "la cantidad no puede ser negativa")
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE catalog_items SET quantity = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		itemID, quantity,
	)
	if err != nil {
		return fmt.Errorf("write quantity %s: %w", itemID, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectCatalogItems(rows pgx.Rows) ([]entity.CatalogItem, error) {
	defer rows.Close()
	list := make([]entity.CatalogItem, 0)
	for rows.Next() {
		var it entity.CatalogItem
		if err := rows.Scan(
			&it.ID, &it.Code, &it.Description, &it.Unit, &it.CategoryID, &it.Quantity,
			&it.MinQuantity, &it.MaxQuantity, &it.IsEPI, &it.CreatedAt, &it.UpdatedAt, &it.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}
