package inventory

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando el repositorio de
// catálogo atado a esa tx. Solo lo usa el modo atómico de ajustes.
type TxRunner interface {
	Run(ctx context.Context, fn func(catalog repository.CatalogRepository) error) error
}

// SnapshotCache caché versionada de derivaciones (indicadores). Bump invalida todo lo cacheado;
// se invoca después de escribir ajustes en el catálogo. Una implementación nil-safe puede
// simplemente delegar en el loader.
type SnapshotCache interface {
	FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error
	Bump(ctx context.Context) error
}

// OrderRenderer genera el documento (PDF) de un pedido de compra.
type OrderRenderer interface {
	RenderPurchaseOrder(ctx context.Context, order *entity.PurchaseOrder, supplier *entity.Supplier) ([]byte, error)
}

// OrderMailer envía el pedido al proveedor con el documento adjunto.
type OrderMailer interface {
	SendPurchaseOrder(ctx context.Context, order *entity.PurchaseOrder, supplier *entity.Supplier, document []byte) error
}
