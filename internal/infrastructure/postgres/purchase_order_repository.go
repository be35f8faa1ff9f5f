package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo persiste pedidos de compra (purchase_orders + purchase_order_lines).
type PurchaseOrderRepo struct {
	db DB
}

// NewPurchaseOrderRepository construye el adaptador con el pool.
func NewPurchaseOrderRepository(db DB) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{db: db}
}

// Create inserta cabecera y líneas en una transacción.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO purchase_orders (id, supplier_id, status, notes, total, created_by, created_at, updated_at, sent_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			o.ID, nullableString(o.SupplierID), string(o.Status), o.Notes, o.Total, o.CreatedBy, o.CreatedAt, o.UpdatedAt, o.SentAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert purchase order: %w", err)
		}
		return insertOrderLines(ctx, tx, o)
	})
}

// Update reescribe cabecera y líneas.
func (r *PurchaseOrderRepo) Update(ctx context.Context, o *entity.PurchaseOrder) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `
			UPDATE purchase_orders
			SET supplier_id = $2, status = $3, notes = $4, total = $5, updated_at = $6, sent_at = $7
			WHERE id = $1`,
			o.ID, nullableString(o.SupplierID), string(o.Status), o.Notes, o.Total, o.UpdatedAt, o.SentAt,
		)
		if err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM purchase_order_lines WHERE order_id = $1`, o.ID); err != nil {
			return fmt.Errorf("delete order lines: %w", err)
		}
		return insertOrderLines(ctx, tx, o)
	})
}

func insertOrderLines(ctx context.Context, tx pgx.Tx, o *entity.PurchaseOrder) error {
	if len(o.Lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, l := range o.Lines {
		batch.Queue(`
			INSERT INTO purchase_order_lines (order_id, position, item_id, description, unit, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			o.ID, i, l.ItemID, l.Description, l.Unit, l.Quantity, l.UnitPrice, l.LineTotal,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido con sus líneas; (nil, nil) si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var (
		o        entity.PurchaseOrder
		supplier *string
		status   string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, supplier_id, status, notes, total, created_by, created_at, updated_at, sent_at
		FROM purchase_orders WHERE id = $1`, id,
	).Scan(&o.ID, &supplier, &status, &o.Notes, &o.Total, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt, &o.SentAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	o.SupplierID = derefString(supplier)
	o.Status = entity.OrderStatus(status)

	rows, err := r.db.Query(ctx, `
		SELECT item_id, description, unit, quantity, unit_price, line_total
		FROM purchase_order_lines WHERE order_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	o.Lines = make([]entity.OrderLine, 0)
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ItemID, &l.Description, &l.Unit, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// List lista pedidos del más reciente al más antiguo; status vacío = todos.
func (r *PurchaseOrderRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM purchase_orders
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan purchase order ids: %w", err)
	}
	out := make([]*entity.PurchaseOrder, 0, len(ids))
	for _, id := range ids {
		o, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if o != nil {
			out = append(out, o)
		}
	}
	return out, nil
}
