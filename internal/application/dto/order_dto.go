package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineInput sugerencia aceptada, con cantidad/precio opcionalmente editados.
type OrderLineInput struct {
	ItemID    string           `json:"item_id" validate:"required"`
	Quantity  *int             `json:"quantity,omitempty" validate:"omitempty,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// BuildOrderDraftRequest body para POST /api/stock/orders/drafts.
type BuildOrderDraftRequest struct {
	SupplierID string           `json:"supplier_id,omitempty"`
	PeriodDays int              `json:"period_days,omitempty" validate:"omitempty,min=1,max=365"`
	Lines      []OrderLineInput `json:"lines" validate:"required,min=1,dive"`
	Notes      string           `json:"notes,omitempty" validate:"max=500"`
}

// UpdateOrderLineRequest body para PATCH /api/stock/orders/:id/lines/:item_id.
type UpdateOrderLineRequest struct {
	Quantity  *int             `json:"quantity,omitempty" validate:"omitempty,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// SetOrderSupplierRequest body para PUT /api/stock/orders/:id/supplier.
type SetOrderSupplierRequest struct {
	SupplierID string `json:"supplier_id" validate:"required"`
}

// ChangeOrderStatusRequest body para PUT /api/stock/orders/:id/status.
type ChangeOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed received cancelled"`
}

// OrderLineDTO línea de pedido.
type OrderLineDTO struct {
	ItemID      string          `json:"item_id"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PurchaseOrderDTO pedido de compra.
type PurchaseOrderDTO struct {
	ID         string          `json:"id"`
	SupplierID string          `json:"supplier_id,omitempty"`
	Status     string          `json:"status"`
	Lines      []OrderLineDTO  `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	Notes      string          `json:"notes,omitempty"`
	CreatedBy  string          `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	SentAt     *time.Time      `json:"sent_at,omitempty"`
}
