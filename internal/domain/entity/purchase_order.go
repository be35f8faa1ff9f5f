package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
)

// OrderStatus ciclo de vida de un pedido de compra.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSent      OrderStatus = "sent"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// transiciones permitidas; draft→sent solo ocurre tras un envío exitoso.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:     {OrderStatusSent, OrderStatusCancelled},
	OrderStatusSent:      {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusReceived, OrderStatusCancelled},
}

// ParseOrderStatus valida un estado recibido desde fuera.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrderStatusDraft, OrderStatusSent, OrderStatusConfirmed, OrderStatusReceived, OrderStatusCancelled:
		return st, true
	}
	return "", false
}

// OrderLine línea de pedido. LineTotal = Quantity × UnitPrice.
type OrderLine struct {
	ItemID      string
	Description string
	Unit        string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// PurchaseOrder borrador/pedido de compra generado a partir de sugerencias de reposición.
// Una vez generado es una propuesta congelada: editar líneas no recalcula indicadores.
type PurchaseOrder struct {
	ID         string
	SupplierID string // opcional hasta el envío
	Lines      []OrderLine
	Total      decimal.Decimal
	Status     OrderStatus
	Notes      string
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SentAt     *time.Time
}

// NewPurchaseOrderDraft materializa un borrador a partir de las sugerencias aceptadas.
// Sugerencias repetidas para el mismo ítem se ignoran después de la primera.
func NewPurchaseOrderDraft(id string, suggestions []ReplenishmentSuggestion, supplierID, createdBy string, now time.Time) *PurchaseOrder {
	o := &PurchaseOrder{
		ID:         id,
		SupplierID: strings.TrimSpace(supplierID),
		Status:     OrderStatusDraft,
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
		Lines:      make([]OrderLine, 0, len(suggestions)),
	}
	seen := make(map[string]struct{}, len(suggestions))
	for _, s := range suggestions {
		if _, dup := seen[s.ItemID]; dup {
			continue
		}
		seen[s.ItemID] = struct{}{}
		o.Lines = append(o.Lines, OrderLine{
			ItemID:      s.ItemID,
			Description: s.Description,
			Unit:        s.Unit,
			Quantity:    s.SuggestedQuantity,
			UnitPrice:   s.ReferencePrice,
		})
	}
	o.recalculate()
	return o
}

func (o *PurchaseOrder) recalculate() {
	total := decimal.Zero
	for i := range o.Lines {
		l := &o.Lines[i]
		l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		total = total.Add(l.LineTotal)
	}
	o.Total = total
}

func (o *PurchaseOrder) lineIndex(itemID string) int {
	for i, l := range o.Lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

func (o *PurchaseOrder) requireDraft(op string) error {
	if o.Status != OrderStatusDraft {
		return domain.NewInvalidStateError("purchase_order", op, string(o.Status))
	}
	return nil
}

// UpdateLine edita cantidad y/o precio de una línea del borrador.
func (o *PurchaseOrder) UpdateLine(itemID string, quantity *int, unitPrice *decimal.Decimal, now time.Time) error {
	if err := o.requireDraft("updateLine"); err != nil {
		return err
	}
	i := o.lineIndex(itemID)
	if i < 0 {
		return domain.NewValidationError("item_id", "el ítem "+itemID+" no está en el pedido")
	}
	if quantity != nil && *quantity <= 0 {
		return domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
	}
	if unitPrice != nil && unitPrice.IsNegative() {
		return domain.NewValidationError("unit_price", "el precio no puede ser negativo")
	}
	if quantity != nil {
		o.Lines[i].Quantity = *quantity
	}
	if unitPrice != nil {
		o.Lines[i].UnitPrice = *unitPrice
	}
	o.UpdatedAt = now
	o.recalculate()
	return nil
}

// RemoveLine quita una línea del borrador (deselección).
func (o *PurchaseOrder) RemoveLine(itemID string, now time.Time) error {
	if err := o.requireDraft("removeLine"); err != nil {
		return err
	}
	i := o.lineIndex(itemID)
	if i < 0 {
		return domain.NewValidationError("item_id", "el ítem "+itemID+" no está en el pedido")
	}
	o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
	o.UpdatedAt = now
	o.recalculate()
	return nil
}

// SetSupplier asigna el proveedor del borrador.
func (o *PurchaseOrder) SetSupplier(supplierID string, now time.Time) error {
	if err := o.requireDraft("setSupplier"); err != nil {
		return err
	}
	o.SupplierID = strings.TrimSpace(supplierID)
	o.UpdatedAt = now
	return nil
}

// ValidateForSubmit exige al menos una línea con cantidad positiva y un proveedor.
func (o *PurchaseOrder) ValidateForSubmit() error {
	if len(o.Lines) == 0 {
		return domain.NewValidationError("lines", "el pedido necesita al menos una línea")
	}
	for _, l := range o.Lines {
		if l.Quantity <= 0 {
			return domain.NewValidationError("lines", "la línea "+l.ItemID+" tiene cantidad cero")
		}
	}
	if o.SupplierID == "" {
		return domain.NewValidationError("supplier_id", "el proveedor es obligatorio")
	}
	return nil
}

// TransitionTo avanza el estado si la transición está permitida.
func (o *PurchaseOrder) TransitionTo(next OrderStatus, now time.Time) error {
	for _, allowed := range orderTransitions[o.Status] {
		if allowed == next {
			o.Status = next
			o.UpdatedAt = now
			if next == OrderStatusSent {
				o.SentAt = &now
			}
			return nil
		}
	}
	return domain.NewInvalidStateError("purchase_order", "transition to "+string(next), string(o.Status))
}
