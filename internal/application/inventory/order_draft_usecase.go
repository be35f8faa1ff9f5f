package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// OrderDraftUseCase arma borradores de pedido a partir de las sugerencias aceptadas y gestiona su
// ciclo de vida (edición, envío al proveedor, estados manuales).
type OrderDraftUseCase struct {
	orders        repository.PurchaseOrderRepository
	suppliers     repository.SupplierRepository
	replenishment *ReplenishmentUseCase
	renderer      OrderRenderer
	mailer        OrderMailer // nil = el envío solo cambia el estado
	log           zerolog.Logger
	now           func() time.Time
	newID         func() string
}

// NewOrderDraftUseCase construye el caso de uso.
func NewOrderDraftUseCase(
	orders repository.PurchaseOrderRepository,
	suppliers repository.SupplierRepository,
	replenishment *ReplenishmentUseCase,
	renderer OrderRenderer,
	mailer OrderMailer,
	log zerolog.Logger,
) *OrderDraftUseCase {
	return &OrderDraftUseCase{
		orders:        orders,
		suppliers:     suppliers,
		replenishment: replenishment,
		renderer:      renderer,
		mailer:        mailer,
		log:           log,
		now:           time.Now,
		newID:         func() string { return uuid.New().String() },
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *OrderDraftUseCase) SetClock(now func() time.Time) { uc.now = now }

// BuildOrderDraft recalcula las sugerencias vigentes, toma las aceptadas en req.Lines (con cantidad
// y precio opcionalmente editados) y persiste el borrador. Un ítem sin sugerencia vigente es un
// error de validación.
func (uc *OrderDraftUseCase) BuildOrderDraft(ctx context.Context, req dto.BuildOrderDraftRequest, createdBy string) (*dto.PurchaseOrderDTO, error) {
	if len(req.Lines) == 0 {
		return nil, domain.NewValidationError("lines", "seleccione al menos una sugerencia")
	}
	if req.SupplierID != "" {
		if err := uc.requireSupplier(ctx, req.SupplierID); err != nil {
			return nil, err
		}
	}

	suggestions, err := uc.replenishment.GenerateSuggestions(ctx, repository.CatalogFilter{}, req.PeriodDays)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entity.ReplenishmentSuggestion, len(suggestions))
	for _, s := range suggestions {
		byID[s.ItemID] = s
	}

	accepted := make([]entity.ReplenishmentSuggestion, 0, len(req.Lines))
	for _, l := range req.Lines {
		s, ok := byID[l.ItemID]
		if !ok {
			return nil, domain.NewValidationError("lines", "el ítem "+l.ItemID+" no tiene sugerencia de reposición")
		}
		if l.Quantity != nil {
			if *l.Quantity <= 0 {
				return nil, domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
			}
			s.SuggestedQuantity = *l.Quantity
		}
		if l.UnitPrice != nil {
			if l.UnitPrice.IsNegative() {
				return nil, domain.NewValidationError("unit_price", "el precio no puede ser negativo")
			}
			s.ReferencePrice = *l.UnitPrice
		}
		accepted = append(accepted, s)
	}

	order := entity.NewPurchaseOrderDraft(uc.newID(), accepted, req.SupplierID, createdBy, uc.now())
	order.Notes = strings.TrimSpace(req.Notes)
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("order_id", order.ID).
		Int("lines", len(order.Lines)).
		Str("total", order.Total.StringFixed(2)).
		Msg("borrador de pedido creado")
	return toPurchaseOrderDTO(order), nil
}

// UpdateOrderLine edita cantidad y/o precio de una línea del borrador.
func (uc *OrderDraftUseCase) UpdateOrderLine(ctx context.Context, orderID, itemID string, req dto.UpdateOrderLineRequest) (*dto.PurchaseOrderDTO, error) {
	return uc.mutate(ctx, orderID, func(o *entity.PurchaseOrder) error {
		return o.UpdateLine(itemID, req.Quantity, req.UnitPrice, uc.now())
	})
}

// RemoveOrderLine quita una línea del borrador.
func (uc *OrderDraftUseCase) RemoveOrderLine(ctx context.Context, orderID, itemID string) (*dto.PurchaseOrderDTO, error) {
	return uc.mutate(ctx, orderID, func(o *entity.PurchaseOrder) error {
		return o.RemoveLine(itemID, uc.now())
	})
}

// SetSupplier asigna el proveedor del borrador.
func (uc *OrderDraftUseCase) SetSupplier(ctx context.Context, orderID string, req dto.SetOrderSupplierRequest) (*dto.PurchaseOrderDTO, error) {
	if err := uc.requireSupplier(ctx, req.SupplierID); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, orderID, func(o *entity.PurchaseOrder) error {
		return o.SetSupplier(req.SupplierID, uc.now())
	})
}

// SubmitOrder valida el borrador, genera el PDF, lo envía al proveedor y pasa el pedido a sent.
// Si el envío falla, o no hay correo configurado (domain.ErrUnavailable), el pedido sigue en draft.
func (uc *OrderDraftUseCase) SubmitOrder(ctx context.Context, orderID string) (*dto.PurchaseOrderDTO, error) {
	order, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.OrderStatusDraft {
		return nil, domain.NewInvalidStateError("purchase_order", "submit", string(order.Status))
	}
	if err := order.ValidateForSubmit(); err != nil {
		return nil, err
	}
	supplier, err := uc.suppliers.GetByID(ctx, order.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.NewValidationError("supplier_id", "proveedor "+order.SupplierID+" inexistente")
	}

	// draft→sent solo tras un envío exitoso; sin correo el pedido queda en draft
	if uc.mailer == nil {
		uc.log.Warn().Str("order_id", order.ID).Msg("correo no configurado: pedido no enviado")
		return nil, fmt.Errorf("enviar pedido al proveedor: %w", domain.ErrUnavailable)
	}
	document, err := uc.renderer.RenderPurchaseOrder(ctx, order, supplier)
	if err != nil {
		return nil, fmt.Errorf("generar PDF del pedido: %w", err)
	}
	if err := uc.mailer.SendPurchaseOrder(ctx, order, supplier, document); err != nil {
		uc.log.Warn().Err(err).Str("order_id", order.ID).Str("supplier_id", supplier.ID).Msg("envío de pedido fallido")
		return nil, fmt.Errorf("enviar pedido al proveedor: %w", err)
	}

	if err := order.TransitionTo(entity.OrderStatusSent, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Str("supplier_id", supplier.ID).Msg("pedido enviado")
	return toPurchaseOrderDTO(order), nil
}

// ChangeOrderStatus aplica una transición manual (confirmed, received, cancelled).
// sent solo se alcanza con SubmitOrder.
func (uc *OrderDraftUseCase) ChangeOrderStatus(ctx context.Context, orderID string, req dto.ChangeOrderStatusRequest) (*dto.PurchaseOrderDTO, error) {
	next, ok := entity.ParseOrderStatus(req.Status)
	if !ok || next == entity.OrderStatusDraft || next == entity.OrderStatusSent {
		return nil, domain.NewValidationError("status", "estado "+req.Status+" no admitido")
	}
	return uc.mutate(ctx, orderID, func(o *entity.PurchaseOrder) error {
		return o.TransitionTo(next, uc.now())
	})
}

// RenderOrderPDF devuelve el PDF del pedido (vista previa o reimpresión).
func (uc *OrderDraftUseCase) RenderOrderPDF(ctx context.Context, orderID string) ([]byte, error) {
	order, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	var supplier *entity.Supplier
	if order.SupplierID != "" {
		if supplier, err = uc.suppliers.GetByID(ctx, order.SupplierID); err != nil {
			return nil, err
		}
	}
	return uc.renderer.RenderPurchaseOrder(ctx, order, supplier)
}

// GetOrder devuelve un pedido.
func (uc *OrderDraftUseCase) GetOrder(ctx context.Context, orderID string) (*dto.PurchaseOrderDTO, error) {
	order, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toPurchaseOrderDTO(order), nil
}

// ListOrders lista pedidos, opcionalmente filtrados por estado.
func (uc *OrderDraftUseCase) ListOrders(ctx context.Context, status string, page dto.PageRequest) ([]dto.PurchaseOrderDTO, error) {
	if status != "" {
		st, ok := entity.ParseOrderStatus(status)
		if !ok {
			return nil, domain.NewValidationError("status", "estado "+status+" desconocido")
		}
		status = string(st)
	}
	page.DefaultPage()
	list, err := uc.orders.List(ctx, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PurchaseOrderDTO, 0, len(list))
	for _, o := range list {
		out = append(out, *toPurchaseOrderDTO(o))
	}
	return out, nil
}

func (uc *OrderDraftUseCase) mutate(ctx context.Context, orderID string, fn func(o *entity.PurchaseOrder) error) (*dto.PurchaseOrderDTO, error) {
	order, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := uc.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return toPurchaseOrderDTO(order), nil
}

func (uc *OrderDraftUseCase) load(ctx context.Context, orderID string) (*entity.PurchaseOrder, error) {
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (uc *OrderDraftUseCase) requireSupplier(ctx context.Context, supplierID string) error {
	s, err := uc.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return err
	}
	if s == nil {
		return domain.NewValidationError("supplier_id", "proveedor "+supplierID+" inexistente")
	}
	return nil
}
