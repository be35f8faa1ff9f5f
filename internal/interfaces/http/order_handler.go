package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
)

type orderService interface {
	BuildOrderDraft(ctx context.Context, req dto.BuildOrderDraftRequest, createdBy string) (*dto.PurchaseOrderDTO, error)
	UpdateOrderLine(ctx context.Context, orderID, itemID string, req dto.UpdateOrderLineRequest) (*dto.PurchaseOrderDTO, error)
	RemoveOrderLine(ctx context.Context, orderID, itemID string) (*dto.PurchaseOrderDTO, error)
	SetSupplier(ctx context.Context, orderID string, req dto.SetOrderSupplierRequest) (*dto.PurchaseOrderDTO, error)
	SubmitOrder(ctx context.Context, orderID string) (*dto.PurchaseOrderDTO, error)
	ChangeOrderStatus(ctx context.Context, orderID string, req dto.ChangeOrderStatusRequest) (*dto.PurchaseOrderDTO, error)
	RenderOrderPDF(ctx context.Context, orderID string) ([]byte, error)
	GetOrder(ctx context.Context, orderID string) (*dto.PurchaseOrderDTO, error)
	ListOrders(ctx context.Context, status string, page dto.PageRequest) ([]dto.PurchaseOrderDTO, error)
}

// OrderHandler maneja los pedidos de compra generados desde las sugerencias (protegido).
type OrderHandler struct {
	uc orderService
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc orderService) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// CreateDraft godoc
// @Summary      Crear borrador de pedido desde sugerencias
// @Description  Cada línea debe corresponder a una sugerencia vigente; quantity y unit_price son opcionales.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BuildOrderDraftRequest  true  "lines, supplier_id opcional"
// @Success      201   {object}  dto.PurchaseOrderDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/orders/drafts [post]
func (h *OrderHandler) CreateDraft(c *fiber.Ctx) error {
	var in dto.BuildOrderDraftRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.BuildOrderDraft(c.UserContext(), in, GetUserName(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar pedidos de compra
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "draft | sent | confirmed | received | cancelled"
// @Param        limit   query  int     false  "Máximo 100"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.PurchaseOrderDTO
// @Router       /api/stock/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondError(c, errInvalidQuery())
	}
	if err := validateRequest(page); err != nil {
		return respondError(c, err)
	}
	list, err := h.uc.ListOrders(c.UserContext(), c.Query("status"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "orders": list})
}

// Get godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.PurchaseOrderDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateLine godoc
// @Summary      Editar línea del borrador
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true  "ID del pedido"
// @Param        item_id  path  string                      true  "ID del ítem"
// @Param        body     body  dto.UpdateOrderLineRequest  true  "quantity, unit_price"
// @Success      200  {object}  dto.PurchaseOrderDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/orders/{id}/lines/{item_id} [patch]
func (h *OrderHandler) UpdateLine(c *fiber.Ctx) error {
	var in dto.UpdateOrderLineRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.UpdateOrderLine(c.UserContext(), c.Params("id"), c.Params("item_id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RemoveLine godoc
// @Summary      Quitar línea del borrador
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id       path  string  true  "ID del pedido"
// @Param        item_id  path  string  true  "ID del ítem"
// @Success      200  {object}  dto.PurchaseOrderDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/orders/{id}/lines/{item_id} [delete]
func (h *OrderHandler) RemoveLine(c *fiber.Ctx) error {
	out, err := h.uc.RemoveOrderLine(c.UserContext(), c.Params("id"), c.Params("item_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetSupplier godoc
// @Summary      Asignar proveedor
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del pedido"
// @Param        body  body  dto.SetOrderSupplierRequest  true  "supplier_id"
// @Success      200  {object}  dto.PurchaseOrderDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/orders/{id}/supplier [put]
func (h *OrderHandler) SetSupplier(c *fiber.Ctx) error {
	var in dto.SetOrderSupplierRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.SetSupplier(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Submit godoc
// @Summary      Enviar pedido al proveedor
// @Description  Genera el PDF y lo envía por correo; el pedido pasa a sent solo si el envío tiene éxito.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.PurchaseOrderDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock/orders/{id}/submit [post]
func (h *OrderHandler) Submit(c *fiber.Ctx) error {
	out, err := h.uc.SubmitOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus godoc
// @Summary      Cambiar estado del pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del pedido"
// @Param        body  body  dto.ChangeOrderStatusRequest  true  "confirmed | received | cancelled"
// @Success      200  {object}  dto.PurchaseOrderDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/orders/{id}/status [put]
func (h *OrderHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeOrderStatusRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ChangeOrderStatus(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      PDF del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/orders/{id}/pdf [get]
func (h *OrderHandler) PDF(c *fiber.Ctx) error {
	id := c.Params("id")
	doc, err := h.uc.RenderOrderPDF(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="pedido-%s.pdf"`, id))
	return c.Send(doc)
}
