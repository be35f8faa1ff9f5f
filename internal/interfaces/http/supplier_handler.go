package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
)

type supplierService interface {
	Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierDTO, error)
	Get(ctx context.Context, id string) (*dto.SupplierDTO, error)
	List(ctx context.Context, limit, offset int) ([]dto.SupplierDTO, error)
}

// SupplierHandler maneja el registro de proveedores (protegido).
type SupplierHandler struct {
	uc supplierService
}

// NewSupplierHandler construye el handler.
func NewSupplierHandler(uc supplierService) *SupplierHandler {
	return &SupplierHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar proveedor
// @Tags         suppliers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSupplierRequest  true  "name, tax_id (CNPJ/CPF)"
// @Success      201   {object}  dto.SupplierDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/suppliers [post]
func (h *SupplierHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSupplierRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar proveedores
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo 100"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}  dto.SupplierDTO
// @Router       /api/stock/suppliers [get]
func (h *SupplierHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondError(c, errInvalidQuery())
	}
	if err := validateRequest(page); err != nil {
		return respondError(c, err)
	}
	page.DefaultPage()
	list, err := h.uc.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "suppliers": list})
}

// Get godoc
// @Summary      Obtener proveedor
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proveedor"
// @Success      200  {object}  dto.SupplierDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/suppliers/{id} [get]
func (h *SupplierHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
