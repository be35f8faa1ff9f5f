package http

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/excel"
)

// maxSheetSize tamaño máximo aceptado para una planilla importada.
const maxSheetSize = 5 << 20

type countService interface {
	StartCount(ctx context.Context, req dto.StartCountRequest, fallbackResponsible string) (*dto.CountSessionDTO, error)
	RecordCount(ctx context.Context, sessionID, itemID string, physicalQty *int) (*dto.CountEntryDTO, error)
	FinishCount(ctx context.Context, sessionID string) (*dto.FinishCountResponse, error)
	CancelCount(ctx context.Context, sessionID string) (*dto.CountSummaryDTO, error)
	RetryAdjustments(ctx context.Context, sessionID string, itemIDs []string) (*dto.AdjustmentReportDTO, error)
	Progress(ctx context.Context, sessionID string) (*dto.CountProgressDTO, error)
	GetSession(ctx context.Context, sessionID string) (*dto.CountSessionDTO, error)
	CountSheet(ctx context.Context, sessionID string) (*entity.CountSession, []entity.CatalogItem, error)
	ImportCounts(ctx context.Context, sessionID string, counts []dto.CountInput) (*dto.CountProgressDTO, error)
	ListSessions(ctx context.Context, activeOnly bool, page dto.PageRequest) ([]dto.CountSessionDTO, error)
}

// CountHandler maneja las sesiones de inventario cíclico (protegido).
type CountHandler struct {
	uc countService
}

// NewCountHandler construye el handler.
func NewCountHandler(uc countService) *CountHandler {
	return &CountHandler{uc: uc}
}

// Start godoc
// @Summary      Abrir sesión de conteo
// @Description  Congela la cantidad contable de los ítems del alcance. category_id vacío = todo el catálogo.
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StartCountRequest  true  "category_id, responsible (vacío = usuario del token)"
// @Success      201   {object}  dto.CountSessionDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/counts [post]
func (h *CountHandler) Start(c *fiber.Ctx) error {
	var in dto.StartCountRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
	}
	out, err := h.uc.StartCount(c.UserContext(), in, GetUserName(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar sesiones de conteo
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "Solo sesiones ACTIVE"
// @Param        limit   query  int   false  "Máximo 100"
// @Param        offset  query  int   false  "Desplazamiento"
// @Success      200  {array}  dto.CountSessionDTO
// @Router       /api/stock/counts [get]
func (h *CountHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondError(c, errInvalidQuery())
	}
	if err := validateRequest(page); err != nil {
		return respondError(c, err)
	}
	list, err := h.uc.ListSessions(c.UserContext(), c.QueryBool("active"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "sessions": list})
}

// Get godoc
// @Summary      Obtener sesión de conteo
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.CountSessionDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/counts/{id} [get]
func (h *CountHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetSession(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Progress godoc
// @Summary      Avance de la sesión
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.CountProgressDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/counts/{id}/progress [get]
func (h *CountHandler) Progress(c *fiber.Ctx) error {
	out, err := h.uc.Progress(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RecordCount godoc
// @Summary      Registrar conteo físico
// @Description  Sobrescribe el conteo anterior del ítem; physical_qty es obligatorio y null lo vuelve a pendiente.
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string                  true  "ID de la sesión"
// @Param        item_id  path  string                  true  "ID del ítem"
// @Param        body     body  dto.RecordCountRequest  true  "physical_qty"
// @Success      200  {object}  dto.CountEntryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/counts/{id}/items/{item_id} [put]
func (h *CountHandler) RecordCount(c *fiber.Ctx) error {
	var in dto.RecordCountRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	if !in.PhysicalQty.Set {
		return respondError(c, domain.NewValidationError("physical_qty", "obligatorio; use null para limpiar el conteo"))
	}
	out, err := h.uc.RecordCount(c.UserContext(), c.Params("id"), c.Params("item_id"), in.PhysicalQty.Value)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Finish godoc
// @Summary      Finalizar sesión y ajustar stock
// @Description  La sesión queda COMPLETED; las escrituras fallidas vienen en adjustment_report.failed.
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.FinishCountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/counts/{id}/finish [post]
func (h *CountHandler) Finish(c *fiber.Ctx) error {
	out, err := h.uc.FinishCount(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar sesión
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.CountSummaryDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/counts/{id}/cancel [post]
func (h *CountHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.CancelCount(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RetryAdjustments godoc
// @Summary      Reintentar ajustes fallidos
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true   "ID de la sesión"
// @Param        body  body  dto.RetryAdjustmentsRequest   false  "item_ids (vacío = todos los pendientes)"
// @Success      200  {object}  dto.AdjustmentReportDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/counts/{id}/adjustments/retry [post]
func (h *CountHandler) RetryAdjustments(c *fiber.Ctx) error {
	var in dto.RetryAdjustmentsRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
	}
	out, err := h.uc.RetryAdjustments(c.UserContext(), c.Params("id"), in.ItemIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ExportSheet godoc
// @Summary      Descargar planilla de conteo (XLSX)
// @Tags         counts
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/counts/{id}/sheet.xlsx [get]
func (h *CountHandler) ExportSheet(c *fiber.Ctx) error {
	session, items, err := h.uc.CountSheet(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	var buf bytes.Buffer
	if err := excel.WriteCountSheet(&buf, session, items); err != nil {
		return respondError(c, fmt.Errorf("generar planilla: %w", err))
	}
	c.Set(fiber.HeaderContentType, excel.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="contagem-%s.xlsx"`, session.ID))
	return c.Send(buf.Bytes())
}

// ImportSheet godoc
// @Summary      Importar planilla de conteo completada
// @Description  Registra en bloque la columna "Qtd física". Una fila inválida rechaza la planilla entera.
// @Tags         counts
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "ID de la sesión"
// @Param        file  formData  file    true  "Planilla XLSX"
// @Success      200  {object}  dto.CountProgressDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/counts/{id}/sheet [post]
func (h *CountHandler) ImportSheet(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, domain.NewValidationError("file", "archivo requerido"))
	}
	if fh.Size > maxSheetSize {
		return respondError(c, domain.NewValidationError("file", "la planilla supera 5 MB"))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	rows, err := excel.ReadCountSheet(f)
	if err != nil {
		return respondError(c, domain.NewValidationError("file", err.Error()))
	}
	counts := make([]dto.CountInput, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, dto.CountInput{ItemID: r.ItemID, PhysicalQty: r.PhysicalQty})
	}
	out, err := h.uc.ImportCounts(c.UserContext(), c.Params("id"), counts)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
