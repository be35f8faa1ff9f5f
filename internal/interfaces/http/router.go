package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Indicators    indicatorService
	Replenishment replenishmentService
	Counts        countService
	Orders        orderService
	Suppliers     supplierService
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token); admin pasa siempre RequireRole
	stock := app.Group("/api/stock", AuthMiddleware(deps.JWTSecret))
	counting := RequireRole(jwt.RoleAlmoxarife)
	buying := RequireRole(jwt.RoleComprador)

	stockHandler := NewStockHandler(deps.Indicators, deps.Replenishment)
	stock.Get("/indicators", stockHandler.GetIndicators)
	stock.Get("/suggestions", stockHandler.GetSuggestions)

	counts := stock.Group("/counts")
	countHandler := NewCountHandler(deps.Counts)
	counts.Get("/", countHandler.List)
	counts.Post("/", counting, countHandler.Start)
	counts.Get("/:id", countHandler.Get)
	counts.Get("/:id/progress", countHandler.Progress)
	counts.Get("/:id/sheet.xlsx", countHandler.ExportSheet)
	counts.Post("/:id/sheet", counting, countHandler.ImportSheet)
	counts.Put("/:id/items/:item_id", counting, countHandler.RecordCount)
	counts.Post("/:id/finish", counting, countHandler.Finish)
	counts.Post("/:id/cancel", counting, countHandler.Cancel)
	counts.Post("/:id/adjustments/retry", counting, countHandler.RetryAdjustments)

	orders := stock.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders)
	orders.Get("/", orderHandler.List)
	orders.Post("/drafts", buying, orderHandler.CreateDraft)
	orders.Get("/:id", orderHandler.Get)
	orders.Get("/:id/pdf", orderHandler.PDF)
	orders.Patch("/:id/lines/:item_id", buying, orderHandler.UpdateLine)
	orders.Delete("/:id/lines/:item_id", buying, orderHandler.RemoveLine)
	orders.Put("/:id/supplier", buying, orderHandler.SetSupplier)
	orders.Post("/:id/submit", buying, orderHandler.Submit)
	orders.Put("/:id/status", buying, orderHandler.ChangeStatus)

	suppliers := stock.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.Suppliers)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Post("/", buying, supplierHandler.Create)
	suppliers.Get("/:id", supplierHandler.Get)
}
