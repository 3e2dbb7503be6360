package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/StockPOS-api/internal/application/analytics"
	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/application/returns"
	"github.com/jhoicas/StockPOS-api/internal/application/sales"
	"github.com/jhoicas/StockPOS-api/internal/application/usecase"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC     *usecase.ProductUseCase
	AccessUC      *usecase.AccessUseCase
	ClientUC      *usecase.ClientUseCase
	AssignmentUC  *usecase.AssignmentUseCase
	Ledger        *inventory.Ledger
	Replenishment *inventory.ReplenishmentUseCase
	Composer      *sales.Composer
	Processor     *returns.Processor
	DashboardUC   *appanalytics.DashboardUseCase
	ReportUC      *appanalytics.ReportUseCase
	JWTSecret     string
	Log           zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token). La emisión de tokens es externa.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole(entity.RoleAdmin, entity.RoleManager)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.AccessUC, deps.Ledger, deps.Log)
	products.Post("/", managers, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Post("/:id/adjustments", productHandler.Adjust)
	products.Get("/:id/movements", productHandler.History)

	// Inventory
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Replenishment, deps.Log)
	invGroup.Get("/replenishment-list", managers, inventoryHandler.GetReplenishmentList)

	// Sales
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.Composer, deps.ProductUC, deps.AccessUC, deps.Log)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Patch("/lines/:lineId", saleHandler.UpdateLine)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Patch("/:id", saleHandler.Update)
	salesGroup.Delete("/:id", managers, saleHandler.Delete)

	// Returns / exchanges
	returnHandler := NewReturnHandler(deps.Processor, deps.ProductUC, deps.AccessUC, deps.Log)
	returnsGroup := protected.Group("/returns")
	returnsGroup.Post("/", returnHandler.Record)
	returnsGroup.Get("/:id", returnHandler.Get)
	returnsGroup.Post("/:id/restock", returnHandler.Restock)
	returnsGroup.Post("/:id/refund", returnHandler.Refund)
	returnsGroup.Post("/:id/process", returnHandler.Process)
	returnsGroup.Post("/:id/refuse", returnHandler.Refuse)

	exchanges := protected.Group("/exchanges")
	exchanges.Post("/", returnHandler.RecordExchange)
	exchanges.Get("/:id", returnHandler.GetExchange)
	exchanges.Post("/:id/finalize", returnHandler.FinalizeExchange)
	exchanges.Post("/:id/cancel", returnHandler.CancelExchange)

	// Clients
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC, deps.Log)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)

	// Assignments (admin/manager)
	assignments := protected.Group("/assignments", managers)
	assignmentHandler := NewAssignmentHandler(deps.AssignmentUC, deps.Log)
	assignments.Post("/", assignmentHandler.Create)
	assignments.Get("/", assignmentHandler.ListByUser)
	assignments.Delete("/:id", assignmentHandler.Delete)

	// Dashboard / reports
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.ReportUC, deps.Log)
	protected.Get("/dashboard/summary", managers, dashboardHandler.GetSummary)
	protected.Get("/reports/products", managers, dashboardHandler.GetProductRanking)
}
