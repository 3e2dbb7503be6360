package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/StockPOS-api/internal/application/analytics"
	"github.com/jhoicas/StockPOS-api/internal/application/dto"
)

// DashboardHandler maneja los endpoints de dashboard y reportes.
type DashboardHandler struct {
	dashboard *appanalytics.DashboardUseCase
	reports   *appanalytics.ReportUseCase
	log       zerolog.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(dashboard *appanalytics.DashboardUseCase, reports *appanalytics.ReportUseCase, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, reports: reports, log: log}
}

// GetSummary devuelve el resumen de ventas del día y del mes en curso.
// GET /api/dashboard/summary
//
// No requiere parámetros; las fechas se calculan en el servidor.
// @Summary      Resumen de ventas
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.dashboard.GetSummary(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(summary)
}

// GetProductRanking ranking de productos por margen bruto con marca Pareto.
// @Summary      Ranking de productos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end_date    query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Param        top_n       query  int     false  "Cantidad de productos"  default(20)
// @Success      200         {object}  dto.ProductRankingDTO
// @Failure      400         {object}  dto.ErrorResponse
// @Router       /api/reports/products [get]
func (h *DashboardHandler) GetProductRanking(c *fiber.Ctx) error {
	var req dto.ProductRankingRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	report, err := h.reports.GetProductRanking(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(report)
}
