// Package analytics contiene los casos de uso de reportes de ventas: el resumen del
// dashboard y el ranking de productos.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
	"github.com/jhoicas/StockPOS-api/pkg/money"
)

const dashboardTopProducts = 5 // número de productos en el widget del dashboard

var hundred = decimal.NewFromInt(100)

// DashboardUseCase genera el resumen de ventas del día y del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	formatter     *money.Formatter
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso. formatter da formato a los importes TTC.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, formatter *money.Formatter) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, formatter: formatter, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Tres llamadas en paralelo:
//  1. GetSalesMetrics(hoy)          → Today
//  2. GetSalesMetrics(mes)          → Month
//  3. GetProductSales(mes, top 5)   → TopProducts
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// ── Rangos de fecha (fin exclusivo) ───────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	// ── Goroutines para paralelizar las 3 consultas ───────────────────────────
	type metricsResult struct {
		m   repository.SalesMetrics
		err error
	}
	type topResult struct {
		rows []repository.ProductSalesResult
		err  error
	}

	todayCh := make(chan metricsResult, 1)
	monthCh := make(chan metricsResult, 1)
	topCh := make(chan topResult, 1)

	go func() {
		m, err := uc.analyticsRepo.GetSalesMetrics(ctx, todayStart, todayEnd)
		todayCh <- metricsResult{m, err}
	}()
	go func() {
		m, err := uc.analyticsRepo.GetSalesMetrics(ctx, monthStart, todayEnd)
		monthCh <- metricsResult{m, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetProductSales(ctx, monthStart, todayEnd, dashboardTopProducts)
		topCh <- topResult{rows, err}
	}()

	today := <-todayCh
	month := <-monthCh
	top := <-topCh

	if today.err != nil {
		return nil, domain.Persistence("dashboard: métricas de hoy", today.err)
	}
	if month.err != nil {
		return nil, domain.Persistence("dashboard: métricas del mes", month.err)
	}
	if top.err != nil {
		return nil, domain.Persistence("dashboard: top productos", top.err)
	}

	products := make([]dto.TopProductDTO, 0, len(top.rows))
	for _, r := range top.rows {
		products = append(products, dto.TopProductDTO{
			ProductID:        r.ProductID,
			Reference:        r.Reference,
			ProductName:      r.ProductName,
			QuantitySold:     r.UnitsSold,
			TotalRevenue:     money.Round(r.GrossRevenue),
			MarginPercentage: marginPct(r.GrossRevenue, r.TotalCost),
		})
	}

	return &dto.DashboardSummaryDTO{
		Today:       uc.period(today.m),
		Month:       uc.period(month.m),
		TopProducts: products,
		DateLabel:   monthLabel(now),
	}, nil
}

func (uc *DashboardUseCase) period(m repository.SalesMetrics) dto.PeriodMetricsDTO {
	return dto.PeriodMetricsDTO{
		SaleCount:     m.SaleCount,
		UnitsSold:     m.UnitsSold,
		TotalHT:       money.Round(m.TotalHT),
		TVA:           money.Round(m.TVA),
		TotalTTC:      money.Round(m.TotalTTC),
		TotalTTCLabel: uc.formatter.Format(m.TotalTTC),
	}
}

// marginPct (ingreso - costo) / ingreso * 100, 0 sin ingreso.
func marginPct(revenue, cost decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return revenue.Sub(cost).Div(revenue).Mul(hundred).Round(2)
}

// monthLabel devuelve una etiqueta legible del mes, ej: "mars 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
