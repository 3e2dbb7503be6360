package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// KPIs del día y del mes en curso, más el Top-5 de productos del mes.
type DashboardSummaryDTO struct {
	Today PeriodMetricsDTO `json:"today"`
	Month PeriodMetricsDTO `json:"month"`

	// Top 5 productos por ingreso HT del mes
	TopProducts []TopProductDTO `json:"top_products"`

	DateLabel string `json:"date_label"` // ej: "mars 2026"
}

// PeriodMetricsDTO agregados de ventas de un período.
type PeriodMetricsDTO struct {
	SaleCount     int             `json:"sale_count"`
	UnitsSold     int             `json:"units_sold"`
	TotalHT       decimal.Decimal `json:"total_ht"`
	TVA           decimal.Decimal `json:"tva"`
	TotalTTC      decimal.Decimal `json:"total_ttc"`
	TotalTTCLabel string          `json:"total_ttc_label"` // importe formateado según la configuración regional
}

// TopProductDTO resumen de un producto para el widget del dashboard.
type TopProductDTO struct {
	ProductID        string          `json:"product_id"`
	Reference        string          `json:"reference"`
	ProductName      string          `json:"product_name"`
	QuantitySold     int             `json:"quantity_sold"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"` // (revenue - costo) / revenue * 100
}

// ProductRankingRequest parámetros de GET /api/reports/products.
type ProductRankingRequest struct {
	StartDate string `query:"start_date"` // YYYY-MM-DD, por defecto el día 1 del mes
	EndDate   string `query:"end_date"`   // YYYY-MM-DD inclusive, por defecto hoy
	TopN      int    `query:"top_n"`
}

// PeriodDTO rango de fechas inclusivo de un reporte.
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ProductRankingDTO ranking de productos por margen bruto con análisis Pareto.
type ProductRankingDTO struct {
	Period         PeriodDTO        `json:"period"`
	TotalRevenue   decimal.Decimal  `json:"total_revenue"`
	Ranking        []ProductRankDTO `json:"ranking"`
	ParetoProducts []ProductRankDTO `json:"pareto_products"`
}

// ProductRankDTO fila del ranking.
type ProductRankDTO struct {
	Rank             int             `json:"rank"`
	ProductID        string          `json:"product_id"`
	Reference        string          `json:"reference"`
	ProductName      string          `json:"product_name"`
	UnitsSold        int             `json:"units_sold"`
	GrossRevenue     decimal.Decimal `json:"gross_revenue"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	GrossProfit      decimal.Decimal `json:"gross_profit"`
	MarginPct        decimal.Decimal `json:"margin_pct"`
	RevenuePct       decimal.Decimal `json:"revenue_pct"`
	CumulativeRevPct decimal.Decimal `json:"cumulative_revenue_pct"`
	IsTopPareto      bool            `json:"is_top_pareto"`
}
