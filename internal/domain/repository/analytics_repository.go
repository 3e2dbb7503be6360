package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesMetrics agregados de ventas en un período.
type SalesMetrics struct {
	SaleCount int
	UnitsSold int
	TotalHT   decimal.Decimal
	TVA       decimal.Decimal
	TotalTTC  decimal.Decimal
}

// ProductSalesResult resultado crudo de ventas por producto.
type ProductSalesResult struct {
	ProductID    string
	Reference    string
	ProductName  string
	UnitsSold    int
	GrossRevenue decimal.Decimal // Σ total HT de las líneas
	TotalCost    decimal.Decimal // unidades * costo de compra actual
}

// AnalyticsRepository consultas de solo lectura sobre ventas.
type AnalyticsRepository interface {
	// GetSalesMetrics agrega las ventas no anuladas del rango [start, end).
	GetSalesMetrics(ctx context.Context, start, end time.Time) (SalesMetrics, error)
	// GetProductSales devuelve los productos más vendidos por ingreso HT.
	GetProductSales(ctx context.Context, start, end time.Time, limit int) ([]ProductSalesResult, error)
}
