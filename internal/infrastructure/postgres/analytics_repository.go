package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura sobre ventas y márgenes.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetSalesMetrics agrega las ventas no anuladas en [start, end).
func (r *AnalyticsRepo) GetSalesMetrics(ctx context.Context, start, end time.Time) (repository.SalesMetrics, error) {
	const query = `
	SELECT
	    COUNT(*)                          AS sale_count,
	    COALESCE(SUM(s.total_ht), 0)      AS total_ht,
	    COALESCE(SUM(s.tva), 0)           AS tva,
	    COALESCE(SUM(s.total_ttc), 0)     AS total_ttc,
	    COALESCE((
	        SELECT SUM(l.quantity)
	        FROM sale_lines l
	        JOIN sales s2 ON s2.id = l.sale_id
	        WHERE s2.status <> $3 AND s2.sold_at >= $1 AND s2.sold_at < $2
	    ), 0)                             AS units_sold
	FROM sales s
	WHERE s.status <> $3
	  AND s.sold_at >= $1
	  AND s.sold_at < $2`

	var m repository.SalesMetrics
	err := r.q.QueryRow(ctx, query, start, end, entity.SaleStatusCancelled).Scan(
		&m.SaleCount, &m.TotalHT, &m.TVA, &m.TotalTTC, &m.UnitsSold,
	)
	if err != nil {
		return repository.SalesMetrics{}, fmt.Errorf("analytics.GetSalesMetrics: %w", wrap("sales metrics", err))
	}
	return m, nil
}

// GetProductSales agrupa las líneas por producto. Costo = unidades × costo promedio actual.
// limit <= 0 devuelve todos.
func (r *AnalyticsRepo) GetProductSales(ctx context.Context, start, end time.Time, limit int) ([]repository.ProductSalesResult, error) {
	const query = `
	SELECT
	    l.product_id,
	    COALESCE(p.reference, '')                                  AS reference,
	    MAX(l.product_name)                                        AS product_name,
	    SUM(l.quantity)                                            AS units_sold,
	    SUM(l.total_ht)                                            AS gross_revenue,
	    SUM(l.quantity) * COALESCE(MAX(p.purchase_cost), 0)        AS total_cost
	FROM sale_lines l
	JOIN sales         s ON s.id = l.sale_id
	LEFT JOIN products p ON p.id = l.product_id
	WHERE s.status <> $3
	  AND s.sold_at >= $1
	  AND s.sold_at < $2
	GROUP BY l.product_id, p.reference
	ORDER BY gross_revenue DESC, l.product_id
	LIMIT $4`

	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := r.q.Query(ctx, query, start, end, entity.SaleStatusCancelled, lim)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetProductSales: %w", wrap("product sales", err))
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.ProductSalesResult, error) {
		var res repository.ProductSalesResult
		err := row.Scan(&res.ProductID, &res.Reference, &res.ProductName, &res.UnitsSold, &res.GrossRevenue, &res.TotalCost)
		return res, err
	})
	if err != nil {
		return nil, fmt.Errorf("analytics.GetProductSales: %w", wrap("product sales", err))
	}
	return results, nil
}
