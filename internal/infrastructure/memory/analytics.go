package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados de ventas calculados sobre el estado en memoria.
type AnalyticsRepo struct {
	b binding
}

func inRange(s entity.SaleTransaction, start, end time.Time) bool {
	return s.Status != entity.SaleStatusCancelled && !s.SoldAt.Before(start) && s.SoldAt.Before(end)
}

func (r *AnalyticsRepo) GetSalesMetrics(_ context.Context, start, end time.Time) (repository.SalesMetrics, error) {
	m := repository.SalesMetrics{TotalHT: decimal.Zero, TVA: decimal.Zero, TotalTTC: decimal.Zero}
	r.b.read(func(st *state) {
		for _, s := range st.sales {
			if !inRange(s, start, end) {
				continue
			}
			m.SaleCount++
			m.TotalHT = m.TotalHT.Add(s.TotalHT)
			m.TVA = m.TVA.Add(s.TVA)
			m.TotalTTC = m.TotalTTC.Add(s.TotalTTC)
		}
		for _, l := range st.lines {
			if s, ok := st.sales[l.SaleID]; ok && inRange(s, start, end) {
				m.UnitsSold += l.Quantity
			}
		}
	})
	return m, nil
}

func (r *AnalyticsRepo) GetProductSales(_ context.Context, start, end time.Time, limit int) ([]repository.ProductSalesResult, error) {
	byProduct := map[string]*repository.ProductSalesResult{}
	r.b.read(func(st *state) {
		for _, l := range st.lines {
			s, ok := st.sales[l.SaleID]
			if !ok || !inRange(s, start, end) {
				continue
			}
			res, ok := byProduct[l.ProductID]
			if !ok {
				res = &repository.ProductSalesResult{ProductID: l.ProductID, ProductName: l.ProductName}
				if p, ok := st.products[l.ProductID]; ok {
					res.Reference = p.Reference
				}
				byProduct[l.ProductID] = res
			}
			res.UnitsSold += l.Quantity
			res.GrossRevenue = res.GrossRevenue.Add(l.TotalHT)
		}
		for id, res := range byProduct {
			if p, ok := st.products[id]; ok {
				res.TotalCost = p.PurchaseCost.Mul(decimal.NewFromInt(int64(res.UnitsSold)))
			}
		}
	})
	list := make([]repository.ProductSalesResult, 0, len(byProduct))
	for _, res := range byProduct {
		list = append(list, *res)
	}
	slices.SortFunc(list, func(a, b repository.ProductSalesResult) int {
		if c := b.GrossRevenue.Cmp(a.GrossRevenue); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return paginate(list, limit, 0), nil
}
