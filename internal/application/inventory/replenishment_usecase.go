package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición de la tienda.
// Combina el stock bajo el mínimo con el historial de márgenes para priorizar los artículos críticos.
type ReplenishmentUseCase struct {
	productRepo   repository.ProductRepository
	analyticsRepo repository.AnalyticsRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	productRepo repository.ProductRepository,
	analyticsRepo repository.AnalyticsRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		productRepo:   productRepo,
		analyticsRepo: analyticsRepo,
	}
}

// GenerateReplenishmentList devuelve los productos bajo su stock mínimo con la cantidad
// sugerida de pedido y un ranking de prioridad basado en margen histórico y volumen de ventas.
// Los productos archivados no se reponen.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	// 1. Productos por debajo del mínimo
	products, err := uc.productRepo.ListBelowMinimum(ctx)
	if err != nil {
		return nil, domain.Persistence("listar productos bajo mínimo", err)
	}
	if len(products) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// 2. Historial de ventas por producto (últimos 90 días)
	end := time.Now()
	start := end.AddDate(0, 0, -90)
	sold, _ := uc.analyticsRepo.GetProductSales(ctx, start, end, 500)
	salesByID := make(map[string]repository.ProductSalesResult, len(sold))
	for _, s := range sold {
		salesByID[s.ProductID] = s
	}

	// 3. Construir las sugerencias
	hundred := decimal.NewFromInt(100)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(products))
	for _, p := range products {
		if p.ManualStatus != "" {
			continue
		}
		ideal := int(decimal.NewFromInt(int64(p.StockMinimum)).Mul(decimal.RequireFromString("1.5")).Ceil().IntPart())
		suggested := ideal - p.StockOnHand
		if suggested < 0 {
			suggested = 0
		}

		var marginPct decimal.Decimal
		unitsSold := 0
		if s, ok := salesByID[p.ID]; ok {
			unitsSold = s.UnitsSold
			if s.GrossRevenue.GreaterThan(decimal.Zero) {
				marginPct = s.GrossRevenue.Sub(s.TotalCost).Div(s.GrossRevenue).Mul(hundred).Round(2)
			}
		} else if p.SalePrice.GreaterThan(decimal.Zero) {
			// Sin ventas recientes: estimar margen por precio y costo
			marginPct = p.SalePrice.Sub(p.PurchaseCost).Div(p.SalePrice).Mul(hundred).Round(2)
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			Reference:          p.Reference,
			ProductName:        p.Name,
			Category:           p.Category,
			CurrentStock:       p.StockOnHand,
			StockMinimum:       p.StockMinimum,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           p.PurchaseCost,
			EstimatedOrderCost: p.PurchaseCost.Mul(decimal.NewFromInt(int64(suggested))),
			GrossMarginPct:     marginPct,
			UnitsSoldLast90d:   unitsSold,
		})
	}

	// 4. Ordenar: mayor margen, luego mayor volumen, luego mayor déficit
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.GrossMarginPct.Equal(b.GrossMarginPct) {
			return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
		}
		if a.UnitsSoldLast90d != b.UnitsSoldLast90d {
			return a.UnitsSoldLast90d > b.UnitsSoldLast90d
		}
		return a.StockMinimum-a.CurrentStock > b.StockMinimum-b.CurrentStock
	})

	// 5. Prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
