package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
	"github.com/jhoicas/StockPOS-api/pkg/money"
)

const (
	defaultTopN     = 20
	maxTopN         = 200
	paretoThreshold = 80 // Principio de Pareto: pocos productos generan el 80% del ingreso
)

var pareto80 = decimal.NewFromInt(paretoThreshold)

// ReportUseCase arma el ranking de productos por margen bruto de un período:
//   - Margen y participación en el ingreso por producto.
//   - Acumulado de ingreso para la curva Pareto.
//   - Marca de los productos que concentran ~80% del ingreso.
type ReportUseCase struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(analyticsRepo repository.AnalyticsRepository) *ReportUseCase {
	return &ReportUseCase{analyticsRepo: analyticsRepo}
}

// GetProductRanking genera el ranking para el período pedido (por defecto, el mes en curso).
func (uc *ReportUseCase) GetProductRanking(ctx context.Context, req dto.ProductRankingRequest) (*dto.ProductRankingDTO, error) {
	start, end, err := parsePeriod(req.StartDate, req.EndDate, time.Now())
	if err != nil {
		return nil, err
	}
	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}

	rows, err := uc.analyticsRepo.GetProductSales(ctx, start, end, topN)
	if err != nil {
		return nil, domain.Persistence("ranking de productos", err)
	}
	ranking := buildRanking(rows)

	var total decimal.Decimal
	pareto := make([]dto.ProductRankDTO, 0)
	for _, r := range ranking {
		total = total.Add(r.GrossRevenue)
		if r.IsTopPareto {
			pareto = append(pareto, r)
		}
	}
	return &dto.ProductRankingDTO{
		Period: dto.PeriodDTO{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.AddDate(0, 0, -1).Format("2006-01-02"),
		},
		TotalRevenue:   money.Round(total),
		Ranking:        ranking,
		ParetoProducts: pareto,
	}, nil
}

// buildRanking ordena por margen bruto y calcula participaciones. La marca Pareto se
// calcula sobre el orden por ingreso: un producto entra mientras el acumulado no supere
// el 80% (el que cruza el umbral también entra).
func buildRanking(rows []repository.ProductSalesResult) []dto.ProductRankDTO {
	if len(rows) == 0 {
		return []dto.ProductRankDTO{}
	}
	var totalRevenue decimal.Decimal
	for _, r := range rows {
		totalRevenue = totalRevenue.Add(r.GrossRevenue)
	}

	byRevenue := make([]repository.ProductSalesResult, len(rows))
	copy(byRevenue, rows)
	sort.SliceStable(byRevenue, func(i, j int) bool {
		return byRevenue[i].GrossRevenue.GreaterThan(byRevenue[j].GrossRevenue)
	})
	cumulativeByID := make(map[string]decimal.Decimal, len(rows))
	paretoByID := make(map[string]bool, len(rows))
	var cumulative decimal.Decimal
	for _, r := range byRevenue {
		before := cumulative
		if totalRevenue.IsPositive() {
			cumulative = cumulative.Add(r.GrossRevenue.Div(totalRevenue).Mul(hundred))
		}
		cumulativeByID[r.ProductID] = cumulative
		paretoByID[r.ProductID] = before.LessThan(pareto80)
	}

	sorted := make([]repository.ProductSalesResult, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GrossRevenue.Sub(sorted[i].TotalCost).GreaterThan(sorted[j].GrossRevenue.Sub(sorted[j].TotalCost))
	})

	ranking := make([]dto.ProductRankDTO, 0, len(sorted))
	for i, r := range sorted {
		revenuePct := decimal.Zero
		if totalRevenue.IsPositive() {
			revenuePct = r.GrossRevenue.Div(totalRevenue).Mul(hundred).Round(2)
		}
		ranking = append(ranking, dto.ProductRankDTO{
			Rank:             i + 1,
			ProductID:        r.ProductID,
			Reference:        r.Reference,
			ProductName:      r.ProductName,
			UnitsSold:        r.UnitsSold,
			GrossRevenue:     money.Round(r.GrossRevenue),
			TotalCost:        money.Round(r.TotalCost),
			GrossProfit:      money.Round(r.GrossRevenue.Sub(r.TotalCost)),
			MarginPct:        marginPct(r.GrossRevenue, r.TotalCost),
			RevenuePct:       revenuePct,
			CumulativeRevPct: cumulativeByID[r.ProductID].Round(2),
			IsTopPareto:      paretoByID[r.ProductID],
		})
	}
	return ranking
}

// parsePeriod convierte las fechas (YYYY-MM-DD, inclusivas) en un rango [start, end).
func parsePeriod(startStr, endStr string, now time.Time) (start, end time.Time, err error) {
	if endStr == "" {
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	} else {
		end, err = time.ParseInLocation("2006-01-02", endStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError("end_date", "date")
		}
		end = end.AddDate(0, 0, 1)
	}

	if startStr == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		start, err = time.ParseInLocation("2006-01-02", startStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError("start_date", "date")
		}
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date posterior a end_date: %w",
			domain.NewValidationError("start_date", "before_end"))
	}
	return start, end, nil
}
