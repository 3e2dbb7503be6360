package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost recalcula el costo de compra tras una entrada de mercancía.
// nuevo = (stock*costo + entrada*costoEntrada) / (stock + entrada)
func WeightedAverageCost(stock int, currentCost decimal.Decimal, qtyIn int, unitCost decimal.Decimal) decimal.Decimal {
	total := stock + qtyIn
	if total <= 0 {
		return decimal.Zero
	}
	num := decimal.NewFromInt(int64(stock)).Mul(currentCost).
		Add(decimal.NewFromInt(int64(qtyIn)).Mul(unitCost))
	return num.Div(decimal.NewFromInt(int64(total)))
}
