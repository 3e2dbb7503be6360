package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
)

// TaxRate es la TVA aplicada a las líneas marcadas con impuesto (política fija de la tienda).
var TaxRate = decimal.RequireFromString("0.20")

// UnitPriceTTC aplica la TVA al precio unitario HT si la línea lleva impuesto.
func UnitPriceTTC(unitHT decimal.Decimal, withTax bool) decimal.Decimal {
	if !withTax {
		return unitHT
	}
	return unitHT.Mul(decimal.NewFromInt(1).Add(TaxRate))
}

// PriceLine recalcula los importes derivados de una línea a partir de
// UnitPriceHT, Quantity y WithTax. No redondea.
func PriceLine(line *entity.SaleLineItem) {
	qty := decimal.NewFromInt(int64(line.Quantity))
	line.UnitPriceTTC = UnitPriceTTC(line.UnitPriceHT, line.WithTax)
	line.TotalHT = line.UnitPriceHT.Mul(qty)
	line.TotalTTC = line.UnitPriceTTC.Mul(qty)
}

// Totals suma las líneas y devuelve HT, TVA y TTC de la cabecera.
func Totals(lines []entity.SaleLineItem) (totalHT, tva, totalTTC decimal.Decimal) {
	totalHT, totalTTC = decimal.Zero, decimal.Zero
	for _, l := range lines {
		totalHT = totalHT.Add(l.TotalHT)
		totalTTC = totalTTC.Add(l.TotalTTC)
	}
	return totalHT, totalTTC.Sub(totalHT), totalTTC
}

// ApplyTotals recalcula cada línea y luego la cabecera de la venta.
func ApplyTotals(sale *entity.SaleTransaction) {
	for i := range sale.Lines {
		PriceLine(&sale.Lines[i])
	}
	sale.TotalHT, sale.TVA, sale.TotalTTC = Totals(sale.Lines)
}
