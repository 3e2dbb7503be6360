// Package money concentra el redondeo y formato de importes para presentación.
// Internamente los importes conservan precisión completa; solo se redondean al salir.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Decimals cantidad de decimales en presentación.
const Decimals = 2

// Round redondea a 2 decimales (half away from zero).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Decimals)
}

// Formatter formatea importes según idioma y divisa configurados.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter construye un formateador. Si el locale o la divisa no son válidos
// usa fr-FR y EUR.
func NewFormatter(locale, currencyCode string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.French
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.EUR
	}
	return &Formatter{printer: message.NewPrinter(tag), unit: unit}
}

// Format devuelve el importe redondeado con símbolo y separadores del locale (ej: "€ 1 234,50").
func (f *Formatter) Format(d decimal.Decimal) string {
	amount := Round(d).InexactFloat64()
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(amount)))
}
