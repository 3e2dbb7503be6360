package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de pago aceptados en caja.
const (
	PaymentCash     = "especes"
	PaymentCard     = "carte"
	PaymentTransfer = "virement"
	PaymentCheque   = "cheque"
	PaymentMixed    = "mixte"
)

// Estados de pago de una venta.
const (
	SaleStatusPaid      = "payee"
	SaleStatusPending   = "en_attente"
	SaleStatusPartial   = "partielle"
	SaleStatusCancelled = "annulee"
)

// SaleTransaction es la cabecera de una venta.
// TotalHT y TotalTTC son la suma de sus líneas; TVA = TotalTTC - TotalHT.
type SaleTransaction struct {
	ID          string
	Number      string // SALE-YYYYMMDD-NNN
	SoldAt      time.Time
	ClientID    string
	Lines       []SaleLineItem
	TotalHT     decimal.Decimal
	TVA         decimal.Decimal
	TotalTTC    decimal.Decimal
	PaymentMode string
	Status      string
	Notes       string
	SoldBy      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SaleLineItem es una línea de venta. ProductCategory y ProductName son copia del
// catálogo al momento de vender.
type SaleLineItem struct {
	ID              string
	SaleID          string
	Position        int
	ProductID       string
	ProductCategory string
	ProductName     string
	Quantity        int
	WithTax         bool
	UnitPriceHT     decimal.Decimal
	UnitPriceTTC    decimal.Decimal
	TotalHT         decimal.Decimal
	TotalTTC        decimal.Decimal
}

// IsValidPaymentMode indica si el modo de pago es reconocido.
func IsValidPaymentMode(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCheque, PaymentMixed:
		return true
	}
	return false
}

// IsValidSaleStatus indica si el estado de pago es reconocido.
func IsValidSaleStatus(s string) bool {
	switch s {
	case SaleStatusPaid, SaleStatusPending, SaleStatusPartial, SaleStatusCancelled:
		return true
	}
	return false
}
