package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	ClientID    string            `json:"client_id" validate:"omitempty,max=64"`
	PaymentMode string            `json:"payment_mode" validate:"required,oneof=especes carte virement cheque mixte"`
	Status      string            `json:"status" validate:"omitempty,oneof=payee en_attente partielle annulee"`
	Notes       string            `json:"notes" validate:"max=1000"`
	SoldAt      *time.Time        `json:"sold_at,omitempty"`
	Lines       []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SaleLineRequest línea de venta. Sin UnitPriceHT se usa el precio de catálogo.
type SaleLineRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	Quantity    int              `json:"quantity" validate:"min=1"`
	UnitPriceHT *decimal.Decimal `json:"unit_price_ht,omitempty" validate:"omitempty,dgte0"`
	WithTax     bool             `json:"with_tax"`
}

// UpdateSaleRequest edición de cabecera. No toca líneas ni stock.
type UpdateSaleRequest struct {
	ClientID    *string `json:"client_id" validate:"omitempty,max=64"`
	PaymentMode *string `json:"payment_mode" validate:"omitempty,oneof=especes carte virement cheque mixte"`
	Status      *string `json:"status" validate:"omitempty,oneof=payee en_attente partielle annulee"`
	Notes       *string `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateLineItemRequest edición de precio o impuesto de una línea. No toca stock.
type UpdateLineItemRequest struct {
	WithTax     *bool            `json:"with_tax"`
	UnitPriceHT *decimal.Decimal `json:"unit_price_ht" validate:"omitempty,dgte0"`
}

// SaleResponse venta con sus líneas. Importes redondeados a 2 decimales.
type SaleResponse struct {
	ID          string             `json:"id"`
	Number      string             `json:"number"`
	SoldAt      time.Time          `json:"sold_at"`
	ClientID    string             `json:"client_id,omitempty"`
	TotalHT     decimal.Decimal    `json:"total_ht"`
	TVA         decimal.Decimal    `json:"tva"`
	TotalTTC    decimal.Decimal    `json:"total_ttc"`
	PaymentMode string             `json:"payment_mode"`
	Status      string             `json:"status"`
	Notes       string             `json:"notes,omitempty"`
	SoldBy      string             `json:"sold_by,omitempty"`
	Lines       []SaleLineResponse `json:"lines,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// SaleLineResponse línea de venta en respuestas. Los importes se omiten cuando el
// usuario no tiene acceso a precios del producto.
type SaleLineResponse struct {
	ID              string           `json:"id"`
	Position        int              `json:"position"`
	ProductID       string           `json:"product_id"`
	ProductCategory string           `json:"product_category"`
	ProductName     string           `json:"product_name"`
	Quantity        int              `json:"quantity"`
	WithTax         bool             `json:"with_tax"`
	UnitPriceHT     *decimal.Decimal `json:"unit_price_ht,omitempty"`
	UnitPriceTTC    *decimal.Decimal `json:"unit_price_ttc,omitempty"`
	TotalHT         *decimal.Decimal `json:"total_ht,omitempty"`
	TotalTTC        *decimal.Decimal `json:"total_ttc,omitempty"`
}

// HideLinePricing omite los importes de las líneas cuyo producto no pasa canPrice.
// Los totales de cabecera se mantienen: son lo que se cobra en caja.
func (r *SaleResponse) HideLinePricing(canPrice func(productID string) bool) {
	for i := range r.Lines {
		if canPrice(r.Lines[i].ProductID) {
			continue
		}
		r.Lines[i].UnitPriceHT = nil
		r.Lines[i].UnitPriceTTC = nil
		r.Lines[i].TotalHT = nil
		r.Lines[i].TotalTTC = nil
	}
}

// SaleListResponse lista paginada de ventas (sin líneas).
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
