package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordReturnRequest body para POST /api/returns.
type RecordReturnRequest struct {
	SaleID     string           `json:"sale_id" validate:"omitempty,max=64"`
	ProductID  string           `json:"product_id" validate:"required"`
	Quantity   int              `json:"quantity" validate:"min=1"`
	UnitPrice  *decimal.Decimal `json:"unit_price,omitempty" validate:"omitempty,dgte0"`
	Reason     string           `json:"reason" validate:"required,max=500"`
	RefundMode string           `json:"refund_mode" validate:"omitempty,oneof=especes carte virement cheque avoir"`
}

// RefundRequest body para POST /api/returns/:id/refund.
type RefundRequest struct {
	Mode    string `json:"mode" validate:"required,oneof=especes carte virement cheque avoir"`
	Account string `json:"account" validate:"max=100"`
}

// RefuseReturnRequest body para POST /api/returns/:id/refuse.
type RefuseReturnRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ReturnResponse devolución en respuestas.
type ReturnResponse struct {
	ID            string           `json:"id"`
	Number        string           `json:"number"`
	SaleID        string           `json:"sale_id,omitempty"`
	ProductID     string           `json:"product_id"`
	Quantity      int              `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Reason        string           `json:"reason"`
	Kind          string           `json:"kind"`
	RefundMode    string           `json:"refund_mode,omitempty"`
	RefundAccount string           `json:"refund_account,omitempty"`
	Status        string           `json:"status"`
	Restocked     bool             `json:"restocked"`
	CreatedBy     string           `json:"created_by,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	ProcessedAt   *time.Time       `json:"processed_at,omitempty"`
}

// RecordExchangeRequest body para POST /api/exchanges.
// Sin precios se usan los de catálogo.
type RecordExchangeRequest struct {
	SaleID       string           `json:"sale_id" validate:"omitempty,max=64"`
	OldProductID string           `json:"old_product_id" validate:"required"`
	OldQuantity  int              `json:"old_quantity" validate:"min=1"`
	OldUnitPrice *decimal.Decimal `json:"old_unit_price,omitempty" validate:"omitempty,dgte0"`
	NewProductID string           `json:"new_product_id" validate:"required"`
	NewQuantity  int              `json:"new_quantity" validate:"min=1"`
	NewUnitPrice *decimal.Decimal `json:"new_unit_price,omitempty" validate:"omitempty,dgte0"`
	Reason       string           `json:"reason" validate:"required,max=500"`
}

// ExchangeResponse cambio en respuestas.
type ExchangeResponse struct {
	ID              string           `json:"id"`
	Number          string           `json:"number"`
	ReturnID        string           `json:"return_id"`
	OldProductID    string           `json:"old_product_id"`
	OldUnitPrice    *decimal.Decimal `json:"old_unit_price,omitempty"`
	OldQuantity     int              `json:"old_quantity"`
	NewProductID    string           `json:"new_product_id"`
	NewUnitPrice    *decimal.Decimal `json:"new_unit_price,omitempty"`
	NewQuantity     int              `json:"new_quantity"`
	PriceDifference decimal.Decimal  `json:"price_difference"`
	Status          string           `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	FinalizedAt     *time.Time       `json:"finalized_at,omitempty"`
}

// HidePricing omite precio unitario e importe.
func (r *ReturnResponse) HidePricing() {
	r.UnitPrice = nil
	r.Amount = nil
}

// HidePricing omite el precio unitario de cada lado sin acceso a precios.
// La diferencia a cobrar o devolver se mantiene.
func (r *ExchangeResponse) HidePricing(oldPricing, newPricing bool) {
	if !oldPricing {
		r.OldUnitPrice = nil
	}
	if !newPricing {
		r.NewUnitPrice = nil
	}
}
