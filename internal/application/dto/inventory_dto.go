package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/products/:id/adjustments.
// Delta lleva signo: negativo para Sortie.
type AdjustStockRequest struct {
	Kind      string           `json:"kind" validate:"required,oneof=Entrée Sortie Correction Retour"`
	Delta     int              `json:"delta" validate:"required"`
	Reference string           `json:"reference" validate:"max=100"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty" validate:"omitempty,dgte0"`
	Note      string           `json:"note" validate:"max=500"`
}

// MovementResponse movimiento del libro de inventario.
type MovementResponse struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"product_id"`
	Kind        string           `json:"kind"`
	Delta       int              `json:"delta"`
	StockBefore int              `json:"stock_before"`
	StockAfter  int              `json:"stock_after"`
	Reference   string           `json:"reference,omitempty"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Note        string           `json:"note,omitempty"`
	CreatedBy   string           `json:"created_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// MovementListResponse historial paginado.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto bajo su mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	Reference          string          `json:"reference"`
	ProductName        string          `json:"product_name"`
	Category           string          `json:"category"`
	CurrentStock       int             `json:"current_stock"`
	StockMinimum       int             `json:"stock_minimum"`
	IdealStock         int             `json:"ideal_stock"`          // ceil(StockMinimum * 1.5)
	SuggestedOrderQty  int             `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	GrossMarginPct     decimal.Decimal `json:"gross_margin_pct"`     // % margen histórico
	UnitsSoldLast90d   int             `json:"units_sold_last_90d"`
	Priority           int             `json:"priority"` // 1 = más urgente
}
