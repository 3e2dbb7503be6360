package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock inicial se registra
// como una entrada en el libro de inventario.
type CreateProductRequest struct {
	Reference    string          `json:"reference" validate:"required,min=1,max=100"`
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Category     string          `json:"category" validate:"required,oneof=laptop monitor peripheral gaming_chair prebuilt_pc component"`
	Brand        string          `json:"brand" validate:"max=100"`
	Attributes   json.RawMessage `json:"attributes"`
	PurchaseCost decimal.Decimal `json:"purchase_cost" validate:"dgte0"`
	SalePrice    decimal.Decimal `json:"sale_price" validate:"dgte0"`
	InitialStock int             `json:"initial_stock" validate:"min=0"`
	StockMinimum int             `json:"stock_minimum" validate:"min=0"`
	ManualStatus string          `json:"manual_status" validate:"omitempty,oneof=Réservé Archivé"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock ni costo).
// ManualStatus "" quita el override.
type UpdateProductRequest struct {
	Reference    *string          `json:"reference" validate:"omitempty,min=1,max=100"`
	Name         *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Brand        *string          `json:"brand" validate:"omitempty,max=100"`
	Attributes   json.RawMessage  `json:"attributes"`
	SalePrice    *decimal.Decimal `json:"sale_price" validate:"omitempty,dgte0"`
	StockMinimum *int             `json:"stock_minimum" validate:"omitempty,min=0"`
	ManualStatus *string          `json:"manual_status" validate:"omitempty,oneof=Réservé Archivé ''"`
}

// ProductResponse salida de un producto. Los precios se omiten si el usuario no puede verlos.
type ProductResponse struct {
	ID           string           `json:"id"`
	Reference    string           `json:"reference"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	Brand        string           `json:"brand"`
	Attributes   json.RawMessage  `json:"attributes,omitempty"`
	PurchaseCost *decimal.Decimal `json:"purchase_cost,omitempty"`
	SalePrice    *decimal.Decimal `json:"sale_price,omitempty"`
	StockOnHand  int              `json:"stock_on_hand"`
	StockMinimum int              `json:"stock_minimum"`
	Status       string           `json:"status"`
	ManualStatus string           `json:"manual_status,omitempty"`
	Access       *AccessResponse  `json:"access,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// AccessResponse decisión de acceso sobre un producto.
type AccessResponse struct {
	CanView        bool   `json:"can_view"`
	CanEdit        bool   `json:"can_edit"`
	CanViewPricing bool   `json:"can_view_pricing"`
	Reason         string `json:"reason"`
}
