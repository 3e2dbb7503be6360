package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Categorías del catálogo. Cada una tiene atributos propios (Attributes), pero el
// libro de inventario las trata igual.
const (
	CategoryLaptop      = "laptop"
	CategoryMonitor     = "monitor"
	CategoryPeripheral  = "peripheral"
	CategoryGamingChair = "gaming_chair"
	CategoryPrebuiltPC  = "prebuilt_pc"
	CategoryComponent   = "component"
)

// Estados de disponibilidad. Los tres primeros se derivan del stock; Réservé y Archivé
// son fijados a mano y tienen prioridad.
const (
	StatusAvailable  = "Disponible"
	StatusLowStock   = "Stock faible"
	StatusOutOfStock = "Rupture"
	StatusReserved   = "Réservé"
	StatusArchived   = "Archivé"
)

// Product representa un artículo del catálogo.
// StockOnHand y Status solo los modifica el libro de inventario; PurchaseCost es promedio ponderado.
type Product struct {
	ID           string
	Reference    string // SKU interno, único
	Name         string
	Category     string
	Brand        string
	Attributes   json.RawMessage
	PurchaseCost decimal.Decimal
	SalePrice    decimal.Decimal
	StockOnHand  int
	StockMinimum int
	Status       string
	ManualStatus string // "" | Réservé | Archivé
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidCategory indica si la categoría pertenece al catálogo.
func IsValidCategory(c string) bool {
	switch c {
	case CategoryLaptop, CategoryMonitor, CategoryPeripheral, CategoryGamingChair, CategoryPrebuiltPC, CategoryComponent:
		return true
	}
	return false
}

// IsManualStatus indica si el estado es un override manual válido ("" significa sin override).
func IsManualStatus(s string) bool {
	return s == "" || s == StatusReserved || s == StatusArchived
}
