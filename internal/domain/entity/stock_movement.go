package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementKindIn         = "Entrée"
	MovementKindOut        = "Sortie"
	MovementKindCorrection = "Correction"
	MovementKindReturn     = "Retour"
)

// StockMovement es una línea inmutable del libro de inventario.
// StockAfter = StockBefore + Delta, y coincide con el stock del producto al momento de escribirla.
type StockMovement struct {
	ID          string
	ProductID   string
	Kind        string
	Delta       int
	StockBefore int
	StockAfter  int
	Reference   string           // venta, devolución o cambio que originó el movimiento
	UnitCost    *decimal.Decimal // solo en entradas
	Note        string
	CreatedBy   string
	CreatedAt   time.Time
}

// ValidDeltaForKind verifica el signo del delta según el tipo:
// entradas y devoluciones suman, salidas restan, correcciones en cualquier sentido (≠ 0).
func ValidDeltaForKind(kind string, delta int) bool {
	switch kind {
	case MovementKindIn, MovementKindReturn:
		return delta > 0
	case MovementKindOut:
		return delta < 0
	case MovementKindCorrection:
		return delta != 0
	}
	return false
}
