package sales

import (
	"context"

	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con el repositorio de ventas atado a ella.
// Cabecera y líneas se confirman juntas.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(saleRepo repository.SaleRepository) error) error
}

// StockAdjuster es la parte del libro de inventario que usa el compositor.
// *inventory.Ledger la implementa.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, in inventory.AdjustInput) (*entity.StockMovement, error)
}
