package returns

import (
	"context"

	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con los repositorios de devoluciones y cambios.
type TxRunner interface {
	RunReturns(ctx context.Context, fn func(
		returnRepo repository.ReturnRepository,
		exchangeRepo repository.ExchangeRepository,
	) error) error
}

// StockAdjuster reingreso de mercadería vía el libro de inventario.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, in inventory.AdjustInput) (*entity.StockMovement, error)
}
