package repository

import (
	"context"

	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
)

// StockMovementRepository puerto del libro de movimientos. Solo inserción y lectura.
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	// ListByProduct devuelve los movimientos del producto, más reciente primero.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error)
}
