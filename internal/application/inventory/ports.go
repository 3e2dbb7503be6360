package inventory

import (
	"context"

	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza que stock, estado y movimiento se escriban juntos o no se escriban.
type TxRunner interface {
	RunInventory(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}
