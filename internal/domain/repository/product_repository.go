package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
)

// ProductFilter filtros de listado del catálogo.
type ProductFilter struct {
	Category string
	Status   string
	IDs      []string // si no es nil, limita a estos productos
	Limit    int
	Offset   int
}

// StockChange resultado de aplicar un delta condicionado sobre el stock.
type StockChange struct {
	Before       int
	After        int
	Minimum      int
	ManualStatus string
	PurchaseCost decimal.Decimal
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByReference(ctx context.Context, reference string) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update guarda datos de catálogo y estado; nunca stock ni costo.
	Update(ctx context.Context, product *entity.Product) error
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
	UpdateStatus(ctx context.Context, productID, status string) error
	// ApplyStockDelta suma delta al stock solo si el resultado queda >= 0 (actualización
	// condicionada, sin leer-modificar-escribir). Devuelve domain.ErrNotFound o
	// domain.ErrInsufficientStock sin modificar nada cuando no aplica.
	ApplyStockDelta(ctx context.Context, productID string, delta int) (*StockChange, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	ListBelowMinimum(ctx context.Context) ([]*entity.Product, error)
}
