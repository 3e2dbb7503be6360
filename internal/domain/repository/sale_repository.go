package repository

import (
	"context"
	"time"

	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
)

// SaleFilter filtros de listado de ventas.
type SaleFilter struct {
	ClientID string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// SaleRepository puerto de persistencia de ventas. Los métodos de lectura de cabecera
// no cargan Lines; usar GetLines.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.SaleTransaction) error
	CreateLines(ctx context.Context, lines []entity.SaleLineItem) error
	GetByID(ctx context.Context, id string) (*entity.SaleTransaction, error)
	GetForUpdate(ctx context.Context, id string) (*entity.SaleTransaction, error)
	GetLines(ctx context.Context, saleID string) ([]entity.SaleLineItem, error)
	GetLineByID(ctx context.Context, lineID string) (*entity.SaleLineItem, error)
	UpdateHeader(ctx context.Context, sale *entity.SaleTransaction) error
	UpdateLine(ctx context.Context, line *entity.SaleLineItem) error
	// Delete elimina la venta y sus líneas.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter SaleFilter) ([]*entity.SaleTransaction, error)
}
