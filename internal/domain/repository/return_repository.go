package repository

import (
	"context"
	"time"

	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
)

// ReturnTransition describe un cambio de estado condicionado (compare-and-swap).
type ReturnTransition struct {
	From          []string
	To            string
	RefundMode    string
	RefundAccount string
	Reason        string
	At            time.Time
}

// ReturnRepository puerto de persistencia de devoluciones.
type ReturnRepository interface {
	Create(ctx context.Context, r *entity.ReturnRecord) error
	GetByID(ctx context.Context, id string) (*entity.ReturnRecord, error)
	// Transition aplica el cambio solo si el estado actual está en t.From.
	// Devuelve false (sin error) si el estado no coincidía o el registro no existe.
	Transition(ctx context.Context, id string, t ReturnTransition) (bool, error)
	// MarkRestocked marca el reingreso una única vez; false si ya estaba marcado,
	// estaba rechazada o no existe.
	MarkRestocked(ctx context.Context, id string) (bool, error)
	// UnmarkRestocked libera la marca cuando el reingreso en el libro falló.
	UnmarkRestocked(ctx context.Context, id string) error
	// ReturnedQuantity suma lo ya devuelto (no rechazado) de un producto en una venta.
	ReturnedQuantity(ctx context.Context, saleID, productID string) (int, error)
}

// ExchangeRepository puerto de persistencia de cambios.
type ExchangeRepository interface {
	Create(ctx context.Context, e *entity.ExchangeRecord) error
	GetByID(ctx context.Context, id string) (*entity.ExchangeRecord, error)
	// Transition igual que en ReturnRepository.
	Transition(ctx context.Context, id string, from []string, to string, at time.Time) (bool, error)
}
