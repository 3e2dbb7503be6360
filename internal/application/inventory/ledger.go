package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/StockPOS-api/internal/application/ports"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/inventory"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Ledger es la única vía para modificar stock_on_hand y el estado de un producto.
// Cada ajuste aplica una actualización condicionada (stock + delta >= 0), recalcula
// el estado y agrega el movimiento, todo en una misma transacción.
type Ledger struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	locker      ports.ProductLocker
	notifier    ports.Notifier
	log         zerolog.Logger

	tracer              trace.Tracer
	adjustCounter       metric.Int64Counter
	insufficientCounter metric.Int64Counter
}

// NewLedger construye el libro de inventario. locker y notifier pueden ser nil.
func NewLedger(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	locker ports.ProductLocker,
	notifier ports.Notifier,
	log zerolog.Logger,
) *Ledger {
	if locker == nil {
		locker = ports.NoopLocker{}
	}
	if notifier == nil {
		notifier = ports.NoopNotifier{}
	}
	meter := otel.Meter("stockpos/inventory")
	adjust, err := meter.Int64Counter("stock_adjustments_total",
		metric.WithDescription("Ajustes de stock confirmados"))
	if err != nil {
		adjust = noop.Int64Counter{}
	}
	insufficient, err := meter.Int64Counter("stock_insufficient_total",
		metric.WithDescription("Ajustes rechazados por stock insuficiente"))
	if err != nil {
		insufficient = noop.Int64Counter{}
	}
	return &Ledger{
		txRunner:            txRunner,
		productRepo:         productRepo,
		movRepo:             movRepo,
		locker:              locker,
		notifier:            notifier,
		log:                 log.With().Str("component", "ledger").Logger(),
		tracer:              otel.Tracer("stockpos/inventory"),
		adjustCounter:       adjust,
		insufficientCounter: insufficient,
	}
}

// AdjustInput entrada de un ajuste de stock. Delta lleva signo: negativo en salidas.
type AdjustInput struct {
	ProductID string
	Delta     int
	Kind      string
	Reference string
	UnitCost  *decimal.Decimal // opcional, solo en Entrée: recalcula el costo promedio
	Note      string
	UserID    string
}

// AdjustStock aplica un delta al stock del producto y registra el movimiento.
// Errores: domain.ErrInvalidInput, domain.ErrNotFound, domain.ErrInsufficientStock
// (nada se escribe) o domain.ErrPersistence.
func (l *Ledger) AdjustStock(ctx context.Context, in AdjustInput) (*entity.StockMovement, error) {
	ctx, span := l.tracer.Start(ctx, "inventory.AdjustStock", trace.WithAttributes(
		attribute.String("product.id", in.ProductID),
		attribute.String("movement.kind", in.Kind),
		attribute.Int("movement.delta", in.Delta),
	))
	defer span.End()

	if err := validateAdjust(in); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	unlock, err := l.locker.Lock(ctx, in.ProductID)
	if err != nil {
		// El candado distribuido es un refuerzo; la guarda condicionada en BD sigue protegiendo.
		l.log.Warn().Ctx(ctx).Err(err).Str("product_id", in.ProductID).Msg("no se obtuvo el candado de stock")
		unlock = func() {}
	}
	defer unlock()

	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		Kind:      in.Kind,
		Delta:     in.Delta,
		Reference: in.Reference,
		UnitCost:  in.UnitCost,
		Note:      in.Note,
		CreatedBy: in.UserID,
		CreatedAt: time.Now().UTC(),
	}
	var status string

	err = l.txRunner.RunInventory(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		change, err := productRepo.ApplyStockDelta(ctx, in.ProductID, in.Delta)
		if err != nil {
			return err
		}
		mov.StockBefore, mov.StockAfter = change.Before, change.After
		status = inventory.ComputeStatus(change.After, change.Minimum, change.ManualStatus)
		if err := productRepo.UpdateStatus(ctx, in.ProductID, status); err != nil {
			return err
		}
		if in.Kind == entity.MovementKindIn && in.UnitCost != nil {
			cost := inventory.WeightedAverageCost(change.Before, change.PurchaseCost, in.Delta, *in.UnitCost)
			if err := productRepo.UpdateCost(ctx, in.ProductID, cost); err != nil {
				return err
			}
		}
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			l.insufficientCounter.Add(ctx, 1)
			return nil, err
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPersistence):
			return nil, err
		}
		span.RecordError(err)
		l.log.Error().Ctx(ctx).Err(err).Str("product_id", in.ProductID).Str("kind", in.Kind).Msg("ajuste de stock falló")
		return nil, domain.Persistence("ajustar stock", err)
	}

	l.adjustCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", in.Kind)))
	span.SetAttributes(attribute.Int("stock.after", mov.StockAfter), attribute.String("product.status", status))

	if inventory.IsAlertStatus(status) {
		ports.Publish(ctx, l.notifier, l.log, ports.Event{
			Type:     ports.EventStockLow,
			EntityID: in.ProductID,
			Message:  fmt.Sprintf("producto %s: %s (%d en stock)", in.ProductID, status, mov.StockAfter),
			Data:     map[string]any{"status": status, "stock": mov.StockAfter, "movement_id": mov.ID},
		})
	}
	return mov, nil
}

// GetMovementHistory devuelve los movimientos del producto, más reciente primero.
func (l *Ledger) GetMovementHistory(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	product, err := l.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, domain.Persistence("obtener producto", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	list, err := l.movRepo.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, domain.Persistence("listar movimientos", err)
	}
	return list, nil
}

func validateAdjust(in AdjustInput) error {
	if in.ProductID == "" {
		return domain.NewValidationError("product_id", "required")
	}
	switch in.Kind {
	case entity.MovementKindIn, entity.MovementKindOut, entity.MovementKindCorrection, entity.MovementKindReturn:
	default:
		return domain.NewValidationError("kind", "oneof")
	}
	if !entity.ValidDeltaForKind(in.Kind, in.Delta) {
		return domain.NewValidationError("delta", "sign")
	}
	if in.UnitCost != nil && (in.Kind != entity.MovementKindIn || in.UnitCost.IsNegative()) {
		return domain.NewValidationError("unit_cost", "only_entree_gte0")
	}
	return nil
}
