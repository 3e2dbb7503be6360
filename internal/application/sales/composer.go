package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/application/ports"
	"github.com/jhoicas/StockPOS-api/internal/application/validation"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
	salesdomain "github.com/jhoicas/StockPOS-api/internal/domain/sales"
	"github.com/jhoicas/StockPOS-api/internal/domain/sequence"
	"github.com/jhoicas/StockPOS-api/pkg/logger"
)

const (
	// maxNumberAttempts reintentos al chocar con un número de venta ya usado.
	maxNumberAttempts = 3
	defaultListLimit  = 20
	maxListLimit      = 100
)

// Composer arma ventas de varias líneas: descuenta stock línea por línea a través
// del libro de inventario y guarda la venta. Si algo falla a mitad, revierte las
// salidas ya aplicadas con movimientos Correction.
type Composer struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	clientRepo  repository.ClientRepository
	stock       StockAdjuster
	numbers     *sequence.Generator
	notifier    ports.Notifier
	log         zerolog.Logger

	tracer              trace.Tracer
	salesCounter        metric.Int64Counter
	compensationCounter metric.Int64Counter
}

// NewComposer construye el compositor de ventas. notifier puede ser nil.
func NewComposer(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	clientRepo repository.ClientRepository,
	stock StockAdjuster,
	numbers *sequence.Generator,
	notifier ports.Notifier,
	log zerolog.Logger,
) *Composer {
	if notifier == nil {
		notifier = ports.NoopNotifier{}
	}
	meter := otel.Meter("stockpos/sales")
	created, err := meter.Int64Counter("sales_created_total",
		metric.WithDescription("Ventas confirmadas"))
	if err != nil {
		created = noop.Int64Counter{}
	}
	compensations, err := meter.Int64Counter("sale_compensations_total",
		metric.WithDescription("Movimientos de compensación emitidos por ventas fallidas"))
	if err != nil {
		compensations = noop.Int64Counter{}
	}
	return &Composer{
		txRunner:            txRunner,
		productRepo:         productRepo,
		saleRepo:            saleRepo,
		clientRepo:          clientRepo,
		stock:               stock,
		numbers:             numbers,
		notifier:            notifier,
		log:                 log.With().Str("component", "sale_composer").Logger(),
		tracer:              otel.Tracer("stockpos/sales"),
		salesCounter:        created,
		compensationCounter: compensations,
	}
}

// CreateSale valida la venta, descuenta el stock de cada línea en el orden recibido
// y persiste cabecera y líneas en una transacción.
// Errores: domain.ErrInvalidInput, domain.ErrNotFound, domain.ErrInsufficientStock,
// domain.ErrPersistence o *domain.ReconciliationError si la compensación no se completó.
func (c *Composer) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*entity.SaleTransaction, error) {
	ctx, span := c.tracer.Start(ctx, "sales.CreateSale", trace.WithAttributes(
		attribute.Int("sale.lines", len(in.Lines)),
	))
	defer span.End()

	sale, err := c.buildSale(ctx, userID, in)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("sale.id", sale.ID))
	ctx = logger.WithSaleID(ctx, sale.ID)

	applied := make([]entity.SaleLineItem, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		_, err := c.stock.AdjustStock(ctx, inventory.AdjustInput{
			ProductID: line.ProductID,
			Delta:     -line.Quantity,
			Kind:      entity.MovementKindOut,
			Reference: sale.ID,
			Note:      fmt.Sprintf("venta, línea %d", line.Position),
			UserID:    userID,
		})
		if err != nil {
			err = c.compensate(ctx, sale.ID, applied, userID, err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		applied = append(applied, line)
	}

	if err := c.persist(ctx, sale); err != nil {
		c.log.Error().Ctx(ctx).Err(err).Msg("no se pudo guardar la venta; revirtiendo stock")
		err = c.compensate(ctx, sale.ID, applied, userID, domain.Persistence("guardar venta", err))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	c.salesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_mode", sale.PaymentMode)))
	c.log.Info().Ctx(ctx).Str("number", sale.Number).
		Str("total_ttc", sale.TotalTTC.StringFixed(2)).Int("lines", len(sale.Lines)).Msg("venta registrada")
	ports.Publish(ctx, c.notifier, c.log, ports.Event{
		Type:     ports.EventSaleCreated,
		EntityID: sale.ID,
		Message:  fmt.Sprintf("venta %s: %s TTC", sale.Number, sale.TotalTTC.StringFixed(2)),
		Data:     map[string]any{"number": sale.Number, "lines": len(sale.Lines)},
	})
	return sale, nil
}

// buildSale valida la entrada, resuelve precios de catálogo y calcula importes.
// Verifica el stock de forma orientativa (sumando cantidades por producto); la
// garantía real la da el libro de inventario al descontar.
func (c *Composer) buildSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*entity.SaleTransaction, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.ClientID != "" {
		if err := c.checkClient(ctx, in.ClientID); err != nil {
			return nil, err
		}
	}

	products := make(map[string]*entity.Product, len(in.Lines))
	wanted := make(map[string]int, len(in.Lines))
	for i, l := range in.Lines {
		if _, ok := products[l.ProductID]; !ok {
			p, err := c.productRepo.GetByID(ctx, l.ProductID)
			if err != nil {
				return nil, domain.Persistence("obtener producto", err)
			}
			if p == nil {
				return nil, fmt.Errorf("producto %s: %w", l.ProductID, domain.ErrNotFound)
			}
			if p.Status == entity.StatusArchived {
				return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].product_id", i), "archived")
			}
			products[l.ProductID] = p
		}
		wanted[l.ProductID] += l.Quantity
	}
	for id, qty := range wanted {
		if p := products[id]; p.StockOnHand < qty {
			return nil, fmt.Errorf("producto %s: pedido %d, disponible %d: %w",
				p.Reference, qty, p.StockOnHand, domain.ErrInsufficientStock)
		}
	}

	now := time.Now().UTC()
	sale := &entity.SaleTransaction{
		ID:          uuid.New().String(),
		SoldAt:      now,
		ClientID:    in.ClientID,
		PaymentMode: in.PaymentMode,
		Status:      in.Status,
		Notes:       in.Notes,
		SoldBy:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Lines:       make([]entity.SaleLineItem, 0, len(in.Lines)),
	}
	if in.SoldAt != nil {
		sale.SoldAt = in.SoldAt.UTC()
	}
	if sale.Status == "" {
		sale.Status = entity.SaleStatusPaid
	}
	for i, l := range in.Lines {
		p := products[l.ProductID]
		unit := p.SalePrice
		if l.UnitPriceHT != nil {
			unit = *l.UnitPriceHT
		}
		sale.Lines = append(sale.Lines, entity.SaleLineItem{
			ID:              uuid.New().String(),
			SaleID:          sale.ID,
			Position:        i + 1,
			ProductID:       p.ID,
			ProductCategory: p.Category,
			ProductName:     p.Name,
			Quantity:        l.Quantity,
			WithTax:         l.WithTax,
			UnitPriceHT:     unit,
		})
	}
	salesdomain.ApplyTotals(sale)
	return sale, nil
}

// persist guarda cabecera y líneas. Si el número ya existe se genera otro.
func (c *Composer) persist(ctx context.Context, sale *entity.SaleTransaction) error {
	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		sale.Number = c.numbers.Next()
		err = c.txRunner.RunSales(ctx, func(saleRepo repository.SaleRepository) error {
			if err := saleRepo.Create(ctx, sale); err != nil {
				return err
			}
			return saleRepo.CreateLines(ctx, sale.Lines)
		})
		if !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
		c.log.Warn().Ctx(ctx).Str("number", sale.Number).Int("attempt", attempt+1).Msg("número de venta repetido")
	}
	return err
}

// compensate revierte en orden inverso las salidas ya aplicadas. Devuelve cause si
// todo se revirtió, o un *domain.ReconciliationError con cada reversión fallida.
func (c *Composer) compensate(ctx context.Context, saleID string, applied []entity.SaleLineItem, userID string, cause error) error {
	if len(applied) == 0 {
		return cause
	}
	// La reversión se completa aunque el cliente haya cancelado la petición.
	ctx = context.WithoutCancel(ctx)
	ctx, span := c.tracer.Start(ctx, "sales.Compensate", trace.WithAttributes(
		attribute.String("sale.id", saleID),
		attribute.Int("compensation.lines", len(applied)),
	))
	defer span.End()

	var failures []error
	for i := len(applied) - 1; i >= 0; i-- {
		line := applied[i]
		_, err := c.stock.AdjustStock(ctx, inventory.AdjustInput{
			ProductID: line.ProductID,
			Delta:     line.Quantity,
			Kind:      entity.MovementKindCorrection,
			Reference: saleID,
			Note:      fmt.Sprintf("reversión de venta fallida, línea %d", line.Position),
			UserID:    userID,
		})
		c.compensationCounter.Add(ctx, 1)
		if err != nil {
			failures = append(failures, fmt.Errorf("producto %s (+%d): %w", line.ProductID, line.Quantity, err))
		}
	}
	if len(failures) == 0 {
		c.log.Warn().Ctx(ctx).Err(cause).Int("lines", len(applied)).Msg("venta cancelada, stock revertido")
		return cause
	}

	rec := &domain.ReconciliationError{SaleID: saleID, Cause: cause, Failures: failures}
	span.SetStatus(codes.Error, rec.Error())
	c.log.Error().Ctx(ctx).Err(rec).Msg("reversión incompleta: requiere conciliación manual")
	ports.Publish(ctx, c.notifier, c.log, ports.Event{
		Type:     ports.EventReconciliation,
		EntityID: saleID,
		Message:  "reversión de stock incompleta para la venta " + saleID,
		Data:     map[string]any{"failures": len(failures), "cause": cause.Error()},
	})
	return rec
}

func (c *Composer) checkClient(ctx context.Context, clientID string) error {
	client, err := c.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return domain.Persistence("obtener cliente", err)
	}
	if client == nil {
		return domain.NewValidationError("client_id", "unknown")
	}
	return nil
}

// UpdateSale edita la cabecera (cliente, pago, estado, notas) y recalcula totales
// desde las líneas. No mueve stock.
func (c *Composer) UpdateSale(ctx context.Context, saleID string, in dto.UpdateSaleRequest) (*entity.SaleTransaction, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.ClientID != nil && *in.ClientID != "" {
		if err := c.checkClient(ctx, *in.ClientID); err != nil {
			return nil, err
		}
	}
	var out *entity.SaleTransaction
	err := c.txRunner.RunSales(ctx, func(saleRepo repository.SaleRepository) error {
		sale, err := saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if in.ClientID != nil {
			sale.ClientID = *in.ClientID
		}
		if in.PaymentMode != nil {
			sale.PaymentMode = *in.PaymentMode
		}
		if in.Status != nil {
			sale.Status = *in.Status
		}
		if in.Notes != nil {
			sale.Notes = *in.Notes
		}
		if sale.Lines, err = saleRepo.GetLines(ctx, saleID); err != nil {
			return err
		}
		sale.TotalHT, sale.TVA, sale.TotalTTC = salesdomain.Totals(sale.Lines)
		sale.UpdatedAt = time.Now().UTC()
		if err := saleRepo.UpdateHeader(ctx, sale); err != nil {
			return err
		}
		out = sale
		return nil
	})
	if err != nil {
		return nil, domain.Persistence("actualizar venta", err)
	}
	return out, nil
}

// UpdateLineItem cambia el precio HT o la aplicación de TVA de una línea, recalcula
// esa línea y la cabecera con la venta bloqueada. No mueve stock.
func (c *Composer) UpdateLineItem(ctx context.Context, lineID string, in dto.UpdateLineItemRequest) (*entity.SaleTransaction, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var out *entity.SaleTransaction
	err := c.txRunner.RunSales(ctx, func(saleRepo repository.SaleRepository) error {
		line, err := saleRepo.GetLineByID(ctx, lineID)
		if err != nil {
			return err
		}
		if line == nil {
			return domain.ErrNotFound
		}
		sale, err := saleRepo.GetForUpdate(ctx, line.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		// Releer con la cabecera bloqueada: otra edición pudo confirmarse entre ambas lecturas.
		if line, err = saleRepo.GetLineByID(ctx, lineID); err != nil {
			return err
		}
		if line == nil {
			return domain.ErrNotFound
		}
		if in.WithTax != nil {
			line.WithTax = *in.WithTax
		}
		if in.UnitPriceHT != nil {
			line.UnitPriceHT = *in.UnitPriceHT
		}
		salesdomain.PriceLine(line)
		if err := saleRepo.UpdateLine(ctx, line); err != nil {
			return err
		}
		if sale.Lines, err = saleRepo.GetLines(ctx, sale.ID); err != nil {
			return err
		}
		sale.TotalHT, sale.TVA, sale.TotalTTC = salesdomain.Totals(sale.Lines)
		sale.UpdatedAt = time.Now().UTC()
		if err := saleRepo.UpdateHeader(ctx, sale); err != nil {
			return err
		}
		out = sale
		return nil
	})
	if err != nil {
		return nil, domain.Persistence("actualizar línea de venta", err)
	}
	return out, nil
}

// GetSale devuelve la venta con sus líneas.
func (c *Composer) GetSale(ctx context.Context, id string) (*entity.SaleTransaction, error) {
	sale, err := c.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("obtener venta", err)
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.Lines, err = c.saleRepo.GetLines(ctx, id); err != nil {
		return nil, domain.Persistence("obtener líneas de venta", err)
	}
	return sale, nil
}

// GetLine devuelve una línea de venta.
func (c *Composer) GetLine(ctx context.Context, lineID string) (*entity.SaleLineItem, error) {
	line, err := c.saleRepo.GetLineByID(ctx, lineID)
	if err != nil {
		return nil, domain.Persistence("obtener línea de venta", err)
	}
	if line == nil {
		return nil, domain.ErrNotFound
	}
	return line, nil
}

// ListSales lista cabeceras, más recientes primero.
func (c *Composer) ListSales(ctx context.Context, filter repository.SaleFilter) ([]*entity.SaleTransaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, err := c.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("listar ventas", err)
	}
	return list, nil
}

// DeleteSale elimina la venta y sus líneas. No repone stock.
func (c *Composer) DeleteSale(ctx context.Context, id string) error {
	err := c.txRunner.RunSales(ctx, func(saleRepo repository.SaleRepository) error {
		sale, err := saleRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		return saleRepo.Delete(ctx, id)
	})
	if err != nil {
		return domain.Persistence("eliminar venta", err)
	}
	c.log.Info().Ctx(ctx).Str("sale_id", id).Msg("venta eliminada")
	return nil
}
