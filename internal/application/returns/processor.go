package returns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/application/ports"
	"github.com/jhoicas/StockPOS-api/internal/application/validation"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
	"github.com/jhoicas/StockPOS-api/internal/domain/sequence"
)

const maxNumberAttempts = 3

// Processor gestiona el ciclo de vida de devoluciones y cambios.
//
// Devolución: en_attente → {traite, rembourse, refuse}; traite → {rembourse, refuse}.
// Cambio: en_attente → {finalise, annule}.
// Las transiciones son actualizaciones condicionadas al estado actual, así dos
// reembolsos simultáneos no pueden aplicarse ambos. Registrar no mueve stock:
// el reingreso es RestockReturn.
type Processor struct {
	txRunner        TxRunner
	returnRepo      repository.ReturnRepository
	exchangeRepo    repository.ExchangeRepository
	productRepo     repository.ProductRepository
	saleRepo        repository.SaleRepository
	stock           StockAdjuster
	returnNumbers   *sequence.Generator
	exchangeNumbers *sequence.Generator
	notifier        ports.Notifier
	log             zerolog.Logger
}

// NewProcessor construye el procesador. notifier puede ser nil.
func NewProcessor(
	txRunner TxRunner,
	returnRepo repository.ReturnRepository,
	exchangeRepo repository.ExchangeRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	stock StockAdjuster,
	returnNumbers, exchangeNumbers *sequence.Generator,
	notifier ports.Notifier,
	log zerolog.Logger,
) *Processor {
	if notifier == nil {
		notifier = ports.NoopNotifier{}
	}
	return &Processor{
		txRunner:        txRunner,
		returnRepo:      returnRepo,
		exchangeRepo:    exchangeRepo,
		productRepo:     productRepo,
		saleRepo:        saleRepo,
		stock:           stock,
		returnNumbers:   returnNumbers,
		exchangeNumbers: exchangeNumbers,
		notifier:        notifier,
		log:             log.With().Str("component", "returns").Logger(),
	}
}

// RecordReturn registra una devolución en estado en_attente.
// Con SaleID, el producto debe figurar en la venta y lo devuelto acumulado no puede
// superar lo vendido. Sin precio se toma el TTC de la línea vendida o el de catálogo.
func (p *Processor) RecordReturn(ctx context.Context, userID string, in dto.RecordReturnRequest) (*entity.ReturnRecord, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	unitPrice, sold, err := p.resolvePrice(ctx, in.SaleID, in.ProductID, in.UnitPrice, "product_id")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &entity.ReturnRecord{
		ID:         uuid.New().String(),
		SaleID:     in.SaleID,
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		UnitPrice:  unitPrice,
		Reason:     in.Reason,
		Kind:       entity.ReturnKindSimple,
		RefundMode: in.RefundMode,
		Status:     entity.ReturnStatusPending,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = p.withNumbers(ctx, func(returnRepo repository.ReturnRepository, _ repository.ExchangeRepository) error {
		if err := checkReturnable(ctx, returnRepo, in.SaleID, in.ProductID, in.Quantity, sold, "quantity"); err != nil {
			return err
		}
		rec.Number = p.returnNumbers.Next()
		return returnRepo.Create(ctx, rec)
	})
	if err != nil {
		return nil, domain.Persistence("registrar devolución", err)
	}

	p.log.Info().Ctx(ctx).Str("return_id", rec.ID).Str("number", rec.Number).Str("product_id", rec.ProductID).
		Int("quantity", rec.Quantity).Msg("devolución registrada")
	ports.Publish(ctx, p.notifier, p.log, ports.Event{
		Type:     ports.EventReturnRecorded,
		EntityID: rec.ID,
		Message:  fmt.Sprintf("devolución %s: %d × %s", rec.Number, rec.Quantity, rec.ProductID),
		Data:     map[string]any{"number": rec.Number, "sale_id": rec.SaleID},
	})
	return rec, nil
}

// RestockReturn reingresa la mercadería devuelta con un movimiento Retour.
// Se aplica una sola vez por devolución; una devolución rechazada no se reingresa.
func (p *Processor) RestockReturn(ctx context.Context, returnID, userID string) (*entity.StockMovement, error) {
	rec, err := p.GetReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if rec.Status == entity.ReturnStatusRefused || rec.Restocked {
		return nil, domain.ErrInvalidStateTransition
	}
	claimed, err := p.returnRepo.MarkRestocked(ctx, returnID)
	if err != nil {
		return nil, domain.Persistence("marcar reingreso", err)
	}
	if !claimed {
		return nil, domain.ErrInvalidStateTransition
	}

	mov, err := p.stock.AdjustStock(ctx, inventory.AdjustInput{
		ProductID: rec.ProductID,
		Delta:     rec.Quantity,
		Kind:      entity.MovementKindReturn,
		Reference: rec.Number,
		Note:      "reingreso de devolución",
		UserID:    userID,
	})
	if err != nil {
		if uerr := p.returnRepo.UnmarkRestocked(context.WithoutCancel(ctx), returnID); uerr != nil {
			p.log.Error().Ctx(ctx).Err(uerr).Str("return_id", returnID).Msg("no se pudo liberar la marca de reingreso")
		}
		return nil, err
	}
	p.log.Info().Ctx(ctx).Str("return_id", returnID).Int("stock_after", mov.StockAfter).Msg("devolución reingresada")
	return mov, nil
}

// ProcessRefund marca la devolución como reembolsada. Desde un estado terminal
// devuelve domain.ErrInvalidStateTransition sin modificar nada.
func (p *Processor) ProcessRefund(ctx context.Context, returnID string, in dto.RefundRequest) (*entity.ReturnRecord, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return p.transition(ctx, returnID, repository.ReturnTransition{
		From:          []string{entity.ReturnStatusPending, entity.ReturnStatusProcessed},
		To:            entity.ReturnStatusRefunded,
		RefundMode:    in.Mode,
		RefundAccount: in.Account,
	})
}

// MarkProcessed en_attente → traite.
func (p *Processor) MarkProcessed(ctx context.Context, returnID string) (*entity.ReturnRecord, error) {
	return p.transition(ctx, returnID, repository.ReturnTransition{
		From: []string{entity.ReturnStatusPending},
		To:   entity.ReturnStatusProcessed,
	})
}

// RefuseReturn rechaza la devolución. El motivo se agrega al original.
func (p *Processor) RefuseReturn(ctx context.Context, returnID string, in dto.RefuseReturnRequest) (*entity.ReturnRecord, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	t := repository.ReturnTransition{
		From: []string{entity.ReturnStatusPending, entity.ReturnStatusProcessed},
		To:   entity.ReturnStatusRefused,
	}
	if in.Reason != "" {
		rec, err := p.GetReturn(ctx, returnID)
		if err != nil {
			return nil, err
		}
		t.Reason = fmt.Sprintf("%s (refus: %s)", rec.Reason, in.Reason)
	}
	return p.transition(ctx, returnID, t)
}

func (p *Processor) transition(ctx context.Context, returnID string, t repository.ReturnTransition) (*entity.ReturnRecord, error) {
	t.At = time.Now().UTC()
	applied, err := p.returnRepo.Transition(ctx, returnID, t)
	if err != nil {
		return nil, domain.Persistence("actualizar devolución", err)
	}
	rec, err := p.GetReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("devolución %s en estado %s → %s: %w", rec.Number, rec.Status, t.To, domain.ErrInvalidStateTransition)
	}
	p.log.Info().Ctx(ctx).Str("return_id", returnID).Str("status", rec.Status).Msg("devolución actualizada")
	return rec, nil
}

// RecordExchange registra en una transacción la devolución (tipo echange) y el cambio.
// Sin precios se usan el TTC vendido para el artículo devuelto y el de catálogo para
// el nuevo. No mueve stock.
func (p *Processor) RecordExchange(ctx context.Context, userID string, in dto.RecordExchangeRequest) (*entity.ExchangeRecord, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	oldPrice, sold, err := p.resolvePrice(ctx, in.SaleID, in.OldProductID, in.OldUnitPrice, "old_product_id")
	if err != nil {
		return nil, err
	}
	newPrice, _, err := p.resolvePrice(ctx, "", in.NewProductID, in.NewUnitPrice, "new_product_id")
	if err != nil {
		return nil, err
	}

	diff := newPrice.Mul(decimal.NewFromInt(int64(in.NewQuantity))).
		Sub(oldPrice.Mul(decimal.NewFromInt(int64(in.OldQuantity))))
	now := time.Now().UTC()
	rec := &entity.ReturnRecord{
		ID:        uuid.New().String(),
		SaleID:    in.SaleID,
		ProductID: in.OldProductID,
		Quantity:  in.OldQuantity,
		UnitPrice: oldPrice,
		Reason:    in.Reason,
		Kind:      entity.ReturnKindExchange,
		Status:    entity.ReturnStatusPending,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ex := &entity.ExchangeRecord{
		ID:              uuid.New().String(),
		ReturnID:        rec.ID,
		OldProductID:    in.OldProductID,
		OldUnitPrice:    oldPrice,
		OldQuantity:     in.OldQuantity,
		NewProductID:    in.NewProductID,
		NewUnitPrice:    newPrice,
		NewQuantity:     in.NewQuantity,
		PriceDifference: diff,
		Status:          entity.ExchangeStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err = p.withNumbers(ctx, func(returnRepo repository.ReturnRepository, exchangeRepo repository.ExchangeRepository) error {
		if err := checkReturnable(ctx, returnRepo, in.SaleID, in.OldProductID, in.OldQuantity, sold, "old_quantity"); err != nil {
			return err
		}
		rec.Number = p.returnNumbers.Next()
		ex.Number = p.exchangeNumbers.Next()
		if err := returnRepo.Create(ctx, rec); err != nil {
			return err
		}
		return exchangeRepo.Create(ctx, ex)
	})
	if err != nil {
		return nil, domain.Persistence("registrar cambio", err)
	}

	p.log.Info().Ctx(ctx).Str("exchange_id", ex.ID).Str("number", ex.Number).
		Str("price_difference", ex.PriceDifference.StringFixed(2)).Msg("cambio registrado")
	ports.Publish(ctx, p.notifier, p.log, ports.Event{
		Type:     ports.EventExchangeRecorded,
		EntityID: ex.ID,
		Message:  fmt.Sprintf("cambio %s: diferencia %s", ex.Number, ex.PriceDifference.StringFixed(2)),
		Data:     map[string]any{"number": ex.Number, "return_id": ex.ReturnID},
	})
	return ex, nil
}

// FinalizeExchange en_attente → finalise.
func (p *Processor) FinalizeExchange(ctx context.Context, id string) (*entity.ExchangeRecord, error) {
	return p.exchangeTransition(ctx, id, entity.ExchangeStatusFinalized)
}

// CancelExchange en_attente → annule.
func (p *Processor) CancelExchange(ctx context.Context, id string) (*entity.ExchangeRecord, error) {
	return p.exchangeTransition(ctx, id, entity.ExchangeStatusCancelled)
}

func (p *Processor) exchangeTransition(ctx context.Context, id, to string) (*entity.ExchangeRecord, error) {
	applied, err := p.exchangeRepo.Transition(ctx, id, []string{entity.ExchangeStatusPending}, to, time.Now().UTC())
	if err != nil {
		return nil, domain.Persistence("actualizar cambio", err)
	}
	ex, err := p.GetExchange(ctx, id)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("cambio %s en estado %s → %s: %w", ex.Number, ex.Status, to, domain.ErrInvalidStateTransition)
	}
	return ex, nil
}

// GetReturn devuelve la devolución o domain.ErrNotFound.
func (p *Processor) GetReturn(ctx context.Context, id string) (*entity.ReturnRecord, error) {
	rec, err := p.returnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("obtener devolución", err)
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// GetExchange devuelve el cambio o domain.ErrNotFound.
func (p *Processor) GetExchange(ctx context.Context, id string) (*entity.ExchangeRecord, error) {
	ex, err := p.exchangeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("obtener cambio", err)
	}
	if ex == nil {
		return nil, domain.ErrNotFound
	}
	return ex, nil
}

// withNumbers ejecuta fn en una transacción y la repite si un número generado ya existía.
func (p *Processor) withNumbers(ctx context.Context, fn func(repository.ReturnRepository, repository.ExchangeRepository) error) error {
	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		err = p.txRunner.RunReturns(ctx, fn)
		if !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
		p.log.Warn().Ctx(ctx).Int("attempt", attempt+1).Msg("número de devolución o cambio repetido")
	}
	return err
}

// resolvePrice verifica el producto y, si explicit es nil, toma el TTC unitario de la
// línea vendida (con saleID) o el precio de catálogo. Con saleID devuelve además la
// cantidad vendida de ese producto.
func (p *Processor) resolvePrice(ctx context.Context, saleID, productID string, explicit *decimal.Decimal, field string) (decimal.Decimal, int, error) {
	product, err := p.productRepo.GetByID(ctx, productID)
	if err != nil {
		return decimal.Zero, 0, domain.Persistence("obtener producto", err)
	}
	if product == nil {
		return decimal.Zero, 0, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	price, sold := product.SalePrice, 0
	if saleID != "" {
		lines, err := p.saleLines(ctx, saleID)
		if err != nil {
			return decimal.Zero, 0, err
		}
		for _, l := range lines {
			if l.ProductID != productID {
				continue
			}
			if sold == 0 {
				price = l.UnitPriceTTC
			}
			sold += l.Quantity
		}
		if sold == 0 {
			return decimal.Zero, 0, domain.NewValidationError(field, "not_in_sale")
		}
	}
	if explicit != nil {
		price = *explicit
	}
	return price, sold, nil
}

// checkReturnable comprueba, dentro de la transacción, que lo devuelto acumulado no
// supere lo vendido.
func checkReturnable(ctx context.Context, returnRepo repository.ReturnRepository, saleID, productID string, qty, sold int, field string) error {
	if saleID == "" {
		return nil
	}
	returned, err := returnRepo.ReturnedQuantity(ctx, saleID, productID)
	if err != nil {
		return err
	}
	if returned+qty > sold {
		return domain.NewValidationError(field, fmt.Sprintf("exceeds_sold (vendido %d, ya devuelto %d)", sold, returned))
	}
	return nil
}

func (p *Processor) saleLines(ctx context.Context, saleID string) ([]entity.SaleLineItem, error) {
	sale, err := p.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, domain.Persistence("obtener venta", err)
	}
	if sale == nil {
		return nil, fmt.Errorf("venta %s: %w", saleID, domain.ErrNotFound)
	}
	lines, err := p.saleRepo.GetLines(ctx, saleID)
	if err != nil {
		return nil, domain.Persistence("obtener líneas de venta", err)
	}
	return lines, nil
}
