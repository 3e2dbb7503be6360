package returns_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/application/returns"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/sequence"
	"github.com/jhoicas/StockPOS-api/internal/infrastructure/memory"
)

type fixture struct {
	store     *memory.Store
	ledger    *inventory.Ledger
	processor *returns.Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ledger := inventory.NewLedger(store, store.Products(), store.Movements(), nil, nil, zerolog.Nop())
	return &fixture{store: store, ledger: ledger, processor: newProcessor(store, ledger)}
}

func newProcessor(store *memory.Store, stock returns.StockAdjuster) *returns.Processor {
	counter := 0
	var mu sync.Mutex
	next := func(int) int {
		mu.Lock()
		defer mu.Unlock()
		counter++
		return counter
	}
	now := func() time.Time { return time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC) }
	return returns.NewProcessor(store, store.Returns(), store.Exchanges(), store.Products(), store.Sales(), stock,
		sequence.NewGeneratorWith("RET", now, next), sequence.NewGeneratorWith("ECH", now, next), nil, zerolog.Nop())
}

func (f *fixture) product(t *testing.T, id string, stock int, price string) {
	t.Helper()
	require.NoError(t, f.store.Products().Create(context.Background(), &entity.Product{
		ID: id, Reference: "REF-" + id, Name: "Article " + id, Category: entity.CategoryMonitor,
		StockOnHand: stock, StockMinimum: 1, SalePrice: decimal.RequireFromString(price),
		Status: entity.StatusAvailable, CreatedAt: time.Now(),
	}))
}

// sale guarda directamente una venta con una línea de qty unidades de productID a 120 TTC.
func (f *fixture) sale(t *testing.T, id, productID string, qty int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.Sales().Create(ctx, &entity.SaleTransaction{ID: id, Number: "SALE-" + id, SoldAt: time.Now()}))
	require.NoError(t, f.store.Sales().CreateLines(ctx, []entity.SaleLineItem{{
		ID: id + "-l1", SaleID: id, Position: 1, ProductID: productID, Quantity: qty, WithTax: true,
		UnitPriceHT: decimal.NewFromInt(100), UnitPriceTTC: decimal.NewFromInt(120),
	}}))
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.StockOnHand
}

func recordReturn(t *testing.T, f *fixture, in dto.RecordReturnRequest) *entity.ReturnRecord {
	t.Helper()
	rec, err := f.processor.RecordReturn(context.Background(), "u1", in)
	require.NoError(t, err)
	return rec
}

// ──────────────────────────────────────────────────────────────────────────────
// Devoluciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordReturn_NoMueveStockYTomaPrecioVendido(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 4, "150")
	f.sale(t, "s1", "p1", 2)

	rec := recordReturn(t, f, dto.RecordReturnRequest{SaleID: "s1", ProductID: "p1", Quantity: 1, Reason: "écran rayé"})
	assert.Equal(t, entity.ReturnStatusPending, rec.Status)
	assert.Equal(t, entity.ReturnKindSimple, rec.Kind)
	assert.Regexp(t, `^RET-20260314-\d{3}$`, rec.Number)
	assert.True(t, rec.UnitPrice.Equal(decimal.NewFromInt(120)), "precio=%s", rec.UnitPrice)
	assert.False(t, rec.Restocked)
	assert.Equal(t, 4, f.stock(t, "p1"))

	sinVenta := recordReturn(t, f, dto.RecordReturnRequest{ProductID: "p1", Quantity: 1, Reason: "sans ticket"})
	assert.True(t, sinVenta.UnitPrice.Equal(decimal.NewFromInt(150)), "sin venta usa precio de catálogo")
}

func TestRecordReturn_NoSuperaLoVendido(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 4, "150")
	f.product(t, "p2", 4, "10")
	f.sale(t, "s1", "p1", 2)

	recordReturn(t, f, dto.RecordReturnRequest{SaleID: "s1", ProductID: "p1", Quantity: 1, Reason: "a"})
	_, err := f.processor.RecordReturn(ctx, "u1", dto.RecordReturnRequest{SaleID: "s1", ProductID: "p1", Quantity: 2, Reason: "b"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.processor.RecordReturn(ctx, "u1", dto.RecordReturnRequest{SaleID: "s1", ProductID: "p2", Quantity: 1, Reason: "c"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "producto que no está en la venta")

	_, err = f.processor.RecordReturn(ctx, "u1", dto.RecordReturnRequest{SaleID: "nope", ProductID: "p1", Quantity: 1, Reason: "d"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.processor.RecordReturn(ctx, "u1", dto.RecordReturnRequest{ProductID: "p1", Quantity: 0, Reason: "e"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRestockReturn_UnaSolaVez(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 0, "150")
	rec := recordReturn(t, f, dto.RecordReturnRequest{ProductID: "p1", Quantity: 2, Reason: "défaut"})

	mov, err := f.processor.RestockReturn(ctx, rec.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementKindReturn, mov.Kind)
	assert.Equal(t, 2, mov.Delta)
	assert.Equal(t, rec.Number, mov.Reference)
	assert.Equal(t, 2, f.stock(t, "p1"))

	_, err = f.processor.RestockReturn(ctx, rec.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, 2, f.stock(t, "p1"))

	got, err := f.processor.GetReturn(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.Restocked)
}

type brokenLedger struct{}

func (brokenLedger) AdjustStock(context.Context, inventory.AdjustInput) (*entity.StockMovement, error) {
	return nil, errors.New("libro no disponible")
}

func TestRestockReturn_FalloDelLibroLiberaLaMarca(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 0, "150")
	rec := recordReturn(t, f, dto.RecordReturnRequest{ProductID: "p1", Quantity: 1, Reason: "défaut"})

	broken := newProcessor(f.store, brokenLedger{})
	_, err := broken.RestockReturn(ctx, rec.ID, "u1")
	require.Error(t, err)

	_, err = f.processor.RestockReturn(ctx, rec.ID, "u1")
	require.NoError(t, err, "el reintento debe poder reingresar")
	assert.Equal(t, 1, f.stock(t, "p1"))
}

func TestRestockReturn_RechazadaNoSeReingresa(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 0, "150")
	rec := recordReturn(t, f, dto.RecordReturnRequest{ProductID: "p1", Quantity: 1, Reason: "changement d'avis"})

	refused, err := f.processor.RefuseReturn(ctx, rec.ID, dto.RefuseReturnRequest{Reason: "hors délai"})
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnStatusRefused, refused.Status)
	assert.Contains(t, refused.Reason, "hors délai")
	assert.Contains(t, refused.Reason, "changement d'avis")

	_, err = f.processor.RestockReturn(ctx, rec.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, 0, f.stock(t, "p1"))
}

func TestProcessRefund_SegundaVezEsTransicionInvalida(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 1, "150")
	rec := recordReturn(t, f, dto.RecordReturnRequest{ProductID: "p1", Quantity: 1, Reason: "défaut"})

	refunded, err := f.processor.ProcessRefund(ctx, rec.ID, dto.RefundRequest{Mode: "carte", Account: "****4242"})
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnStatusRefunded, refunded.Status)
	require.NotNil(t, refunded.ProcessedAt)

	_, err = f.processor.ProcessRefund(ctx, rec.ID, dto.RefundRequest{Mode: "especes"})
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	got, err := f.processor.GetReturn(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnStatusRefunded, got.Status)
	assert.Equal(t, "carte", got.RefundMode, "el segundo intento no modifica nada")
	assert.Equal(t, "****4242", got.RefundAccount)
}

func TestProcessRefund_ConcurrenteSoloUnoGana(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 1, "150")
	rec := recordReturn(t, f, dto.RecordReturnRequest{ProductID: "p1", Quantity: 1, Reason: "défaut"})

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.processor.ProcessRefund(ctx, rec.ID, dto.RefundRequest{Mode: "especes"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	}
	assert.Equal(t, 1, ok)
}

func TestTransiciones_MaquinaDeEstados(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 1, "150")

	rec := recordReturn(t, f, dto.RecordReturnRequest{ProductID: "p1", Quantity: 1, Reason: "a"})
	processed, err := f.processor.MarkProcessed(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnStatusProcessed, processed.Status)
	_, err = f.processor.MarkProcessed(ctx, rec.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "traite → traite")
	_, err = f.processor.ProcessRefund(ctx, rec.ID, dto.RefundRequest{Mode: "avoir"})
	require.NoError(t, err, "traite → rembourse")
	_, err = f.processor.RefuseReturn(ctx, rec.ID, dto.RefuseReturnRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "rembourse es terminal")

	rec2 := recordReturn(t, f, dto.RecordReturnRequest{ProductID: "p1", Quantity: 1, Reason: "b"})
	_, err = f.processor.RefuseReturn(ctx, rec2.ID, dto.RefuseReturnRequest{})
	require.NoError(t, err)
	_, err = f.processor.ProcessRefund(ctx, rec2.ID, dto.RefundRequest{Mode: "carte"})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "refuse es terminal")

	_, err = f.processor.MarkProcessed(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.processor.ProcessRefund(ctx, rec2.ID, dto.RefundRequest{Mode: "bitcoin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cambios
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordExchange_CreaDevolucionYCambio(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "old", 0, "100")
	f.product(t, "new", 5, "180")
	f.sale(t, "s1", "old", 1)

	ex, err := f.processor.RecordExchange(ctx, "u1", dto.RecordExchangeRequest{
		SaleID: "s1", OldProductID: "old", OldQuantity: 1, NewProductID: "new", NewQuantity: 1, Reason: "taille",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ExchangeStatusPending, ex.Status)
	assert.Regexp(t, `^ECH-20260314-\d{3}$`, ex.Number)
	assert.True(t, ex.OldUnitPrice.Equal(decimal.NewFromInt(120)), "precio vendido TTC")
	assert.True(t, ex.NewUnitPrice.Equal(decimal.NewFromInt(180)))
	assert.True(t, ex.PriceDifference.Equal(decimal.NewFromInt(60)), "diff=%s", ex.PriceDifference)

	rec, err := f.processor.GetReturn(ctx, ex.ReturnID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnKindExchange, rec.Kind)
	assert.Equal(t, "old", rec.ProductID)

	assert.Equal(t, 0, f.stock(t, "old"), "registrar un cambio no mueve stock")
	assert.Equal(t, 5, f.stock(t, "new"))
}

func TestRecordExchange_DiferenciaNegativaYPreciosExplicitos(t *testing.T) {
	f := newFixture(t)
	f.product(t, "old", 0, "100")
	f.product(t, "new", 5, "180")

	old, nuevo := decimal.RequireFromString("50"), decimal.RequireFromString("20")
	ex, err := f.processor.RecordExchange(context.Background(), "u1", dto.RecordExchangeRequest{
		OldProductID: "old", OldQuantity: 2, OldUnitPrice: &old,
		NewProductID: "new", NewQuantity: 1, NewUnitPrice: &nuevo, Reason: "modèle",
	})
	require.NoError(t, err)
	assert.True(t, ex.PriceDifference.Equal(decimal.NewFromInt(-80)), "diff=%s", ex.PriceDifference)
}

func TestExchange_FinalizarYCancelar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "old", 0, "100")
	f.product(t, "new", 5, "180")
	in := dto.RecordExchangeRequest{OldProductID: "old", OldQuantity: 1, NewProductID: "new", NewQuantity: 1, Reason: "x"}

	ex, err := f.processor.RecordExchange(ctx, "u1", in)
	require.NoError(t, err)
	done, err := f.processor.FinalizeExchange(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ExchangeStatusFinalized, done.Status)
	require.NotNil(t, done.FinalizedAt)
	_, err = f.processor.FinalizeExchange(ctx, ex.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	_, err = f.processor.CancelExchange(ctx, ex.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	ex2, err := f.processor.RecordExchange(ctx, "u1", in)
	require.NoError(t, err)
	cancelled, err := f.processor.CancelExchange(ctx, ex2.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ExchangeStatusCancelled, cancelled.Status)
	_, err = f.processor.FinalizeExchange(ctx, ex2.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.processor.GetExchange(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
