package sales_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/application/sales"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
	"github.com/jhoicas/StockPOS-api/internal/domain/sequence"
	"github.com/jhoicas/StockPOS-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	ledger   *inventory.Ledger
	composer *sales.Composer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ledger := inventory.NewLedger(store, store.Products(), store.Movements(), nil, nil, zerolog.Nop())
	return &fixture{store: store, ledger: ledger, composer: newComposer(store, ledger, store)}
}

func newComposer(store *memory.Store, stock sales.StockAdjuster, tx sales.TxRunner) *sales.Composer {
	var n atomic.Int64
	numbers := sequence.NewGeneratorWith("SALE",
		func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) },
		func(int) int { return int(n.Add(1)) % 1000 })
	return sales.NewComposer(tx, store.Products(), store.Sales(), store.Clients(), stock, numbers, nil, zerolog.Nop())
}

func (f *fixture) product(t *testing.T, id string, stock int, price string) {
	t.Helper()
	require.NoError(t, f.store.Products().Create(context.Background(), &entity.Product{
		ID: id, Reference: "REF-" + id, Name: "Article " + id, Category: entity.CategoryPeripheral,
		StockOnHand: stock, StockMinimum: 1, SalePrice: decimal.RequireFromString(price),
		Status: entity.StatusAvailable, CreatedAt: time.Now(),
	}))
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockOnHand
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// assertSaleInvariants verifica importes de líneas y cabecera.
func assertSaleInvariants(t *testing.T, sale *entity.SaleTransaction) {
	t.Helper()
	sumHT, sumTTC := decimal.Zero, decimal.Zero
	for _, l := range sale.Lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		assert.True(t, l.TotalHT.Equal(l.UnitPriceHT.Mul(qty)), "línea %d total HT", l.Position)
		assert.True(t, l.TotalTTC.Equal(l.UnitPriceTTC.Mul(qty)), "línea %d total TTC", l.Position)
		if l.WithTax {
			assert.True(t, l.UnitPriceTTC.Equal(l.UnitPriceHT.Mul(decimal.RequireFromString("1.2"))), "línea %d con TVA", l.Position)
		} else {
			assert.True(t, l.UnitPriceTTC.Equal(l.UnitPriceHT), "línea %d sin TVA", l.Position)
		}
		sumHT = sumHT.Add(l.TotalHT)
		sumTTC = sumTTC.Add(l.TotalTTC)
	}
	assert.True(t, sale.TotalHT.Equal(sumHT), "total HT %s != %s", sale.TotalHT, sumHT)
	assert.True(t, sale.TotalTTC.Equal(sumTTC), "total TTC %s != %s", sale.TotalTTC, sumTTC)
	assert.True(t, sale.TVA.Equal(sale.TotalTTC.Sub(sale.TotalHT)), "TVA")
}

// failingAdjuster delega en el libro real pero falla en la llamada número failAt (1-based)
// y, si failCorrections, en toda compensación posterior.
type failingAdjuster struct {
	next            sales.StockAdjuster
	failAt          int
	failCorrections bool
	calls           int
}

func (a *failingAdjuster) AdjustStock(ctx context.Context, in inventory.AdjustInput) (*entity.StockMovement, error) {
	a.calls++
	if a.calls == a.failAt {
		return nil, errors.New("fallo simulado del almacén")
	}
	if a.failCorrections && in.Kind == entity.MovementKindCorrection {
		return nil, errors.New("corrección rechazada")
	}
	return a.next.AdjustStock(ctx, in)
}

// failingTx hace fallar la persistencia de la venta.
type failingTx struct{}

func (failingTx) RunSales(context.Context, func(repository.SaleRepository) error) error {
	return errors.New("conexión perdida")
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateSale
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_CalculaImportesYDescuentaStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 5, "100")
	f.product(t, "p2", 3, "19.99")

	sale, err := f.composer.CreateSale(ctx, "u1", dto.CreateSaleRequest{
		PaymentMode: entity.PaymentCard,
		Lines: []dto.SaleLineRequest{
			{ProductID: "p1", Quantity: 2, WithTax: true},
			{ProductID: "p2", Quantity: 1, UnitPriceHT: dec("15.50")},
		},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^SALE-20260314-\d{3}$`, sale.Number)
	assert.Equal(t, entity.SaleStatusPaid, sale.Status)
	assertSaleInvariants(t, sale)
	assert.True(t, sale.TotalHT.Equal(decimal.RequireFromString("215.50")))
	assert.True(t, sale.TotalTTC.Equal(decimal.RequireFromString("255.50")))
	assert.True(t, sale.TVA.Equal(decimal.RequireFromString("40")))

	assert.Equal(t, 3, f.stock(t, "p1"))
	assert.Equal(t, 2, f.stock(t, "p2"))

	movs, err := f.store.Movements().ListByReference(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.MovementKindOut, m.Kind)
	}
}

func TestCreateSale_RelecturaConNLineas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 50, "10.10")

	lines := make([]dto.SaleLineRequest, 0, 7)
	for i := 1; i <= 7; i++ {
		lines = append(lines, dto.SaleLineRequest{ProductID: "p1", Quantity: i, WithTax: i%2 == 0})
	}
	created, err := f.composer.CreateSale(ctx, "u1", dto.CreateSaleRequest{PaymentMode: entity.PaymentCash, Lines: lines})
	require.NoError(t, err)

	got, err := f.composer.GetSale(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 7)
	for i, l := range got.Lines {
		assert.Equal(t, i+1, l.Position)
	}
	assertSaleInvariants(t, got)
	assert.True(t, got.TotalTTC.Equal(created.TotalTTC))
	assert.Equal(t, 50-28, f.stock(t, "p1"))
}

func TestCreateSale_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 5, "10")

	cases := map[string]dto.CreateSaleRequest{
		"sin líneas":      {PaymentMode: entity.PaymentCash},
		"cantidad cero":   {PaymentMode: entity.PaymentCash, Lines: []dto.SaleLineRequest{{ProductID: "p1", Quantity: 0}}},
		"precio negativo": {PaymentMode: entity.PaymentCash, Lines: []dto.SaleLineRequest{{ProductID: "p1", Quantity: 1, UnitPriceHT: dec("-1")}}},
		"modo de pago":    {PaymentMode: "bitcoin", Lines: []dto.SaleLineRequest{{ProductID: "p1", Quantity: 1}}},
		"cliente":         {PaymentMode: entity.PaymentCash, ClientID: "c-x", Lines: []dto.SaleLineRequest{{ProductID: "p1", Quantity: 1}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.composer.CreateSale(ctx, "u1", in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, 5, f.stock(t, "p1"))

	_, err := f.composer.CreateSale(ctx, "u1", dto.CreateSaleRequest{
		PaymentMode: entity.PaymentCash, Lines: []dto.SaleLineRequest{{ProductID: "nope", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateSale_StockInsuficienteAgregado(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 3, "10")

	_, err := f.composer.CreateSale(ctx, "u1", dto.CreateSaleRequest{
		PaymentMode: entity.PaymentCash,
		Lines: []dto.SaleLineRequest{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p1", Quantity: 2},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 3, f.stock(t, "p1"))
	movs, _ := f.store.Movements().ListByProduct(ctx, "p1", 0, 0)
	assert.Empty(t, movs)
}

func TestCreateSale_VentasConcurrentesSobreUltimaUnidad(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 1, "10")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.composer.CreateSale(ctx, "u1", dto.CreateSaleRequest{
				PaymentMode: entity.PaymentCash,
				Lines:       []dto.SaleLineRequest{{ProductID: "p1", Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 1, success)
	assert.Equal(t, 0, f.stock(t, "p1"))

	movs, _ := f.store.Movements().ListByProduct(ctx, "p1", 0, 0)
	outs := 0
	for _, m := range movs {
		if m.Kind == entity.MovementKindOut {
			outs++
		}
	}
	assert.Equal(t, 1, outs)
	list, _ := f.composer.ListSales(ctx, repository.SaleFilter{})
	assert.Len(t, list, 1)
}

func TestCreateSale_FalloEnLinea2CompensaLinea1(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 5, "10")
	f.product(t, "p2", 5, "20")
	composer := newComposer(f.store, &failingAdjuster{next: f.ledger, failAt: 2}, f.store)

	_, err := composer.CreateSale(ctx, "u1", dto.CreateSaleRequest{
		PaymentMode: entity.PaymentCash,
		Lines: []dto.SaleLineRequest{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrReconciliationRequired)

	assert.Equal(t, 5, f.stock(t, "p1"), "línea 1 repuesta")
	assert.Equal(t, 5, f.stock(t, "p2"))
	list, _ := f.composer.ListSales(ctx, repository.SaleFilter{})
	assert.Empty(t, list, "la venta no se persiste")

	movs, _ := f.store.Movements().ListByProduct(ctx, "p1", 0, 0)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementKindCorrection, movs[0].Kind)
	assert.Equal(t, 2, movs[0].Delta)
	assert.Equal(t, entity.MovementKindOut, movs[1].Kind)
}

func TestCreateSale_CompensacionFallidaPideConciliacion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 5, "10")
	f.product(t, "p2", 5, "20")
	composer := newComposer(f.store, &failingAdjuster{next: f.ledger, failAt: 2, failCorrections: true}, f.store)

	_, err := composer.CreateSale(ctx, "u1", dto.CreateSaleRequest{
		PaymentMode: entity.PaymentCash,
		Lines: []dto.SaleLineRequest{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	})
	require.ErrorIs(t, err, domain.ErrReconciliationRequired)
	var rec *domain.ReconciliationError
	require.ErrorAs(t, err, &rec)
	assert.Len(t, rec.Failures, 1)
	assert.EqualError(t, rec.Cause, "fallo simulado del almacén")
	assert.Equal(t, 3, f.stock(t, "p1"), "la salida de la línea 1 quedó sin revertir")
}

func TestCreateSale_FalloAlPersistirRevierteTodo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 5, "10")
	f.product(t, "p2", 5, "20")
	composer := newComposer(f.store, f.ledger, failingTx{})

	_, err := composer.CreateSale(ctx, "u1", dto.CreateSaleRequest{
		PaymentMode: entity.PaymentCash,
		Lines: []dto.SaleLineRequest{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 3},
		},
	})
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, 5, f.stock(t, "p1"))
	assert.Equal(t, 5, f.stock(t, "p2"))
}

func TestCreateSale_ProductoArchivadoNoSeVende(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 5, "10")
	p, _ := f.store.Products().GetByID(ctx, "p1")
	p.ManualStatus = entity.StatusArchived
	p.Status = entity.StatusArchived
	require.NoError(t, f.store.Products().Update(ctx, p))

	_, err := f.composer.CreateSale(ctx, "u1", dto.CreateSaleRequest{
		PaymentMode: entity.PaymentCash, Lines: []dto.SaleLineRequest{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateLineItem_AlternarTVAMantieneInvariantes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 10, "33.33")
	f.product(t, "p2", 10, "7.05")

	sale, err := f.composer.CreateSale(ctx, "u1", dto.CreateSaleRequest{
		PaymentMode: entity.PaymentCash,
		Lines: []dto.SaleLineRequest{
			{ProductID: "p1", Quantity: 3, WithTax: true},
			{ProductID: "p2", Quantity: 2},
		},
	})
	require.NoError(t, err)

	for i, line := range sale.Lines {
		withTax := !line.WithTax
		sale, err = f.composer.UpdateLineItem(ctx, line.ID, dto.UpdateLineItemRequest{WithTax: &withTax})
		require.NoError(t, err)
		assert.Equal(t, withTax, sale.Lines[i].WithTax)
		assertSaleInvariants(t, sale)
	}

	sale, err = f.composer.UpdateLineItem(ctx, sale.Lines[0].ID, dto.UpdateLineItemRequest{UnitPriceHT: dec("30")})
	require.NoError(t, err)
	assertSaleInvariants(t, sale)
	assert.True(t, sale.TotalHT.Equal(decimal.RequireFromString("104.10")), "HT=%s", sale.TotalHT)

	reread, err := f.composer.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assertSaleInvariants(t, reread)
	assert.True(t, reread.TotalTTC.Equal(sale.TotalTTC))

	assert.Equal(t, 7, f.stock(t, "p1"), "editar líneas no mueve stock")

	_, err = f.composer.UpdateLineItem(ctx, "nope", dto.UpdateLineItemRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateSale_EditaCabecera(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 10, "10")
	require.NoError(t, f.store.Clients().Create(ctx, &entity.Client{ID: "c1", Name: "Client Un"}))

	sale, err := f.composer.CreateSale(ctx, "u1", dto.CreateSaleRequest{
		PaymentMode: entity.PaymentCash, Status: entity.SaleStatusPending,
		Lines: []dto.SaleLineRequest{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	client, mode, status := "c1", entity.PaymentCheque, entity.SaleStatusPaid
	updated, err := f.composer.UpdateSale(ctx, sale.ID, dto.UpdateSaleRequest{ClientID: &client, PaymentMode: &mode, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "c1", updated.ClientID)
	assert.Equal(t, entity.PaymentCheque, updated.PaymentMode)
	assert.Equal(t, entity.SaleStatusPaid, updated.Status)
	assertSaleInvariants(t, updated)

	bad := "inconnu"
	_, err = f.composer.UpdateSale(ctx, sale.ID, dto.UpdateSaleRequest{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.composer.UpdateSale(ctx, "nope", dto.UpdateSaleRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteSale_NoReponeStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p1", 4, "10")

	sale, err := f.composer.CreateSale(ctx, "u1", dto.CreateSaleRequest{
		PaymentMode: entity.PaymentCash, Lines: []dto.SaleLineRequest{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, f.composer.DeleteSale(ctx, sale.ID))

	_, err = f.composer.GetSale(ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	lines, _ := f.store.Sales().GetLines(ctx, sale.ID)
	assert.Empty(t, lines)
	assert.Equal(t, 2, f.stock(t, "p1"))
	assert.ErrorIs(t, f.composer.DeleteSale(ctx, sale.ID), domain.ErrNotFound)
}
