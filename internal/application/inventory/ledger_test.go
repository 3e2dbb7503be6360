package inventory_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/application/ports"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, e ports.Event) error {
	return m.Called(ctx, e).Error(0)
}

func newLedger(store *memory.Store, notifier ports.Notifier) *inventory.Ledger {
	return inventory.NewLedger(store, store.Products(), store.Movements(), nil, notifier, zerolog.Nop())
}

func seedProduct(t *testing.T, store *memory.Store, id string, stock, minimum int) {
	t.Helper()
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: id, Reference: "REF-" + id, Name: "Produit " + id, Category: entity.CategoryPeripheral,
		StockOnHand: stock, StockMinimum: minimum, SalePrice: decimal.NewFromInt(50),
		Status: entity.StatusAvailable, CreatedAt: time.Now(),
	}))
}

func stockOf(t *testing.T, store *memory.Store, id string) (int, string) {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockOnHand, p.Status
}

// ──────────────────────────────────────────────────────────────────────────────
// AdjustStock
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_SecuenciaAleatoriaCoincideConAcumulado(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedProduct(t, store, "p1", 0, 5)
	ledger := newLedger(store, nil)

	rng := rand.New(rand.NewPCG(42, 7))
	expected := 0
	for i := 0; i < 300; i++ {
		var in inventory.AdjustInput
		switch rng.IntN(4) {
		case 0:
			in = inventory.AdjustInput{Kind: entity.MovementKindIn, Delta: rng.IntN(5) + 1}
		case 1:
			in = inventory.AdjustInput{Kind: entity.MovementKindOut, Delta: -(rng.IntN(5) + 1)}
		case 2:
			in = inventory.AdjustInput{Kind: entity.MovementKindReturn, Delta: rng.IntN(3) + 1}
		default:
			d := rng.IntN(7) - 3
			if d == 0 {
				d = 1
			}
			in = inventory.AdjustInput{Kind: entity.MovementKindCorrection, Delta: d}
		}
		in.ProductID = "p1"

		mov, err := ledger.AdjustStock(ctx, in)
		if expected+in.Delta < 0 {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, expected, mov.StockBefore)
		expected += in.Delta
		assert.Equal(t, expected, mov.StockAfter)
	}

	stock, _ := stockOf(t, store, "p1")
	assert.Equal(t, expected, stock)

	// el último movimiento refleja el stock final
	history, err := ledger.GetMovementHistory(ctx, "p1", 1, 0)
	require.NoError(t, err)
	if len(history) == 1 {
		assert.Equal(t, stock, history[0].StockAfter)
	}
}

func TestAdjustStock_RechazaStockNegativo(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedProduct(t, store, "p1", 2, 1)
	ledger := newLedger(store, nil)

	_, err := ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "p1", Kind: entity.MovementKindOut, Delta: -3})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	stock, status := stockOf(t, store, "p1")
	assert.Equal(t, 2, stock)
	assert.Equal(t, entity.StatusAvailable, status)
	movs, _ := store.Movements().ListByProduct(ctx, "p1", 0, 0)
	assert.Empty(t, movs, "no debe registrarse movimiento en un rechazo")

	_, err = ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "p1", Kind: entity.MovementKindCorrection, Delta: -5})
	require.ErrorIs(t, err, domain.ErrInsufficientStock, "las correcciones tampoco pueden dejar stock negativo")
}

func TestAdjustStock_ValidaSignoYTipo(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "p1", 2, 1)
	ledger := newLedger(store, nil)

	cases := []inventory.AdjustInput{
		{ProductID: "p1", Kind: entity.MovementKindIn, Delta: -1},
		{ProductID: "p1", Kind: entity.MovementKindOut, Delta: 1},
		{ProductID: "p1", Kind: entity.MovementKindReturn, Delta: 0},
		{ProductID: "p1", Kind: entity.MovementKindCorrection, Delta: 0},
		{ProductID: "p1", Kind: "Vol", Delta: 1},
		{ProductID: "", Kind: entity.MovementKindIn, Delta: 1},
	}
	for _, in := range cases {
		_, err := ledger.AdjustStock(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
	}
}

func TestAdjustStock_ProductoInexistente(t *testing.T) {
	ledger := newLedger(memory.NewStore(), nil)
	_, err := ledger.AdjustStock(context.Background(), inventory.AdjustInput{ProductID: "x", Kind: entity.MovementKindIn, Delta: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStock_DerivaEstado(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedProduct(t, store, "p1", 10, 5)
	ledger := newLedger(store, nil)

	_, status := stockOf(t, store, "p1")
	assert.Equal(t, entity.StatusAvailable, status)

	_, err := ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "p1", Kind: entity.MovementKindOut, Delta: -7})
	require.NoError(t, err)
	_, status = stockOf(t, store, "p1")
	assert.Equal(t, entity.StatusLowStock, status, "stock 3 con mínimo 5")

	_, err = ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "p1", Kind: entity.MovementKindOut, Delta: -3})
	require.NoError(t, err)
	_, status = stockOf(t, store, "p1")
	assert.Equal(t, entity.StatusOutOfStock, status, "stock 0")

	_, err = ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "p1", Kind: entity.MovementKindIn, Delta: 10})
	require.NoError(t, err)
	_, status = stockOf(t, store, "p1")
	assert.Equal(t, entity.StatusAvailable, status, "stock 10")
}

func TestAdjustStock_OverrideManualPrevalece(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedProduct(t, store, "p1", 10, 5)
	p, _ := store.Products().GetByID(ctx, "p1")
	p.ManualStatus = entity.StatusReserved
	require.NoError(t, store.Products().Update(ctx, p))

	ledger := newLedger(store, nil)
	_, err := ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "p1", Kind: entity.MovementKindOut, Delta: -10})
	require.NoError(t, err)
	_, status := stockOf(t, store, "p1")
	assert.Equal(t, entity.StatusReserved, status)
}

func TestAdjustStock_EntradaRecalculaCosto(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedProduct(t, store, "p1", 0, 0)
	ledger := newLedger(store, nil)

	cost := decimal.NewFromInt(100)
	_, err := ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "p1", Kind: entity.MovementKindIn, Delta: 10, UnitCost: &cost})
	require.NoError(t, err)
	cost2 := decimal.NewFromInt(200)
	_, err = ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "p1", Kind: entity.MovementKindIn, Delta: 10, UnitCost: &cost2})
	require.NoError(t, err)

	p, _ := store.Products().GetByID(ctx, "p1")
	assert.True(t, p.PurchaseCost.Equal(decimal.NewFromInt(150)), "costo=%s", p.PurchaseCost)

	// costo unitario solo en entradas
	_, err = ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "p1", Kind: entity.MovementKindOut, Delta: -1, UnitCost: &cost})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustStock_ConcurrenciaNoSobrevende(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedProduct(t, store, "p1", 5, 1)
	ledger := newLedger(store, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "p1", Kind: entity.MovementKindOut, Delta: -1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 5, success)
	stock, _ := stockOf(t, store, "p1")
	assert.Equal(t, 0, stock)
	movs, _ := store.Movements().ListByProduct(ctx, "p1", 0, 0)
	assert.Len(t, movs, 5)
}

func TestAdjustStock_NotificaStockBajo(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedProduct(t, store, "p1", 6, 5)

	notified := make(chan struct{})
	n := &mockNotifier{}
	n.On("Notify", mock.Anything, mock.MatchedBy(func(e ports.Event) bool {
		return e.Type == ports.EventStockLow && e.EntityID == "p1"
	})).Return(assert.AnError).Once().Run(func(mock.Arguments) { close(notified) })

	ledger := newLedger(store, n)
	mov, err := ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "p1", Kind: entity.MovementKindOut, Delta: -2})
	require.NoError(t, err, "un fallo al notificar no invalida el ajuste")
	assert.Equal(t, 4, mov.StockAfter)

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("el aviso de stock bajo no se publicó")
	}
	n.AssertExpectations(t)
}

// ──────────────────────────────────────────────────────────────────────────────
// GetMovementHistory
// ──────────────────────────────────────────────────────────────────────────────

func TestGetMovementHistory_OrdenYPaginacion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedProduct(t, store, "p1", 0, 0)
	ledger := newLedger(store, nil)

	for i := 1; i <= 3; i++ {
		_, err := ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "p1", Kind: entity.MovementKindIn, Delta: i, Reference: fmt.Sprintf("BL-%d", i)})
		require.NoError(t, err)
	}
	list, err := ledger.GetMovementHistory(ctx, "p1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "BL-3", list[0].Reference)
	assert.Equal(t, 6, list[0].StockAfter)
	assert.Equal(t, "BL-1", list[2].Reference)

	page, err := ledger.GetMovementHistory(ctx, "p1", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "BL-2", page[0].Reference)

	_, err = ledger.GetMovementHistory(ctx, "nope", 10, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
