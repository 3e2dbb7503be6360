package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/infrastructure/memory"
)

func TestGenerateReplenishmentList(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now()
	products := []entity.Product{
		{ID: "a", Reference: "A", Name: "Clavier", StockOnHand: 1, StockMinimum: 4, PurchaseCost: decimal.NewFromInt(20), SalePrice: decimal.NewFromInt(40), CreatedAt: now},
		{ID: "b", Reference: "B", Name: "Souris", StockOnHand: 0, StockMinimum: 3, PurchaseCost: decimal.NewFromInt(10), SalePrice: decimal.NewFromInt(30), CreatedAt: now},
		{ID: "c", Reference: "C", Name: "Écran", StockOnHand: 9, StockMinimum: 3, PurchaseCost: decimal.NewFromInt(100), SalePrice: decimal.NewFromInt(150), CreatedAt: now},
		{ID: "d", Reference: "D", Name: "Chaise", StockOnHand: 0, StockMinimum: 2, ManualStatus: entity.StatusArchived, CreatedAt: now},
	}
	for i := range products {
		require.NoError(t, store.Products().Create(ctx, &products[i]))
	}

	uc := inventory.NewReplenishmentUseCase(store.Products(), store.Analytics())
	list, err := uc.GenerateReplenishmentList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2, "solo productos bajo mínimo y no archivados")

	// b tiene mayor margen estimado (66.67%) que a (50%)
	assert.Equal(t, "b", list[0].ProductID)
	assert.Equal(t, 1, list[0].Priority)
	assert.Equal(t, 5, list[0].IdealStock, "ceil(3*1.5)")
	assert.Equal(t, 5, list[0].SuggestedOrderQty)
	assert.True(t, list[0].EstimatedOrderCost.Equal(decimal.NewFromInt(50)))

	assert.Equal(t, "a", list[1].ProductID)
	assert.Equal(t, 6, list[1].IdealStock)
	assert.Equal(t, 5, list[1].SuggestedOrderQty)
}
