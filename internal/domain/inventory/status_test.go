package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/inventory"
)

func TestComputeStatus(t *testing.T) {
	cases := []struct {
		name    string
		stock   int
		minimum int
		manual  string
		want    string
	}{
		{"sin stock", 0, 5, "", entity.StatusOutOfStock},
		{"bajo el mínimo", 3, 5, "", entity.StatusLowStock},
		{"sobre el mínimo", 10, 5, "", entity.StatusAvailable},
		{"igual al mínimo", 5, 5, "", entity.StatusAvailable},
		{"mínimo cero y stock uno", 1, 0, "", entity.StatusAvailable},
		{"reservado con stock", 10, 5, entity.StatusReserved, entity.StatusReserved},
		{"archivado sin stock", 0, 5, entity.StatusArchived, entity.StatusArchived},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, inventory.ComputeStatus(tc.stock, tc.minimum, tc.manual))
		})
	}
}

func TestIsAlertStatus(t *testing.T) {
	assert.True(t, inventory.IsAlertStatus(entity.StatusLowStock))
	assert.True(t, inventory.IsAlertStatus(entity.StatusOutOfStock))
	assert.False(t, inventory.IsAlertStatus(entity.StatusAvailable))
	assert.False(t, inventory.IsAlertStatus(entity.StatusReserved))
}

func TestWeightedAverageCost(t *testing.T) {
	// 10 unidades a 100 + 10 unidades a 200 → 150
	got := inventory.WeightedAverageCost(10, decimal.NewFromInt(100), 10, decimal.NewFromInt(200))
	assert.True(t, got.Equal(decimal.NewFromInt(150)), "got %s", got)

	// sin stock previo toma el costo de la entrada
	got = inventory.WeightedAverageCost(0, decimal.Zero, 4, decimal.RequireFromString("12.50"))
	assert.True(t, got.Equal(decimal.RequireFromString("12.5")), "got %s", got)

	assert.True(t, inventory.WeightedAverageCost(0, decimal.Zero, 0, decimal.NewFromInt(5)).IsZero())
}
