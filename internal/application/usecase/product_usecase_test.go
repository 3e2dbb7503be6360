package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/application/usecase"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/access"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
	"github.com/jhoicas/StockPOS-api/internal/infrastructure/memory"
)

func newProductUC(store *memory.Store) *usecase.ProductUseCase {
	ledger := inventory.NewLedger(store, store.Products(), store.Movements(), nil, nil, zerolog.Nop())
	return usecase.NewProductUseCase(store, store.Products(), ledger, zerolog.Nop())
}

func createReq(ref string, stock, minimum int) dto.CreateProductRequest {
	return dto.CreateProductRequest{
		Reference:    ref,
		Name:         "Écran " + ref,
		Category:     entity.CategoryMonitor,
		Brand:        "Dell",
		Attributes:   json.RawMessage(`{"size_in":27}`),
		PurchaseCost: decimal.NewFromInt(200),
		SalePrice:    decimal.NewFromInt(329),
		InitialStock: stock,
		StockMinimum: minimum,
	}
}

func TestProductCreate_StockInicialPasaPorElLibro(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newProductUC(store)

	p, err := uc.Create(ctx, "u1", createReq("MON-1", 3, 5))
	require.NoError(t, err)
	assert.Equal(t, 3, p.StockOnHand)
	assert.Equal(t, entity.StatusLowStock, p.Status)
	assert.True(t, p.PurchaseCost.Equal(decimal.NewFromInt(200)))

	movs, _ := store.Movements().ListByProduct(ctx, p.ID, 0, 0)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementKindIn, movs[0].Kind)
	assert.Equal(t, 3, movs[0].Delta)

	empty, err := uc.Create(ctx, "u1", createReq("MON-2", 0, 2))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusOutOfStock, empty.Status)
	movs, _ = store.Movements().ListByProduct(ctx, empty.ID, 0, 0)
	assert.Empty(t, movs)
}

func TestProductCreate_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc := newProductUC(memory.NewStore())

	_, err := uc.Create(ctx, "u1", createReq("MON-1", 0, 0))
	require.NoError(t, err)
	_, err = uc.Create(ctx, "u1", createReq("MON-1", 0, 0))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	bad := createReq("MON-2", 0, 0)
	bad.Category = "tablette"
	_, err = uc.Create(ctx, "u1", bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad = createReq("MON-3", 0, 0)
	bad.SalePrice = decimal.NewFromInt(-1)
	_, err = uc.Create(ctx, "u1", bad)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "sale_price")

	bad = createReq("MON-4", 0, 0)
	bad.Attributes = json.RawMessage(`{"size_in":`)
	_, err = uc.Create(ctx, "u1", bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUpdate_RecalculaEstadoSinTocarStock(t *testing.T) {
	ctx := context.Background()
	uc := newProductUC(memory.NewStore())
	p, err := uc.Create(ctx, "u1", createReq("MON-1", 8, 5))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAvailable, p.Status)

	minimum := 10
	updated, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{StockMinimum: &minimum})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusLowStock, updated.Status)
	assert.Equal(t, 8, updated.StockOnHand)

	reserved := entity.StatusReserved
	updated, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{ManualStatus: &reserved})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReserved, updated.Status)

	none := ""
	updated, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{ManualStatus: &none})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusLowStock, updated.Status, "sin override vuelve al estado derivado")

	other, err := uc.Create(ctx, "u1", createReq("MON-2", 0, 0))
	require.NoError(t, err)
	ref := "MON-1"
	_, err = uc.Update(ctx, other.ID, dto.UpdateProductRequest{Reference: &ref})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Update(ctx, "nope", dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccess_AsignacionesFiltranYOcultanPrecios(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := newProductUC(store)
	assignments := usecase.NewAssignmentUseCase(store.Assignments(), store.Products())
	accessUC := usecase.NewAccessUseCase(store.Assignments())

	p1, err := products.Create(ctx, "admin", createReq("MON-1", 1, 0))
	require.NoError(t, err)
	p2, err := products.Create(ctx, "admin", createReq("MON-2", 1, 0))
	require.NoError(t, err)

	a, err := assignments.Create(ctx, dto.CreateAssignmentRequest{ProductID: p1.ID, AssignedTo: "tech-1"})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryMonitor, a.ProductType)
	_, err = assignments.Create(ctx, dto.CreateAssignmentRequest{ProductID: p1.ID, AssignedTo: "tech-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	tech := entity.Principal{UserID: "tech-1", Role: entity.RoleTechnicien}
	scope, err := accessUC.ForProduct(ctx, tech, p1)
	require.NoError(t, err)
	assert.Equal(t, access.Scope{CanView: true, Reason: access.ReasonAssignment}, scope)

	scope, err = accessUC.ForProduct(ctx, tech, p2)
	require.NoError(t, err)
	assert.False(t, scope.CanView)

	ids, all, err := accessUC.VisibleProductIDs(ctx, tech)
	require.NoError(t, err)
	assert.False(t, all)
	list, err := products.List(ctx, repository.ProductFilter{IDs: ids})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p1.ID, list[0].ID)

	out := dto.NewProductResponse(p1, scope)
	assert.Nil(t, out.SalePrice)
	assert.Nil(t, out.PurchaseCost)

	manager := entity.Principal{UserID: "m", Role: entity.RoleManager}
	_, all, err = accessUC.VisibleProductIDs(ctx, manager)
	require.NoError(t, err)
	assert.True(t, all)
	scopes, err := accessUC.ForProducts(ctx, manager, []*entity.Product{p1, p2})
	require.NoError(t, err)
	for _, s := range scopes {
		assert.True(t, s.CanViewPricing)
	}

	require.NoError(t, assignments.Delete(ctx, a.ID))
	scope, err = accessUC.ForProduct(ctx, tech, p1)
	require.NoError(t, err)
	assert.Equal(t, access.ReasonNone, scope.Reason)
	assert.ErrorIs(t, assignments.Delete(ctx, a.ID), domain.ErrNotFound)
}

func TestClients_CrearYListar(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewClientUseCase(memory.NewStore().Clients())

	_, err := uc.Create(ctx, dto.CreateClientRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateClientRequest{Name: "Bad", Email: "pas-un-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := uc.Create(ctx, dto.CreateClientRequest{Name: "Studio Pixel", Email: "contact@pixel.fr", TaxID: "FR12345678901"})
	require.NoError(t, err)
	got, err := uc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Studio Pixel", got.Name)

	list, err := uc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = uc.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
