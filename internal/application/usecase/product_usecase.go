package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/application/validation"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	domaininv "github.com/jhoicas/StockPOS-api/internal/domain/inventory"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// CatalogTxRunner transacción sobre productos (y movimientos) para ediciones de catálogo.
// *memory.Store y *postgres.TxRunner la implementan igual que inventory.TxRunner.
type CatalogTxRunner interface {
	RunInventory(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// StockAdjuster registra el stock inicial de un producto nuevo.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, in inventory.AdjustInput) (*entity.StockMovement, error)
}

// ProductUseCase casos de uso del catálogo. Stock y costo se manejan vía el libro de inventario.
type ProductUseCase struct {
	txRunner CatalogTxRunner
	repo     repository.ProductRepository
	stock    StockAdjuster
	log      zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner CatalogTxRunner, repo repository.ProductRepository, stock StockAdjuster, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repo: repo, stock: stock, log: log.With().Str("component", "catalog").Logger()}
}

// Create crea un producto con stock 0 y, si InitialStock > 0, registra una Entrée
// al costo de compra indicado.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*entity.Product, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if len(in.Attributes) > 0 && !json.Valid(in.Attributes) {
		return nil, domain.NewValidationError("attributes", "json")
	}
	existing, err := uc.repo.GetByReference(ctx, in.Reference)
	if err != nil {
		return nil, domain.Persistence("buscar referencia", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Reference:    in.Reference,
		Name:         in.Name,
		Category:     in.Category,
		Brand:        in.Brand,
		Attributes:   in.Attributes,
		PurchaseCost: in.PurchaseCost,
		SalePrice:    in.SalePrice,
		StockMinimum: in.StockMinimum,
		ManualStatus: in.ManualStatus,
		Status:       domaininv.ComputeStatus(0, in.StockMinimum, in.ManualStatus),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, domain.Persistence("crear producto", err)
	}

	if in.InitialStock > 0 {
		cost := in.PurchaseCost
		mov, err := uc.stock.AdjustStock(ctx, inventory.AdjustInput{
			ProductID: product.ID,
			Delta:     in.InitialStock,
			Kind:      entity.MovementKindIn,
			Reference: "STOCK-INITIAL",
			UnitCost:  &cost,
			Note:      "stock initial",
			UserID:    userID,
		})
		if err != nil {
			// El producto queda creado con stock 0; el stock puede cargarse con un ajuste.
			uc.log.Error().Ctx(ctx).Err(err).Str("product_id", product.ID).Msg("no se registró el stock inicial")
			return nil, err
		}
		product.StockOnHand = mov.StockAfter
	}
	return uc.Get(ctx, product.ID)
}

// Get obtiene un producto o domain.ErrNotFound.
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("obtener producto", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// Update actualiza datos de catálogo, mínimo y override manual con la fila bloqueada,
// y recalcula el estado. No modifica stock ni costo.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*entity.Product, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if len(in.Attributes) > 0 && !json.Valid(in.Attributes) {
		return nil, domain.NewValidationError("attributes", "json")
	}
	var out *entity.Product
	err := uc.txRunner.RunInventory(ctx, func(productRepo repository.ProductRepository, _ repository.StockMovementRepository) error {
		product, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if in.Reference != nil && *in.Reference != product.Reference {
			other, err := productRepo.GetByReference(ctx, *in.Reference)
			if err != nil {
				return err
			}
			if other != nil {
				return domain.ErrDuplicate
			}
			product.Reference = *in.Reference
		}
		if in.Name != nil {
			product.Name = *in.Name
		}
		if in.Brand != nil {
			product.Brand = *in.Brand
		}
		if len(in.Attributes) > 0 {
			product.Attributes = in.Attributes
		}
		if in.SalePrice != nil {
			product.SalePrice = *in.SalePrice
		}
		if in.StockMinimum != nil {
			product.StockMinimum = *in.StockMinimum
		}
		if in.ManualStatus != nil {
			product.ManualStatus = *in.ManualStatus
		}
		product.Status = domaininv.ComputeStatus(product.StockOnHand, product.StockMinimum, product.ManualStatus)
		product.UpdatedAt = time.Now().UTC()
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		out = product
		return nil
	})
	if err != nil {
		return nil, domain.Persistence("actualizar producto", err)
	}
	return out, nil
}

// List lista productos con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("listar productos", err)
	}
	return list, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
