package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/application/validation"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

// AssignmentUseCase administra qué productos ve cada vendeur o technicien.
type AssignmentUseCase struct {
	repo        repository.AssignmentRepository
	productRepo repository.ProductRepository
}

// NewAssignmentUseCase construye el caso de uso.
func NewAssignmentUseCase(repo repository.AssignmentRepository, productRepo repository.ProductRepository) *AssignmentUseCase {
	return &AssignmentUseCase{repo: repo, productRepo: productRepo}
}

// Create asigna un producto a un usuario. ProductType se copia de la categoría actual.
func (uc *AssignmentUseCase) Create(ctx context.Context, in dto.CreateAssignmentRequest) (*entity.ProductAssignment, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, domain.Persistence("obtener producto", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	a := &entity.ProductAssignment{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		ProductType: product.Category,
		AssignedTo:  in.AssignedTo,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, a); err != nil {
		return nil, domain.Persistence("crear asignación", err)
	}
	return a, nil
}

// Delete elimina una asignación.
func (uc *AssignmentUseCase) Delete(ctx context.Context, id string) error {
	return domain.Persistence("eliminar asignación", uc.repo.Delete(ctx, id))
}

// ListByUser lista las asignaciones de un usuario.
func (uc *AssignmentUseCase) ListByUser(ctx context.Context, userID string) ([]entity.ProductAssignment, error) {
	list, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.Persistence("listar asignaciones", err)
	}
	return list, nil
}
