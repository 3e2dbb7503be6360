package usecase

import (
	"context"

	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/access"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

// AccessUseCase carga las asignaciones del usuario y aplica access.ResolveAccess.
type AccessUseCase struct {
	assignments repository.AssignmentRepository
}

// NewAccessUseCase construye el caso de uso.
func NewAccessUseCase(assignments repository.AssignmentRepository) *AccessUseCase {
	return &AccessUseCase{assignments: assignments}
}

// ForProduct decide el alcance del usuario sobre un producto.
func (uc *AccessUseCase) ForProduct(ctx context.Context, who entity.Principal, product *entity.Product) (access.Scope, error) {
	assignments, err := uc.load(ctx, who)
	if err != nil {
		return access.Scope{}, err
	}
	return access.ResolveAccess(who.Role, who.UserID, product.ID, product.Category, assignments), nil
}

// ForProducts resuelve el alcance de varios productos con una sola lectura de asignaciones.
func (uc *AccessUseCase) ForProducts(ctx context.Context, who entity.Principal, products []*entity.Product) ([]access.Scope, error) {
	assignments, err := uc.load(ctx, who)
	if err != nil {
		return nil, err
	}
	scopes := make([]access.Scope, len(products))
	for i, p := range products {
		scopes[i] = access.ResolveAccess(who.Role, who.UserID, p.ID, p.Category, assignments)
	}
	return scopes, nil
}

// VisibleProductIDs devuelve los productos asignados al usuario. all es true para
// roles que ven todo el catálogo (la lista se ignora).
func (uc *AccessUseCase) VisibleProductIDs(ctx context.Context, who entity.Principal) (ids []string, all bool, err error) {
	if isPrivileged(who.Role) {
		return nil, true, nil
	}
	assignments, err := uc.load(ctx, who)
	if err != nil {
		return nil, false, err
	}
	ids = make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ProductID)
	}
	return ids, false, nil
}

func (uc *AccessUseCase) load(ctx context.Context, who entity.Principal) ([]entity.ProductAssignment, error) {
	if isPrivileged(who.Role) {
		return nil, nil
	}
	list, err := uc.assignments.ListByUser(ctx, who.UserID)
	if err != nil {
		return nil, domain.Persistence("listar asignaciones", err)
	}
	return list, nil
}

func isPrivileged(role string) bool {
	return role == entity.RoleAdmin || role == entity.RoleManager
}
