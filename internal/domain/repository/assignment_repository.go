package repository

import (
	"context"

	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
)

// AssignmentRepository puerto de asignaciones producto → usuario.
type AssignmentRepository interface {
	Create(ctx context.Context, a *entity.ProductAssignment) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]entity.ProductAssignment, error)
}
