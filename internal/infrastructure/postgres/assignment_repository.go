package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

var _ repository.AssignmentRepository = (*AssignmentRepo)(nil)

// AssignmentRepo asignaciones producto → usuario.
type AssignmentRepo struct {
	q Querier
}

func NewAssignmentRepository(q Querier) *AssignmentRepo {
	return &AssignmentRepo{q: q}
}

func (r *AssignmentRepo) Create(ctx context.Context, a *entity.ProductAssignment) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO product_assignments (id, product_id, product_type, assigned_to, created_at) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.ProductID, a.ProductType, a.AssignedTo, a.CreatedAt,
	)
	return wrap("insert assignment", err)
}

func (r *AssignmentRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM product_assignments WHERE id = $1`, id)
	if err != nil {
		return wrap("delete assignment", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AssignmentRepo) ListByUser(ctx context.Context, userID string) ([]entity.ProductAssignment, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, product_id, product_type, assigned_to, created_at
		FROM product_assignments WHERE assigned_to = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, wrap("list assignments", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.ProductAssignment, error) {
		var a entity.ProductAssignment
		err := row.Scan(&a.ID, &a.ProductID, &a.ProductType, &a.AssignedTo, &a.CreatedAt)
		return a, err
	})
	return list, wrap("list assignments", err)
}
