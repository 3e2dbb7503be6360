package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

var (
	_ repository.AssignmentRepository = (*AssignmentRepo)(nil)
	_ repository.ClientRepository     = (*ClientRepo)(nil)
)

// AssignmentRepo asignaciones en memoria.
type AssignmentRepo struct {
	b binding
}

func (r *AssignmentRepo) Create(_ context.Context, a *entity.ProductAssignment) error {
	return r.b.write(func(st *state) error {
		for _, existing := range st.assignments {
			if existing.ProductID == a.ProductID && existing.AssignedTo == a.AssignedTo {
				return domain.ErrDuplicate
			}
		}
		st.assignments[a.ID] = *a
		return nil
	})
}

func (r *AssignmentRepo) Delete(_ context.Context, id string) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.assignments[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.assignments, id)
		return nil
	})
}

func (r *AssignmentRepo) ListByUser(_ context.Context, userID string) ([]entity.ProductAssignment, error) {
	var list []entity.ProductAssignment
	r.b.read(func(st *state) {
		for _, a := range st.assignments {
			if a.AssignedTo == userID {
				list = append(list, a)
			}
		}
	})
	slices.SortFunc(list, func(a, b entity.ProductAssignment) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return list, nil
}

// ClientRepo clientes en memoria.
type ClientRepo struct {
	b binding
}

func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.clients[c.ID]; ok {
			return domain.ErrDuplicate
		}
		st.clients[c.ID] = *c
		return nil
	})
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	var out *entity.Client
	r.b.read(func(st *state) {
		if c, ok := st.clients[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *ClientRepo) List(_ context.Context, limit, offset int) ([]*entity.Client, error) {
	var list []*entity.Client
	r.b.read(func(st *state) {
		for _, c := range st.clients {
			list = append(list, &c)
		}
	})
	slices.SortFunc(list, func(a, b *entity.Client) int { return cmp.Compare(a.Name, b.Name) })
	return paginate(list, limit, offset), nil
}
