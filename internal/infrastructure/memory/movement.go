package memory

import (
	"context"

	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos en memoria (solo inserción).
type MovementRepo struct {
	b binding
}

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.b.write(func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

// ListByProduct recorre en orden inverso de inserción: el más reciente primero.
func (r *MovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	r.b.read(func(st *state) {
		for i := len(st.movements) - 1; i >= 0; i-- {
			if st.movements[i].ProductID == productID {
				m := st.movements[i]
				list = append(list, &m)
			}
		}
	})
	return paginate(list, limit, offset), nil
}

func (r *MovementRepo) ListByReference(_ context.Context, reference string) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	r.b.read(func(st *state) {
		for _, m := range st.movements {
			if m.Reference == reference {
				list = append(list, &m)
			}
		}
	})
	return list, nil
}
