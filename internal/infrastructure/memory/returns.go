package memory

import (
	"context"
	"slices"
	"time"

	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

var (
	_ repository.ReturnRepository   = (*ReturnRepo)(nil)
	_ repository.ExchangeRepository = (*ExchangeRepo)(nil)
)

// ReturnRepo devoluciones en memoria.
type ReturnRepo struct {
	b binding
}

func (r *ReturnRepo) Create(_ context.Context, rec *entity.ReturnRecord) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.returns[rec.ID]; ok {
			return domain.ErrDuplicate
		}
		st.returns[rec.ID] = *rec
		return nil
	})
}

func (r *ReturnRepo) GetByID(_ context.Context, id string) (*entity.ReturnRecord, error) {
	var out *entity.ReturnRecord
	r.b.read(func(st *state) {
		if rec, ok := st.returns[id]; ok {
			out = &rec
		}
	})
	return out, nil
}

func (r *ReturnRepo) Transition(_ context.Context, id string, t repository.ReturnTransition) (bool, error) {
	applied := false
	err := r.b.write(func(st *state) error {
		rec, ok := st.returns[id]
		if !ok || !slices.Contains(t.From, rec.Status) {
			return nil
		}
		rec.Status = t.To
		rec.UpdatedAt = t.At
		if t.RefundMode != "" {
			rec.RefundMode = t.RefundMode
		}
		if t.RefundAccount != "" {
			rec.RefundAccount = t.RefundAccount
		}
		if t.Reason != "" {
			rec.Reason = t.Reason
		}
		at := t.At
		rec.ProcessedAt = &at
		st.returns[id] = rec
		applied = true
		return nil
	})
	return applied, err
}

func (r *ReturnRepo) MarkRestocked(_ context.Context, id string) (bool, error) {
	applied := false
	err := r.b.write(func(st *state) error {
		rec, ok := st.returns[id]
		if !ok || rec.Restocked || rec.Status == entity.ReturnStatusRefused {
			return nil
		}
		rec.Restocked = true
		rec.UpdatedAt = time.Now().UTC()
		st.returns[id] = rec
		applied = true
		return nil
	})
	return applied, err
}

func (r *ReturnRepo) UnmarkRestocked(_ context.Context, id string) error {
	return r.b.write(func(st *state) error {
		rec, ok := st.returns[id]
		if !ok {
			return domain.ErrNotFound
		}
		rec.Restocked = false
		st.returns[id] = rec
		return nil
	})
}

func (r *ReturnRepo) ReturnedQuantity(_ context.Context, saleID, productID string) (int, error) {
	total := 0
	r.b.read(func(st *state) {
		for _, rec := range st.returns {
			if rec.SaleID == saleID && rec.ProductID == productID && rec.Status != entity.ReturnStatusRefused {
				total += rec.Quantity
			}
		}
	})
	return total, nil
}

// ExchangeRepo cambios en memoria.
type ExchangeRepo struct {
	b binding
}

func (r *ExchangeRepo) Create(_ context.Context, e *entity.ExchangeRecord) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.exchanges[e.ID]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := st.returns[e.ReturnID]; !ok {
			return domain.ErrNotFound
		}
		st.exchanges[e.ID] = *e
		return nil
	})
}

func (r *ExchangeRepo) GetByID(_ context.Context, id string) (*entity.ExchangeRecord, error) {
	var out *entity.ExchangeRecord
	r.b.read(func(st *state) {
		if e, ok := st.exchanges[id]; ok {
			out = &e
		}
	})
	return out, nil
}

func (r *ExchangeRepo) Transition(_ context.Context, id string, from []string, to string, at time.Time) (bool, error) {
	applied := false
	err := r.b.write(func(st *state) error {
		e, ok := st.exchanges[id]
		if !ok || !slices.Contains(from, e.Status) {
			return nil
		}
		e.Status = to
		e.UpdatedAt = at
		if to == entity.ExchangeStatusFinalized {
			e.FinalizedAt = &at
		}
		st.exchanges[id] = e
		applied = true
		return nil
	})
	return applied, err
}
