package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas en memoria. Las cabeceras se guardan sin Lines.
type SaleRepo struct {
	b binding
}

func (r *SaleRepo) Create(_ context.Context, sale *entity.SaleTransaction) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.sales[sale.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, s := range st.sales {
			if s.Number == sale.Number {
				return domain.ErrDuplicate
			}
		}
		header := *sale
		header.Lines = nil
		st.sales[sale.ID] = header
		return nil
	})
}

func (r *SaleRepo) CreateLines(_ context.Context, lines []entity.SaleLineItem) error {
	return r.b.write(func(st *state) error {
		for _, l := range lines {
			if _, ok := st.sales[l.SaleID]; !ok {
				return domain.ErrNotFound
			}
			if _, ok := st.lines[l.ID]; ok {
				return domain.ErrDuplicate
			}
		}
		for _, l := range lines {
			st.lines[l.ID] = l
		}
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.SaleTransaction, error) {
	var out *entity.SaleTransaction
	r.b.read(func(st *state) {
		if s, ok := st.sales[id]; ok {
			out = &s
		}
	})
	return out, nil
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.SaleTransaction, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) GetLines(_ context.Context, saleID string) ([]entity.SaleLineItem, error) {
	var lines []entity.SaleLineItem
	r.b.read(func(st *state) {
		for _, l := range st.lines {
			if l.SaleID == saleID {
				lines = append(lines, l)
			}
		}
	})
	slices.SortFunc(lines, func(a, b entity.SaleLineItem) int { return cmp.Compare(a.Position, b.Position) })
	return lines, nil
}

func (r *SaleRepo) GetLineByID(_ context.Context, lineID string) (*entity.SaleLineItem, error) {
	var out *entity.SaleLineItem
	r.b.read(func(st *state) {
		if l, ok := st.lines[lineID]; ok {
			out = &l
		}
	})
	return out, nil
}

func (r *SaleRepo) UpdateHeader(_ context.Context, sale *entity.SaleTransaction) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.sales[sale.ID]; !ok {
			return domain.ErrNotFound
		}
		header := *sale
		header.Lines = nil
		st.sales[sale.ID] = header
		return nil
	})
}

func (r *SaleRepo) UpdateLine(_ context.Context, line *entity.SaleLineItem) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.lines[line.ID]; !ok {
			return domain.ErrNotFound
		}
		st.lines[line.ID] = *line
		return nil
	})
}

func (r *SaleRepo) Delete(_ context.Context, id string) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.sales[id]; !ok {
			return domain.ErrNotFound
		}
		for lid, l := range st.lines {
			if l.SaleID == id {
				delete(st.lines, lid)
			}
		}
		delete(st.sales, id)
		return nil
	})
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.SaleTransaction, error) {
	var list []*entity.SaleTransaction
	r.b.read(func(st *state) {
		for _, s := range st.sales {
			if f.ClientID != "" && s.ClientID != f.ClientID {
				continue
			}
			if f.From != nil && s.SoldAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !s.SoldAt.Before(*f.To) {
				continue
			}
			list = append(list, &s)
		}
	})
	slices.SortFunc(list, func(a, b *entity.SaleTransaction) int {
		if c := b.SoldAt.Compare(a.SoldAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Number, b.Number)
	})
	return paginate(list, f.Limit, f.Offset), nil
}
