package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	b binding
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, existing := range st.products {
			if existing.Reference == p.Reference {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.b.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *ProductRepo) GetByReference(_ context.Context, reference string) (*entity.Product, error) {
	var out *entity.Product
	r.b.read(func(st *state) {
		for _, p := range st.products {
			if p.Reference == reference {
				out = &p
				return
			}
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: la transacción ya tiene el estado en exclusiva.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.b.write(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.products {
			if other.ID != p.ID && other.Reference == p.Reference {
				return domain.ErrDuplicate
			}
		}
		cur.Reference = p.Reference
		cur.Name = p.Name
		cur.Category = p.Category
		cur.Brand = p.Brand
		cur.Attributes = p.Attributes
		cur.SalePrice = p.SalePrice
		cur.StockMinimum = p.StockMinimum
		cur.Status = p.Status
		cur.ManualStatus = p.ManualStatus
		cur.UpdatedAt = p.UpdatedAt
		st.products[p.ID] = cur
		return nil
	})
}

func (r *ProductRepo) UpdateCost(_ context.Context, productID string, cost decimal.Decimal) error {
	return r.b.write(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		p.PurchaseCost = cost
		p.UpdatedAt = time.Now().UTC()
		st.products[productID] = p
		return nil
	})
}

func (r *ProductRepo) UpdateStatus(_ context.Context, productID, status string) error {
	return r.b.write(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		p.Status = status
		st.products[productID] = p
		return nil
	})
}

func (r *ProductRepo) ApplyStockDelta(_ context.Context, productID string, delta int) (*repository.StockChange, error) {
	var change *repository.StockChange
	err := r.b.write(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		if p.StockOnHand+delta < 0 {
			return domain.ErrInsufficientStock
		}
		change = &repository.StockChange{
			Before:       p.StockOnHand,
			After:        p.StockOnHand + delta,
			Minimum:      p.StockMinimum,
			ManualStatus: p.ManualStatus,
			PurchaseCost: p.PurchaseCost,
		}
		p.StockOnHand = change.After
		p.UpdatedAt = time.Now().UTC()
		st.products[productID] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var list []*entity.Product
	r.b.read(func(st *state) {
		for _, p := range st.products {
			if f.Category != "" && p.Category != f.Category {
				continue
			}
			if f.Status != "" && p.Status != f.Status {
				continue
			}
			if f.IDs != nil && !slices.Contains(f.IDs, p.ID) {
				continue
			}
			list = append(list, &p)
		}
	})
	slices.SortFunc(list, func(a, b *entity.Product) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return paginate(list, f.Limit, f.Offset), nil
}

func (r *ProductRepo) ListBelowMinimum(_ context.Context) ([]*entity.Product, error) {
	var list []*entity.Product
	r.b.read(func(st *state) {
		for _, p := range st.products {
			if p.StockOnHand < p.StockMinimum {
				list = append(list, &p)
			}
		}
	})
	slices.SortFunc(list, func(a, b *entity.Product) int {
		return cmp.Compare(b.StockMinimum-b.StockOnHand, a.StockMinimum-a.StockOnHand)
	})
	return list, nil
}
