package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, reference, name, category, brand, attributes, purchase_cost, sale_price,
	stock_on_hand, stock_minimum, status, manual_status, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Reference, &p.Name, &p.Category, &p.Brand, &p.Attributes, &p.PurchaseCost, &p.SalePrice,
		&p.StockOnHand, &p.StockMinimum, &p.Status, &p.ManualStatus, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Reference, p.Name, p.Category, p.Brand, p.Attributes, p.PurchaseCost, p.SalePrice,
		p.StockOnHand, p.StockMinimum, p.Status, p.ManualStatus, p.CreatedAt, p.UpdatedAt,
	)
	return wrap("insert product", err)
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	return p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByReference obtiene un producto por su referencia interna.
func (r *ProductRepo) GetByReference(ctx context.Context, reference string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by reference", `SELECT `+productColumns+` FROM products WHERE reference = $1`, reference)
}

// GetForUpdate bloquea la fila (FOR UPDATE) hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product for update", `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// Update actualiza datos de catálogo. No toca stock ni costo (se manejan vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET reference = $2, name = $3, category = $4, brand = $5, attributes = $6,
			sale_price = $7, stock_minimum = $8, status = $9, manual_status = $10, updated_at = $11
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.Reference, p.Name, p.Category, p.Brand, p.Attributes,
		p.SalePrice, p.StockMinimum, p.Status, p.ManualStatus, p.UpdatedAt,
	)
	if err != nil {
		return wrap("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCost actualiza solo el costo del producto (usado por el libro de inventario).
func (r *ProductRepo) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET purchase_cost = $2, updated_at = now() WHERE id = $1`,
		productID, cost,
	)
	if err != nil {
		return wrap("update product cost", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus fija el estado de disponibilidad derivado.
func (r *ProductRepo) UpdateStatus(ctx context.Context, productID, status string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE products SET status = $2 WHERE id = $1`, productID, status)
	if err != nil {
		return wrap("update product status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ApplyStockDelta actualización condicionada: la fila solo cambia si el stock resultante es >= 0.
// Si no cambia nada, distingue entre producto inexistente y stock insuficiente.
func (r *ProductRepo) ApplyStockDelta(ctx context.Context, productID string, delta int) (*repository.StockChange, error) {
	query := `
		UPDATE products SET stock_on_hand = stock_on_hand + $2, updated_at = $3
		WHERE id = $1 AND stock_on_hand + $2 >= 0
		RETURNING stock_on_hand, stock_minimum, manual_status, purchase_cost`
	var change repository.StockChange
	err := r.q.QueryRow(ctx, query, productID, delta, time.Now().UTC()).Scan(
		&change.After, &change.Minimum, &change.ManualStatus, &change.PurchaseCost,
	)
	if err == nil {
		change.Before = change.After - delta
		return &change, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrap("apply stock delta", err)
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return nil, wrap("apply stock delta", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrInsufficientStock
}

// List lista productos con filtros opcionales, más recientes primero.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.IDs != nil {
		add("id = ANY($%d)", f.IDs)
	}
	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	query += limitOffset(&args, f.Limit, f.Offset)
	return r.queryList(ctx, "list products", query, args...)
}

// ListBelowMinimum productos con stock por debajo del mínimo, mayor faltante primero.
func (r *ProductRepo) ListBelowMinimum(ctx context.Context) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE stock_on_hand < stock_minimum
		ORDER BY stock_minimum - stock_on_hand DESC, id`
	return r.queryList(ctx, "list below minimum", query)
}

func (r *ProductRepo) queryList(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		list = append(list, p)
	}
	return list, wrap(op, rows.Err())
}

// limitOffset agrega LIMIT/OFFSET parametrizados; limit <= 0 no limita.
func limitOffset(args *[]any, limit, offset int) string {
	var sb strings.Builder
	if limit > 0 {
		*args = append(*args, limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(*args))
	}
	if offset > 0 {
		*args = append(*args, offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(*args))
	}
	return sb.String()
}
