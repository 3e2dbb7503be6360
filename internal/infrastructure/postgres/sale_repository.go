package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo cabeceras en sales, líneas en sale_lines.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, number, sold_at, COALESCE(client_id, ''), total_ht, tva, total_ttc,
	payment_mode, status, notes, sold_by, created_at, updated_at`

const lineColumns = `id, sale_id, position, product_id, product_category, product_name, quantity,
	with_tax, unit_price_ht, unit_price_ttc, total_ht, total_ttc`

func scanSale(row pgx.Row) (*entity.SaleTransaction, error) {
	var s entity.SaleTransaction
	err := row.Scan(&s.ID, &s.Number, &s.SoldAt, &s.ClientID, &s.TotalHT, &s.TVA, &s.TotalTTC,
		&s.PaymentMode, &s.Status, &s.Notes, &s.SoldBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanLine(row pgx.Row) (*entity.SaleLineItem, error) {
	var l entity.SaleLineItem
	err := row.Scan(&l.ID, &l.SaleID, &l.Position, &l.ProductID, &l.ProductCategory, &l.ProductName, &l.Quantity,
		&l.WithTax, &l.UnitPriceHT, &l.UnitPriceTTC, &l.TotalHT, &l.TotalTTC)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *SaleRepo) Create(ctx context.Context, s *entity.SaleTransaction) error {
	query := `INSERT INTO sales (id, number, sold_at, client_id, total_ht, tva, total_ttc,
			payment_mode, status, notes, sold_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query, s.ID, s.Number, s.SoldAt, nullable(s.ClientID), s.TotalHT, s.TVA, s.TotalTTC,
		s.PaymentMode, s.Status, s.Notes, s.SoldBy, s.CreatedAt, s.UpdatedAt)
	return wrap("insert sale", err)
}

// CreateLines inserta todas las líneas en un solo viaje (pgx.Batch).
func (r *SaleRepo) CreateLines(ctx context.Context, lines []entity.SaleLineItem) error {
	if len(lines) == 0 {
		return nil
	}
	query := `INSERT INTO sale_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query, l.ID, l.SaleID, l.Position, l.ProductID, l.ProductCategory, l.ProductName, l.Quantity,
			l.WithTax, l.UnitPriceHT, l.UnitPriceTTC, l.TotalHT, l.TotalTTC)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := range lines {
		if _, err := br.Exec(); err != nil {
			return wrap(fmt.Sprintf("insert sale line %d", i), err)
		}
	}
	return nil
}

func (r *SaleRepo) getOne(ctx context.Context, op, query, id string) (*entity.SaleTransaction, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	return s, nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.SaleTransaction, error) {
	return r.getOne(ctx, "get sale", `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera: las ediciones de líneas de una misma venta se serializan.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.SaleTransaction, error) {
	return r.getOne(ctx, "get sale for update", `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) GetLines(ctx context.Context, saleID string) ([]entity.SaleLineItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+lineColumns+` FROM sale_lines WHERE sale_id = $1 ORDER BY position`, saleID)
	if err != nil {
		return nil, wrap("get sale lines", err)
	}
	defer rows.Close()
	var lines []entity.SaleLineItem
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, wrap("get sale lines", err)
		}
		lines = append(lines, *l)
	}
	return lines, wrap("get sale lines", rows.Err())
}

func (r *SaleRepo) GetLineByID(ctx context.Context, lineID string) (*entity.SaleLineItem, error) {
	l, err := scanLine(r.q.QueryRow(ctx, `SELECT `+lineColumns+` FROM sale_lines WHERE id = $1`, lineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get sale line", err)
	}
	return l, nil
}

func (r *SaleRepo) UpdateHeader(ctx context.Context, s *entity.SaleTransaction) error {
	query := `UPDATE sales SET client_id = $2, total_ht = $3, tva = $4, total_ttc = $5,
			payment_mode = $6, status = $7, notes = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, s.ID, nullable(s.ClientID), s.TotalHT, s.TVA, s.TotalTTC,
		s.PaymentMode, s.Status, s.Notes, s.UpdatedAt)
	if err != nil {
		return wrap("update sale", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SaleRepo) UpdateLine(ctx context.Context, l *entity.SaleLineItem) error {
	query := `UPDATE sale_lines SET quantity = $2, with_tax = $3, unit_price_ht = $4, unit_price_ttc = $5,
			total_ht = $6, total_ttc = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, l.ID, l.Quantity, l.WithTax, l.UnitPriceHT, l.UnitPriceTTC, l.TotalHT, l.TotalTTC)
	if err != nil {
		return wrap("update sale line", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la venta; las líneas caen por ON DELETE CASCADE.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return wrap("delete sale", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.SaleTransaction, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ClientID != "" {
		add("client_id = $%d", f.ClientID)
	}
	if f.From != nil {
		add("sold_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("sold_at < $%d", *f.To)
	}
	query := `SELECT ` + saleColumns + ` FROM sales`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY sold_at DESC, number`
	query += limitOffset(&args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list sales", err)
	}
	defer rows.Close()
	var list []*entity.SaleTransaction
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, wrap("list sales", err)
		}
		list = append(list, s)
	}
	return list, wrap("list sales", rows.Err())
}
