package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

var (
	_ repository.ReturnRepository   = (*ReturnRepo)(nil)
	_ repository.ExchangeRepository = (*ExchangeRepo)(nil)
)

// ReturnRepo devoluciones. Las transiciones son UPDATE ... WHERE status = ANY(from).
type ReturnRepo struct {
	q Querier
}

func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

const returnColumns = `id, number, COALESCE(sale_id, ''), product_id, quantity, unit_price, reason, kind,
	refund_mode, refund_account, status, restocked, created_by, created_at, updated_at, processed_at`

func (r *ReturnRepo) Create(ctx context.Context, rec *entity.ReturnRecord) error {
	query := `INSERT INTO returns (id, number, sale_id, product_id, quantity, unit_price, reason, kind,
			refund_mode, refund_account, status, restocked, created_by, created_at, updated_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query, rec.ID, rec.Number, nullable(rec.SaleID), rec.ProductID, rec.Quantity,
		rec.UnitPrice, rec.Reason, rec.Kind, rec.RefundMode, rec.RefundAccount, rec.Status, rec.Restocked,
		rec.CreatedBy, rec.CreatedAt, rec.UpdatedAt, rec.ProcessedAt)
	return wrap("insert return", err)
}

func (r *ReturnRepo) GetByID(ctx context.Context, id string) (*entity.ReturnRecord, error) {
	var rec entity.ReturnRecord
	err := r.q.QueryRow(ctx, `SELECT `+returnColumns+` FROM returns WHERE id = $1`, id).Scan(
		&rec.ID, &rec.Number, &rec.SaleID, &rec.ProductID, &rec.Quantity, &rec.UnitPrice, &rec.Reason, &rec.Kind,
		&rec.RefundMode, &rec.RefundAccount, &rec.Status, &rec.Restocked, &rec.CreatedBy, &rec.CreatedAt,
		&rec.UpdatedAt, &rec.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get return", err)
	}
	return &rec, nil
}

func (r *ReturnRepo) Transition(ctx context.Context, id string, t repository.ReturnTransition) (bool, error) {
	query := `UPDATE returns SET status = $2, updated_at = $3, processed_at = $3,
			refund_mode = COALESCE(NULLIF($4, ''), refund_mode),
			refund_account = COALESCE(NULLIF($5, ''), refund_account),
			reason = COALESCE(NULLIF($6, ''), reason)
		WHERE id = $1 AND status = ANY($7)`
	cmd, err := r.q.Exec(ctx, query, id, t.To, t.At, t.RefundMode, t.RefundAccount, t.Reason, t.From)
	if err != nil {
		return false, wrap("transition return", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *ReturnRepo) MarkRestocked(ctx context.Context, id string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE returns SET restocked = true, updated_at = now()
		WHERE id = $1 AND NOT restocked AND status <> $2`,
		id, entity.ReturnStatusRefused,
	)
	if err != nil {
		return false, wrap("mark restocked", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *ReturnRepo) UnmarkRestocked(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE returns SET restocked = false WHERE id = $1`, id)
	if err != nil {
		return wrap("unmark restocked", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReturnRepo) ReturnedQuantity(ctx context.Context, saleID, productID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM returns WHERE sale_id = $1 AND product_id = $2 AND status <> $3`,
		saleID, productID, entity.ReturnStatusRefused,
	).Scan(&total)
	if err != nil {
		return 0, wrap("returned quantity", err)
	}
	return total, nil
}

// ExchangeRepo cambios de artículo.
type ExchangeRepo struct {
	q Querier
}

func NewExchangeRepository(q Querier) *ExchangeRepo {
	return &ExchangeRepo{q: q}
}

func (r *ExchangeRepo) Create(ctx context.Context, e *entity.ExchangeRecord) error {
	query := `INSERT INTO exchanges (id, number, return_id, old_product_id, old_unit_price, old_quantity,
			new_product_id, new_unit_price, new_quantity, price_difference, status, created_at, updated_at, finalized_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query, e.ID, e.Number, e.ReturnID, e.OldProductID, e.OldUnitPrice, e.OldQuantity,
		e.NewProductID, e.NewUnitPrice, e.NewQuantity, e.PriceDifference, e.Status, e.CreatedAt, e.UpdatedAt, e.FinalizedAt)
	return wrap("insert exchange", err)
}

func (r *ExchangeRepo) GetByID(ctx context.Context, id string) (*entity.ExchangeRecord, error) {
	var e entity.ExchangeRecord
	err := r.q.QueryRow(ctx, `SELECT id, number, return_id, old_product_id, old_unit_price, old_quantity,
			new_product_id, new_unit_price, new_quantity, price_difference, status, created_at, updated_at, finalized_at
		FROM exchanges WHERE id = $1`, id).Scan(
		&e.ID, &e.Number, &e.ReturnID, &e.OldProductID, &e.OldUnitPrice, &e.OldQuantity,
		&e.NewProductID, &e.NewUnitPrice, &e.NewQuantity, &e.PriceDifference, &e.Status, &e.CreatedAt, &e.UpdatedAt, &e.FinalizedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get exchange", err)
	}
	return &e, nil
}

func (r *ExchangeRepo) Transition(ctx context.Context, id string, from []string, to string, at time.Time) (bool, error) {
	query := `UPDATE exchanges SET status = $2, updated_at = $3,
			finalized_at = CASE WHEN $2 = $5 THEN $3 ELSE finalized_at END
		WHERE id = $1 AND status = ANY($4)`
	cmd, err := r.q.Exec(ctx, query, id, to, at, from, entity.ExchangeStatusFinalized)
	if err != nil {
		return false, wrap("transition exchange", err)
	}
	return cmd.RowsAffected() == 1, nil
}
