package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/application/returns"
	"github.com/jhoicas/StockPOS-api/internal/application/sales"
	"github.com/jhoicas/StockPOS-api/internal/application/usecase"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner      = (*TxRunner)(nil)
	_ sales.TxRunner          = (*TxRunner)(nil)
	_ returns.TxRunner        = (*TxRunner)(nil)
	_ usecase.CatalogTxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}

// RunInventory repos de producto y movimientos atados a la misma tx.
func (r *TxRunner) RunInventory(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewProductRepository(tx), NewStockMovementRepository(tx))
	})
}

// RunSales persistencia de una venta (cabecera + líneas) en una sola tx.
func (r *TxRunner) RunSales(ctx context.Context, fn func(saleRepo repository.SaleRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewSaleRepository(tx))
	})
}

// RunReturns devolución y cambio en la misma tx.
func (r *TxRunner) RunReturns(ctx context.Context, fn func(
	returnRepo repository.ReturnRepository,
	exchangeRepo repository.ExchangeRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewReturnRepository(tx), NewExchangeRepository(tx))
	})
}
