// Package memory implementa los puertos de persistencia en memoria.
// Se usa con STORE_DRIVER=memory (demo, desarrollo) y en los tests de casos de uso.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/application/returns"
	"github.com/jhoicas/StockPOS-api/internal/application/sales"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner = (*Store)(nil)
	_ sales.TxRunner     = (*Store)(nil)
	_ returns.TxRunner   = (*Store)(nil)
)

// Store guarda todo el estado detrás de un único mutex.
// Una transacción trabaja sobre una copia del estado y la publica al confirmar,
// así un error deja el estado intacto.
type Store struct {
	mu sync.RWMutex
	st *state
}

type state struct {
	products    map[string]entity.Product
	movements   []entity.StockMovement
	sales       map[string]entity.SaleTransaction
	lines       map[string]entity.SaleLineItem
	returns     map[string]entity.ReturnRecord
	exchanges   map[string]entity.ExchangeRecord
	assignments map[string]entity.ProductAssignment
	clients     map[string]entity.Client
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{st: &state{
		products:    map[string]entity.Product{},
		sales:       map[string]entity.SaleTransaction{},
		lines:       map[string]entity.SaleLineItem{},
		returns:     map[string]entity.ReturnRecord{},
		exchanges:   map[string]entity.ExchangeRecord{},
		assignments: map[string]entity.ProductAssignment{},
		clients:     map[string]entity.Client{},
	}}
}

func (s *state) clone() *state {
	return &state{
		products:    maps.Clone(s.products),
		movements:   slices.Clone(s.movements),
		sales:       maps.Clone(s.sales),
		lines:       maps.Clone(s.lines),
		returns:     maps.Clone(s.returns),
		exchanges:   maps.Clone(s.exchanges),
		assignments: maps.Clone(s.assignments),
		clients:     maps.Clone(s.clients),
	}
}

// binding ata un repositorio al estado vivo (tx == nil) o a la copia de una transacción.
type binding struct {
	s  *Store
	tx *state
}

func (b binding) read(fn func(st *state)) {
	if b.tx != nil {
		fn(b.tx)
		return
	}
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	fn(b.s.st)
}

func (b binding) write(fn func(st *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return fn(b.s.st)
}

// run ejecuta fn sobre una copia del estado y la publica solo si fn no falla.
func (s *Store) run(ctx context.Context, fn func(tx binding) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(binding{s: s, tx: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// RunInventory implementa inventory.TxRunner.
func (s *Store) RunInventory(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return s.run(ctx, func(tx binding) error {
		return fn(&ProductRepo{b: tx}, &MovementRepo{b: tx})
	})
}

// RunSales implementa sales.TxRunner.
func (s *Store) RunSales(ctx context.Context, fn func(saleRepo repository.SaleRepository) error) error {
	return s.run(ctx, func(tx binding) error {
		return fn(&SaleRepo{b: tx})
	})
}

// RunReturns implementa returns.TxRunner.
func (s *Store) RunReturns(ctx context.Context, fn func(
	returnRepo repository.ReturnRepository,
	exchangeRepo repository.ExchangeRepository,
) error) error {
	return s.run(ctx, func(tx binding) error {
		return fn(&ReturnRepo{b: tx}, &ExchangeRepo{b: tx})
	})
}

// Repositorios fuera de transacción (cada llamada es atómica por sí sola).

func (s *Store) Products() *ProductRepo       { return &ProductRepo{b: binding{s: s}} }
func (s *Store) Movements() *MovementRepo     { return &MovementRepo{b: binding{s: s}} }
func (s *Store) Sales() *SaleRepo             { return &SaleRepo{b: binding{s: s}} }
func (s *Store) Returns() *ReturnRepo         { return &ReturnRepo{b: binding{s: s}} }
func (s *Store) Exchanges() *ExchangeRepo     { return &ExchangeRepo{b: binding{s: s}} }
func (s *Store) Assignments() *AssignmentRepo { return &AssignmentRepo{b: binding{s: s}} }
func (s *Store) Clients() *ClientRepo         { return &ClientRepo{b: binding{s: s}} }
func (s *Store) Analytics() *AnalyticsRepo    { return &AnalyticsRepo{b: binding{s: s}} }

// paginate aplica offset/limit sobre un slice ya ordenado. limit <= 0 devuelve todo.
func paginate[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
