package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/StockPOS-api/internal/application/usecase"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/access"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
)

const (
	msgNotAssigned = "producto no asignado a este usuario"
	msgCannotEdit  = "sin permiso para modificar este producto"
)

// productAccess resuelve el alcance del usuario sobre los productos que toca una venta,
// devolución o cambio, antes de permitir la operación.
type productAccess struct {
	products *usecase.ProductUseCase
	access   *usecase.AccessUseCase
	log      zerolog.Logger
}

// scopeSet alcance por ID de producto. Un producto ausente no tiene permisos.
type scopeSet map[string]access.Scope

func (s scopeSet) canPrice(productID string) bool { return s[productID].CanViewPricing }

// resolve carga los productos y aplica el resolver con una sola lectura de asignaciones.
// IDs vacíos o inexistentes se ignoran: el caso de uso responde por ellos.
func (pa productAccess) resolve(c *fiber.Ctx, ids ...string) (scopeSet, error) {
	ctx := c.UserContext()
	products := make([]*entity.Product, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		p, err := pa.products.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	scopes, err := pa.access.ForProducts(ctx, principal(c), products)
	if err != nil {
		return nil, err
	}
	out := make(scopeSet, len(products))
	for i, p := range products {
		out[p.ID] = scopes[i]
	}
	return out, nil
}

// gate es una exigencia sobre un conjunto de productos.
type gate struct {
	ids     []string
	allowed func(access.Scope) bool
	msg     string
}

func canView(ids ...string) gate {
	return gate{ids: ids, allowed: func(s access.Scope) bool { return s.CanView }, msg: msgNotAssigned}
}

func canEdit(ids ...string) gate {
	return gate{ids: ids, allowed: func(s access.Scope) bool { return s.CanEdit }, msg: msgCannotEdit}
}

// require resuelve el alcance de todos los productos de las exigencias y responde 403 si
// alguna no se cumple. Si ok es false la respuesta ya fue escrita y err es lo que debe
// devolver el handler.
func (pa productAccess) require(c *fiber.Ctx, gates ...gate) (scopes scopeSet, ok bool, err error) {
	var ids []string
	for _, g := range gates {
		ids = append(ids, g.ids...)
	}
	scopes, err = pa.resolve(c, ids...)
	if err != nil {
		return nil, false, writeError(c, pa.log, err)
	}
	for _, g := range gates {
		for _, id := range g.ids {
			if _, known := scopes[id]; !known {
				continue
			}
			if !g.allowed(scopes[id]) {
				return scopes, false, forbidden(c, g.msg)
			}
		}
	}
	return scopes, true, nil
}

// scopesOrError resuelve sin exigir nada (solo para ocultar precios en lecturas).
func (pa productAccess) scopesOrError(c *fiber.Ctx, ids ...string) (scopeSet, bool, error) {
	scopes, err := pa.resolve(c, ids...)
	if err != nil {
		return nil, false, writeError(c, pa.log, err)
	}
	return scopes, true, nil
}

func saleProductIDs(s *entity.SaleTransaction) []string {
	ids := make([]string, 0, len(s.Lines))
	for _, l := range s.Lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}
