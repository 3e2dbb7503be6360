package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/application/usecase"
	"github.com/jhoicas/StockPOS-api/internal/application/validation"
	"github.com/jhoicas/StockPOS-api/internal/domain/access"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

// ProductHandler catálogo, ajustes de stock e historial de movimientos (protegido).
// Cada respuesta pasa por el alcance del usuario: sin acceso → 403, sin permiso de
// precios → purchase_cost y sale_price omitidos.
type ProductHandler struct {
	uc     *usecase.ProductUseCase
	access *usecase.AccessUseCase
	ledger *inventory.Ledger
	log    zerolog.Logger
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, accessUC *usecase.AccessUseCase, ledger *inventory.Ledger, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, access: accessUC, ledger: ledger, log: log}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	p, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	scope, err := h.access.ForProduct(c.UserContext(), principal(c), p)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewProductResponse(p, scope))
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	scope, err := h.access.ForProduct(c.UserContext(), principal(c), p)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if !scope.CanView {
		return forbidden(c, msgNotAssigned)
	}
	return c.JSON(dto.NewProductResponse(p, scope))
}

type productListQuery struct {
	Category string `query:"category"`
	Status   string `query:"status"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}

// List godoc
// @Summary      Listar productos visibles para el usuario
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        category  query  string  false  "Categoría"
// @Param        status    query  string  false  "Estado de disponibilidad"
// @Param        limit     query  int     false  "Límite"   default(20)
// @Param        offset    query  int     false  "Offset"   default(0)
// @Success      200       {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var q productListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	page := dto.PageRequest{Limit: q.Limit, Offset: q.Offset}
	page.DefaultPage()

	ctx := c.UserContext()
	who := principal(c)
	filter := repository.ProductFilter{Category: q.Category, Status: q.Status, Limit: page.Limit, Offset: page.Offset}
	ids, all, err := h.access.VisibleProductIDs(ctx, who)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if !all {
		filter.IDs = ids
	}
	products, err := h.uc.List(ctx, filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	scopes, err := h.access.ForProducts(ctx, who, products)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i, p := range products {
		// asignado por ID pero con otro tipo de producto: GET /:id respondería 403
		if !scopes[i].CanView {
			continue
		}
		items = append(items, dto.NewProductResponse(p, scopes[i]))
	}
	return c.JSON(dto.ProductListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	scope, ok, err := h.editScope(c)
	if !ok {
		return err
	}
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	p, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewProductResponse(p, scope))
}

// Adjust godoc
// @Summary      Registrar ajuste de stock
// @Description  Entrée, Sortie, Correction o Retour. delta lleva signo (negativo en Sortie).
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.AdjustStockRequest  true  "kind, delta, reference, unit_cost (solo Entrée)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/adjustments [post]
func (h *ProductHandler) Adjust(c *fiber.Ctx) error {
	if _, ok, err := h.editScope(c); !ok {
		return err
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validation.Struct(in); err != nil {
		return writeError(c, h.log, err)
	}
	mov, err := h.ledger.AdjustStock(c.UserContext(), inventory.AdjustInput{
		ProductID: c.Params("id"),
		Delta:     in.Delta,
		Kind:      in.Kind,
		Reference: in.Reference,
		UnitCost:  in.UnitCost,
		Note:      in.Note,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(mov))
}

// History godoc
// @Summary      Historial de movimientos del producto (más reciente primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.MovementListResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *ProductHandler) History(c *fiber.Ctx) error {
	p, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	scope, err := h.access.ForProduct(c.UserContext(), principal(c), p)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if !scope.CanView {
		return forbidden(c, msgNotAssigned)
	}
	limit, offset := c.QueryInt("limit", 50), c.QueryInt("offset", 0)
	list, err := h.ledger.GetMovementHistory(c.UserContext(), p.ID, limit, offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		mr := dto.NewMovementResponse(m)
		if !scope.CanViewPricing {
			mr.UnitCost = nil
		}
		items = append(items, mr)
	}
	return c.JSON(dto.MovementListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}})
}

// editScope carga el producto de la ruta y verifica CanEdit. Si ok es false la respuesta
// ya fue escrita y err es lo que debe devolver el handler.
func (h *ProductHandler) editScope(c *fiber.Ctx) (access.Scope, bool, error) {
	p, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return access.Scope{}, false, writeError(c, h.log, err)
	}
	scope, err := h.access.ForProduct(c.UserContext(), principal(c), p)
	if err != nil {
		return access.Scope{}, false, writeError(c, h.log, err)
	}
	if !scope.CanEdit {
		return scope, false, forbidden(c, msgCannotEdit)
	}
	return scope, true, nil
}
