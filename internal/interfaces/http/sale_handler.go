package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/application/sales"
	"github.com/jhoicas/StockPOS-api/internal/application/usecase"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

// SaleHandler ventas de caja (protegido). Vender exige ver cada producto; fijar o
// editar precios y editar una venta exigen CanEdit sobre sus productos.
type SaleHandler struct {
	composer *sales.Composer
	access   productAccess
	log      zerolog.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(composer *sales.Composer, products *usecase.ProductUseCase, accessUC *usecase.AccessUseCase, log zerolog.Logger) *SaleHandler {
	return &SaleHandler{
		composer: composer,
		access:   productAccess{products: products, access: accessUC, log: log},
		log:      log,
	}
}

// respond escribe la venta ocultando importes de líneas sin acceso a precios.
func (h *SaleHandler) respond(c *fiber.Ctx, status int, sale *entity.SaleTransaction) error {
	scopes, ok, err := h.access.scopesOrError(c, saleProductIDs(sale)...)
	if !ok {
		return err
	}
	out := dto.NewSaleResponse(sale)
	out.HideLinePricing(scopes.canPrice)
	return c.Status(status).JSON(out)
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta el stock de cada línea y persiste la venta. Si algo falla se revierte
//
//	el stock ya descontado; si la reversión falla responde RECONCILIATION_REQUIRED.
//
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Cabecera y líneas"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	sold := make([]string, 0, len(in.Lines))
	var priced []string
	for _, l := range in.Lines {
		sold = append(sold, l.ProductID)
		if l.UnitPriceHT != nil {
			priced = append(priced, l.ProductID)
		}
	}
	if _, ok, err := h.access.require(c, canView(sold...), canEdit(priced...)); !ok {
		return err
	}
	sale, err := h.composer.CreateSale(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, fiber.StatusCreated, sale)
}

// GetByID godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.composer.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, fiber.StatusOK, sale)
}

type saleListQuery struct {
	ClientID string `query:"client_id"`
	From     string `query:"from"` // YYYY-MM-DD inclusive
	To       string `query:"to"`   // YYYY-MM-DD inclusive
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}

// List godoc
// @Summary      Listar ventas (más recientes primero, sin líneas)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        client_id  query  string  false  "Cliente"
// @Param        from       query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to         query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200        {object}  dto.SaleListResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var q saleListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	page := dto.PageRequest{Limit: q.Limit, Offset: q.Offset}
	page.DefaultPage()
	filter := repository.SaleFilter{ClientID: q.ClientID, Limit: page.Limit, Offset: page.Offset}
	if q.From != "" {
		from, err := time.Parse(time.DateOnly, q.From)
		if err != nil {
			return writeError(c, h.log, domain.NewValidationError("from", "date"))
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := time.Parse(time.DateOnly, q.To)
		if err != nil {
			return writeError(c, h.log, domain.NewValidationError("to", "date"))
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	list, err := h.composer.ListSales(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, dto.NewSaleResponse(s))
	}
	return c.JSON(dto.SaleListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// Update godoc
// @Summary      Editar cabecera de venta (cliente, pago, estado, notas)
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la venta"
// @Param        body  body  dto.UpdateSaleRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [patch]
func (h *SaleHandler) Update(c *fiber.Ctx) error {
	current, err := h.composer.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if _, ok, err := h.access.require(c, canEdit(saleProductIDs(current)...)); !ok {
		return err
	}
	var in dto.UpdateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	sale, err := h.composer.UpdateSale(c.UserContext(), current.ID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, fiber.StatusOK, sale)
}

// UpdateLine godoc
// @Summary      Editar precio o TVA de una línea
// @Description  Recalcula la línea y los totales de la venta. No modifica stock.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        lineId  path  string  true  "ID de la línea"
// @Param        body    body  dto.UpdateLineItemRequest  true  "with_tax y/o unit_price_ht"
// @Success      200     {object}  dto.SaleResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/sales/lines/{lineId} [patch]
func (h *SaleHandler) UpdateLine(c *fiber.Ctx) error {
	line, err := h.composer.GetLine(c.UserContext(), c.Params("lineId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if _, ok, err := h.access.require(c, canEdit(line.ProductID)); !ok {
		return err
	}
	var in dto.UpdateLineItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	sale, err := h.composer.UpdateLineItem(c.UserContext(), line.ID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, fiber.StatusOK, sale)
}

// Delete godoc
// @Summary      Eliminar venta (admin/manager). No repone stock.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.OKResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	if err := h.composer.DeleteSale(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OKResponse{OK: true})
}
