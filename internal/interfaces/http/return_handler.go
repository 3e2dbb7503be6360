package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/application/returns"
	"github.com/jhoicas/StockPOS-api/internal/application/usecase"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
)

// ReturnHandler devoluciones y cambios (protegido). Registrar exige ver el producto;
// reingresar stock, reembolsar, tratar, rechazar, finalizar o anular exigen CanEdit.
type ReturnHandler struct {
	processor *returns.Processor
	access    productAccess
	log       zerolog.Logger
}

// NewReturnHandler construye el handler.
func NewReturnHandler(processor *returns.Processor, products *usecase.ProductUseCase, accessUC *usecase.AccessUseCase, log zerolog.Logger) *ReturnHandler {
	return &ReturnHandler{
		processor: processor,
		access:    productAccess{products: products, access: accessUC, log: log},
		log:       log,
	}
}

// editableReturn carga la devolución de la ruta y verifica CanEdit sobre su producto.
func (h *ReturnHandler) editableReturn(c *fiber.Ctx) (*entity.ReturnRecord, bool, error) {
	rec, err := h.processor.GetReturn(c.UserContext(), c.Params("id"))
	if err != nil {
		return nil, false, writeError(c, h.log, err)
	}
	if _, ok, err := h.access.require(c, canEdit(rec.ProductID)); !ok {
		return nil, false, err
	}
	return rec, true, nil
}

func (h *ReturnHandler) editableExchange(c *fiber.Ctx) (*entity.ExchangeRecord, bool, error) {
	ex, err := h.processor.GetExchange(c.UserContext(), c.Params("id"))
	if err != nil {
		return nil, false, writeError(c, h.log, err)
	}
	if _, ok, err := h.access.require(c, canEdit(ex.OldProductID, ex.NewProductID)); !ok {
		return nil, false, err
	}
	return ex, true, nil
}

func (h *ReturnHandler) respondReturn(c *fiber.Ctx, status int, rec *entity.ReturnRecord) error {
	scopes, ok, err := h.access.scopesOrError(c, rec.ProductID)
	if !ok {
		return err
	}
	out := dto.NewReturnResponse(rec)
	if !scopes.canPrice(rec.ProductID) {
		out.HidePricing()
	}
	return c.Status(status).JSON(out)
}

func (h *ReturnHandler) respondExchange(c *fiber.Ctx, status int, ex *entity.ExchangeRecord) error {
	scopes, ok, err := h.access.scopesOrError(c, ex.OldProductID, ex.NewProductID)
	if !ok {
		return err
	}
	out := dto.NewExchangeResponse(ex)
	out.HidePricing(scopes.canPrice(ex.OldProductID), scopes.canPrice(ex.NewProductID))
	return c.Status(status).JSON(out)
}

// Record godoc
// @Summary      Registrar devolución (no mueve stock)
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordReturnRequest  true  "Datos de la devolución"
// @Success      201   {object}  dto.ReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/returns [post]
func (h *ReturnHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	gates := []gate{canView(in.ProductID)}
	if in.UnitPrice != nil {
		gates = append(gates, canEdit(in.ProductID))
	}
	if _, ok, err := h.access.require(c, gates...); !ok {
		return err
	}
	rec, err := h.processor.RecordReturn(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondReturn(c, fiber.StatusCreated, rec)
}

// Get godoc
// @Summary      Obtener devolución
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la devolución"
// @Success      200  {object}  dto.ReturnResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/returns/{id} [get]
func (h *ReturnHandler) Get(c *fiber.Ctx) error {
	rec, err := h.processor.GetReturn(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondReturn(c, fiber.StatusOK, rec)
}

// Restock godoc
// @Summary      Reingresar al stock el artículo devuelto (una sola vez)
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la devolución"
// @Success      201  {object}  dto.MovementResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/returns/{id}/restock [post]
func (h *ReturnHandler) Restock(c *fiber.Ctx) error {
	rec, ok, err := h.editableReturn(c)
	if !ok {
		return err
	}
	mov, err := h.processor.RestockReturn(c.UserContext(), rec.ID, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(mov))
}

// Refund godoc
// @Summary      Reembolsar devolución
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la devolución"
// @Param        body  body  dto.RefundRequest  true  "Modo y cuenta de reembolso"
// @Success      200   {object}  dto.ReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/returns/{id}/refund [post]
func (h *ReturnHandler) Refund(c *fiber.Ctx) error {
	current, ok, err := h.editableReturn(c)
	if !ok {
		return err
	}
	var in dto.RefundRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.processor.ProcessRefund(c.UserContext(), current.ID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondReturn(c, fiber.StatusOK, rec)
}

// Process godoc
// @Summary      Marcar devolución como tratada
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la devolución"
// @Success      200  {object}  dto.ReturnResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/returns/{id}/process [post]
func (h *ReturnHandler) Process(c *fiber.Ctx) error {
	current, ok, err := h.editableReturn(c)
	if !ok {
		return err
	}
	rec, err := h.processor.MarkProcessed(c.UserContext(), current.ID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondReturn(c, fiber.StatusOK, rec)
}

// Refuse godoc
// @Summary      Rechazar devolución
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la devolución"
// @Param        body  body  dto.RefuseReturnRequest  false  "Motivo del rechazo"
// @Success      200   {object}  dto.ReturnResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/returns/{id}/refuse [post]
func (h *ReturnHandler) Refuse(c *fiber.Ctx) error {
	current, ok, err := h.editableReturn(c)
	if !ok {
		return err
	}
	var in dto.RefuseReturnRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	rec, err := h.processor.RefuseReturn(c.UserContext(), current.ID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondReturn(c, fiber.StatusOK, rec)
}

// RecordExchange godoc
// @Summary      Registrar cambio de artículo
// @Description  Crea la devolución del artículo original y el cambio en una misma transacción.
// @Tags         exchanges
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordExchangeRequest  true  "Artículo devuelto y artículo nuevo"
// @Success      201   {object}  dto.ExchangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/exchanges [post]
func (h *ReturnHandler) RecordExchange(c *fiber.Ctx) error {
	var in dto.RecordExchangeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	gates := []gate{canView(in.OldProductID, in.NewProductID)}
	if in.OldUnitPrice != nil {
		gates = append(gates, canEdit(in.OldProductID))
	}
	if in.NewUnitPrice != nil {
		gates = append(gates, canEdit(in.NewProductID))
	}
	if _, ok, err := h.access.require(c, gates...); !ok {
		return err
	}
	ex, err := h.processor.RecordExchange(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondExchange(c, fiber.StatusCreated, ex)
}

// GetExchange godoc
// @Summary      Obtener cambio
// @Tags         exchanges
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cambio"
// @Success      200  {object}  dto.ExchangeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/exchanges/{id} [get]
func (h *ReturnHandler) GetExchange(c *fiber.Ctx) error {
	ex, err := h.processor.GetExchange(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondExchange(c, fiber.StatusOK, ex)
}

// FinalizeExchange godoc
// @Summary      Finalizar cambio
// @Tags         exchanges
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cambio"
// @Success      200  {object}  dto.ExchangeResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/exchanges/{id}/finalize [post]
func (h *ReturnHandler) FinalizeExchange(c *fiber.Ctx) error {
	current, ok, err := h.editableExchange(c)
	if !ok {
		return err
	}
	ex, err := h.processor.FinalizeExchange(c.UserContext(), current.ID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondExchange(c, fiber.StatusOK, ex)
}

// CancelExchange godoc
// @Summary      Anular cambio
// @Tags         exchanges
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cambio"
// @Success      200  {object}  dto.ExchangeResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/exchanges/{id}/cancel [post]
func (h *ReturnHandler) CancelExchange(c *fiber.Ctx) error {
	current, ok, err := h.editableExchange(c)
	if !ok {
		return err
	}
	ex, err := h.processor.CancelExchange(c.UserContext(), current.ID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondExchange(c, fiber.StatusOK, ex)
}
