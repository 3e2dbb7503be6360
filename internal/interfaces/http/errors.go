package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/domain"
)

// errorMapping traduce errores de dominio a status HTTP y código de error.
// El orden importa: ReconciliationError envuelve también la causa original.
var errorMapping = []struct {
	target  error
	status  int
	code    string
	message string
}{
	{domain.ErrReconciliationRequired, fiber.StatusInternalServerError, "RECONCILIATION_REQUIRED", "la venta falló y el stock requiere conciliación manual"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrInvalidStateTransition, fiber.StatusConflict, "INVALID_TRANSITION", "transición de estado inválida"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "recurso duplicado"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"},
}

// writeError responde con el ErrorResponse correspondiente. Los 5xx se registran en log.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	for _, m := range errorMapping {
		if !errors.Is(err, m.target) {
			continue
		}
		resp := dto.ErrorResponse{Code: m.code, Message: m.message}
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			resp.Fields = verr.Fields
		}
		if m.status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg(m.code)
			resp.Message = err.Error()
		}
		return c.Status(m.status).JSON(resp)
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func forbidden(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: msg})
}
