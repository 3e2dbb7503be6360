package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
)

// InventoryHandler reportes de inventario (protegido, admin/manager).
type InventoryHandler struct {
	replenishment *inventory.ReplenishmentUseCase
	log           zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(replenishment *inventory.ReplenishmentUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{replenishment: replenishment, log: log}
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos por debajo de su stock mínimo con la cantidad sugerida
//
//	de pedido, ordenados por margen histórico y volumen de ventas.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(list)
}
