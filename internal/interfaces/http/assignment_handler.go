package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/application/usecase"
)

// AssignmentHandler asignaciones de productos a técnicos (solo admin/manager).
type AssignmentHandler struct {
	uc  *usecase.AssignmentUseCase
	log zerolog.Logger
}

// NewAssignmentHandler construye el handler.
func NewAssignmentHandler(uc *usecase.AssignmentUseCase, log zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Asignar producto a un usuario
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAssignmentRequest  true  "Producto y usuario"
// @Success      201   {object}  dto.AssignmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/assignments [post]
func (h *AssignmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAssignmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	a, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewAssignmentResponse(a))
}

// ListByUser godoc
// @Summary      Listar asignaciones de un usuario
// @Tags         assignments
// @Security     Bearer
// @Produce      json
// @Param        user_id  query  string  true  "Usuario"
// @Success      200      {array}  dto.AssignmentResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Router       /api/assignments [get]
func (h *AssignmentHandler) ListByUser(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "user_id es obligatorio", Fields: map[string]string{"user_id": "required"},
		})
	}
	list, err := h.uc.ListByUser(c.UserContext(), userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.NewAssignmentResponse(&list[i]))
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar asignación
// @Tags         assignments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la asignación"
// @Success      200  {object}  dto.OKResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OKResponse{OK: true})
}
