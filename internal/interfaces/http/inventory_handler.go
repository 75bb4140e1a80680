package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-api/internal/application/dto"
)

type movementLister interface {
	ListByMedicine(ctx context.Context, organizationID, medicineID string, page dto.PageRequest) (*dto.MovementListResponse, error)
}

// InventoryHandler maneja la consulta del historial de movimientos de inventario.
type InventoryHandler struct {
	movements movementLister
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements movementLister) *InventoryHandler {
	return &InventoryHandler{movements: movements}
}

// ListMovements godoc
// @Summary      Movimientos de un medicamento
// @Description  Historial de movimientos (más recientes primero), paginado con limit/offset.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id      path   string  true   "ID del medicamento"
// @Param        limit   query  int     false  "Máximo de registros (default 20, máx 100)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.APIResponse
// @Failure      401  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/medicines/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	if organizationID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.APIResponse{Success: false, Message: "parámetros de paginación inválidos"})
	}
	out, err := h.movements.ListByMedicine(c.Context(), organizationID, c.Params("id"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
