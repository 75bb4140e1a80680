package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-api/internal/application/dto"
	"github.com/jhoicas/farmacia-api/internal/domain"
)

// writeError traduce los errores de dominio a status HTTP con el cuerpo {success:false, message}.
// Lo no clasificado (incluido *domain.StorageError) es 500 y agrega el detalle en "error".
func writeError(c *fiber.Ctx, err error) error {
	var status int
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "error interno al procesar la solicitud",
			Error:   err.Error(),
		})
	}
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: err.Error()})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Code:    "UNAUTHENTICATED",
		Message: "organización no autenticada",
	})
}
