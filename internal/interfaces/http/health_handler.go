package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthFunc comprueba las dependencias y devuelve detalles serializables (ej. estadísticas del pool).
type HealthFunc func(ctx context.Context) (any, error)

// HealthHandler responde 200 si la base responde y 503 si no.
func HealthHandler(check HealthFunc, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), timeout)
		defer cancel()
		details, err := check(ctx)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ok", "db": details})
	}
}
