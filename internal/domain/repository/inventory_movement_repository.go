package repository

import (
	"context"

	"github.com/jhoicas/farmacia-api/internal/domain/entity"
)

// InventoryMovementRepository puerto append-only para el registro de auditoría de inventario.
// No expone Update ni Delete.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByMedicine(ctx context.Context, organizationID, medicineID string, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByReference(ctx context.Context, organizationID, reference string) ([]*entity.InventoryMovement, error)
}
