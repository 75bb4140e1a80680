package repository

import (
	"context"

	"github.com/jhoicas/farmacia-api/internal/domain/entity"
)

// SupplierRepository lectura explícita de proveedores (loadSupplier).
type SupplierRepository interface {
	GetByID(ctx context.Context, organizationID, id string) (*entity.Supplier, error)
}
