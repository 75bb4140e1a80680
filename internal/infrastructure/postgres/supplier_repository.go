package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-api/internal/domain/entity"
	"github.com/jhoicas/farmacia-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo lectura de proveedores.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// GetByID obtiene un proveedor de la organización, o (nil, nil) si no existe.
func (r *SupplierRepo) GetByID(ctx context.Context, organizationID, id string) (*entity.Supplier, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `
		SELECT id, organization_id, name, COALESCE(contact_name, ''), COALESCE(phone, ''),
			COALESCE(email, ''), created_at
		FROM suppliers WHERE id = $1 AND organization_id = $2`
	var s entity.Supplier
	err := r.q.QueryRow(ctx, query, id, organizationID).Scan(
		&s.ID, &s.OrganizationID, &s.Name, &s.ContactName, &s.Phone, &s.Email, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get supplier", err)
	}
	return &s, nil
}
