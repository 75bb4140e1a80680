package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/farmacia-api/internal/domain/entity"
	"github.com/jhoicas/farmacia-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, medicine_id, organization_id, type, quantity, reference, COALESCE(notes, ''),
	user_id, COALESCE(batch_no, ''), expiry_date, cost_price, unit_price, created_at`

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx). Solo inserta y lee.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, medicine_id, organization_id, type, quantity, reference, notes,
			user_id, batch_no, expiry_date, cost_price, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, NULLIF($9, ''), $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.MedicineID, m.OrganizationID, m.Type, m.Quantity, m.Reference, m.Notes,
		m.UserID, m.BatchNo, m.ExpiryDate, m.CostPrice, m.UnitPrice, m.CreatedAt,
	)
	if err != nil {
		return classify("create inventory movement", err)
	}
	return nil
}

// ListByMedicine lista los movimientos de un medicamento, más recientes primero.
func (r *InventoryMovementRepo) ListByMedicine(ctx context.Context, organizationID, medicineID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	if !validID(medicineID) {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE organization_id = $1 AND medicine_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	return r.list(ctx, "list movements by medicine", query, organizationID, medicineID, limit, offset)
}

// ListByReference lista los movimientos de una referencia (ej. PO-<id>) en orden de registro.
func (r *InventoryMovementRepo) ListByReference(ctx context.Context, organizationID, reference string) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE organization_id = $1 AND reference = $2
		ORDER BY created_at, id`
	return r.list(ctx, "list movements by reference", query, organizationID, reference)
}

func (r *InventoryMovementRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(
			&m.ID, &m.MedicineID, &m.OrganizationID, &m.Type, &m.Quantity, &m.Reference, &m.Notes,
			&m.UserID, &m.BatchNo, &m.ExpiryDate, &m.CostPrice, &m.UnitPrice, &m.CreatedAt,
		); err != nil {
			return nil, classify(op, fmt.Errorf("scan movement: %w", err))
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return list, nil
}
