package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-api/internal/domain"
	"github.com/jhoicas/farmacia-api/internal/domain/entity"
	"github.com/jhoicas/farmacia-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseColumns = `id, organization_id, supplier_id, status, total_amount, received_amount, remaining_amount,
	COALESCE(payment_terms, ''), order_date, expected_date, received_at, COALESCE(notes, ''), created_at, updated_at`

const lineColumns = `id, purchase_id, COALESCE(medicine_id::text, ''), product_name, COALESCE(category, ''),
	COALESCE(barcode, ''), ordered_qty, received_qty, unit_price, COALESCE(batch_no, ''), expiry_date, updated_at`

// PurchaseOrderRepo implementación de PurchaseOrderRepository (tablas purchases y purchase_items).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// GetWithLines carga la orden y sus líneas en dos consultas explícitas.
func (r *PurchaseOrderRepo) GetWithLines(ctx context.Context, organizationID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, organizationID, id, "")
}

// GetWithLinesForUpdate igual que GetWithLines, bloqueando la fila de la orden y las de sus líneas.
func (r *PurchaseOrderRepo) GetWithLinesForUpdate(ctx context.Context, organizationID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, organizationID, id, " FOR UPDATE")
}

func (r *PurchaseOrderRepo) get(ctx context.Context, organizationID, id, lock string) (*entity.PurchaseOrder, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1 AND organization_id = $2` + lock
	var o entity.PurchaseOrder
	err := r.q.QueryRow(ctx, query, id, organizationID).Scan(
		&o.ID, &o.OrganizationID, &o.SupplierID, &o.Status, &o.TotalAmount, &o.ReceivedAmount,
		&o.RemainingAmount, &o.PaymentTerms, &o.OrderDate, &o.ExpectedDate, &o.ReceivedAt,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get purchase", err)
	}

	lines, err := r.listLines(ctx, o.ID, lock)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

// ListLines relee todas las líneas de la orden.
func (r *PurchaseOrderRepo) ListLines(ctx context.Context, purchaseID string) ([]entity.PurchaseOrderLine, error) {
	return r.listLines(ctx, purchaseID, "")
}

func (r *PurchaseOrderRepo) listLines(ctx context.Context, purchaseID, lock string) ([]entity.PurchaseOrderLine, error) {
	query := `SELECT ` + lineColumns + ` FROM purchase_items WHERE purchase_id = $1 ORDER BY created_at, id` + lock
	rows, err := r.q.Query(ctx, query, purchaseID)
	if err != nil {
		return nil, classify("list purchase items", err)
	}
	defer rows.Close()

	var lines []entity.PurchaseOrderLine
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(
			&l.ID, &l.PurchaseID, &l.MedicineID, &l.ProductName, &l.Category, &l.Barcode,
			&l.OrderedQty, &l.ReceivedQty, &l.UnitPrice, &l.BatchNo, &l.ExpiryDate, &l.UpdatedAt,
		); err != nil {
			return nil, classify("scan purchase item", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list purchase items", err)
	}
	return lines, nil
}

// UpdateLineReceipt persiste lo recibido en la línea. El CHECK de la tabla impide received_qty > ordered_qty.
func (r *PurchaseOrderRepo) UpdateLineReceipt(ctx context.Context, l *entity.PurchaseOrderLine) error {
	query := `
		UPDATE purchase_items SET
			medicine_id  = NULLIF($2, '')::uuid,
			received_qty = $3,
			batch_no     = NULLIF($4, ''),
			expiry_date  = $5,
			updated_at   = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, l.ID, l.MedicineID, l.ReceivedQty, l.BatchNo, l.ExpiryDate, l.UpdatedAt)
	if err != nil {
		return classify("update purchase item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("línea de compra", l.ID, "")
	}
	return nil
}

// UpdateStatus persiste estado, totales y received_at.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, o *entity.PurchaseOrder) error {
	query := `
		UPDATE purchases SET
			status           = $2,
			received_amount  = $3,
			remaining_amount = $4,
			received_at      = $5,
			updated_at       = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, o.ID, o.Status, o.ReceivedAmount, o.RemainingAmount, o.ReceivedAt, o.UpdatedAt)
	if err != nil {
		return classify("update purchase status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("orden de compra", o.ID, "")
	}
	return nil
}
