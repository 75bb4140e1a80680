package repository

import (
	"context"

	"github.com/jhoicas/farmacia-api/internal/domain/entity"
)

// PurchaseOrderRepository puerto de persistencia para órdenes de compra y sus líneas.
// Las lecturas son explícitas (orden + líneas en un agregado), sin carga perezosa.
type PurchaseOrderRepository interface {
	// GetWithLines devuelve la orden con sus líneas, o (nil, nil) si no existe en la organización.
	GetWithLines(ctx context.Context, organizationID, id string) (*entity.PurchaseOrder, error)
	// GetWithLinesForUpdate igual que GetWithLines pero bloquea la orden y sus líneas.
	GetWithLinesForUpdate(ctx context.Context, organizationID, id string) (*entity.PurchaseOrder, error)
	// ListLines relee todas las líneas de la orden.
	ListLines(ctx context.Context, purchaseID string) ([]entity.PurchaseOrderLine, error)
	// UpdateLineReceipt persiste received_qty, lote, vencimiento y medicine_id de la línea.
	UpdateLineReceipt(ctx context.Context, line *entity.PurchaseOrderLine) error
	// UpdateStatus persiste estado, totales y received_at de la orden.
	UpdateStatus(ctx context.Context, order *entity.PurchaseOrder) error
}
