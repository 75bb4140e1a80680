package purchasing

import (
	"context"

	"github.com/jhoicas/farmacia-api/internal/domain/entity"
	"github.com/jhoicas/farmacia-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso (incluido ctx cancelado).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		purchaseRepo repository.PurchaseOrderRepository,
		stockRepo repository.StockRecordRepository,
		movRepo repository.InventoryMovementRepository,
	) error) error
}

// ReceiptPDFGenerator genera el acta de recepción (representación gráfica) de una orden.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, order *entity.PurchaseOrder, supplier *entity.Supplier, movements []*entity.InventoryMovement) ([]byte, error)
}
