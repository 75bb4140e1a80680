package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-api/internal/domain/entity"
)

// StockRecordRepository define el puerto para consultar/actualizar el stock de medicamentos.
// Los métodos ForUpdate bloquean la fila (SELECT FOR UPDATE) y solo tienen sentido dentro de una tx.
// Todas las búsquedas devuelven (nil, nil) si no hay fila.
type StockRecordRepository interface {
	GetByID(ctx context.Context, organizationID, id string) (*entity.StockRecord, error)
	GetByIDForUpdate(ctx context.Context, organizationID, id string) (*entity.StockRecord, error)
	GetByBarcodeForUpdate(ctx context.Context, organizationID, barcode string) (*entity.StockRecord, error)
	Create(ctx context.Context, record *entity.StockRecord) error
	// ApplyReceipt incrementa atómicamente la cantidad (quantity = quantity + qty) y
	// sobrescribe precio, lote y vencimiento. Lote vacío o vencimiento nil conservan el valor actual.
	ApplyReceipt(ctx context.Context, id string, qty, unitPrice decimal.Decimal, batchNo string, expiry *time.Time) (*entity.StockRecord, error)
}
