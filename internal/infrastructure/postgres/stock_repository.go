package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-api/internal/domain"
	"github.com/jhoicas/farmacia-api/internal/domain/entity"
	"github.com/jhoicas/farmacia-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

const stockColumns = `id, organization_id, name, COALESCE(barcode, ''), COALESCE(category, ''),
	quantity, unit_price, COALESCE(batch_no, ''), expiry_date, is_active, created_at, updated_at`

// StockRecordRepo implementación de StockRecordRepository sobre la tabla medicines (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

func scanStock(row rowScanner) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := row.Scan(
		&s.ID, &s.OrganizationID, &s.Name, &s.Barcode, &s.Category,
		&s.Quantity, &s.UnitPrice, &s.BatchNo, &s.ExpiryDate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StockRecordRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.StockRecord, error) {
	s, err := scanStock(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(op, err)
	}
	return s, nil
}

// GetByID obtiene un medicamento de la organización.
func (r *StockRecordRepo) GetByID(ctx context.Context, organizationID, id string) (*entity.StockRecord, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get medicine",
		`SELECT `+stockColumns+` FROM medicines WHERE id = $1 AND organization_id = $2`,
		id, organizationID)
}

// GetByIDForUpdate obtiene el medicamento y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRecordRepo) GetByIDForUpdate(ctx context.Context, organizationID, id string) (*entity.StockRecord, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get medicine for update",
		`SELECT `+stockColumns+` FROM medicines WHERE id = $1 AND organization_id = $2 FOR UPDATE`,
		id, organizationID)
}

// GetByBarcodeForUpdate busca por código de barras dentro de la organización y bloquea la fila.
func (r *StockRecordRepo) GetByBarcodeForUpdate(ctx context.Context, organizationID, barcode string) (*entity.StockRecord, error) {
	if barcode == "" {
		return nil, nil
	}
	return r.getOne(ctx, "get medicine by barcode",
		`SELECT `+stockColumns+` FROM medicines WHERE organization_id = $1 AND barcode = $2 FOR UPDATE`,
		organizationID, barcode)
}

// Create inserta un medicamento nuevo. Un código de barras repetido en la organización
// (recepción concurrente que ganó la carrera) devuelve *domain.ConflictError.
func (r *StockRecordRepo) Create(ctx context.Context, s *entity.StockRecord) error {
	query := `
		INSERT INTO medicines (id, organization_id, name, barcode, category, quantity, unit_price,
			batch_no, expiry_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, NULLIF($8, ''), $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.OrganizationID, s.Name, s.Barcode, s.Category, s.Quantity, s.UnitPrice,
		s.BatchNo, s.ExpiryDate, s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("create medicine", err)
		}
		return classify("create medicine", err)
	}
	return nil
}

// ApplyReceipt suma qty en la propia sentencia (quantity = quantity + $2) para no depender
// de un valor leído antes. Lote vacío o vencimiento nil conservan lo que había.
func (r *StockRecordRepo) ApplyReceipt(
	ctx context.Context,
	id string,
	qty, unitPrice decimal.Decimal,
	batchNo string,
	expiry *time.Time,
) (*entity.StockRecord, error) {
	query := `
		UPDATE medicines SET
			quantity    = quantity + $2,
			unit_price  = $3,
			batch_no    = COALESCE(NULLIF($4::text, ''), batch_no),
			expiry_date = COALESCE($5::date, expiry_date),
			updated_at  = now()
		WHERE id = $1
		RETURNING ` + stockColumns
	s, err := scanStock(r.q.QueryRow(ctx, query, id, qty, unitPrice, batchNo, expiry))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("medicamento", id, "")
		}
		return nil, classify("apply receipt", err)
	}
	return s, nil
}
