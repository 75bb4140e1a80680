package purchasing_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-api/internal/domain"
	"github.com/jhoicas/farmacia-api/internal/domain/entity"
	"github.com/jhoicas/farmacia-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// memStore: almacén transaccional en memoria para los tests del receptor.
// Run toma un mutex global (equivale a bloquear todas las filas), guarda una
// copia del estado y la restaura si fn falla.
// ──────────────────────────────────────────────────────────────────────────────

type memState struct {
	Orders    map[string]entity.PurchaseOrder
	Lines     []entity.PurchaseOrderLine
	Stock     map[string]entity.StockRecord
	Movements []entity.InventoryMovement
}

type memStore struct {
	mu    sync.Mutex
	state memState

	failOp    string // operación que falla (ej. "movement.create")
	failAfter int    // falla en la llamada N (1 = primera)
	calls     map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		state: memState{
			Orders: make(map[string]entity.PurchaseOrder),
			Stock:  make(map[string]entity.StockRecord),
		},
		calls: make(map[string]int),
	}
}

func (s *memStore) failOn(op string, nth int) {
	s.failOp = op
	s.failAfter = nth
}

func (s *memStore) hit(op string) error {
	s.calls[op]++
	if s.failOp == op && s.calls[op] == s.failAfter {
		return domain.NewStorageError(op, errors.New("conexión perdida"))
	}
	return nil
}

func (s *memStore) addOrder(o entity.PurchaseOrder) {
	lines := o.Lines
	o.Lines = nil
	s.state.Orders[o.ID] = o
	for _, l := range lines {
		l.PurchaseID = o.ID
		s.state.Lines = append(s.state.Lines, l)
	}
}

func (s *memStore) addStock(r entity.StockRecord) {
	s.state.Stock[r.ID] = r
}

func (s *memStore) snapshot() memState {
	cp := memState{
		Orders:    make(map[string]entity.PurchaseOrder, len(s.state.Orders)),
		Lines:     append([]entity.PurchaseOrderLine(nil), s.state.Lines...),
		Stock:     make(map[string]entity.StockRecord, len(s.state.Stock)),
		Movements: append([]entity.InventoryMovement(nil), s.state.Movements...),
	}
	for k, v := range s.state.Orders {
		cp.Orders[k] = v
	}
	for k, v := range s.state.Stock {
		cp.Stock[k] = v
	}
	return cp
}

// dump copia del estado para comparar antes/después (fuera de Run).
func (s *memStore) dump() memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *memStore) order(id string) entity.PurchaseOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Orders[id]
}

func (s *memStore) line(id string) entity.PurchaseOrderLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.state.Lines {
		if l.ID == id {
			return l
		}
	}
	return entity.PurchaseOrderLine{}
}

func (s *memStore) stockByBarcode(barcode string) *entity.StockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.state.Stock {
		if r.Barcode == barcode {
			r := r
			return &r
		}
	}
	return nil
}

func (s *memStore) stockByID(id string) entity.StockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Stock[id]
}

func (s *memStore) movements() []entity.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.InventoryMovement(nil), s.state.Movements...)
}

// Run implementa purchasing.TxRunner.
func (s *memStore) Run(ctx context.Context, fn func(
	purchaseRepo repository.PurchaseOrderRepository,
	stockRepo repository.StockRecordRepository,
	movRepo repository.InventoryMovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("begin transaction", err)
	}
	snap := s.snapshot()
	err := fn(&memPurchaseRepo{s}, &memStockRepo{s}, &memMovRepo{s})
	if err == nil {
		if cerr := ctx.Err(); cerr != nil {
			err = domain.NewStorageError("commit transaction", cerr)
		}
	}
	if err != nil {
		s.state = snap
		return err
	}
	return nil
}

// ── PurchaseOrderRepository ──────────────────────────────────────────────────

type memPurchaseRepo struct{ s *memStore }

func (r *memPurchaseRepo) GetWithLines(_ context.Context, organizationID, id string) (*entity.PurchaseOrder, error) {
	o, ok := r.s.state.Orders[id]
	if !ok || o.OrganizationID != organizationID {
		return nil, nil
	}
	o.Lines = r.linesOf(id)
	return &o, nil
}

func (r *memPurchaseRepo) GetWithLinesForUpdate(ctx context.Context, organizationID, id string) (*entity.PurchaseOrder, error) {
	if err := r.s.hit("purchase.get_for_update"); err != nil {
		return nil, err
	}
	return r.GetWithLines(ctx, organizationID, id)
}

func (r *memPurchaseRepo) linesOf(purchaseID string) []entity.PurchaseOrderLine {
	var out []entity.PurchaseOrderLine
	for _, l := range r.s.state.Lines {
		if l.PurchaseID == purchaseID {
			out = append(out, l)
		}
	}
	return out
}

func (r *memPurchaseRepo) ListLines(_ context.Context, purchaseID string) ([]entity.PurchaseOrderLine, error) {
	if err := r.s.hit("purchase.list_lines"); err != nil {
		return nil, err
	}
	return r.linesOf(purchaseID), nil
}

func (r *memPurchaseRepo) UpdateLineReceipt(_ context.Context, line *entity.PurchaseOrderLine) error {
	if err := r.s.hit("purchase.update_line"); err != nil {
		return err
	}
	for i, l := range r.s.state.Lines {
		if l.ID == line.ID {
			r.s.state.Lines[i] = *line
			return nil
		}
	}
	return domain.NewNotFoundError("línea", line.ID, "")
}

func (r *memPurchaseRepo) UpdateStatus(_ context.Context, order *entity.PurchaseOrder) error {
	if err := r.s.hit("purchase.update_status"); err != nil {
		return err
	}
	o, ok := r.s.state.Orders[order.ID]
	if !ok {
		return domain.NewNotFoundError("orden de compra", order.ID, "")
	}
	o.Status = order.Status
	o.ReceivedAmount = order.ReceivedAmount
	o.RemainingAmount = order.RemainingAmount
	o.ReceivedAt = order.ReceivedAt
	o.UpdatedAt = order.UpdatedAt
	r.s.state.Orders[order.ID] = o
	return nil
}

// ── StockRecordRepository ────────────────────────────────────────────────────

type memStockRepo struct{ s *memStore }

func (r *memStockRepo) GetByID(_ context.Context, organizationID, id string) (*entity.StockRecord, error) {
	rec, ok := r.s.state.Stock[id]
	if !ok || rec.OrganizationID != organizationID {
		return nil, nil
	}
	return &rec, nil
}

func (r *memStockRepo) GetByIDForUpdate(ctx context.Context, organizationID, id string) (*entity.StockRecord, error) {
	return r.GetByID(ctx, organizationID, id)
}

func (r *memStockRepo) GetByBarcodeForUpdate(_ context.Context, organizationID, barcode string) (*entity.StockRecord, error) {
	for _, rec := range r.s.state.Stock {
		if rec.OrganizationID == organizationID && rec.Barcode == barcode {
			rec := rec
			return &rec, nil
		}
	}
	return nil, nil
}

func (r *memStockRepo) Create(_ context.Context, rec *entity.StockRecord) error {
	if err := r.s.hit("stock.create"); err != nil {
		return err
	}
	if rec.Barcode != "" {
		for _, existing := range r.s.state.Stock {
			if existing.OrganizationID == rec.OrganizationID && existing.Barcode == rec.Barcode {
				return domain.NewConflictError("create medicine", errors.New("barcode duplicado"))
			}
		}
	}
	r.s.state.Stock[rec.ID] = *rec
	return nil
}

func (r *memStockRepo) ApplyReceipt(_ context.Context, id string, qty, unitPrice decimal.Decimal, batchNo string, expiry *time.Time) (*entity.StockRecord, error) {
	if err := r.s.hit("stock.apply_receipt"); err != nil {
		return nil, err
	}
	rec, ok := r.s.state.Stock[id]
	if !ok {
		return nil, domain.NewNotFoundError("medicamento", id, "")
	}
	rec.Quantity = rec.Quantity.Add(qty)
	rec.UnitPrice = unitPrice
	if batchNo != "" {
		rec.BatchNo = batchNo
	}
	if expiry != nil {
		rec.ExpiryDate = expiry
	}
	r.s.state.Stock[id] = rec
	return &rec, nil
}

// ── InventoryMovementRepository ──────────────────────────────────────────────

type memMovRepo struct{ s *memStore }

func (r *memMovRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	if err := r.s.hit("movement.create"); err != nil {
		return err
	}
	r.s.state.Movements = append(r.s.state.Movements, *m)
	return nil
}

func (r *memMovRepo) ListByMedicine(_ context.Context, organizationID, medicineID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for i := len(r.s.state.Movements) - 1; i >= 0; i-- {
		m := r.s.state.Movements[i]
		if m.OrganizationID == organizationID && m.MedicineID == medicineID {
			out = append(out, &m)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memMovRepo) ListByReference(_ context.Context, organizationID, reference string) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.s.state.Movements {
		if m.OrganizationID == organizationID && m.Reference == reference {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}

// ── SupplierRepository ───────────────────────────────────────────────────────

type memSupplierRepo map[string]entity.Supplier

func (r memSupplierRepo) GetByID(_ context.Context, organizationID, id string) (*entity.Supplier, error) {
	s, ok := r[id]
	if !ok || s.OrganizationID != organizationID {
		return nil, nil
	}
	return &s, nil
}
