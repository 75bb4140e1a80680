package purchasing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-api/internal/application/events"
	"github.com/jhoicas/farmacia-api/internal/domain"
	"github.com/jhoicas/farmacia-api/internal/domain/entity"
	dompurchasing "github.com/jhoicas/farmacia-api/internal/domain/purchasing"
	"github.com/jhoicas/farmacia-api/internal/domain/repository"
)

// ReceivePurchaseUseCase aplica un lote de cantidades recibidas a una orden de compra:
// sincroniza el stock, registra un movimiento por entrada y transiciona el estado,
// todo en una única transacción (SELECT FOR UPDATE sobre orden, líneas y stock).
type ReceivePurchaseUseCase struct {
	txRunner  TxRunner
	publisher events.Publisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewReceivePurchaseUseCase construye el caso de uso. publisher puede ser nil.
func NewReceivePurchaseUseCase(txRunner TxRunner, publisher events.Publisher, log zerolog.Logger) *ReceivePurchaseUseCase {
	return &ReceivePurchaseUseCase{
		txRunner:  txRunner,
		publisher: publisher,
		log:       log.With().Str("usecase", "receive_purchase").Logger(),
		now:       time.Now,
	}
}

// ReceiveInput entrada de Receive. OrganizationID y UserID son obligatorios: no hay identidad por defecto.
type ReceiveInput struct {
	OrderID        string
	OrganizationID string
	UserID         string
	Items          []dompurchasing.ReceiptItem
}

// ReceiveResult resultado de una recepción exitosa.
type ReceiveResult struct {
	OrderID       string
	Status        string
	ReceivedItems int
	FullyReceived bool
}

// Receive valida el lote completo (todo-o-nada) y lo aplica dentro de una transacción.
// Errores: *domain.ValidationError, *domain.NotFoundError, *domain.ConflictError, *domain.StorageError.
func (uc *ReceivePurchaseUseCase) Receive(ctx context.Context, in ReceiveInput) (*ReceiveResult, error) {
	if in.OrganizationID == "" {
		return nil, domain.NewValidationError("organization_id", "organización requerida")
	}
	if in.UserID == "" {
		return nil, domain.NewValidationError("user_id", "usuario requerido")
	}
	if err := dompurchasing.ValidateItems(in.Items); err != nil {
		return nil, err
	}

	var (
		result      *ReceiveResult
		medicineIDs []string
	)
	err := uc.txRunner.Run(ctx, func(
		purchaseRepo repository.PurchaseOrderRepository,
		stockRepo repository.StockRecordRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		// Bloquea la orden y sus líneas: dos recepciones concurrentes sobre la misma
		// orden se serializan y la segunda valida contra lo ya recibido.
		order, err := purchaseRepo.GetWithLinesForUpdate(ctx, in.OrganizationID, in.OrderID)
		if err != nil {
			return err
		}
		if order == nil || !order.CanReceive() {
			return domain.NewNotFoundError("orden de compra", in.OrderID, "no está en estado ordered")
		}
		if err := dompurchasing.ValidateAgainstOrder(order, in.Items); err != nil {
			return err
		}

		now := uc.now()
		records, err := uc.receiveStock(ctx, stockRepo, in.OrganizationID, order, in.Items, now)
		if err != nil {
			return err
		}
		medicineIDs = medicineIDs[:0]
		for i, item := range in.Items {
			line := order.Line(item.LineID)
			rec := records[i]
			if !slices.Contains(medicineIDs, rec.ID) {
				medicineIDs = append(medicineIDs, rec.ID)
			}

			line.MedicineID = rec.ID
			line.ReceivedQty = line.ReceivedQty.Add(item.Quantity)
			if item.BatchNo != "" {
				line.BatchNo = item.BatchNo
			}
			if item.ExpiryDate != nil {
				line.ExpiryDate = item.ExpiryDate
			}
			line.UpdatedAt = now
			if err := purchaseRepo.UpdateLineReceipt(ctx, line); err != nil {
				return err
			}

			mov := &entity.InventoryMovement{
				ID:             uuid.New().String(),
				MedicineID:     rec.ID,
				OrganizationID: in.OrganizationID,
				Type:           entity.MovementTypeIn,
				Quantity:       item.Quantity,
				Reference:      dompurchasing.MovementReference(order.ID),
				Notes:          fmt.Sprintf("Recepción de orden de compra %s: %s", order.ID, line.ProductName),
				UserID:         in.UserID,
				BatchNo:        line.BatchNo,
				ExpiryDate:     line.ExpiryDate,
				CostPrice:      line.UnitPrice,
				UnitPrice:      line.UnitPrice,
				CreatedAt:      now,
			}
			if err := movRepo.Create(ctx, mov); err != nil {
				return err
			}
		}

		// Relee TODAS las líneas: una recepción parcial previa pudo completar otras.
		lines, err := purchaseRepo.ListLines(ctx, order.ID)
		if err != nil {
			return err
		}
		order.ApplyReceipt(lines, now)
		if err := purchaseRepo.UpdateStatus(ctx, order); err != nil {
			return err
		}

		result = &ReceiveResult{
			OrderID:       order.ID,
			Status:        order.Status,
			ReceivedItems: len(in.Items),
			FullyReceived: order.Status == entity.PurchaseStatusReceived,
		}
		return nil
	})
	if err != nil {
		uc.logFailure(in, err)
		return nil, err
	}

	uc.log.Info().
		Str("order_id", result.OrderID).
		Str("organization_id", in.OrganizationID).
		Str("status", result.Status).
		Int("items", result.ReceivedItems).
		Msg("orden de compra recibida")

	uc.publish(ctx, in, result, medicineIDs)
	return result, nil
}

// stockWrite acumula las entradas del lote que resuelven al mismo registro de stock.
type stockWrite struct {
	rec       *entity.StockRecord
	isNew     bool
	qty       decimal.Decimal
	unitPrice decimal.Decimal
	batchNo   string
	expiry    *time.Time
}

// receiveStock resuelve el registro de stock de cada entrada (código de barras primero, luego
// id enlazado) y escribe una sola vez cada registro distinto: incremento con la suma del lote
// o creación si no existe. Devuelve el registro de cada entrada, en el orden de items.
func (uc *ReceivePurchaseUseCase) receiveStock(
	ctx context.Context,
	stockRepo repository.StockRecordRepository,
	organizationID string,
	order *entity.PurchaseOrder,
	items []dompurchasing.ReceiptItem,
	now time.Time,
) ([]*entity.StockRecord, error) {
	var (
		writes  []*stockWrite
		byKey   = make(map[string]*stockWrite)
		perItem = make([]*stockWrite, len(items))
	)
	for i, item := range items {
		line := order.Line(item.LineID)
		w, err := matchStock(ctx, stockRepo, organizationID, line, byKey)
		if err != nil {
			return nil, err
		}
		if w == nil {
			w = &stockWrite{isNew: true, rec: &entity.StockRecord{
				ID:             uuid.New().String(),
				OrganizationID: organizationID,
				Name:           line.ProductName,
				Barcode:        line.Barcode,
				Category:       line.Category,
				IsActive:       true,
				CreatedAt:      now,
				UpdatedAt:      now,
			}}
		}
		if _, seen := byKey["id:"+w.rec.ID]; !seen {
			writes = append(writes, w)
			byKey["id:"+w.rec.ID] = w
			if w.rec.Barcode != "" {
				byKey["barcode:"+w.rec.Barcode] = w
			}
		}
		byKey["line:"+line.ID] = w

		w.qty = w.qty.Add(item.Quantity)
		w.unitPrice = line.UnitPrice
		if item.BatchNo != "" {
			w.batchNo = item.BatchNo
		}
		if item.ExpiryDate != nil {
			w.expiry = item.ExpiryDate
		}
		perItem[i] = w
	}

	for _, w := range writes {
		if w.isNew {
			w.rec.Quantity = w.qty
			w.rec.UnitPrice = w.unitPrice
			w.rec.BatchNo = w.batchNo
			w.rec.ExpiryDate = w.expiry
			if err := stockRepo.Create(ctx, w.rec); err != nil {
				return nil, err
			}
			continue
		}
		rec, err := stockRepo.ApplyReceipt(ctx, w.rec.ID, w.qty, w.unitPrice, w.batchNo, w.expiry)
		if err != nil {
			return nil, err
		}
		w.rec = rec
	}

	out := make([]*entity.StockRecord, len(items))
	for i, w := range perItem {
		out[i] = w.rec
	}
	return out, nil
}

// matchStock busca primero entre los registros ya resueltos en este lote y luego en la base,
// con la misma precedencia en ambos. nil = no existe; hay que crearlo.
func matchStock(
	ctx context.Context,
	stockRepo repository.StockRecordRepository,
	organizationID string,
	line *entity.PurchaseOrderLine,
	byKey map[string]*stockWrite,
) (*stockWrite, error) {
	if w, ok := byKey["line:"+line.ID]; ok {
		return w, nil
	}
	var byBarcode, byLink *entity.StockRecord
	var err error
	if line.Barcode != "" {
		if w, ok := byKey["barcode:"+line.Barcode]; ok {
			return w, nil
		}
		if byBarcode, err = stockRepo.GetByBarcodeForUpdate(ctx, organizationID, line.Barcode); err != nil {
			return nil, err
		}
	}
	if byBarcode == nil && line.MedicineID != "" {
		if w, ok := byKey["id:"+line.MedicineID]; ok {
			return w, nil
		}
		if byLink, err = stockRepo.GetByIDForUpdate(ctx, organizationID, line.MedicineID); err != nil {
			return nil, err
		}
	}
	rec := dompurchasing.MatchStockRecord(byBarcode, byLink)
	if rec == nil {
		return nil, nil
	}
	if w, ok := byKey["id:"+rec.ID]; ok {
		return w, nil
	}
	return &stockWrite{rec: rec}, nil
}

func (uc *ReceivePurchaseUseCase) logFailure(in ReceiveInput, err error) {
	level := zerolog.WarnLevel
	if !domain.IsDomainError(err) || isStorage(err) {
		level = zerolog.ErrorLevel
	}
	uc.log.WithLevel(level).Err(err).
		Str("order_id", in.OrderID).
		Str("organization_id", in.OrganizationID).
		Int("items", len(in.Items)).
		Msg("recepción de orden de compra revertida")
}

// publish notifica después del commit; un fallo aquí no revierte la recepción.
func (uc *ReceivePurchaseUseCase) publish(ctx context.Context, in ReceiveInput, result *ReceiveResult, medicineIDs []string) {
	if uc.publisher == nil {
		return
	}
	err := uc.publisher.Publish(ctx, events.Event{
		Topic:          events.TopicPurchaseReceived,
		OrganizationID: in.OrganizationID,
		ResourceID:     result.OrderID,
		OccurredAt:     uc.now(),
		Payload: events.PurchaseReceivedPayload{
			Status:        result.Status,
			ReceivedItems: result.ReceivedItems,
			FullyReceived: result.FullyReceived,
			MedicineIDs:   medicineIDs,
			UserID:        in.UserID,
		},
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("order_id", result.OrderID).Msg("publicar evento purchase.received")
	}
}

func isStorage(err error) bool {
	var s *domain.StorageError
	return errors.As(err, &s)
}
