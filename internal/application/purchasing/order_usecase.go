package purchasing

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-api/internal/application/dto"
	"github.com/jhoicas/farmacia-api/internal/application/events"
	"github.com/jhoicas/farmacia-api/internal/domain"
	"github.com/jhoicas/farmacia-api/internal/domain/entity"
	dompurchasing "github.com/jhoicas/farmacia-api/internal/domain/purchasing"
	"github.com/jhoicas/farmacia-api/internal/domain/repository"
)

// PurchaseOrderUseCase transiciones de estado fuera de la recepción (draft → ordered,
// → cancelled) y lecturas explícitas para la pantalla de recepción y el acta PDF.
type PurchaseOrderUseCase struct {
	txRunner     TxRunner
	purchaseRepo repository.PurchaseOrderRepository
	supplierRepo repository.SupplierRepository
	movRepo      repository.InventoryMovementRepository
	pdfGenerator ReceiptPDFGenerator
	publisher    events.Publisher
	log          zerolog.Logger
	now          func() time.Time
}

// NewPurchaseOrderUseCase construye el caso de uso. Los repos sin tx se usan solo para lecturas.
// publisher puede ser nil (sin notificaciones).
func NewPurchaseOrderUseCase(
	txRunner TxRunner,
	purchaseRepo repository.PurchaseOrderRepository,
	supplierRepo repository.SupplierRepository,
	movRepo repository.InventoryMovementRepository,
	pdfGenerator ReceiptPDFGenerator,
	publisher events.Publisher,
	log zerolog.Logger,
) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{
		txRunner:     txRunner,
		purchaseRepo: purchaseRepo,
		supplierRepo: supplierRepo,
		movRepo:      movRepo,
		pdfGenerator: pdfGenerator,
		publisher:    publisher,
		log:          log.With().Str("usecase", "purchase_order").Logger(),
		now:          time.Now,
	}
}

// PlaceOrder pasa una orden draft a ordered. Requiere al menos una línea.
func (uc *PurchaseOrderUseCase) PlaceOrder(ctx context.Context, organizationID, orderID string) (*entity.PurchaseOrder, error) {
	return uc.transition(ctx, events.TopicPurchaseOrdered, organizationID, orderID, func(order *entity.PurchaseOrder) error {
		if order.Status != entity.PurchaseStatusDraft {
			return domain.NewNotFoundError("orden de compra", orderID, "no está en estado draft")
		}
		if len(order.Lines) == 0 {
			return domain.NewValidationError("items", "la orden %s no tiene líneas", orderID)
		}
		order.Status = entity.PurchaseStatusOrdered
		return nil
	})
}

// Cancel cancela una orden draft u ordered sin mercancía recibida.
func (uc *PurchaseOrderUseCase) Cancel(ctx context.Context, organizationID, orderID string) (*entity.PurchaseOrder, error) {
	return uc.transition(ctx, events.TopicPurchaseCancelled, organizationID, orderID, func(order *entity.PurchaseOrder) error {
		if order.Status != entity.PurchaseStatusDraft && order.Status != entity.PurchaseStatusOrdered {
			return domain.NewNotFoundError("orden de compra", orderID, "no admite cancelación")
		}
		for _, l := range order.Lines {
			if l.ReceivedQty.GreaterThan(decimal.Zero) {
				return domain.NewValidationError("status",
					"la línea %s ya tiene mercancía recibida; no se puede cancelar", l.ID)
			}
		}
		order.Status = entity.PurchaseStatusCancelled
		return nil
	})
}

// transition aplica el cambio de estado bajo bloqueo y publica topic después del commit.
func (uc *PurchaseOrderUseCase) transition(
	ctx context.Context,
	topic string,
	organizationID, orderID string,
	apply func(order *entity.PurchaseOrder) error,
) (*entity.PurchaseOrder, error) {
	if organizationID == "" {
		return nil, domain.NewValidationError("organization_id", "organización requerida")
	}
	var out *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(
		purchaseRepo repository.PurchaseOrderRepository,
		_ repository.StockRecordRepository,
		_ repository.InventoryMovementRepository,
	) error {
		order, err := purchaseRepo.GetWithLinesForUpdate(ctx, organizationID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NewNotFoundError("orden de compra", orderID, "")
		}
		if err := apply(order); err != nil {
			return err
		}
		order.UpdatedAt = uc.now()
		if err := purchaseRepo.UpdateStatus(ctx, order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, topic, out)
	return out, nil
}

// publish notifica la transición ya confirmada; un fallo solo se registra.
func (uc *PurchaseOrderUseCase) publish(ctx context.Context, topic string, order *entity.PurchaseOrder) {
	if uc.publisher == nil {
		return
	}
	err := uc.publisher.Publish(ctx, events.Event{
		Topic:          topic,
		OrganizationID: order.OrganizationID,
		ResourceID:     order.ID,
		OccurredAt:     order.UpdatedAt,
		Payload:        events.PurchaseStatusPayload{Status: order.Status},
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("order_id", order.ID).Str("topic", topic).Msg("publicar evento de compra")
	}
}

// ReceivingStatus devuelve la orden con sus líneas y lo pendiente por recibir.
func (uc *PurchaseOrderUseCase) ReceivingStatus(ctx context.Context, organizationID, orderID string) (*dto.ReceivingStatusDTO, error) {
	order, err := uc.load(ctx, organizationID, orderID)
	if err != nil {
		return nil, err
	}
	out := dto.ToReceivingStatusDTO(order)
	return &out, nil
}

// ReceiptPDF genera el acta de recepción con proveedor, líneas y los movimientos registrados.
func (uc *PurchaseOrderUseCase) ReceiptPDF(ctx context.Context, organizationID, orderID string) ([]byte, error) {
	order, err := uc.load(ctx, organizationID, orderID)
	if err != nil {
		return nil, err
	}
	supplier, err := uc.supplierRepo.GetByID(ctx, organizationID, order.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		supplier = &entity.Supplier{ID: order.SupplierID}
	}
	movements, err := uc.movRepo.ListByReference(ctx, organizationID, dompurchasing.MovementReference(order.ID))
	if err != nil {
		return nil, err
	}
	return uc.pdfGenerator.GenerateReceiptPDF(ctx, order, supplier, movements)
}

func (uc *PurchaseOrderUseCase) load(ctx context.Context, organizationID, orderID string) (*entity.PurchaseOrder, error) {
	if organizationID == "" {
		return nil, domain.NewValidationError("organization_id", "organización requerida")
	}
	order, err := uc.purchaseRepo.GetWithLines(ctx, organizationID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewNotFoundError("orden de compra", orderID, "")
	}
	return order, nil
}
