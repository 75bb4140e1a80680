package purchasing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-api/internal/application/events"
	"github.com/jhoicas/farmacia-api/internal/application/purchasing"
	"github.com/jhoicas/farmacia-api/internal/domain"
	"github.com/jhoicas/farmacia-api/internal/domain/entity"
)

type mockPDF struct{ mock.Mock }

func (m *mockPDF) GenerateReceiptPDF(ctx context.Context, order *entity.PurchaseOrder, supplier *entity.Supplier, movements []*entity.InventoryMovement) ([]byte, error) {
	args := m.Called(ctx, order, supplier, movements)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func newOrderUseCase(s *memStore, suppliers memSupplierRepo, pdf purchasing.ReceiptPDFGenerator) *purchasing.PurchaseOrderUseCase {
	return purchasing.NewPurchaseOrderUseCase(s, &memPurchaseRepo{s}, suppliers, &memMovRepo{s}, pdf, nil, zerolog.Nop())
}

func newOrderUseCaseWithPublisher(s *memStore, pub events.Publisher) *purchasing.PurchaseOrderUseCase {
	return purchasing.NewPurchaseOrderUseCase(s, &memPurchaseRepo{s}, nil, &memMovRepo{s}, nil, pub, zerolog.Nop())
}

func statusEvent(topic, status string) interface{} {
	return mock.MatchedBy(func(e events.Event) bool {
		p, ok := e.Payload.(events.PurchaseStatusPayload)
		return e.Topic == topic &&
			e.OrganizationID == testOrg &&
			e.ResourceID == "po-1" &&
			ok && p.Status == status
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Eventos de transición
// ──────────────────────────────────────────────────────────────────────────────

func TestPlaceOrder_PublicaPurchaseOrdered(t *testing.T) {
	s := newMemStore()
	po := orderedPO(poLine("l-1", "7701", "10"))
	po.Status = entity.PurchaseStatusDraft
	s.addOrder(po)

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, statusEvent(events.TopicPurchaseOrdered, entity.PurchaseStatusOrdered)).
		Return(nil).Once()

	_, err := newOrderUseCaseWithPublisher(s, pub).PlaceOrder(context.Background(), testOrg, "po-1")
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestCancel_PublicaPurchaseCancelled(t *testing.T) {
	s := newMemStore()
	s.addOrder(orderedPO(poLine("l-1", "7701", "10")))

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, statusEvent(events.TopicPurchaseCancelled, entity.PurchaseStatusCancelled)).
		Return(nil).Once()

	_, err := newOrderUseCaseWithPublisher(s, pub).Cancel(context.Background(), testOrg, "po-1")
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestTransicion_FalloAlPublicarNoRevierte(t *testing.T) {
	s := newMemStore()
	s.addOrder(orderedPO(poLine("l-1", "7701", "10")))

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("redis caído")).Once()

	out, err := newOrderUseCaseWithPublisher(s, pub).Cancel(context.Background(), testOrg, "po-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusCancelled, out.Status)
	assert.Equal(t, entity.PurchaseStatusCancelled, s.order("po-1").Status)
}

func TestTransicion_RechazadaNoPublica(t *testing.T) {
	s := newMemStore()
	s.addOrder(orderedPO(poLine("l-1", "7701", "10")))
	pub := new(mockPublisher)

	// ordered no admite PlaceOrder.
	_, err := newOrderUseCaseWithPublisher(s, pub).PlaceOrder(context.Background(), testOrg, "po-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPlaceOrder_DraftPasaAOrdered(t *testing.T) {
	s := newMemStore()
	po := orderedPO(poLine("l-1", "7701", "10"))
	po.Status = entity.PurchaseStatusDraft
	s.addOrder(po)

	out, err := newOrderUseCase(s, nil, nil).PlaceOrder(context.Background(), testOrg, "po-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusOrdered, out.Status)
	assert.Equal(t, entity.PurchaseStatusOrdered, s.order("po-1").Status)

	// Ya ordered: la transición no aplica.
	_, err = newOrderUseCase(s, nil, nil).PlaceOrder(context.Background(), testOrg, "po-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlaceOrder_SinLineas(t *testing.T) {
	s := newMemStore()
	po := orderedPO()
	po.Status = entity.PurchaseStatusDraft
	s.addOrder(po)

	_, err := newOrderUseCase(s, nil, nil).PlaceOrder(context.Background(), testOrg, "po-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, entity.PurchaseStatusDraft, s.order("po-1").Status)
}

func TestCancel(t *testing.T) {
	t.Run("ordered sin recepciones", func(t *testing.T) {
		s := newMemStore()
		s.addOrder(orderedPO(poLine("l-1", "7701", "10")))

		out, err := newOrderUseCase(s, nil, nil).Cancel(context.Background(), testOrg, "po-1")
		require.NoError(t, err)
		assert.Equal(t, entity.PurchaseStatusCancelled, out.Status)

		// Una orden cancelada ya no admite recepciones.
		_, err = receive(t, newReceiver(s, nil), item("l-1", "1"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("con mercancía recibida", func(t *testing.T) {
		s := newMemStore()
		s.addOrder(orderedPO(poLine("l-1", "7701", "10")))
		_, err := receive(t, newReceiver(s, nil), item("l-1", "2"))
		require.NoError(t, err)

		_, err = newOrderUseCase(s, nil, nil).Cancel(context.Background(), testOrg, "po-1")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, entity.PurchaseStatusOrdered, s.order("po-1").Status)
	})

	t.Run("recibida", func(t *testing.T) {
		s := newMemStore()
		po := orderedPO(poLine("l-1", "7701", "10"))
		po.Status = entity.PurchaseStatusReceived
		s.addOrder(po)

		_, err := newOrderUseCase(s, nil, nil).Cancel(context.Background(), testOrg, "po-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("sin organización", func(t *testing.T) {
		_, err := newOrderUseCase(newMemStore(), nil, nil).Cancel(context.Background(), "", "po-1")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestReceivingStatus_MuestraPendientes(t *testing.T) {
	s := newMemStore()
	s.addOrder(orderedPO(poLine("l-1", "7701", "10"), poLine("l-2", "7702", "5")))
	_, err := receive(t, newReceiver(s, nil), item("l-1", "4"))
	require.NoError(t, err)

	out, err := newOrderUseCase(s, nil, nil).ReceivingStatus(context.Background(), testOrg, "po-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusOrdered, out.Status)
	require.Len(t, out.Lines, 2)
	assert.True(t, out.Lines[0].PendingQty.Equal(dec("6")))
	assert.True(t, out.Lines[1].PendingQty.Equal(dec("5")))
	assert.NotEmpty(t, out.Lines[0].MedicineID)

	_, err = newOrderUseCase(s, nil, nil).ReceivingStatus(context.Background(), "org-2", "po-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceiptPDF_PasaMovimientosDeLaOrden(t *testing.T) {
	s := newMemStore()
	s.addOrder(orderedPO(poLine("l-1", "7701", "10")))
	_, err := receive(t, newReceiver(s, nil), item("l-1", "10"))
	require.NoError(t, err)

	suppliers := memSupplierRepo{"sup-1": {ID: "sup-1", OrganizationID: testOrg, Name: "Droguería Central"}}
	pdf := new(mockPDF)
	pdf.On("GenerateReceiptPDF", mock.Anything,
		mock.MatchedBy(func(o *entity.PurchaseOrder) bool { return o.ID == "po-1" && len(o.Lines) == 1 }),
		mock.MatchedBy(func(sup *entity.Supplier) bool { return sup.Name == "Droguería Central" }),
		mock.MatchedBy(func(m []*entity.InventoryMovement) bool { return len(m) == 1 && m[0].Reference == "PO-po-1" }),
	).Return([]byte("%PDF-1.4"), nil).Once()

	b, err := newOrderUseCase(s, suppliers, pdf).ReceiptPDF(context.Background(), testOrg, "po-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), b)
	pdf.AssertExpectations(t)
}

func TestReceiptPDF_ProveedorInexistenteUsaMarcador(t *testing.T) {
	s := newMemStore()
	s.addOrder(orderedPO(poLine("l-1", "7701", "10")))
	pdf := new(mockPDF)
	pdf.On("GenerateReceiptPDF", mock.Anything, mock.Anything,
		mock.MatchedBy(func(sup *entity.Supplier) bool { return sup.ID == "sup-1" && sup.Name == "" }),
		mock.Anything,
	).Return([]byte("pdf"), nil).Once()

	_, err := newOrderUseCase(s, memSupplierRepo{}, pdf).ReceiptPDF(context.Background(), testOrg, "po-1")
	require.NoError(t, err)
	pdf.AssertExpectations(t)
}
